// Package webapi exposes the analyzer over HTTP: single and batch
// analysis, URL grouping, a health probe and a service banner.
package webapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/urlmin/analyzer"
	"github.com/hazyhaar/urlmin/safeurl"
	"github.com/hazyhaar/urlmin/urlgroup"
)

// maxRequestBody caps JSON request bodies. Batch requests with
// thousands of URLs stay well under this.
const maxRequestBody = 4 << 20

// Analyzer is the subset of the analyzer service the API needs.
type Analyzer interface {
	FindMinimalURL(ctx context.Context, rawURL string, opts ...analyzer.RunOption) *analyzer.Result
	AnalyzeBatch(ctx context.Context, urls []string, opts ...analyzer.RunOption) []*analyzer.Result
}

// Server handles the HTTP surface of the service.
type Server struct {
	analyzer     Analyzer
	logger       *slog.Logger
	groupWorkers int
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGroupWorkers bounds the grouping fan-out.
func WithGroupWorkers(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.groupWorkers = n
		}
	}
}

// NewServer creates a Server around an analyzer.
func NewServer(a Analyzer, opts ...Option) *Server {
	s := &Server{
		analyzer:     a,
		logger:       slog.Default(),
		groupWorkers: 10,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Routes registers all endpoints on a chi router.
func (s *Server) Routes(r chi.Router) {
	r.Use(CORS)
	r.Use(MaxJSONBody(maxRequestBody))

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/analyze-batch", s.handleAnalyzeBatch)
	r.Post("/group", s.handleGroup)
}

type analyzeRequest struct {
	URL       string `json:"url"`
	TimeoutMS int64  `json:"timeout_ms"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		http.Error(w, "url is required", http.StatusBadRequest)
		return
	}
	if err := safeurl.Validate(req.URL); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	res := s.analyzer.FindMinimalURL(r.Context(), req.URL,
		analyzer.WithNavigationTimeout(time.Duration(req.TimeoutMS)*time.Millisecond))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var urls []string
	if err := json.NewDecoder(r.Body).Decode(&urls); err != nil {
		http.Error(w, "invalid request body: expected a JSON array of URLs", http.StatusBadRequest)
		return
	}
	if len(urls) == 0 {
		http.Error(w, "at least one url is required", http.StatusBadRequest)
		return
	}

	// Rejected members become failed results in place; siblings still
	// run. Only accepted URLs are dispatched to the analyzer.
	results := make([]*analyzer.Result, len(urls))
	accepted := make([]string, 0, len(urls))
	positions := make([]int, 0, len(urls))
	for i, u := range urls {
		if err := safeurl.Validate(u); err != nil {
			results[i] = &analyzer.Result{
				OriginalURL:    u,
				MinimalURL:     u,
				RequiredParams: []string{},
				Status:         analyzer.StatusFailed,
				ErrorMessage:   err.Error(),
				AnalyzedAt:     time.Now(),
			}
			continue
		}
		accepted = append(accepted, u)
		positions = append(positions, i)
	}
	for i, res := range s.analyzer.AnalyzeBatch(r.Context(), accepted) {
		results[positions[i]] = res
	}
	writeJSON(w, http.StatusOK, results)
}

type groupRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.URLs) == 0 {
		http.Error(w, "at least one url is required", http.StatusBadRequest)
		return
	}

	report := urlgroup.New().Process(r.Context(), req.URLs, s.groupWorkers)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "urlmin service is running"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
