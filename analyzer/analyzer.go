// Package analyzer implements the minimal-URL search: given a URL with
// query parameters, find the smallest parameter subset whose rendered
// page is content-equivalent to the original.
//
// Candidate subsets are enumerated in ascending size, so the first
// accepted candidate has globally minimal parameter count. The worst
// case evaluates the full 2^n powerset; MaxCombinationSize bounds that
// for parameter-heavy URLs. Every run terminates with a Result: the
// full parameter set is the guaranteed-success fallback, and run-level
// failures become a StatusFailed result rather than an error.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/urlmin/extract"
	"github.com/hazyhaar/urlmin/observability"
	"github.com/hazyhaar/urlmin/render"
	"github.com/hazyhaar/urlmin/similarity"
	"github.com/hazyhaar/urlmin/urlparams"
)

// Service runs minimal-URL analyses.
type Service struct {
	cfg      Config
	renderer render.Renderer
	logger   *slog.Logger
	events   *observability.EventLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEventLogger enables the analysis audit log.
func WithEventLogger(el *observability.EventLogger) Option {
	return func(s *Service) { s.events = el }
}

// New creates a Service using the given renderer.
func New(cfg Config, r render.Renderer, opts ...Option) *Service {
	cfg.defaults()
	s := &Service{
		cfg:      cfg,
		renderer: r,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// RunOption adjusts a single analysis run.
type RunOption func(*runOpts)

type runOpts struct {
	navTimeout time.Duration
}

// WithNavigationTimeout overrides the per-navigation timeout for one
// run (the API's per-request timeout_ms field).
func WithNavigationTimeout(d time.Duration) RunOption {
	return func(o *runOpts) {
		if d > 0 {
			o.navTimeout = d
		}
	}
}

// FindMinimalURL analyzes rawURL and returns the smallest parameter
// subset rendering content equivalent to the original page. It always
// returns a terminal Result: run-level failures are reported through
// Status and ErrorMessage, never as an error or a fault.
func (s *Service) FindMinimalURL(ctx context.Context, rawURL string, opts ...RunOption) (res *Result) {
	start := time.Now()
	ro := runOpts{navTimeout: s.cfg.Timeout}
	for _, o := range opts {
		o(&ro)
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("analyzer: run panicked", "url", rawURL, "panic", r)
			res = s.failed(rawURL, nil, fmt.Sprintf("unexpected failure: %v", r))
		}
		res.ElapsedMS = time.Since(start).Milliseconds()
		s.logEvent(res)
	}()

	s.logger.Info("analyzer: starting analysis", "url", rawURL)

	params, err := urlparams.Extract(rawURL)
	if err != nil {
		return s.failed(rawURL, nil, fmt.Sprintf("%v: %v", ErrMalformedURL, err))
	}
	baseURL, err := urlparams.Strip(rawURL)
	if err != nil {
		return s.failed(rawURL, nil, fmt.Sprintf("%v: %v", ErrMalformedURL, err))
	}

	sess, err := s.renderer.NewSession(ctx)
	if err != nil {
		return s.failed(rawURL, params.Values, fmt.Sprintf("open render session: %v", err))
	}
	defer sess.Close()

	// The original render is the fixed reference for every comparison.
	orig, err := s.renderOnce(ctx, sess, rawURL, ro.navTimeout)
	if err != nil {
		return s.failed(rawURL, params.Values, fmt.Sprintf("%v: %v", ErrOriginalUnreachable, err))
	}
	if orig.HTML == "" {
		return s.failed(rawURL, params.Values, ErrOriginalUnreachable.Error())
	}
	ref := extract.Signal(orig.HTML)

	// Cheapest possible answer first: the bare URL. Retries apply
	// here as to any other candidate; skipping a flaky baseline would
	// return a non-minimal answer.
	v := s.evaluateWithRetry(ctx, sess, baseURL, ref, ro.navTimeout)
	s.logVerdict(v)
	if v.Valid {
		return s.success(rawURL, baseURL, []string{}, params.Values, v.Similarity)
	}

	keys := params.Keys
	maxSize := len(keys)
	if s.cfg.MaxCombinationSize > 0 && s.cfg.MaxCombinationSize < maxSize {
		maxSize = s.cfg.MaxCombinationSize
	}

	combo := make([]string, 0, maxSize)
	var accepted *Verdict
	var acceptedKeys []string

	for r := 1; r <= maxSize; r++ {
		combinations(len(keys), r, func(idx []int) bool {
			if ctx.Err() != nil {
				return true
			}
			combo = combo[:0]
			for _, i := range idx {
				combo = append(combo, keys[i])
			}
			candURL, buildErr := urlparams.Build(baseURL, params.Subset(combo))
			if buildErr != nil {
				return false
			}
			cv := s.evaluateWithRetry(ctx, sess, candURL, ref, ro.navTimeout)
			s.logVerdict(cv)
			if cv.Valid {
				accepted = &cv
				acceptedKeys = append([]string(nil), combo...)
				return true
			}
			return false
		})
		if err := ctx.Err(); err != nil {
			return s.failed(rawURL, params.Values, fmt.Sprintf("analysis cancelled: %v", err))
		}
		if accepted != nil {
			return s.success(rawURL, accepted.URL, acceptedKeys, params.Values, accepted.Similarity)
		}
	}

	// No reduction found: the original URL with its full parameter set
	// is the answer. Similarity is 1.0 by definition, not recomputed.
	return s.success(rawURL, rawURL, append([]string(nil), keys...), params.Values, 1.0)
}

// renderOnce renders one URL under the per-navigation timeout.
func (s *Service) renderOnce(ctx context.Context, sess render.Session, url string, timeout time.Duration) (*render.Result, error) {
	navCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sess.Render(navCtx, url)
}

// evaluate renders a candidate and scores it against the reference
// signal. Render failures are absorbed into the verdict.
func (s *Service) evaluate(ctx context.Context, sess render.Session, url, ref string, timeout time.Duration) Verdict {
	start := time.Now()
	v := Verdict{URL: url}

	res, err := s.renderOnce(ctx, sess, url, timeout)
	switch {
	case err != nil:
		v.Err = err.Error()
	case res.HTML == "":
		v.StatusCode = res.Status
		v.Err = "no content received"
	default:
		v.StatusCode = res.Status
		v.Similarity = similarity.Ratio(ref, extract.Signal(res.HTML))
		v.Valid = res.Status == s.cfg.SuccessStatus && v.Similarity >= s.cfg.SimilarityThreshold
	}

	v.Elapsed = time.Since(start)
	return v
}

// evaluateWithRetry re-renders a candidate whose evaluation failed for
// render reasons. A candidate rejected on similarity is final.
func (s *Service) evaluateWithRetry(ctx context.Context, sess render.Session, url, ref string, timeout time.Duration) Verdict {
	v := s.evaluate(ctx, sess, url, ref, timeout)
	for attempt := 0; attempt < s.cfg.MaxRetries && v.Err != "" && ctx.Err() == nil; attempt++ {
		s.logger.Debug("analyzer: retrying candidate",
			"url", url, "attempt", attempt+1, "error", v.Err)
		v = s.evaluate(ctx, sess, url, ref, timeout)
	}
	return v
}

func (s *Service) success(originalURL, minimalURL string, required []string, all map[string]string, sim float64) *Result {
	if required == nil {
		required = []string{}
	}
	s.logger.Info("analyzer: analysis complete",
		"url", originalURL, "minimal", minimalURL,
		"required", len(required), "similarity", sim)
	return &Result{
		OriginalURL:    originalURL,
		MinimalURL:     minimalURL,
		RequiredParams: required,
		AllParams:      all,
		Status:         StatusSuccess,
		Similarity:     sim,
		AnalyzedAt:     time.Now(),
	}
}

func (s *Service) failed(originalURL string, all map[string]string, msg string) *Result {
	s.logger.Error("analyzer: analysis failed", "url", originalURL, "error", msg)
	return &Result{
		OriginalURL:    originalURL,
		MinimalURL:     originalURL,
		RequiredParams: []string{},
		AllParams:      all,
		Status:         StatusFailed,
		ErrorMessage:   msg,
		AnalyzedAt:     time.Now(),
	}
}

func (s *Service) logVerdict(v Verdict) {
	s.logger.Debug("analyzer: candidate evaluated",
		"url", v.URL, "valid", v.Valid, "status", v.StatusCode,
		"similarity", v.Similarity, "elapsed", v.Elapsed, "error", v.Err)
}

func (s *Service) logEvent(res *Result) {
	if s.events == nil || res == nil {
		return
	}
	// Detached context: the audit write should survive run cancellation.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.events.LogAnalysis(ctx, observability.AnalysisEvent{
		OriginalURL:   res.OriginalURL,
		MinimalURL:    res.MinimalURL,
		Status:        res.Status.String(),
		Similarity:    res.Similarity,
		ParamCount:    len(res.AllParams),
		RequiredCount: len(res.RequiredParams),
		ElapsedMS:     res.ElapsedMS,
		Error:         res.ErrorMessage,
	})
}
