package webapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/urlmin/analyzer"
)

// stubAnalyzer echoes canned results without rendering anything.
type stubAnalyzer struct {
	lastURL string
}

func (s *stubAnalyzer) FindMinimalURL(_ context.Context, rawURL string, _ ...analyzer.RunOption) *analyzer.Result {
	s.lastURL = rawURL
	return &analyzer.Result{
		OriginalURL:    rawURL,
		MinimalURL:     strings.Split(rawURL, "?")[0],
		RequiredParams: []string{},
		Status:         analyzer.StatusSuccess,
		Similarity:     0.99,
	}
}

func (s *stubAnalyzer) AnalyzeBatch(ctx context.Context, urls []string, opts ...analyzer.RunOption) []*analyzer.Result {
	out := make([]*analyzer.Result, len(urls))
	for i, u := range urls {
		out[i] = s.FindMinimalURL(ctx, u, opts...)
	}
	return out
}

func newTestRouter(a Analyzer) http.Handler {
	r := chi.NewRouter()
	NewServer(a).Routes(r)
	return r
}

func TestAnalyzeEndpoint(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	body := `{"url":"https://example.com/page?a=1","timeout_ms":5000}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body)
	}
	var res analyzer.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.MinimalURL != "https://example.com/page" {
		t.Errorf("minimal: %q", res.MinimalURL)
	}
	if res.Status != analyzer.StatusSuccess {
		t.Errorf("status: %v", res.Status)
	}
}

func TestAnalyzeEndpoint_BadRequests(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	for _, body := range []string{"", "{", `{"timeout_ms":5}`} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: got %d, want 400", body, rec.Code)
		}
	}
}

func TestAnalyzeBatchEndpoint(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	body := `["https://a.example/?x=1","https://b.example/?y=2"]`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze-batch", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body)
	}
	var results []analyzer.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results: %d", len(results))
	}
	if results[0].OriginalURL != "https://a.example/?x=1" {
		t.Errorf("order: %q first", results[0].OriginalURL)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze-batch", strings.NewReader("[]")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty batch: got %d, want 400", rec.Code)
	}
}

func TestAnalyzeEndpoint_RejectsUnsafeTargets(t *testing.T) {
	stub := &stubAnalyzer{}
	h := newTestRouter(stub)

	for _, target := range []string{
		"http://127.0.0.1/admin",
		"http://10.0.0.8/internal",
		"http://169.254.169.254/latest/meta-data",
		"ftp://example.com/file",
	} {
		rec := httptest.NewRecorder()
		body := `{"url":"` + target + `"}`
		h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", target, rec.Code)
		}
	}
	if stub.lastURL != "" {
		t.Errorf("analyzer must never see a rejected URL, saw %q", stub.lastURL)
	}
}

func TestAnalyzeBatchEndpoint_UnsafeMemberIsolated(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	body := `["https://a.example/?x=1","http://192.168.1.1/router","https://c.example/?y=2"]`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze-batch", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body)
	}
	var results []analyzer.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results: %d", len(results))
	}
	if results[1].Status != analyzer.StatusFailed || results[1].ErrorMessage == "" {
		t.Errorf("private member: %+v", results[1])
	}
	if results[0].Status != analyzer.StatusSuccess || results[2].Status != analyzer.StatusSuccess {
		t.Errorf("siblings must still run: %v / %v", results[0].Status, results[2].Status)
	}
	if results[0].OriginalURL != "https://a.example/?x=1" || results[2].OriginalURL != "https://c.example/?y=2" {
		t.Errorf("order not preserved: %q / %q", results[0].OriginalURL, results[2].OriginalURL)
	}
}

func TestGroupEndpoint(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	body := `{"urls":["https://example.com/blog/a","https://example.com/blog/b","bad url"]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/group", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d, body: %s", rec.Code, rec.Body)
	}
	var report struct {
		UniquePaths map[string][]string `json:"unique_paths"`
		Summary     []struct {
			Domain      string `json:"domain"`
			UniquePaths int    `json:"unique_paths"`
		} `json:"summary"`
		Errors []struct {
			URL string `json:"url"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.UniquePaths["example.com"]) != 2 {
		t.Errorf("unique paths: %v", report.UniquePaths)
	}
	if len(report.Summary) != 1 || report.Summary[0].Domain != "example.com" || report.Summary[0].UniquePaths != 2 {
		t.Errorf("summary: %+v", report.Summary)
	}
	if len(report.Errors) != 1 {
		t.Errorf("errors: %v", report.Errors)
	}
}

func TestHealthAndRoot(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "healthy") {
		t.Errorf("health: %d %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "running") {
		t.Errorf("root: %d %s", rec.Code, rec.Body)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("OPTIONS", "/analyze", nil)
	req.Header.Set("Origin", "https://app.example")
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status: %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin: %q", got)
	}
}

func TestBodySizeCap(t *testing.T) {
	h := newTestRouter(&stubAnalyzer{})

	huge := `{"url":"https://example.com/?x=` + strings.Repeat("a", maxRequestBody) + `"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/analyze", strings.NewReader(huge)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("oversized body: got %d, want 400", rec.Code)
	}
}
