package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hazyhaar/urlmin/safeurl"
)

// ClientConfig controls the HTTP-only renderer.
type ClientConfig struct {
	// UserAgent sent with requests.
	UserAgent string

	// MaxBytes caps the response body read. Default: safeurl.MaxBody.
	MaxBytes int64

	// Validate checks URLs before each request and redirect hop.
	// Default: safeurl.Validate.
	Validate func(string) error

	Logger *slog.Logger
}

func (c *ClientConfig) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; urlmin/1.0)"
	}
	if c.MaxBytes <= 0 {
		c.MaxBytes = safeurl.MaxBody
	}
	if c.Validate == nil {
		c.Validate = safeurl.Validate
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Client is a Renderer that fetches pages with plain HTTP GETs, no
// browser and no JS. Covers static sites and keeps tests hermetic.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// NewClient creates an HTTP renderer with redirect validation on every
// hop.
func NewClient(cfg ClientConfig) *Client {
	cfg.defaults()
	validate := cfg.Validate
	return &Client{
		cfg: cfg,
		client: &http.Client{
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("too many redirects (%d)", len(via))
				}
				if err := validate(req.URL.String()); err != nil {
					return fmt.Errorf("redirect blocked: %w", err)
				}
				return nil
			},
			Timeout: 2 * time.Minute, // outer guard; per-render deadline comes from ctx
		},
	}
}

// NewSession returns a Session sharing the client's transport.
// HTTP sessions carry no per-session state, so Close is a no-op.
func (c *Client) NewSession(ctx context.Context) (Session, error) {
	return &httpSession{c: c}, nil
}

type httpSession struct {
	c *Client
}

func (s *httpSession) Render(ctx context.Context, url string) (*Result, error) {
	cfg := s.c.cfg

	if err := cfg.Validate(url); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("render: new request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := s.c.client.Do(req)
	if err != nil {
		cfg.Logger.Debug("render: fetch failed", "url", url, "error", err)
		return &Result{}, nil
	}
	defer resp.Body.Close()

	body, err := safeurl.LimitedReadAll(resp.Body, cfg.MaxBytes)
	if err != nil {
		cfg.Logger.Debug("render: read body", "url", url, "error", err)
		return &Result{Status: resp.StatusCode}, nil
	}

	return &Result{HTML: string(body), Status: resp.StatusCode}, nil
}

func (s *httpSession) Close() error { return nil }
