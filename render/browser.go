package render

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// BrowserConfig controls the Chrome-backed renderer.
type BrowserConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// ResourceBlocking lists resource types to block during
	// navigation (images, fonts, media, stylesheets).
	ResourceBlocking []string

	Logger *slog.Logger
}

func (c *BrowserConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Browser is a Renderer backed by a single Chrome process. Sessions
// are tabs; the process is shared across concurrent sessions.
type Browser struct {
	cfg     BrowserConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewBrowser creates a Browser renderer. Call Start before opening
// sessions.
func NewBrowser(cfg BrowserConfig) *Browser {
	cfg.defaults()
	return &Browser{cfg: cfg}
}

// Start launches Chrome (or connects to a remote instance).
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("render: browser is closed")
	}

	var wsURL string
	if b.cfg.RemoteURL != "" {
		wsURL = b.cfg.RemoteURL
		b.cfg.Logger.Info("render: connecting to remote chrome", "url", wsURL)
	} else {
		l := launcher.New().
			Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("render: launch: %w", err)
		}
		wsURL = u
		b.lnch = l
		b.cfg.Logger.Info("render: launched local chrome", "url", wsURL)
	}

	br := rod.New().ControlURL(wsURL).Context(ctx)
	if err := br.Connect(); err != nil {
		return fmt.Errorf("render: connect: %w", err)
	}
	if err := br.IgnoreCertErrors(true); err != nil {
		b.cfg.Logger.Warn("render: ignore cert errors failed", "error", err)
	}

	b.browser = br
	return nil
}

// Close shuts down Chrome.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	if b.browser != nil {
		b.browser.Close()
		b.browser = nil
	}
	if b.lnch != nil {
		b.lnch.Cleanup()
		b.lnch = nil
	}
	return nil
}

// NewSession opens a stealth tab. The tab is reused for every Render
// call of the session and closed with it.
func (b *Browser) NewSession(ctx context.Context) (Session, error) {
	b.mu.Lock()
	br := b.browser
	b.mu.Unlock()
	if br == nil {
		return nil, fmt.Errorf("render: browser not started")
	}

	page, err := stealth.Page(br)
	if err != nil {
		return nil, fmt.Errorf("render: create tab: %w", err)
	}

	if len(b.cfg.ResourceBlocking) > 0 {
		if err := applyResourceBlocking(page, b.cfg.ResourceBlocking); err != nil {
			b.cfg.Logger.Warn("render: resource blocking failed", "error", err)
		}
	}

	return &tab{page: page, logger: b.cfg.Logger}, nil
}

// tab is a Session bound to one Chrome tab.
type tab struct {
	page   *rod.Page
	logger *slog.Logger
}

// Render navigates the tab and serialises the resulting DOM. The main
// document's HTTP status is captured from the network event stream;
// navigation failures produce a zero-status Result, not an error.
func (t *tab) Render(ctx context.Context, url string) (*Result, error) {
	pg := t.page.Context(ctx)

	var status int
	wait := pg.EachEvent(func(e *proto.NetworkResponseReceived) bool {
		if e.Type == proto.NetworkResourceTypeDocument {
			status = int(e.Response.Status)
			return true
		}
		return false
	})

	if err := pg.Navigate(url); err != nil {
		t.logger.Debug("render: navigate failed", "url", url, "error", err)
		return &Result{}, nil
	}
	wait()

	if err := pg.WaitLoad(); err != nil {
		t.logger.Debug("render: wait load", "url", url, "error", err)
	}

	res, err := pg.Eval(`() => document.documentElement.outerHTML`)
	if err != nil {
		t.logger.Debug("render: serialize DOM failed", "url", url, "error", err)
		return &Result{Status: status}, nil
	}

	return &Result{HTML: res.Value.Str(), Status: status}, nil
}

func (t *tab) Close() error {
	if t.page != nil {
		return t.page.Close()
	}
	return nil
}

// applyResourceBlocking intercepts requests and fails those whose
// resource type is in the block list.
func applyResourceBlocking(page *rod.Page, types []string) error {
	blockSet := make(map[string]bool, len(types))
	for _, t := range types {
		blockSet[strings.ToLower(t)] = true
	}

	router := page.HijackRequests()
	router.MustAdd("*", func(h *rod.Hijack) {
		if shouldBlock(blockSet, string(h.Request.Type())) {
			h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
			return
		}
		h.ContinueRequest(&proto.FetchContinueRequest{})
	})
	go router.Run()

	return nil
}

func shouldBlock(blockSet map[string]bool, resType string) bool {
	switch strings.ToLower(resType) {
	case "image":
		return blockSet["images"]
	case "font":
		return blockSet["fonts"]
	case "media":
		return blockSet["media"]
	case "stylesheet":
		return blockSet["stylesheets"]
	}
	return blockSet[strings.ToLower(resType)]
}
