// Command urlmin serves the minimal-URL analyzer over HTTP, and
// optionally over MCP stdio.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/urlmin/analyzer"
	"github.com/hazyhaar/urlmin/config"
	"github.com/hazyhaar/urlmin/dbopen"
	"github.com/hazyhaar/urlmin/observability"
	"github.com/hazyhaar/urlmin/render"
	"github.com/hazyhaar/urlmin/webapi"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	// Logging. MCP stdio mode owns stdout, so logs go to stderr there.
	logOut := os.Stdout
	if *mcpMode {
		logOut = os.Stderr
	}
	var lvl slog.Level
	switch cfg.LogLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Rendering backend.
	var renderer render.Renderer
	switch cfg.Render.Mode {
	case "http":
		renderer = render.NewClient(render.ClientConfig{
			UserAgent: cfg.Render.UserAgent,
			MaxBytes:  cfg.Render.MaxBytes,
			Logger:    logger,
		})
	default:
		var blocking []string
		if cfg.Render.ResourceBlocking {
			blocking = []string{"images", "fonts", "media", "stylesheets"}
		}
		browser := render.NewBrowser(render.BrowserConfig{
			RemoteURL:        cfg.Render.RemoteURL,
			ResourceBlocking: blocking,
			Logger:           logger,
		})
		if err := browser.Start(ctx); err != nil {
			slog.Error("browser start", "error", err)
			os.Exit(1)
		}
		defer browser.Close()
		renderer = browser
	}

	// Analyzer service, with the optional audit log.
	opts := []analyzer.Option{analyzer.WithLogger(logger)}
	if cfg.AuditDB != "" {
		auditDB, err := dbopen.Open(cfg.AuditDB,
			dbopen.WithMkdirAll(),
			dbopen.WithSchema(observability.Schema))
		if err != nil {
			slog.Error("audit db", "error", err)
			os.Exit(1)
		}
		defer auditDB.Close()
		opts = append(opts, analyzer.WithEventLogger(observability.NewEventLogger(auditDB)))

		if cfg.AuditRetentionDays > 0 {
			if err := observability.Cleanup(ctx, auditDB, cfg.AuditRetentionDays); err != nil {
				slog.Warn("audit cleanup", "error", err)
			}
			go func() {
				ticker := time.NewTicker(24 * time.Hour)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						if err := observability.Cleanup(ctx, auditDB, cfg.AuditRetentionDays); err != nil {
							slog.Warn("audit cleanup", "error", err)
						}
					}
				}
			}()
		}
	}
	svc := analyzer.New(cfg.AnalyzerSettings(), renderer, opts...)

	if *mcpMode {
		runMCP(ctx, svc)
		return
	}

	// HTTP server.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	webapi.NewServer(svc, webapi.WithLogger(logger)).Routes(r)

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen, "render_mode", cfg.Render.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func runMCP(ctx context.Context, svc *analyzer.Service) {
	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "urlmin",
		Version: "1.0.0",
	}, nil)
	svc.RegisterMCP(srv)

	slog.Info("MCP stdio starting")
	if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		slog.Error("MCP server", "error", err)
		os.Exit(1)
	}
}
