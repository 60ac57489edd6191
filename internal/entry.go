// Package internal wires configuration into the build and serve entry points.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/mdslide/internal/build"
	"github.com/starford/mdslide/internal/parser"
	"github.com/starford/mdslide/internal/render"
	"github.com/starford/mdslide/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := app.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app.level = app.config.App.LogLevel
	if app.debug {
		app.level = slog.LevelDebug
	}
	if app.logger == nil {
		// Initialize structured JSON logger.
		app.logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: app.level,
		}))
		slog.SetDefault(app.logger)
	}
	return app, nil
}

// Build renders the deck at source into the configured output directory and
// returns the number of slides written.
func Build(source string, opts ...Option) (int, error) {
	app, err := newApplication(opts)
	if err != nil {
		return 0, err
	}
	cfg := app.config
	logger := app.logger

	logger.Debug("Configuration loaded",
		slog.String("source", source),
		slog.String("log_level", app.level.String()),
		slog.String("output_dir", cfg.Build.OutputDir),
		slog.String("template", cfg.Build.Template),
		slog.Bool("gfm", cfg.Markdown.GFM),
		slog.Bool("unsafe_html", cfg.Markdown.UnsafeHTML))

	md := parser.NewMarkdown(parser.Options{
		GFM:        cfg.Markdown.GFM,
		UnsafeHTML: cfg.Markdown.UnsafeHTML,
	})

	var renderOpts []render.Option
	if cfg.Build.Template != "" {
		renderOpts = append(renderOpts, render.WithTemplateFile(cfg.Build.Template))
	}
	r, err := render.New(md, renderOpts...)
	if err != nil {
		return 0, fmt.Errorf("init renderer: %w", err)
	}

	n, err := build.New(parser.New(md), r, logger).Build(source, cfg.Build.OutputDir)
	if err != nil {
		return 0, fmt.Errorf("build %s: %w", source, err)
	}
	return n, nil
}

// Serve serves the root directory over HTTP until ctx is cancelled or the
// process receives SIGINT/SIGTERM. It fails only if the listener cannot be bound.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	root := app.root
	if root == "" {
		root = cfg.Build.OutputDir
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		logger.Warn("root is not a directory, every request will 404", slog.String("root", root))
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("root", root),
		slog.String("log_level", app.level.String()))

	ln, err := net.Listen("tcp", cfg.App.HTTP.Address())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.App.HTTP.Address(), err)
	}

	handler := server.NewHandler(root, logger)
	httpServer := &http.Server{
		Handler:           server.NewRouter(handler, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", ln.Addr().String()))
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
