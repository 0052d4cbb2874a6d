package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"engram-console/internal/config"
	"engram-console/internal/gateway"
	"engram-console/internal/logging"
	"engram-console/internal/tracing"
)

// app bundles what every command needs: resolved config, logger and the
// gateway facade.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
	client *gateway.Client

	closers []func() error
}

// setup loads .env and config, applies persistent flags and builds the
// logger and gateway client. quiet sends logs nowhere unless a log file is
// configured; the TUI owns the terminal.
func setup(cmd *cobra.Command, quiet bool) (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if apiURL != "" {
		cfg.Backend.BaseURL = apiURL
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	var logOut io.Writer = cmd.ErrOrStderr()
	switch {
	case cfg.Log.File != "":
		f, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, f.Close)
		logOut = f
	case quiet:
		logOut = io.Discard
	}
	a.logger = logging.New(logOut, level, cfg.Log.Format)

	hc := &http.Client{Timeout: cfg.Backend.Timeout}
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.Init("engram-console", logOut, a.logger)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() error { return shutdown(context.Background()) })
		hc = tracing.Client(hc)
	}
	a.client = gateway.New(cfg.Backend.BaseURL, gateway.WithHTTPClient(hc), gateway.WithLogger(a.logger))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a.ctx = logging.NewContext(ctx, a.logger)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
