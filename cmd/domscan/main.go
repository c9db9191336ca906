package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"domscan/internal/core/app"
	"domscan/internal/core/config"
	"domscan/internal/core/ports"
	"domscan/internal/data/query"
	"domscan/internal/shared/observability"
)

var (
	configPath = flag.String("config", "./domscan.toml", "Path to config file")
	once       = flag.Bool("once", false, "Run single scan and exit")
	format     = flag.String("format", "", "Output format: text or json (overrides config)")
	filterText = flag.String("query", "", `Filter reported modules, e.g. "SELECT dom_modules WHERE slots > 0"`)
	lookupID   = flag.String("lookup", "", "Report only the dom-modules declaring this id, then exit")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const VERSION = "0.3.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("domscan v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if flag.NArg() > 0 {
		cfg.WatchPaths = flag.Args()
	}
	if *format != "" {
		cfg.Output.Format = *format
	}
	if err := config.Validate(cfg); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	filter, err := query.Parse("SELECT dom_modules")
	if *filterText != "" {
		filter, err = query.Parse(*filterText)
	}
	if err != nil {
		slog.Error("invalid query", "error", err)
		os.Exit(1)
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Endpoint != "" {
		shutdown, err := observability.InitTracing(ctx, cfg.Tracing.Endpoint, cfg.Tracing.Insecure)
		if err != nil {
			slog.Error("failed to initialize tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(shutdownCtx)
		}()
	}

	if cfg.Metrics.Address != "" {
		srv := NewObservabilityServer(cfg.Metrics.Address, app.NewHealthService(a))
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Stop(shutdownCtx)
		}()
	}

	result, err := a.RunScan(ctx, ports.ScanRequest{Paths: cfg.WatchPaths})
	if err != nil {
		if scanInterrupted(err) {
			slog.Info("scan interrupted")
			return
		}
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	if *lookupID != "" {
		keep, err := lookupKeep(a.Model, *lookupID, filter)
		if err != nil {
			slog.Error("lookup failed", "error", err)
			os.Exit(1)
		}
		if err := writeReport(cfg, result, a.Model.Documents(), keep, os.Stdout); err != nil {
			slog.Error("failed to write report", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := writeReport(cfg, result, a.Model.Documents(), filterKeep(filter), os.Stdout); err != nil {
		slog.Error("failed to write report", "error", err)
	}

	if *once {
		return
	}

	err = a.Watch(ctx, func(res ports.ScanResult) {
		if err := writeReport(cfg, res, a.Model.Documents(), filterKeep(filter), os.Stdout); err != nil {
			slog.Error("failed to write report", "error", err)
		}
	})
	if err != nil && !scanInterrupted(err) {
		slog.Error("watch failed", "error", err)
		os.Exit(1)
	}
}

// scanInterrupted reports whether err stems from the signal context being
// cancelled rather than from a scan failure.
func scanInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

// loadConfig falls back to defaults only when the default config file is
// absent.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if path == "./domscan.toml" {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			slog.Debug("no config file, using defaults", "path", path)
			return config.Default(), nil
		}
	}
	return nil, err
}
