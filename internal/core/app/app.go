package app

import (
	"domscan/internal/core/config"
	"domscan/internal/core/errors"
	"domscan/internal/core/ports"
	"domscan/internal/data/store"
	"domscan/internal/engine/analysis"
	"domscan/internal/shared/util"
	"log/slog"
)

// App wires configuration, the analyzer, the in-memory model and the
// optional sqlite store.
type App struct {
	Config *config.Config
	Model  *analysis.Model

	analyzer   *analysis.Analyzer
	store      ports.FeatureStore
	limiter    *util.Limiter
	extensions map[string]bool
}

var _ ports.AnalysisService = (*App)(nil)

func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}

	var featureStore ports.FeatureStore
	if cfg.Store.Enabled {
		s, err := store.Open(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		slog.Debug("feature store opened", "path", s.Path())
		featureStore = s
	}

	return NewWithStore(cfg, analysis.NewDefaultAnalyzer(), featureStore), nil
}

// NewWithStore builds an App around an explicit analyzer and store. A nil
// store disables persistence.
func NewWithStore(cfg *config.Config, analyzer *analysis.Analyzer, featureStore ports.FeatureStore) *App {
	extensions := make(map[string]bool, len(cfg.Scan.Extensions))
	for _, ext := range cfg.Scan.Extensions {
		extensions[ext] = true
	}
	return &App{
		Config:     cfg,
		Model:      analysis.NewModel(),
		analyzer:   analyzer,
		store:      featureStore,
		limiter:    util.NewLimiter(cfg.Scan.RescansPerSecond, 1),
		extensions: extensions,
	}
}

func (a *App) Close() error {
	a.Model.Close()
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
