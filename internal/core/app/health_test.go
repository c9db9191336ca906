package app

import (
	"context"
	"testing"

	"domscan/internal/core/config"
	"domscan/internal/engine/analysis"

	"github.com/stretchr/testify/assert"
)

func TestHealthCheck(t *testing.T) {
	cfg := config.Default()
	a := NewWithStore(cfg, analysis.NewDefaultAnalyzer(), newFakeStore())
	defer a.Close()

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "ok (0 documents, 0 features)", status.Components["model"])
	assert.Equal(t, "ok", status.Components["store"])
	assert.Equal(t, "ok (1)", status.Components["scanners"])
}

func TestHealthCheckDegraded(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Enabled = true
	a := NewWithStore(cfg, analysis.NewAnalyzer(), nil)
	defer a.Close()

	status := NewHealthService(a).Check(context.Background())
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "missing but enabled in config", status.Components["store"])
	assert.Equal(t, "none registered", status.Components["scanners"])
}
