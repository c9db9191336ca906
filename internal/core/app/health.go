package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Model == nil {
		status.Status = "degraded"
		status.Components["model"] = "missing"
	} else {
		status.Components["model"] = fmt.Sprintf("ok (%d documents, %d features)", len(s.app.Model.Documents()), s.app.Model.FeatureCount())
	}

	if s.app.store != nil {
		status.Components["store"] = "ok"
	} else if s.app.Config.Store.Enabled {
		status.Status = "degraded"
		status.Components["store"] = "missing but enabled in config"
	}

	if s.app.analyzer != nil && len(s.app.analyzer.ScannerNames()) > 0 {
		status.Components["scanners"] = fmt.Sprintf("ok (%d)", len(s.app.analyzer.ScannerNames()))
	} else {
		status.Status = "degraded"
		status.Components["scanners"] = "none registered"
	}

	if err := ctx.Err(); err != nil {
		status.Status = "degraded"
		status.Components["context"] = err.Error()
	}

	return status
}
