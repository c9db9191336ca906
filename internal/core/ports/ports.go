package ports

import (
	"context"
	"domscan/internal/data/store"
	"domscan/internal/engine/polymer"
	"time"
)

// FeatureStore abstracts persistence of resolved dom-module features.
type FeatureStore interface {
	SaveRun(run store.Run) error
	ReplaceDocument(runID, path string, modules []*polymer.DomModule) error
	DeleteDocument(path string) error
	Close() error
}

// ScanRequest defines a scan operation. Empty Paths means the configured watch paths.
type ScanRequest struct {
	Paths []string
}

// DocumentFailure records a document whose analysis failed without failing the run.
type DocumentFailure struct {
	Path  string
	Error string
}

// ScanResult summarizes a completed scan operation.
type ScanResult struct {
	RunID     string
	Documents int
	Features  int
	Failures  []DocumentFailure
	Duration  time.Duration
}

// AnalysisService is the driving port used by the CLI.
type AnalysisService interface {
	RunScan(ctx context.Context, req ScanRequest) (ScanResult, error)
	Watch(ctx context.Context, onScan func(ScanResult)) error
	Close() error
}

var _ FeatureStore = (*store.Store)(nil)
