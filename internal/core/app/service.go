package app

import (
	"context"
	"domscan/internal/core/errors"
	"domscan/internal/core/ports"
	"domscan/internal/data/store"
	"domscan/internal/engine/analysis"
	"domscan/internal/engine/polymer"
	"domscan/internal/shared/observability"
	"domscan/internal/shared/util"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// RunScan analyzes every document under req.Paths (or the configured watch
// paths) and folds the results into the model and store. A failing document
// is reported in the result; only cancellation fails the whole run.
func (a *App) RunScan(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	paths := req.Paths
	if len(paths) == 0 {
		paths = a.Config.WatchPaths
	}

	ctx, span := observability.Tracer.Start(ctx, "App.RunScan", trace.WithAttributes(attribute.Int("paths", len(paths))))
	defer span.End()

	files, err := a.DiscoverDocuments(util.UniqueScanRoots(paths))
	if err != nil {
		return ports.ScanResult{}, errors.AddContext(err, errors.CtxOperation, "discover_documents")
	}
	return a.scanFiles(ctx, files)
}

func (a *App) scanFiles(ctx context.Context, files []string) (ports.ScanResult, error) {
	started := time.Now()
	runID := uuid.NewString()
	slog.Debug("scan started", "run_id", runID, "documents", len(files))

	results := make([]*analysis.DocumentAnalysis, len(files))
	failures := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Scan.Workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := a.analyzeFile(gctx, path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			results[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, doc := range results {
			doc.Close()
		}
		return ports.ScanResult{}, errors.AddContext(err, errors.CtxRunID, runID)
	}

	result := ports.ScanResult{RunID: runID, Documents: len(files)}
	for i, path := range files {
		if failures[i] != nil {
			observability.DocumentFailuresTotal.Inc()
			slog.Warn("failed to analyze document", "path", path, "error", failures[i])
			result.Failures = append(result.Failures, ports.DocumentFailure{Path: path, Error: failures[i].Error()})
			continue
		}

		doc := results[i]
		observability.DocumentsScannedTotal.Inc()
		result.Features += len(doc.Features)
		a.Model.Add(doc)

		if err := a.persist(runID, doc); err != nil {
			slog.Warn("failed to persist document", "path", path, "error", err)
			result.Failures = append(result.Failures, ports.DocumentFailure{Path: path, Error: err.Error()})
		}
	}
	result.Duration = time.Since(started)

	if a.store != nil {
		run := store.Run{
			ID:         runID,
			StartedAt:  started,
			FinishedAt: time.Now(),
			Documents:  result.Documents,
			Features:   result.Features,
			Failures:   len(result.Failures),
		}
		if err := a.store.SaveRun(run); err != nil {
			slog.Warn("failed to record scan run", "run_id", runID, "error", err)
		}
	}

	slog.Info("scan finished",
		"run_id", runID,
		"documents", result.Documents,
		"features", result.Features,
		"failures", len(result.Failures),
		"duration", result.Duration,
	)
	return result, nil
}

func (a *App) analyzeFile(ctx context.Context, path string) (*analysis.DocumentAnalysis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "read document"), errors.CtxPath, path)
	}
	return a.analyzer.AnalyzeDocument(ctx, path, content)
}

func (a *App) persist(runID string, doc *analysis.DocumentAnalysis) error {
	if a.store == nil {
		return nil
	}
	modules := make([]*polymer.DomModule, 0, len(doc.Features))
	for _, f := range doc.Features {
		if m, ok := f.(*polymer.DomModule); ok {
			modules = append(modules, m)
		}
	}

	start := time.Now()
	defer func() {
		observability.StoreWriteDuration.Observe(time.Since(start).Seconds())
	}()
	return a.store.ReplaceDocument(runID, doc.Path, modules)
}

// forget drops a deleted document from the model and store.
func (a *App) forget(path string) {
	a.Model.Remove(path)
	if a.store == nil {
		return
	}
	if err := a.store.DeleteDocument(path); err != nil {
		slog.Warn("failed to delete document from store", "path", path, "error", err)
	}
}
