package app

import (
	"context"
	"domscan/internal/core/ports"
	"domscan/internal/core/watcher"
	"domscan/internal/shared/util"
	"log/slog"
	"path/filepath"
	"sort"
)

// Watch re-analyzes documents as they change until ctx is done. onScan, if
// set, receives the result of every rescan.
func (a *App) Watch(ctx context.Context, onScan func(ports.ScanResult)) error {
	changes := make(chan []string, 16)
	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		a.Config.Scan.Extensions,
		func(paths []string) {
			select {
			case changes <- paths:
			case <-ctx.Done():
			}
		},
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(util.UniqueScanRoots(a.Config.WatchPaths)); err != nil {
		return err
	}
	slog.Info("watching for changes", "paths", a.Config.WatchPaths)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changes:
			if err := a.limiter.Wait(ctx, 1); err != nil {
				return nil
			}
			result, err := a.HandleChanges(ctx, paths)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				slog.Error("rescan failed", "error", err)
				continue
			}
			if onScan != nil {
				onScan(result)
			}
		}
	}
}

// HandleChanges rescans the changed paths that still exist and forgets the rest.
func (a *App) HandleChanges(ctx context.Context, paths []string) (ports.ScanResult, error) {
	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		clean := filepath.Clean(p)
		if fileExists(clean) {
			if a.IsDocumentPath(clean) {
				existing = append(existing, clean)
			}
			continue
		}
		slog.Debug("document removed", "path", clean)
		a.forget(clean)
	}
	sort.Strings(existing)
	return a.scanFiles(ctx, existing)
}
