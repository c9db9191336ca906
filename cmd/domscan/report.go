package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"

	"domscan/internal/core/config"
	"domscan/internal/core/errors"
	"domscan/internal/core/ports"
	"domscan/internal/data/query"
	"domscan/internal/engine/analysis"
	"domscan/internal/engine/polymer"
	"domscan/internal/output"
	"domscan/internal/shared/util"
)

type keepFunc func(path string, m *polymer.DomModule) bool

func filterKeep(filter query.Filter) keepFunc {
	return filter.Match
}

// lookupKeep narrows filter to the modules the model indexes under id.
func lookupKeep(m *analysis.Model, id string, filter query.Filter) (keepFunc, error) {
	found := m.Lookup(polymer.DomModuleKind, id)
	if len(found) == 0 {
		return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("no dom-module with id %q", id))
	}
	matches := make(map[*polymer.DomModule]bool, len(found))
	for _, f := range found {
		if dm, ok := f.(*polymer.DomModule); ok {
			matches[dm] = true
		}
	}
	return func(path string, dm *polymer.DomModule) bool {
		return matches[dm] && filter.Match(path, dm)
	}, nil
}

// writeReport renders the modules accepted by keep to cfg.Output.Path when
// set, otherwise to w.
func writeReport(cfg *config.Config, result ports.ScanResult, docs []*analysis.DocumentAnalysis, keep keepFunc, w io.Writer) error {
	report := output.BuildFilteredReport(result, docs, keep)

	var buf bytes.Buffer
	if err := output.Render(&buf, cfg.Output.Format, report); err != nil {
		return err
	}

	if cfg.Output.Path != "" {
		if err := util.WriteFileWithDirs(cfg.Output.Path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		slog.Info("report written", "path", cfg.Output.Path, "modules", len(report.DomModules))
		return nil
	}

	_, err := w.Write(buf.Bytes())
	return err
}
