// Package output renders analysis results for people and tools.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"domscan/internal/core/errors"
	"domscan/internal/core/ports"
	"domscan/internal/engine/analysis"
	"domscan/internal/engine/model"
	"domscan/internal/engine/polymer"
)

// Report is the serialized form of a scan.
type Report struct {
	RunID      string          `json:"run_id"`
	Documents  int             `json:"documents"`
	Features   int             `json:"features"`
	Failures   []FailureView   `json:"failures,omitempty"`
	Warnings   []WarningView   `json:"warnings,omitempty"`
	DomModules []DomModuleView `json:"dom_modules"`
}

type FailureView struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type DomModuleView struct {
	ID       *string       `json:"id"`
	Comment  *string       `json:"comment,omitempty"`
	Range    string        `json:"range"`
	Slots    []SlotView    `json:"slots"`
	LocalIDs []LocalIDView `json:"local_ids"`
	Warnings []WarningView `json:"warnings,omitempty"`
}

type SlotView struct {
	Name  string `json:"name"`
	Range string `json:"range"`
}

type LocalIDView struct {
	ID    string `json:"id"`
	Range string `json:"range"`
}

type WarningView struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Range    string `json:"range"`
}

// BuildReport collects every dom-module in docs, in path then document order.
func BuildReport(result ports.ScanResult, docs []*analysis.DocumentAnalysis) Report {
	return BuildFilteredReport(result, docs, nil)
}

// BuildFilteredReport is BuildReport restricted to modules accepted by keep.
// A nil keep accepts everything.
func BuildFilteredReport(result ports.ScanResult, docs []*analysis.DocumentAnalysis, keep func(path string, m *polymer.DomModule) bool) Report {
	report := Report{
		RunID:      result.RunID,
		Documents:  result.Documents,
		Features:   result.Features,
		DomModules: []DomModuleView{},
	}
	for _, f := range result.Failures {
		report.Failures = append(report.Failures, FailureView{Path: f.Path, Error: f.Error})
	}
	for _, doc := range docs {
		for _, w := range doc.Warnings {
			report.Warnings = append(report.Warnings, warningView(w))
		}
		for _, feature := range doc.Features {
			m, ok := feature.(*polymer.DomModule)
			if !ok || (keep != nil && !keep(doc.Path, m)) {
				continue
			}
			report.DomModules = append(report.DomModules, domModuleView(m))
		}
	}
	return report
}

func domModuleView(m *polymer.DomModule) DomModuleView {
	view := DomModuleView{
		Range:    m.Range().String(),
		Slots:    []SlotView{},
		LocalIDs: []LocalIDView{},
	}
	if id, ok := m.ID(); ok {
		view.ID = &id
	}
	if comment, ok := m.Comment(); ok {
		view.Comment = &comment
	}
	for _, s := range m.Slots() {
		view.Slots = append(view.Slots, SlotView{Name: s.Name, Range: s.SourceRange.String()})
	}
	for _, l := range m.LocalIDs() {
		view.LocalIDs = append(view.LocalIDs, LocalIDView{ID: l.ID, Range: l.SourceRange.String()})
	}
	for _, w := range m.Warnings() {
		view.Warnings = append(view.Warnings, warningView(w))
	}
	return view
}

func warningView(w model.Warning) WarningView {
	return WarningView{Code: w.Code, Severity: string(w.Severity), Message: w.Message, Range: w.SourceRange.String()}
}

// RenderJSON writes the report as indented JSON.
func RenderJSON(w io.Writer, report Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderText writes one block per dom-module followed by a summary line.
func RenderText(w io.Writer, report Report) error {
	var b strings.Builder
	for _, m := range report.DomModules {
		id := "<no id>"
		if m.ID != nil {
			id = *m.ID
		}
		fmt.Fprintf(&b, "dom-module %s  %s\n", id, m.Range)
		if m.Comment != nil {
			for _, line := range strings.Split(*m.Comment, "\n") {
				fmt.Fprintf(&b, "  # %s\n", line)
			}
		}
		for _, s := range m.Slots {
			name := s.Name
			if name == "" {
				name = "<default>"
			}
			fmt.Fprintf(&b, "  slot %s  %s\n", name, s.Range)
		}
		for _, l := range m.LocalIDs {
			fmt.Fprintf(&b, "  id %s  %s\n", l.ID, l.Range)
		}
		for _, warn := range m.Warnings {
			fmt.Fprintf(&b, "  %s %s: %s\n", warn.Severity, warn.Code, warn.Message)
		}
	}
	for _, warn := range report.Warnings {
		fmt.Fprintf(&b, "%s %s %s: %s\n", warn.Range, warn.Severity, warn.Code, warn.Message)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(&b, "failed %s: %s\n", f.Path, f.Error)
	}
	fmt.Fprintf(&b, "%d documents, %d features, %d failures (run %s)\n", report.Documents, report.Features, len(report.Failures), report.RunID)

	_, err := io.WriteString(w, b.String())
	return err
}

// Render dispatches on format ("text" or "json").
func Render(w io.Writer, format string, report Report) error {
	switch format {
	case "json":
		return RenderJSON(w, report)
	case "text", "":
		return RenderText(w, report)
	default:
		return errors.New(errors.CodeNotSupported, fmt.Sprintf("unsupported output format %q", format))
	}
}
