package analysis

import (
	"context"
	"domscan/internal/core/errors"
	"domscan/internal/engine/html"
	"domscan/internal/engine/model"
	"domscan/internal/engine/polymer"
	"domscan/internal/shared/observability"
	"fmt"
	"time"
)

// Warning codes attached by the analyzer before resolution.
const (
	WarningParseError = "parse-error"
	WarningMissingID  = "missing-id"
)

// DocumentAnalysis holds the resolved features of one document. Features
// borrow nodes from the parsed document, which stays open until Close.
// Warnings holds diagnostics about the document as a whole.
type DocumentAnalysis struct {
	Path     string
	Features []model.Feature
	Warnings []model.Warning

	doc *html.Document
}

// Close releases the syntax tree. Node views held by the features are
// invalid afterwards.
func (d *DocumentAnalysis) Close() {
	if d == nil {
		return
	}
	d.doc.Close()
}

type registeredScanner struct {
	name    string
	scanner html.Scanner
}

// Analyzer parses documents and runs every registered scanner over them.
type Analyzer struct {
	scanners []registeredScanner
	pool     *html.ParserPool
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{pool: html.NewParserPool(html.Language())}
}

// NewDefaultAnalyzer returns an analyzer with the dom-module scanner registered.
func NewDefaultAnalyzer() *Analyzer {
	a := NewAnalyzer()
	a.Register(polymer.DomModuleKind, polymer.NewDomModuleScanner())
	return a
}

func (a *Analyzer) Register(name string, s html.Scanner) {
	a.scanners = append(a.scanners, registeredScanner{name: name, scanner: s})
}

func (a *Analyzer) ScannerNames() []string {
	names := make([]string, 0, len(a.scanners))
	for _, s := range a.scanners {
		names = append(names, s.name)
	}
	return names
}

// AnalyzeDocument parses source and resolves every feature found in it.
// Features are ordered by scanner registration, then document order.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, path string, source []byte) (*DocumentAnalysis, error) {
	start := time.Now()
	doc, err := html.ParseWithPool(a.pool, path, source)
	observability.ParsingDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	result := &DocumentAnalysis{Path: path, doc: doc}
	for _, s := range a.scanners {
		scanStart := time.Now()
		records, err := s.scanner.Scan(ctx, doc, doc.Visit)
		observability.ScanDuration.WithLabelValues(s.name).Observe(time.Since(scanStart).Seconds())
		if err != nil {
			doc.Close()
			err = errors.AddContext(err, errors.CtxScanner, s.name)
			return nil, errors.AddContext(err, errors.CtxPath, path)
		}

		for _, record := range records {
			annotate(record)
			feature := record.Resolve()
			for _, kind := range feature.Kinds().Values() {
				observability.FeaturesResolvedTotal.WithLabelValues(kind).Inc()
			}
			result.Features = append(result.Features, feature)
		}
	}

	root := doc.Root()
	if root.HasError() {
		r, _ := doc.SourceRangeForNode(root)
		result.Warnings = append(result.Warnings, model.Warning{
			Code:        WarningParseError,
			Message:     "document contains markup that could not be parsed",
			Severity:    model.SeverityWarning,
			SourceRange: r,
		})
	}
	return result, nil
}

// annotate adds the warnings that are known before resolution.
func annotate(record model.Resolvable) {
	m, ok := record.(*polymer.ScannedDomModule)
	if !ok {
		return
	}
	if m.Node.HasError() || m.Node.InsideError() {
		m.AddWarning(model.Warning{
			Code:        WarningParseError,
			Message:     "dom-module contains markup that could not be parsed",
			Severity:    model.SeverityWarning,
			SourceRange: m.SourceRange,
		})
	}
	if m.ID == nil || *m.ID == "" {
		m.AddWarning(model.Warning{
			Code:        WarningMissingID,
			Message:     fmt.Sprintf("%s has no id and cannot be referenced", polymer.DomModuleKind),
			Severity:    model.SeverityWarning,
			SourceRange: m.SourceRange,
		})
	}
}
