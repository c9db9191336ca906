package polymer

import (
	"context"
	"domscan/internal/core/errors"
	"domscan/internal/engine/html"
	"domscan/internal/engine/model"
	"sort"
)

var (
	isDomModule = html.HasTagName("dom-module")
	isTemplate  = html.HasTagName("template")
	isSlot      = html.HasTagName("slot")
	hasID       = html.HasAttr("id")
)

// DomModuleScanner finds <dom-module> definitions in a document.
type DomModuleScanner struct{}

var _ html.Scanner = DomModuleScanner{}

func NewDomModuleScanner() DomModuleScanner {
	return DomModuleScanner{}
}

// Scan implements html.Scanner.
func (s DomModuleScanner) Scan(ctx context.Context, doc *html.Document, visit html.VisitFunc) ([]model.Resolvable, error) {
	modules, err := s.ScanDomModules(ctx, doc, visit)
	if err != nil {
		return nil, err
	}
	out := make([]model.Resolvable, 0, len(modules))
	for _, m := range modules {
		out = append(out, m)
	}
	return out, nil
}

// ScanDomModules returns one record per <dom-module>, in document order. An
// opening tag that error recovery left outside any element still yields a
// record carrying only its id and comment. It fails only when visit fails.
func (s DomModuleScanner) ScanDomModules(ctx context.Context, doc *html.Document, visit html.VisitFunc) ([]*ScannedDomModule, error) {
	domModules := []*ScannedDomModule{}

	err := visit(ctx, func(node html.Node) {
		if !isDomModule(node) {
			return
		}

		slots := []model.Slot{}
		localIDs := []model.LocalID{}
		if template, ok := html.Query(node, isTemplate); ok {
			content := doc.TemplateContent(template)
			for _, el := range html.QueryAll(content, isSlot) {
				name, _ := el.Attribute("name")
				slots = append(slots, model.NewSlot(name, mustRange(doc, el)))
			}
			for _, el := range html.QueryAll(content, hasID) {
				id, _ := el.Attribute("id")
				localIDs = append(localIDs, model.NewLocalID(id, mustRange(doc, el)))
			}
		}

		var id *string
		if value, ok := node.Attribute("id"); ok {
			id = &value
		}

		domModules = append(domModules, NewScannedDomModule(id, node, mustRange(doc, node), node, slots, localIDs))
	})
	if err != nil {
		return nil, err
	}

	recovered := doc.RecoveredTags("dom-module")
	if len(recovered) == 0 {
		return domModules, nil
	}
	for _, tag := range recovered {
		var id *string
		if value, ok := tag.Attribute("id"); ok {
			id = &value
		}
		domModules = append(domModules, NewScannedDomModule(id, tag, mustRange(doc, tag), tag, nil, nil))
	}
	sort.SliceStable(domModules, func(i, j int) bool {
		a, b := domModules[i].SourceRange.Start, domModules[j].SourceRange.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return domModules, nil
}

// mustRange panics when the document cannot place a node it handed out
// itself; that only happens on a programming error.
func mustRange(doc *html.Document, n html.Node) model.SourceRange {
	r, ok := doc.SourceRangeForNode(n)
	if !ok {
		panic(errors.AddContext(errors.New(errors.CodeInternal, "no source range for node"), errors.CtxPath, doc.Path()))
	}
	return r
}
