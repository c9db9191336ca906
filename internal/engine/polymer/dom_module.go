// Package polymer extracts <dom-module> component definitions from HTML documents.
package polymer

import (
	"domscan/internal/engine/html"
	"domscan/internal/engine/model"
)

// DomModuleKind identifies dom-module features in the analysis model.
const DomModuleKind = "dom-module"

// ScannedDomModule is the traversal-time record for one <dom-module>.
// Only Warnings may change after construction, and only before Resolve.
type ScannedDomModule struct {
	ID          *string
	Node        html.Node
	Comment     *string
	SourceRange model.SourceRange
	AstNode     html.Node
	Warnings    []model.Warning
	Slots       []model.Slot
	LocalIDs    []model.LocalID
}

var _ model.Resolvable = (*ScannedDomModule)(nil)

// NewScannedDomModule builds the record and reads the attached comment once.
func NewScannedDomModule(id *string, node html.Node, sourceRange model.SourceRange, ast html.Node, slots []model.Slot, localIDs []model.LocalID) *ScannedDomModule {
	var comment *string
	if text, ok := html.GetAttachedCommentText(node); ok {
		comment = &text
	}
	if slots == nil {
		slots = []model.Slot{}
	}
	if localIDs == nil {
		localIDs = []model.LocalID{}
	}
	return &ScannedDomModule{
		ID:          id,
		Node:        node,
		Comment:     comment,
		SourceRange: sourceRange,
		AstNode:     ast,
		Warnings:    []model.Warning{},
		Slots:       slots,
		LocalIDs:    localIDs,
	}
}

func (s *ScannedDomModule) AddWarning(w model.Warning) {
	s.Warnings = append(s.Warnings, w)
}

// Resolve snapshots the record into an immutable DomModule.
func (s *ScannedDomModule) Resolve() model.Feature {
	return newDomModule(s.Node, s.ID, s.Comment, s.SourceRange, s.AstNode, s.Warnings, s.Slots, s.LocalIDs)
}

// DomModule is the resolved dom-module feature.
type DomModule struct {
	kinds       model.Set
	identifiers model.Set
	node        html.Node
	id          *string
	comment     *string
	sourceRange model.SourceRange
	astNode     html.Node
	warnings    []model.Warning
	slots       []model.Slot
	localIDs    []model.LocalID
}

var _ model.Feature = (*DomModule)(nil)

func newDomModule(node html.Node, id *string, comment *string, sourceRange model.SourceRange, ast html.Node, warnings []model.Warning, slots []model.Slot, localIDs []model.LocalID) *DomModule {
	m := &DomModule{
		kinds:       model.NewSet(DomModuleKind),
		identifiers: model.NewSet(),
		node:        node,
		id:          cloneString(id),
		comment:     cloneString(comment),
		sourceRange: sourceRange,
		astNode:     ast,
		warnings:    append([]model.Warning{}, warnings...),
		slots:       append([]model.Slot{}, slots...),
		localIDs:    append([]model.LocalID{}, localIDs...),
	}
	if id != nil && *id != "" {
		m.identifiers = model.NewSet(*id)
	}
	return m
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func (m *DomModule) Kinds() model.Set {
	return model.NewSet(m.kinds.Values()...)
}

func (m *DomModule) Identifiers() model.Set {
	return model.NewSet(m.identifiers.Values()...)
}

func (m *DomModule) Range() model.SourceRange {
	return m.sourceRange
}

func (m *DomModule) FeatureWarnings() []model.Warning {
	return m.Warnings()
}

// ID returns the declared id; ok is false when the element has no id attribute.
func (m *DomModule) ID() (string, bool) {
	if m.id == nil {
		return "", false
	}
	return *m.id, true
}

func (m *DomModule) Comment() (string, bool) {
	if m.comment == nil {
		return "", false
	}
	return *m.comment, true
}

func (m *DomModule) Node() html.Node {
	return m.node
}

func (m *DomModule) AstNode() html.Node {
	return m.astNode
}

func (m *DomModule) Warnings() []model.Warning {
	return append([]model.Warning{}, m.warnings...)
}

func (m *DomModule) Slots() []model.Slot {
	return append([]model.Slot{}, m.slots...)
}

func (m *DomModule) LocalIDs() []model.LocalID {
	return append([]model.LocalID{}, m.localIDs...)
}
