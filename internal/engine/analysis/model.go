package analysis

import (
	"domscan/internal/engine/model"
	"domscan/internal/shared/observability"
	"sort"
	"sync"
)

// Model indexes resolved features across documents by kind and identifier.
type Model struct {
	mu        sync.RWMutex
	documents map[string]*DocumentAnalysis
}

func NewModel() *Model {
	return &Model{documents: make(map[string]*DocumentAnalysis)}
}

// Add replaces everything previously recorded for the document's path and
// releases the replaced analysis.
func (m *Model) Add(doc *DocumentAnalysis) {
	if doc == nil {
		return
	}
	m.mu.Lock()
	if previous, ok := m.documents[doc.Path]; ok && previous != doc {
		previous.Close()
	}
	m.documents[doc.Path] = doc
	m.mu.Unlock()
	observability.ModelFeatures.Set(float64(m.FeatureCount()))
}

func (m *Model) Remove(path string) bool {
	m.mu.Lock()
	previous, ok := m.documents[path]
	if ok {
		previous.Close()
	}
	delete(m.documents, path)
	m.mu.Unlock()
	observability.ModelFeatures.Set(float64(m.FeatureCount()))
	return ok
}

func (m *Model) Document(path string) (*DocumentAnalysis, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[path]
	return doc, ok
}

// Documents returns every analyzed document sorted by path.
func (m *Model) Documents() []*DocumentAnalysis {
	m.mu.RLock()
	defer m.mu.RUnlock()
	paths := make([]string, 0, len(m.documents))
	for p := range m.documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*DocumentAnalysis, 0, len(paths))
	for _, p := range paths {
		out = append(out, m.documents[p])
	}
	return out
}

// Features returns all features of the given kind, ordered by document path
// and then document order.
func (m *Model) Features(kind string) []model.Feature {
	var out []model.Feature
	for _, doc := range m.Documents() {
		for _, f := range doc.Features {
			if f.Kinds().Has(kind) {
				out = append(out, f)
			}
		}
	}
	return out
}

// Lookup returns the features of kind that declare identifier. More than one
// result means the identifier is declared in several places.
func (m *Model) Lookup(kind, identifier string) []model.Feature {
	var out []model.Feature
	for _, f := range m.Features(kind) {
		if f.Identifiers().Has(identifier) {
			out = append(out, f)
		}
	}
	return out
}

func (m *Model) FeatureCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, doc := range m.documents {
		total += len(doc.Features)
	}
	return total
}

// Close releases every document held by the model.
func (m *Model) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for path, doc := range m.documents {
		doc.Close()
		delete(m.documents, path)
	}
	observability.ModelFeatures.Set(0)
}
