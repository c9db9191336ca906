package analysis

import (
	"context"
	"errors"
	"testing"

	coreerrors "domscan/internal/core/errors"
	"domscan/internal/engine/html"
	"domscan/internal/engine/model"
	"domscan/internal/engine/polymer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoModules = `<!-- First element. -->
<dom-module id="first-el">
  <template><slot name="header"></slot><div id="body"></div></template>
</dom-module>
<dom-module>
  <template></template>
</dom-module>`

func TestAnalyzeDocument(t *testing.T) {
	a := NewDefaultAnalyzer()
	assert.Equal(t, []string{polymer.DomModuleKind}, a.ScannerNames())

	res, err := a.AnalyzeDocument(context.Background(), "elements.html", []byte(twoModules))
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, "elements.html", res.Path)
	require.Len(t, res.Features, 2)

	first := res.Features[0].(*polymer.DomModule)
	id, ok := first.ID()
	require.True(t, ok)
	assert.Equal(t, "first-el", id)
	assert.Empty(t, first.Warnings())
	assert.Len(t, first.Slots(), 1)
	assert.Len(t, first.LocalIDs(), 1)
	comment, ok := first.Comment()
	assert.True(t, ok)
	assert.Equal(t, "First element.", comment)

	second := res.Features[1].(*polymer.DomModule)
	warnings := second.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningMissingID, warnings[0].Code)
	assert.Equal(t, model.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, second.Range(), warnings[0].SourceRange)
}

type failingScanner struct{ err error }

func (s failingScanner) Scan(context.Context, *html.Document, html.VisitFunc) ([]model.Resolvable, error) {
	return nil, s.err
}

func TestAnalyzeDocumentScannerFailure(t *testing.T) {
	boom := errors.New("boom")
	a := NewAnalyzer()
	a.Register("broken", failingScanner{err: boom})

	res, err := a.AnalyzeDocument(context.Background(), "x.html", []byte(`<div></div>`))
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var de *coreerrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "broken", de.Context[coreerrors.CtxScanner])
	assert.Equal(t, "x.html", de.Context[coreerrors.CtxPath])
}

func TestAnalyzeDocumentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDefaultAnalyzer().AnalyzeDocument(ctx, "x.html", []byte(twoModules))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestModelIndexing(t *testing.T) {
	a := NewDefaultAnalyzer()
	m := NewModel()
	defer m.Close()

	docA, err := a.AnalyzeDocument(context.Background(), "a.html", []byte(`<dom-module id="shared"></dom-module><dom-module id="only-a"></dom-module>`))
	require.NoError(t, err)
	docB, err := a.AnalyzeDocument(context.Background(), "b.html", []byte(`<dom-module id="shared"></dom-module>`))
	require.NoError(t, err)

	m.Add(docB)
	m.Add(docA)

	assert.Equal(t, 3, m.FeatureCount())
	assert.Len(t, m.Features(polymer.DomModuleKind), 3)
	assert.Empty(t, m.Features("unknown-kind"))

	shared := m.Lookup(polymer.DomModuleKind, "shared")
	require.Len(t, shared, 2)
	assert.Equal(t, "a.html", shared[0].Range().File)
	assert.Equal(t, "b.html", shared[1].Range().File)

	docs := m.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "a.html", docs[0].Path)

	replacement, err := a.AnalyzeDocument(context.Background(), "a.html", []byte(`<div></div>`))
	require.NoError(t, err)
	m.Add(replacement)
	assert.Empty(t, m.Lookup(polymer.DomModuleKind, "only-a"))
	assert.Equal(t, 1, m.FeatureCount())

	assert.True(t, m.Remove("b.html"))
	assert.False(t, m.Remove("b.html"))
	_, ok := m.Document("b.html")
	assert.False(t, ok)
	assert.Zero(t, m.FeatureCount())
}

func warningCodes(ws []model.Warning) []string {
	codes := make([]string, 0, len(ws))
	for _, w := range ws {
		codes = append(codes, w.Code)
	}
	return codes
}

func TestAnalyzeDocumentParseErrorWarning(t *testing.T) {
	src := `<dom-module id="a"><template><div <<>></div></template></dom-module>`
	res, err := NewDefaultAnalyzer().AnalyzeDocument(context.Background(), "broken.html", []byte(src))
	require.NoError(t, err)
	defer res.Close()

	require.Len(t, res.Features, 1)
	m := res.Features[0].(*polymer.DomModule)
	id, ok := m.ID()
	require.True(t, ok)
	assert.Equal(t, "a", id)

	warnings := m.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, WarningParseError, warnings[0].Code)
	assert.Equal(t, model.SeverityWarning, warnings[0].Severity)
	assert.Equal(t, m.Range(), warnings[0].SourceRange)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, WarningParseError, res.Warnings[0].Code)
	assert.Equal(t, "broken.html", res.Warnings[0].SourceRange.File)
}

func TestAnalyzeDocumentRecoversSwallowedModules(t *testing.T) {
	tests := []struct {
		name string
		src  string
		id   string
	}{
		{"unterminated attribute", `<dom-module id="a"><template><div id="unterminated></div></template></dom-module>`, "a"},
		{"truncated document", `<dom-module id="u"><template><slot name="a"><div id="k">`, "u"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := NewDefaultAnalyzer().AnalyzeDocument(context.Background(), "broken.html", []byte(tt.src))
			require.NoError(t, err)
			defer res.Close()

			require.Len(t, res.Features, 1)
			m := res.Features[0].(*polymer.DomModule)
			id, ok := m.ID()
			require.True(t, ok)
			assert.Equal(t, tt.id, id)
			assert.True(t, m.Identifiers().Has(tt.id))
			assert.Equal(t, 0, m.Range().Start.Line)
			assert.Contains(t, warningCodes(m.Warnings()), WarningParseError)
			assert.Contains(t, warningCodes(res.Warnings), WarningParseError)
		})
	}
}

func TestAnalyzeDocumentWellFormedHasNoDocumentWarnings(t *testing.T) {
	res, err := NewDefaultAnalyzer().AnalyzeDocument(context.Background(), "ok.html", []byte(twoModules))
	require.NoError(t, err)
	defer res.Close()
	assert.Empty(t, res.Warnings)
}
