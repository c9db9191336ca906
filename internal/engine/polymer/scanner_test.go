package polymer

import (
	"context"
	"errors"
	"testing"

	"domscan/internal/engine/html"
	"domscan/internal/engine/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanString(t *testing.T, src string) []*ScannedDomModule {
	t.Helper()
	doc, err := html.Parse("test.html", []byte(src))
	require.NoError(t, err)
	t.Cleanup(doc.Close)

	modules, err := NewDomModuleScanner().ScanDomModules(context.Background(), doc, doc.Visit)
	require.NoError(t, err)
	return modules
}

func TestScanNoDomModules(t *testing.T) {
	modules := scanString(t, `<html><body><div id="a"><slot></slot></div></body></html>`)
	assert.NotNil(t, modules)
	assert.Empty(t, modules)
}

func TestScanWithoutTemplate(t *testing.T) {
	modules := scanString(t, `<dom-module id="no-template"><script>Polymer({});</script></dom-module>`)
	require.Len(t, modules, 1)

	m := modules[0]
	require.NotNil(t, m.ID)
	assert.Equal(t, "no-template", *m.ID)
	assert.Empty(t, m.Slots)
	assert.Empty(t, m.LocalIDs)
	assert.NotNil(t, m.Slots)
	assert.NotNil(t, m.LocalIDs)
	assert.Empty(t, m.Warnings)
}

func TestScanSlotsKeepDocumentOrderAndDuplicates(t *testing.T) {
	modules := scanString(t, `<dom-module id="x-slots">
  <template>
    <slot name="a"></slot>
    <div><slot></slot></div>
    <slot name="a"></slot>
  </template>
</dom-module>`)
	require.Len(t, modules, 1)

	slots := modules[0].Slots
	require.Len(t, slots, 3)
	assert.Equal(t, "a", slots[0].Name)
	assert.Equal(t, "", slots[1].Name)
	assert.Equal(t, "a", slots[2].Name)

	assert.Equal(t, 2, slots[0].SourceRange.Start.Line)
	assert.Equal(t, 3, slots[1].SourceRange.Start.Line)
	assert.Equal(t, 4, slots[2].SourceRange.Start.Line)
}

func TestScanLocalIDsAtAnyDepth(t *testing.T) {
	modules := scanString(t, `<dom-module id="x-ids">
  <template>
    <div class="wrapper">
      <section><ul><li><span id="x"></span></li></ul></section>
    </div>
    <p class="no-id"></p>
  </template>
</dom-module>`)
	require.Len(t, modules, 1)

	ids := modules[0].LocalIDs
	require.Len(t, ids, 1)
	assert.Equal(t, "x", ids[0].ID)
	assert.Equal(t, 3, ids[0].SourceRange.Start.Line)
}

func TestScanOnlyFirstTemplateCounts(t *testing.T) {
	modules := scanString(t, `<dom-module id="two-templates">
  <template><slot name="first"></slot></template>
  <template><slot name="second"></slot><b id="ignored"></b></template>
</dom-module>`)
	require.Len(t, modules, 1)

	require.Len(t, modules[0].Slots, 1)
	assert.Equal(t, "first", modules[0].Slots[0].Name)
	assert.Empty(t, modules[0].LocalIDs)
}

func TestScanMissingID(t *testing.T) {
	modules := scanString(t, `<dom-module><template><i id="y"></i></template></dom-module>`)
	require.Len(t, modules, 1)

	assert.Nil(t, modules[0].ID)
	require.Len(t, modules[0].LocalIDs, 1)

	resolved := modules[0].Resolve().(*DomModule)
	_, ok := resolved.ID()
	assert.False(t, ok)
	assert.Zero(t, resolved.Identifiers().Len())
}

func TestScanPreservesDocumentOrder(t *testing.T) {
	modules := scanString(t, `<dom-module id="d1"></dom-module>
<div>
  <section>
    <dom-module id="d2"></dom-module>
  </section>
</div>
<dom-module id="d3"></dom-module>`)
	require.Len(t, modules, 3)

	got := make([]string, 0, len(modules))
	for _, m := range modules {
		require.NotNil(t, m.ID)
		got = append(got, *m.ID)
	}
	assert.Equal(t, []string{"d1", "d2", "d3"}, got)

	for i := 0; i < len(modules); i++ {
		for j := i + 1; j < len(modules); j++ {
			assert.False(t, modules[i].Node.Same(modules[j].Node))
		}
	}
}

func TestScanAttachesLeadingComment(t *testing.T) {
	modules := scanString(t, `<!-- The fancy button. -->
<dom-module id="fancy-button"></dom-module>
<dom-module id="plain"></dom-module>`)
	require.Len(t, modules, 2)

	require.NotNil(t, modules[0].Comment)
	assert.Equal(t, "The fancy button.", *modules[0].Comment)
	assert.Nil(t, modules[1].Comment)

	resolved := modules[0].Resolve().(*DomModule)
	comment, ok := resolved.Comment()
	assert.True(t, ok)
	assert.Equal(t, "The fancy button.", comment)
}

func TestScanRecordsSourceRangeAndNode(t *testing.T) {
	modules := scanString(t, "\n  <dom-module id=\"r\"></dom-module>")
	require.Len(t, modules, 1)

	m := modules[0]
	assert.Equal(t, "test.html", m.SourceRange.File)
	assert.Equal(t, model.Position{Line: 1, Column: 2}, m.SourceRange.Start)
	assert.True(t, m.Node.Same(m.AstNode))
	assert.Equal(t, "dom-module", m.Node.TagName())
}

func TestScanPropagatesTraversalFailure(t *testing.T) {
	doc, err := html.Parse("test.html", []byte(`<dom-module id="a"></dom-module>`))
	require.NoError(t, err)
	defer doc.Close()

	boom := errors.New("traversal failed")
	failing := func(ctx context.Context, visitor html.Visitor) error {
		_ = doc.Visit(ctx, visitor)
		return boom
	}

	modules, err := NewDomModuleScanner().ScanDomModules(context.Background(), doc, failing)
	assert.Equal(t, boom, err)
	assert.Nil(t, modules)
}

func TestScanCancelledContext(t *testing.T) {
	doc, err := html.Parse("test.html", []byte(`<dom-module id="a"></dom-module>`))
	require.NoError(t, err)
	defer doc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = NewDomModuleScanner().Scan(ctx, doc, doc.Visit)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanImplementsScanner(t *testing.T) {
	doc, err := html.Parse("test.html", []byte(`<dom-module id="a"></dom-module><dom-module id="b"></dom-module>`))
	require.NoError(t, err)
	defer doc.Close()

	var scanner html.Scanner = NewDomModuleScanner()
	records, err := scanner.Scan(context.Background(), doc, doc.Visit)
	require.NoError(t, err)
	require.Len(t, records, 2)

	feature := records[1].Resolve()
	assert.True(t, feature.Identifiers().Has("b"))
}

func TestScanRecoversModuleSwallowedByParseError(t *testing.T) {
	modules := scanString(t, `<dom-module id="ok"></dom-module>
<dom-module id="broken"><template><slot></slot><div id="open></div></template></dom-module>`)
	require.Len(t, modules, 2)

	require.NotNil(t, modules[0].ID)
	assert.Equal(t, "ok", *modules[0].ID)

	broken := modules[1]
	require.NotNil(t, broken.ID)
	assert.Equal(t, "broken", *broken.ID)
	assert.Equal(t, 1, broken.SourceRange.Start.Line)
	assert.NotNil(t, broken.Slots)
	assert.NotNil(t, broken.LocalIDs)
	assert.True(t, broken.Node.InsideError() || broken.Node.HasError())
}
