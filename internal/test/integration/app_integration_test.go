package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"domscan/internal/core/app"
	"domscan/internal/core/config"
	"domscan/internal/core/ports"
	"domscan/internal/data/store"
	"domscan/internal/engine/polymer"
	"domscan/internal/output"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cardHTML = `<link rel="import" href="../polymer/polymer.html">
<!--
  A card.

  Usage: <x-card></x-card>
-->
<dom-module id="x-card">
  <template>
    <style>:host { display: block; }</style>
    <header id="head"><slot name="title"></slot></header>
    <slot></slot>
  </template>
  <script>Polymer({is: 'x-card'});</script>
</dom-module>
`

const listHTML = `<!-- @license MIT -->
<dom-module id="x-list">
  <template><ul id="items"><slot></slot></ul></template>
</dom-module>
`

func createTestFiles(t *testing.T, root string) {
	t.Helper()
	files := map[string]string{
		"elements/x-card.html":          cardHTML,
		"elements/x-list.html":          listHTML,
		"bower_components/dep/dep.html": `<dom-module id="dep-el"></dom-module>`,
		"elements/x-card.min.html":      `<dom-module id="minified"></dom-module>`,
		"README.md":                     "# not scanned",
	}
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func writeConfig(t *testing.T, root string) string {
	t.Helper()
	content := fmt.Sprintf(`version = 1
watch_paths = [%q]

[exclude]
files = ["*.min.html"]

[watch]
debounce = "50ms"

[scan]
workers = 2
rescans_per_second = 50

[store]
enabled = true
path = %q

[output]
format = "json"
`, root, filepath.Join(root, ".domscan", "features.db"))
	path := filepath.Join(root, "domscan.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScanPersistAndRender(t *testing.T) {
	root := t.TempDir()
	createTestFiles(t, root)

	cfg, err := config.Load(writeConfig(t, root))
	require.NoError(t, err)

	a, err := app.New(cfg)
	require.NoError(t, err)

	result, err := a.RunScan(context.Background(), ports.ScanRequest{Paths: cfg.WatchPaths})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 2, result.Features)
	assert.Empty(t, result.Failures)

	cards := a.Model.Lookup(polymer.DomModuleKind, "x-card")
	require.Len(t, cards, 1)
	card := cards[0].(*polymer.DomModule)
	comment, ok := card.Comment()
	require.True(t, ok)
	assert.Equal(t, "A card.\n\nUsage: <x-card></x-card>", comment)
	require.Len(t, card.Slots(), 2)
	assert.Equal(t, "title", card.Slots()[0].Name)
	require.Len(t, card.LocalIDs(), 1)
	assert.Equal(t, "head", card.LocalIDs()[0].ID)

	lists := a.Model.Lookup(polymer.DomModuleKind, "x-list")
	require.Len(t, lists, 1)
	_, ok = lists[0].(*polymer.DomModule).Comment()
	assert.False(t, ok, "license comments are not attached")

	var buf bytes.Buffer
	report := output.BuildReport(result, a.Model.Documents())
	require.NoError(t, output.Render(&buf, cfg.Output.Format, report))
	var decoded output.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Len(t, decoded.DomModules, 2)
	assert.Equal(t, result.RunID, decoded.RunID)

	require.NoError(t, a.Close())

	s, err := store.Open(cfg.Store.Path)
	require.NoError(t, err)
	defer s.Close()

	rows, err := s.LookupModule("x-card")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, result.RunID, rows[0].RunID)
	assert.Len(t, rows[0].Slots, 2)

	run, err := s.LoadRun(result.RunID)
	require.NoError(t, err)
	assert.Equal(t, 2, run.Documents)
}

func TestWatchPicksUpNewDocuments(t *testing.T) {
	root := t.TempDir()
	createTestFiles(t, root)

	cfg, err := config.Load(writeConfig(t, root))
	require.NoError(t, err)
	cfg.Store.Enabled = false

	a, err := app.New(cfg)
	require.NoError(t, err)
	defer a.Close()

	_, err = a.RunScan(context.Background(), ports.ScanRequest{Paths: cfg.WatchPaths})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var (
		mu    sync.Mutex
		scans []ports.ScanResult
		wg    sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = a.Watch(ctx, func(res ports.ScanResult) {
			mu.Lock()
			scans = append(scans, res)
			mu.Unlock()
		})
	}()
	defer func() {
		cancel()
		wg.Wait()
	}()

	time.Sleep(200 * time.Millisecond)
	newFile := filepath.Join(root, "elements", "x-new.html")
	require.NoError(t, os.WriteFile(newFile, []byte(`<dom-module id="x-new"></dom-module>`), 0o644))

	require.Eventually(t, func() bool {
		return len(a.Model.Lookup(polymer.DomModuleKind, "x-new")) == 1
	}, 5*time.Second, 25*time.Millisecond)

	require.NoError(t, os.Remove(newFile))
	require.Eventually(t, func() bool {
		return len(a.Model.Lookup(polymer.DomModuleKind, "x-new")) == 0
	}, 5*time.Second, 25*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.NotEmpty(t, scans)
}
