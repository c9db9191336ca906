package app

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// DiscoverDocuments walks paths and returns every HTML document that is not
// excluded, sorted. A path naming a file is returned as-is when it qualifies.
func (a *App) DiscoverDocuments(paths []string) ([]string, error) {
	dirGlobs, err := compilePatterns(a.Config.Exclude.Dirs, "dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compilePatterns(a.Config.Exclude.Files, "file")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path == root {
					return nil
				}
				for _, g := range dirGlobs {
					if g.Match(base) {
						return filepath.SkipDir
					}
				}
				return nil
			}

			if !a.IsDocumentPath(path) {
				return nil
			}
			for _, g := range fileGlobs {
				if g.Match(base) {
					return nil
				}
			}

			add(path)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// IsDocumentPath reports whether path has one of the configured extensions.
func (a *App) IsDocumentPath(path string) bool {
	return a.extensions[strings.ToLower(filepath.Ext(path))]
}

func compilePatterns(patterns []string, kind string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude %s pattern %q: %w", kind, p, err)
		}
		compiled = append(compiled, g)
	}
	return compiled, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
