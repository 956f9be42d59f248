// Package discover resolves command-line paths to the set of Python files a
// run will check. It walks and filters only; everything it finds is handed
// to the engine unopened.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// skipDirs are directory names never worth descending into.
var skipDirs = map[string]bool{
	".git":          true,
	".hg":           true,
	".venv":         true,
	"venv":          true,
	"__pycache__":   true,
	"node_modules":  true,
	".mypy_cache":   true,
	".pytest_cache": true,
	".tox":          true,
}

// Files returns every .py file under the given paths, sorted and deduplicated.
// Exclude patterns are matched against paths relative to root.
func Files(root string, paths []string, exclude []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if clean := filepath.Clean(path); !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", p, err)
		}
		if !info.IsDir() {
			if strings.HasSuffix(p, ".py") && !excluded(root, p, exclude) {
				add(p)
			}
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipDirs[d.Name()] || excluded(root, path, exclude) {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, ".py") && !excluded(root, path, exclude) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

// excluded reports whether path matches any exclude pattern.
//
// "prefix/**" matches the prefix directory itself and every path beneath it.
// All other patterns use filepath.Match semantics (single * does not cross /).
func excluded(root, path string, exclude []string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range exclude {
		if strings.HasSuffix(pattern, "/**") {
			prefix := strings.TrimSuffix(pattern, "/**")
			if rel == prefix || strings.HasPrefix(rel, prefix+"/") {
				return true
			}
			continue
		}
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		// Also match against the basename so "test_*.py" works anywhere.
		if matched, _ := filepath.Match(pattern, filepath.Base(rel)); matched {
			return true
		}
	}
	return false
}
