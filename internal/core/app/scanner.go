package app

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pyannotate/internal/core/errors"
)

// ScanPaths expands paths into the Python files to annotate. Directories are
// walked for *.py files, skipping excluded directories and files. A file
// named directly is always kept.
func (a *App) ScanPaths(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "path not found"), errors.CtxPath, root)
			}
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "stat path"), errors.CtxPath, root)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && a.dirExcluded(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(path, ".py") {
				return nil
			}
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				rel = path
			}
			if a.fileExcluded(filepath.ToSlash(rel)) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk directory"), errors.CtxPath, root)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (a *App) dirExcluded(name string) bool {
	for _, g := range a.excludeDirs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// fileExcluded matches rel, a slash path relative to the walked root, and its
// base name.
func (a *App) fileExcluded(rel string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]
	for _, g := range a.excludeFiles {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}
