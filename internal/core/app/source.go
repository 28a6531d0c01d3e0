package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pyannotate/internal/core/errors"
	"pyannotate/internal/engine/diagnostic"
)

// StaticSource serves diagnostics recorded earlier, such as a saved
// `pylint --output-format=json` report.
//
// Report paths are matched to source files by absolute path. Relative report
// paths are resolved against the working directory at construction, which is
// where pylint usually ran. When that misses, Prepare may map a relative
// report path to the one scanned file it is a suffix of.
type StaticSource struct {
	// byPath groups entries by the absolute form of their report path.
	byPath map[string][]map[string]any
	// relative keeps the cleaned slash form of each relative report path.
	relative map[string]string

	mu      sync.RWMutex
	aliases map[string]string
}

// NewStaticSource validates entries and groups them by report path. Every
// entry must carry the fields pylint reports, path included.
func NewStaticSource(entries []map[string]any) (*StaticSource, error) {
	records, err := diagnostic.Parse(entries)
	if err != nil {
		return nil, err
	}
	base, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "resolve working directory")
	}

	s := &StaticSource{
		byPath:   make(map[string][]map[string]any),
		relative: make(map[string]string),
	}
	for i, rec := range records {
		key := filepath.Clean(rec.Path)
		if !filepath.IsAbs(key) {
			rel := filepath.ToSlash(key)
			key = filepath.Join(base, key)
			s.relative[key] = rel
		}
		s.byPath[key] = append(s.byPath[key], entries[i])
	}
	return s, nil
}

// LoadStaticSource reads a JSON report from path.
func LoadStaticSource(path string) (*StaticSource, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.AddContext(errors.Wrap(err, errors.CodeNotFound, "diagnostics file not found"), errors.CtxPath, path)
		}
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "open diagnostics"), errors.CtxPath, path)
	}
	defer f.Close()

	entries, err := diagnostic.DecodeEntries(f)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	s, err := NewStaticSource(entries)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return s, nil
}

// Prepare replaces the suffix aliases for the files of a run. A relative
// report path that names no scanned file is bound to the scanned file it is a
// suffix of, when exactly one such file exists.
func (s *StaticSource) Prepare(files []string) {
	scanned := make(map[string]bool, len(files))
	for _, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			scanned[abs] = true
		}
	}

	aliases := make(map[string]string)
	for key, rel := range s.relative {
		if scanned[key] {
			continue
		}
		var match string
		matches := 0
		for f := range scanned {
			if strings.HasSuffix(filepath.ToSlash(f), "/"+rel) {
				match = f
				matches++
			}
		}
		if matches == 1 {
			if _, taken := s.byPath[match]; !taken {
				aliases[match] = key
			}
		}
	}

	s.mu.Lock()
	s.aliases = aliases
	s.mu.Unlock()
}

// Diagnostics returns the entries reported for path. The rule is left to the
// annotation step to filter.
func (s *StaticSource) Diagnostics(_ context.Context, _ string, path string) ([]map[string]any, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "resolve source path"), errors.CtxPath, path)
	}
	if entries, ok := s.byPath[abs]; ok {
		return entries, nil
	}

	s.mu.RLock()
	key, ok := s.aliases[abs]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return s.byPath[key], nil
}
