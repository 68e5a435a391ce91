// Package source acquires .env byte streams for the parser. The parser
// itself never resolves paths; this layer owns file handling and surfaces
// a missing file as ErrNotFound, distinct from any parse diagnostic.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/IEvangelist/dotenv-aspire/internal/dotenv"
)

// ErrNotFound reports a missing env file.
var ErrNotFound = errors.New("env file not found")

// Open opens an env file for reading. The caller owns the returned stream.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open env file: %w", err)
	}
	return f, nil
}

// Load opens, parses, and closes an env file on every exit path.
func Load(path string, opts dotenv.Options) (*dotenv.Map, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := dotenv.Parse(f, opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Glob resolves doublestar patterns (e.g. "**/*.env") against the working
// directory into a sorted, de-duplicated list of file paths. A pattern
// with no metacharacters passes through as-is so explicit paths still
// report ErrNotFound at open time rather than vanishing silently.
func Glob(patterns ...string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		if !hasMeta(pattern) {
			add(pattern)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS("."), filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			m = filepath.FromSlash(m)
			info, err := os.Stat(m)
			if err != nil || info.IsDir() {
				continue
			}
			add(m)
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}
