package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

// DefaultExtensions are the file extensions treated as C++ when walking a
// directory.
var DefaultExtensions = []string{".cpp", ".cc", ".cxx", ".c", ".h", ".hpp", ".hh", ".hxx"}

var skipDirs = map[string]struct{}{
	".git":                {},
	".hg":                 {},
	".svn":                {},
	"node_modules":        {},
	"build":               {},
	"cmake-build-debug":   {},
	"cmake-build-release": {},
}

// Options controls directory expansion.
type Options struct {
	// Extensions overrides DefaultExtensions when non-empty.
	Extensions []string

	// Exclude holds glob patterns matched against slash-separated paths
	// relative to the walked directory.
	Exclude []string

	// RespectGitignore skips files matched by the directory's .gitignore.
	RespectGitignore bool
}

// Expand turns file and directory arguments into a list of source paths.
// Files are taken as given. Directories are walked for C++ sources, with
// each directory's results sorted. Duplicates keep their first position.
func Expand(paths []string, opts Options) ([]string, error) {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extSet := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		extSet[strings.ToLower(e)] = struct{}{}
	}

	excludes, err := compileGlobs(opts.Exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("source: stat %s: %w", p, err)
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		found, err := walkDir(p, extSet, excludes, opts.RespectGitignore)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("source: %s: %w", p, ErrNotSource)
		}
		for _, f := range found {
			add(f)
		}
	}
	return out, nil
}

func walkDir(root string, exts map[string]struct{}, excludes []glob.Glob, respectGitignore bool) ([]string, error) {
	var gi *ignore.GitIgnore
	if respectGitignore {
		gi = loadGitignore(root)
	}

	var results []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}
		if _, ok := exts[strings.ToLower(filepath.Ext(name))]; !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		for _, g := range excludes {
			if g.Match(rel) {
				return nil
			}
		}

		results = append(results, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("source: walk %s: %w", root, err)
	}

	sort.Strings(results)
	return results, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	matchers := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("source: exclude pattern %q: %w", pattern, err)
		}
		matchers = append(matchers, g)
	}
	return matchers, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
