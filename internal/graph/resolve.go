package graph

import (
	"path"
	"sort"
	"strings"
)

// Resolver rewrites raw #include specifiers into the paths of known input
// files. It is built once per run from the set of loaded files.
type Resolver struct {
	fileSet map[string]bool
	byBase  map[string][]string
	files   []string
}

// NewResolver indexes knownFiles for include resolution.
func NewResolver(knownFiles []string) *Resolver {
	r := &Resolver{
		fileSet: make(map[string]bool, len(knownFiles)),
		byBase:  make(map[string][]string),
	}
	for _, f := range knownFiles {
		f = path.Clean(f)
		if r.fileSet[f] {
			continue
		}
		r.fileSet[f] = true
		base := path.Base(f)
		r.byBase[base] = append(r.byBase[base], f)
		r.files = append(r.files, f)
	}
	sort.Strings(r.files)
	return r
}

// Resolve maps an include specifier seen in fromFile to a known file. It
// tries, in order: the path relative to fromFile's directory, the specifier
// as a path, a unique file ending in "/" + specifier, and a unique basename match.
func (r *Resolver) Resolve(specifier, fromFile string) (string, bool) {
	specifier = strings.TrimSpace(specifier)
	if specifier == "" {
		return "", false
	}

	rel := path.Join(path.Dir(fromFile), specifier)
	if r.fileSet[rel] {
		return rel, true
	}
	if clean := path.Clean(specifier); r.fileSet[clean] {
		return clean, true
	}

	if f, ok := r.uniqueSuffix("/" + specifier); ok {
		return f, true
	}
	if files := r.byBase[path.Base(specifier)]; len(files) == 1 {
		return files[0], true
	}
	return "", false
}

func (r *Resolver) uniqueSuffix(suffix string) (string, bool) {
	var match string
	for _, f := range r.files {
		if !strings.HasSuffix(f, suffix) {
			continue
		}
		if match != "" {
			return "", false
		}
		match = f
	}
	return match, match != ""
}

// ResolveEdge resolves the target of an INCLUDES edge. Other edges pass
// through unchanged.
func (r *Resolver) ResolveEdge(edge Edge) (Edge, bool) {
	if edge.Kind != EdgeKindIncludes {
		return edge, true
	}
	target, ok := r.Resolve(edge.TargetID, edge.SourceID)
	if !ok || target == edge.SourceID {
		return edge, false
	}
	edge.TargetID = target
	return edge, true
}

// ResolveAll resolves every edge and drops includes that point outside the
// known files (system headers, third-party libraries).
func (r *Resolver) ResolveAll(edges []Edge) (resolved []Edge, unresolved []string) {
	for _, e := range edges {
		out, ok := r.ResolveEdge(e)
		if !ok {
			unresolved = append(unresolved, e.TargetID)
			continue
		}
		resolved = append(resolved, out)
	}
	return resolved, unresolved
}
