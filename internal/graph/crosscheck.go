package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// GrammarCheck compares the definitions the heuristic builder resolved with
// the ones the C++ grammar finds. Entries are "file:name".
type GrammarCheck struct {
	ParsedFiles        int      `json:"parsed_files"`
	ConfirmedClasses   int      `json:"confirmed_classes"`
	ConfirmedFunctions int      `json:"confirmed_functions"`
	MissedClasses      []string `json:"missed_classes,omitempty"`   // grammar only
	InventedClasses    []string `json:"invented_classes,omitempty"` // heuristic only
	MissedFunctions    []string `json:"missed_functions,omitempty"`
	InventedFunctions  []string `json:"invented_functions,omitempty"`
	Includes           []Edge   `json:"resolved_includes,omitempty"`
	UnresolvedIncludes []string `json:"unresolved_includes,omitempty"`
}

// Agrees reports whether both sides found the same definitions.
func (g *GrammarCheck) Agrees() bool {
	return len(g.MissedClasses) == 0 && len(g.InventedClasses) == 0 &&
		len(g.MissedFunctions) == 0 && len(g.InventedFunctions) == 0
}

// crossCheckLimit bounds concurrent grammar parses.
const crossCheckLimit = 4

// CrossCheck parses every source with p and diffs the result against the
// symbol tables of s. Entry-point functions named main are ignored on both
// sides because the resolver never records them.
func CrossCheck(ctx context.Context, p Parser, s *cpptree.Session, sources []cpptree.SourceFile) (*GrammarCheck, error) {
	results := make([]*ParseResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(crossCheckLimit)
	for i, src := range sources {
		g.Go(func() error {
			res, err := p.Parse(gctx, src.Path, []byte(src.Content))
			if err != nil {
				return fmt.Errorf("graph: parse %s: %w", src.Path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	grammarClasses := make(map[string]bool)
	grammarFuncs := make(map[string]bool)
	var includes []Edge
	for _, res := range results {
		for _, sym := range res.Symbols {
			key := res.File.Path + ":" + sym.Name
			switch sym.Kind {
			case SymbolKindClass, SymbolKindStruct:
				grammarClasses[key] = true
			default:
				if !strings.EqualFold(sym.Name, "main") {
					grammarFuncs[key] = true
				}
			}
		}
		for _, e := range res.Edges {
			if e.Kind == EdgeKindIncludes {
				includes = append(includes, e)
			}
		}
	}

	heuristicClasses := make(map[string]bool)
	for _, c := range s.ClassSymbols() {
		heuristicClasses[c.FilePath+":"+c.Name] = true
	}
	heuristicFuncs := make(map[string]bool)
	for _, f := range s.FunctionSymbols() {
		heuristicFuncs[f.FilePath+":"+f.Name] = true
	}

	paths := make([]string, 0, len(sources))
	for _, src := range sources {
		paths = append(paths, src.Path)
	}
	resolved, unresolved := NewResolver(paths).ResolveAll(includes)

	check := &GrammarCheck{
		ParsedFiles:        len(results),
		Includes:           resolved,
		UnresolvedIncludes: dedupSorted(unresolved),
	}
	check.ConfirmedClasses, check.MissedClasses, check.InventedClasses = diffKeys(grammarClasses, heuristicClasses)
	check.ConfirmedFunctions, check.MissedFunctions, check.InventedFunctions = diffKeys(grammarFuncs, heuristicFuncs)
	return check, nil
}

// diffKeys counts keys in both sets and lists the ones only in want (missed)
// or only in got (invented), sorted.
func diffKeys(want, got map[string]bool) (both int, missed, invented []string) {
	for k := range want {
		if got[k] {
			both++
		} else {
			missed = append(missed, k)
		}
	}
	for k := range got {
		if !want[k] {
			invented = append(invented, k)
		}
	}
	sort.Strings(missed)
	sort.Strings(invented)
	return both, missed, invented
}

func dedupSorted(in []string) []string {
	set := make(map[string]bool, len(in))
	for _, s := range in {
		set[s] = true
	}
	if len(set) == 0 {
		return nil
	}
	return setToSlice(set)
}
