package graph

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// globalScope is the owner the resolver assigns to free functions.
const globalScope = "global"

// IngestResult summarizes what Ingest wrote to the store.
type IngestResult struct {
	Files    []FileNode    `json:"files"`
	Symbols  int           `json:"symbols"`
	Edges    int           `json:"edges"`
	Clusters []ClusterNode `json:"clusters"`
}

// Ingest loads a resolved session into store: one File per source, one
// Symbol per class declaration and function overload, and the edges between
// them. IngestResult.Symbols counts the symbols actually stored.
// INCLUDES and DEPENDS_ON come from the resolved dependency nodes of main.
// Clusters are computed once everything else is in place.
func Ingest(ctx context.Context, store Store, s *cpptree.Session, main cpptree.Node, sources []cpptree.SourceFile) (*IngestResult, error) {
	res := &IngestResult{}
	known := make(map[string]bool, len(sources))

	for _, src := range sources {
		f := FileNode{Path: src.Path, Language: LangCpp, LOC: countLOC([]byte(src.Content))}
		if err := store.AddFile(ctx, f); err != nil {
			return nil, fmt.Errorf("graph: add file %s: %w", f.Path, err)
		}
		known[f.Path] = true
		res.Files = append(res.Files, f)
	}

	addEdge := func(e Edge) error {
		if err := store.AddEdge(ctx, e); err != nil {
			return fmt.Errorf("graph: add %s edge %s -> %s: %w", e.Kind, e.SourceID, e.TargetID, err)
		}
		res.Edges++
		return nil
	}

	// Symbols sharing an ID are stored once and counted once.
	added := make(map[string]bool)
	addSymbol := func(sym SymbolNode) (bool, error) {
		id := sym.ID()
		if added[id] {
			return false, nil
		}
		if err := store.AddSymbol(ctx, sym); err != nil {
			return false, fmt.Errorf("graph: add symbol %s: %w", id, err)
		}
		added[id] = true
		res.Symbols++
		return true, addEdge(Edge{SourceID: sym.FilePath, TargetID: id, Kind: EdgeKindDefines})
	}

	// Classes. A repeated declaration in the same file, such as a forward
	// declaration followed by the definition, keeps its own node.
	classIDs := make(map[string][]SymbolNode) // name -> definitions
	for _, c := range s.ClassSymbols() {
		if !known[c.FilePath] {
			continue
		}
		_, crucial := s.IsCrucial(c.Name)
		sym := SymbolNode{
			Name:            c.Name,
			Kind:            classKind(c.Signature),
			Signature:       c.Signature,
			FilePath:        c.FilePath,
			NameHash:        FormatHash(c.NameHash),
			ContextualHash:  FormatHash(c.ContextualHash),
			DefinitionIndex: c.DefinitionNodeIndex,
			Crucial:         crucial,
		}
		if added[sym.ID()] {
			sym.Discriminator = "#" + strconv.Itoa(c.DefinitionNodeIndex)
		}
		ok, err := addSymbol(sym)
		if err != nil {
			return nil, err
		}
		if ok {
			classIDs[c.Name] = append(classIDs[c.Name], sym)
		}
	}

	// Functions and methods, one node per parameter shape.
	for _, fn := range s.FunctionSymbols() {
		if !known[fn.FilePath] {
			continue
		}
		sym := SymbolNode{
			Name:            fn.Name,
			Kind:            SymbolKindFunction,
			Discriminator:   "(" + cpptree.ParameterShape(fn.Signature) + ")",
			Signature:       fn.Signature,
			FilePath:        fn.FilePath,
			NameHash:        FormatHash(fn.NameHash),
			ContextualHash:  FormatHash(fn.ContextualHash),
			DefinitionIndex: fn.DefinitionNodeIndex,
		}
		if fn.OwnerScope != "" && fn.OwnerScope != globalScope {
			sym.Kind = SymbolKindMethod
			sym.Owner = fn.OwnerScope
		}
		ok, err := addSymbol(sym)
		if err != nil {
			return nil, err
		}
		if !ok || sym.Owner == "" {
			continue
		}
		if owner, found := pickClass(classIDs[sym.Owner], fn.FilePath); found {
			if err := addEdge(Edge{SourceID: sym.ID(), TargetID: owner.ID(), Kind: EdgeKindMemberOf}); err != nil {
				return nil, err
			}
		}
	}

	// Class usages, one edge per (file, class).
	seenUse := make(map[Edge]bool)
	for _, u := range s.ClassUsages() {
		if !known[u.FilePath] {
			continue
		}
		class, ok := pickClass(classIDs[u.Name], u.FilePath)
		if !ok {
			continue
		}
		e := Edge{SourceID: u.FilePath, TargetID: class.ID(), Kind: EdgeKindUses}
		if seenUse[e] {
			continue
		}
		seenUse[e] = true
		if err := addEdge(e); err != nil {
			return nil, err
		}
	}

	// File-to-file edges from the resolved dependency nodes.
	for _, fileNode := range main.Children {
		if fileNode.Kind != cpptree.KindFileUnit || !known[fileNode.Value] {
			continue
		}
		from := fileNode.Value
		seen := make(map[Edge]bool)
		var walkErr error
		fileNode.Walk(func(n *cpptree.Node, _ int) bool {
			if walkErr != nil {
				return false
			}
			var kind EdgeKind
			switch n.Kind {
			case cpptree.KindIncludeDependency:
				kind = EdgeKindIncludes
			case cpptree.KindSymbolDependency:
				kind = EdgeKindDependsOn
			default:
				return true
			}
			_, to, ok := cpptree.DependencyTarget(n.Value)
			if !ok || to == from || !known[to] {
				return true
			}
			e := Edge{SourceID: from, TargetID: to, Kind: kind}
			if !seen[e] {
				seen[e] = true
				walkErr = addEdge(e)
			}
			return true
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}

	clusters, err := ComputeClusters(ctx, store, res.Files)
	if err != nil {
		return nil, err
	}
	res.Clusters = clusters
	return res, nil
}

// classKind reads the class keyword off a definition signature.
func classKind(signature string) SymbolKind {
	for _, w := range strings.Fields(signature) {
		switch w {
		case "struct":
			return SymbolKindStruct
		case "class":
			return SymbolKindClass
		}
	}
	return SymbolKindClass
}

// pickClass prefers the last declaration in file, which is the definition
// when forward declarations precede it, and falls back to the first one.
func pickClass(defs []SymbolNode, file string) (SymbolNode, bool) {
	if len(defs) == 0 {
		return SymbolNode{}, false
	}
	for i := len(defs) - 1; i >= 0; i-- {
		if defs[i].FilePath == file {
			return defs[i], true
		}
	}
	return defs[0], true
}
