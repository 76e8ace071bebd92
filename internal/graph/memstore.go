package graph

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var _ Store = (*MemStore)(nil)

// MemStore implements Store with maps guarded by a sync.RWMutex.
type MemStore struct {
	mu       sync.RWMutex
	files    map[string]FileNode
	symbols  map[string]SymbolNode // key: SymbolNode.ID()
	order    []string              // symbol IDs in insertion order
	edges    []Edge
	edgeSeen map[Edge]bool
	clusters []ClusterNode
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		files:    make(map[string]FileNode),
		symbols:  make(map[string]SymbolNode),
		edgeSeen: make(map[Edge]bool),
	}
}

// InitSchema is a no-op for the in-memory store.
func (m *MemStore) InitSchema(_ context.Context) error {
	return nil
}

// AddFile stores or replaces a file node.
func (m *MemStore) AddFile(_ context.Context, node FileNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[node.Path] = node
	return nil
}

// AddSymbol stores or replaces a symbol node.
func (m *MemStore) AddSymbol(_ context.Context, node SymbolNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := node.ID()
	if _, ok := m.symbols[id]; !ok {
		m.order = append(m.order, id)
	}
	m.symbols[id] = node
	return nil
}

// AddCluster appends a cluster.
func (m *MemStore) AddCluster(_ context.Context, node ClusterNode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clusters = append(m.clusters, node)
	return nil
}

// AddEdge appends an edge. Duplicate edges are ignored.
func (m *MemStore) AddEdge(_ context.Context, edge Edge) error {
	if !edge.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedEdge, edge.Kind)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.edgeSeen[edge] {
		return nil
	}
	m.edgeSeen[edge] = true
	m.edges = append(m.edges, edge)
	return nil
}

// GetFile returns the file node for path, or nil if absent.
func (m *MemStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[path]
	if !ok {
		return nil, nil
	}
	return &f, nil
}

// GetSymbol returns the symbol for filePath and qualifiedName, or nil if
// absent. Among overloads the first one added wins.
func (m *MemStore) GetSymbol(_ context.Context, filePath, qualifiedName string) (*SymbolNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.order {
		s := m.symbols[id]
		if s.FilePath == filePath && s.QualifiedName() == qualifiedName {
			return &s, nil
		}
	}
	return nil, nil
}

// QuerySymbols returns symbols whose qualified name contains query
// (case-insensitive), in insertion order. A limit <= 0 returns all matches.
func (m *MemStore) QuerySymbols(_ context.Context, query string, limit int) ([]SymbolNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(query)
	var results []SymbolNode
	for _, id := range m.order {
		sym := m.symbols[id]
		if !strings.Contains(strings.ToLower(sym.QualifiedName()), q) {
			continue
		}
		results = append(results, sym)
		if limit > 0 && len(results) >= limit {
			break
		}
	}
	return results, nil
}

// GetDependencies runs a breadth-first walk over file edges from path, up to
// maxDepth hops, and returns one chain per reachable file.
func (m *MemStore) GetDependencies(_ context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return walkDependencies(path, maxDepth, func(id string) []string {
		return m.neighbors(id, direction)
	}), nil
}

// neighbors returns files one file edge away from id, sorted.
func (m *MemStore) neighbors(id string, direction Direction) []string {
	set := make(map[string]bool)
	for _, e := range m.edges {
		if !IsFileEdge(e.Kind) {
			continue
		}
		switch direction {
		case DirectionUpstream:
			if e.SourceID == id {
				set[e.TargetID] = true
			}
		case DirectionDownstream:
			if e.TargetID == id {
				set[e.SourceID] = true
			}
		}
	}
	return setToSlice(set)
}

// AssessImpact finds the files that include or depend on any changed file,
// directly and transitively.
func (m *MemStore) AssessImpact(_ context.Context, changedFiles []string) (*ImpactResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	changed := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		changed[f] = true
	}

	direct := make(map[string]bool)
	for _, e := range m.edges {
		if IsFileEdge(e.Kind) && changed[e.TargetID] && !changed[e.SourceID] {
			direct[e.SourceID] = true
		}
	}

	all := make(map[string]bool, len(direct))
	frontier := make(map[string]bool, len(direct))
	for f := range direct {
		all[f] = true
		frontier[f] = true
	}
	for len(frontier) > 0 {
		next := make(map[string]bool)
		for _, e := range m.edges {
			if !IsFileEdge(e.Kind) || !frontier[e.TargetID] {
				continue
			}
			if !changed[e.SourceID] && !all[e.SourceID] {
				all[e.SourceID] = true
				next[e.SourceID] = true
			}
		}
		frontier = next
	}

	return newImpactResult(setToSlice(direct), setToSlice(all), len(m.files)), nil
}

// GetClusters returns a copy of the stored clusters.
func (m *MemStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ClusterNode, len(m.clusters))
	copy(out, m.clusters)
	return out, nil
}

// GetAllEdges returns a copy of all edges in insertion order.
func (m *MemStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Edge, len(m.edges))
	copy(out, m.edges)
	return out, nil
}

// Stats returns node and edge counts.
func (m *MemStore) Stats(_ context.Context) (*GraphStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &GraphStats{
		FileCount:    len(m.files),
		SymbolCount:  len(m.symbols),
		ClusterCount: len(m.clusters),
		EdgeCount:    len(m.edges),
	}, nil
}

// Close is a no-op for the in-memory store.
func (m *MemStore) Close() error {
	return nil
}

// walkDependencies is the breadth-first traversal shared by both stores.
// next returns the neighbors of a file.
func walkDependencies(start string, maxDepth int, next func(string) []string) []DependencyChain {
	if maxDepth <= 0 {
		return nil
	}

	type entry struct {
		id   string
		path []string
	}

	visited := map[string]bool{start: true}
	queue := []entry{{id: start, path: []string{start}}}
	var chains []DependencyChain

	for depth := 0; depth < maxDepth && len(queue) > 0; depth++ {
		var nextQueue []entry
		for _, e := range queue {
			for _, nb := range next(e.id) {
				if visited[nb] {
					continue
				}
				visited[nb] = true
				p := make([]string, len(e.path), len(e.path)+1)
				copy(p, e.path)
				p = append(p, nb)
				chains = append(chains, DependencyChain{Nodes: p, Depth: len(p) - 1})
				nextQueue = append(nextQueue, entry{id: nb, path: p})
			}
		}
		queue = nextQueue
	}
	return chains
}

func newImpactResult(direct, transitive []string, totalFiles int) *ImpactResult {
	var risk float64
	if totalFiles > 0 {
		risk = float64(len(transitive)) / float64(totalFiles)
	}
	return &ImpactResult{
		DirectlyAffected:     direct,
		TransitivelyAffected: transitive,
		RiskScore:            risk,
	}
}

// setToSlice returns the keys of s in sorted order.
func setToSlice(s map[string]bool) []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
