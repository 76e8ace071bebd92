package graph

import (
	"context"
	"io"
)

// Store is the graph backend holding files, symbols and their edges.
// KuzuStore persists to disk; MemStore backs tests and one-shot runs.
type Store interface {
	io.Closer

	// InitSchema is called once before any data is inserted.
	InitSchema(ctx context.Context) error

	AddFile(ctx context.Context, node FileNode) error
	AddSymbol(ctx context.Context, node SymbolNode) error
	AddCluster(ctx context.Context, node ClusterNode) error
	AddEdge(ctx context.Context, edge Edge) error

	GetFile(ctx context.Context, path string) (*FileNode, error)
	// GetSymbol looks up a symbol by file and qualified name ("Owner::name"
	// for methods).
	GetSymbol(ctx context.Context, filePath, qualifiedName string) (*SymbolNode, error)
	QuerySymbols(ctx context.Context, query string, limit int) ([]SymbolNode, error)
	GetAllEdges(ctx context.Context) ([]Edge, error)

	// GetDependencies walks file-to-file edges from a file path.
	GetDependencies(ctx context.Context, path string, direction Direction, maxDepth int) ([]DependencyChain, error)
	AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error)
	GetClusters(ctx context.Context) ([]ClusterNode, error)

	Stats(ctx context.Context) (*GraphStats, error)
}

// Direction controls dependency traversal direction.
type Direction string

const (
	DirectionUpstream   Direction = "upstream"   // what does this file include or depend on?
	DirectionDownstream Direction = "downstream" // which files include or depend on this one?
)

// ParseDirection maps user input to a Direction, defaulting to upstream.
func ParseDirection(s string) Direction {
	if Direction(s) == DirectionDownstream {
		return DirectionDownstream
	}
	return DirectionUpstream
}
