package graph

import "context"

// ParseResult holds what the grammar parser found in a single file.
type ParseResult struct {
	File    FileNode     `json:"file"`
	Symbols []SymbolNode `json:"symbols"`
	Edges   []Edge       `json:"edges"` // DEFINES and raw INCLUDES
}

// Parser extracts definitions from source files with a real grammar.
type Parser interface {
	// Parse extracts symbols and include edges from a single C++ file.
	// INCLUDES targets are the raw include specifiers; see Resolver.
	Parse(ctx context.Context, path string, source []byte) (*ParseResult, error)

	// Close releases parser resources.
	Close() error
}
