package graph

import (
	"bytes"
	"context"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
)

// TreeSitterParser implements Parser with the tree-sitter C++ grammar. A
// tree-sitter parser is created per Parse call, so Parse may run
// concurrently on one TreeSitterParser.
type TreeSitterParser struct {
	lang *tree_sitter.Language
	ext  cppExtractor
}

var _ Parser = (*TreeSitterParser)(nil)

// NewTreeSitterParser returns a parser with the C++ grammar loaded.
func NewTreeSitterParser() *TreeSitterParser {
	return &TreeSitterParser{lang: tree_sitter.NewLanguage(tree_sitter_cpp.Language())}
}

// Parse parses source as C++ and extracts its definitions.
func (p *TreeSitterParser) Parse(ctx context.Context, path string, source []byte) (*ParseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file := FileNode{Path: path, Language: LangCpp, LOC: countLOC(source)}
	if len(source) == 0 {
		return &ParseResult{File: file}, nil
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.lang); err != nil {
		return nil, fmt.Errorf("graph: set C++ grammar: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("graph: tree-sitter returned no tree for %s", path)
	}
	defer tree.Close()

	symbols, edges := p.ext.Extract(tree.RootNode(), source, path)
	return &ParseResult{
		File:    file,
		Symbols: symbols,
		Edges:   edges,
	}, nil
}

// Close is a no-op; parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// countLOC counts lines, treating a non-empty source without a trailing
// newline as one more line.
func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
