package cpptree

import "strings"

// --- Enums ---

// NodeKind tags a tree node. Parse trees use the kinds below; pattern
// detectors reuse Node with their own kinds (see internal/patterns).
type NodeKind string

const (
	KindTranslationUnit      NodeKind = "TranslationUnit"
	KindFileUnit             NodeKind = "FileUnit"
	KindBlock                NodeKind = "Block"
	KindStatement            NodeKind = "Statement"
	KindReturn               NodeKind = "ReturnStatement"
	KindClassDecl            NodeKind = "ClassDecl"
	KindStructDecl           NodeKind = "StructDecl"
	KindNamespaceDecl        NodeKind = "NamespaceDecl"
	KindConditional          NodeKind = "ConditionalStatement"
	KindLoop                 NodeKind = "LoopStatement"
	KindAssignmentOrDecl     NodeKind = "AssignmentOrDecl"
	KindMemberAssignment     NodeKind = "MemberAssignment"
	KindIncludeDependency    NodeKind = "IncludeDependency"
	KindSymbolDependency     NodeKind = "SymbolDependency"
	KindClassBucket          NodeKind = "ClassDeclarations"
	KindGlobalFunctionBucket NodeKind = "GlobalFunctionDeclarations"
)

const (
	rootValue           = "Root"
	classBucketValue    = "class/struct declarations"
	functionBucketValue = "global function declarations"
	dependencyArrow     = " -> "
)

// --- Models ---

// SourceFile is one analyzed input: a path and its full text.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// BuildContext carries the run parameters. Only SourcePattern influences the
// tree, through strategy selection.
type BuildContext struct {
	SourcePattern string   `json:"source_pattern"`
	TargetPattern string   `json:"target_pattern"`
	InputFiles    []string `json:"input_files,omitempty"`
}

// Node is the single tree element used for parse trees, shadow trees and
// pattern-detector output. Children are owned by value.
type Node struct {
	Kind        NodeKind `json:"kind"`
	Value       string   `json:"value"`
	Annotated   string   `json:"annotated_value,omitempty"`
	Hash        uint64   `json:"contextual_hash"`
	UsageHashes []uint64 `json:"propagated_usage_hashes,omitempty"`
	Children    []Node   `json:"children,omitempty"`
}

// Bundle is the result of one Build: the full tree and its shadow.
type Bundle struct {
	Main   Node `json:"main"`
	Shadow Node `json:"shadow"`
}

// Display returns the annotated text when present, otherwise the raw text.
func (n Node) Display() string {
	if n.Annotated != "" {
		return n.Annotated
	}
	return n.Value
}

// Walk visits n and its descendants in preorder. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for i := range n.Children {
		n.Children[i].walk(fn, depth+1)
	}
}

// HashSet returns the contextual hashes of every node in the tree.
func (n *Node) HashSet() map[uint64]bool {
	set := make(map[uint64]bool)
	n.Walk(func(node *Node, _ int) bool {
		set[node.Hash] = true
		return true
	})
	return set
}

// Count returns the number of nodes in the tree.
func (n *Node) Count() int {
	total := 0
	n.Walk(func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// nodeAt follows an index path from root. It returns nil when the path runs
// off the tree.
func nodeAt(root *Node, path []int) *Node {
	target := root
	for _, idx := range path {
		if idx < 0 || idx >= len(target.Children) {
			return nil
		}
		target = &target.Children[idx]
	}
	return target
}

// DependencyTarget splits a resolved IncludeDependency or SymbolDependency
// value ("name -> path") into its parts. ok is false for unresolved includes.
func DependencyTarget(value string) (name, path string, ok bool) {
	return strings.Cut(value, dependencyArrow)
}
