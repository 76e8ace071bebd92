// Package patterns detects design-pattern instances over a resolved parse
// tree. Every detector returns a cpptree.Node tree whose Kind tags the role
// and whose Value carries the label.
package patterns

import (
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// Node kinds produced by the detectors.
const (
	KindFactoryRoot        cpptree.NodeKind = "FactoryPatternRoot"
	KindSingletonRoot      cpptree.NodeKind = "SingletonPatternRoot"
	KindBuilderRoot        cpptree.NodeKind = "BuilderPatternRoot"
	KindCreationalRoot     cpptree.NodeKind = "CreationalPatternsRoot"
	KindCreationalEntry    cpptree.NodeKind = "CreationalEntryRoot"
	KindBehaviouralEntry   cpptree.NodeKind = "BehaviouralEntryRoot"
	KindClass              cpptree.NodeKind = "ClassNode"
	KindFunction           cpptree.NodeKind = "FunctionNode"
	KindConditional        cpptree.NodeKind = "ConditionalNode"
	KindAllocatorReturn    cpptree.NodeKind = "AllocatorReturn"
	KindSingletonFunction  cpptree.NodeKind = "SingletonFunction"
	KindStaticInstanceDecl cpptree.NodeKind = "StaticInstanceDecl"
	KindReturnIdentifier   cpptree.NodeKind = "ReturnIdentifier"
	KindBuilderMethod      cpptree.NodeKind = "BuilderMethod"
)

// Root labels.
const (
	LabelFactory    = "class/function/conditional/allocator-return"
	LabelSingleton  = "static same-class instance + return identifier"
	LabelBuilder    = "class with multiple assignment-oriented methods"
	LabelCreational = "factory + singleton"
	LabelNoPattern  = "NoFactoryOrSingletonPatternFound"
	LabelClassEntry = "class traversal scaffold"
	LabelFuncEntry  = "function traversal scaffold"
)

const minBuilderMethods = 2

// classBlocks returns every class/struct Block under root in preorder.
func classBlocks(root *cpptree.Node) []*cpptree.Node {
	var out []*cpptree.Node
	root.Walk(func(n *cpptree.Node, _ int) bool {
		if cpptree.IsClassBlock(*n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func returnExpression(value string) string {
	expr := strings.TrimSpace(value)
	if strings.HasPrefix(strings.ToLower(expr), "return") {
		expr = strings.TrimSpace(expr[len("return"):])
	}
	return expr
}
