package pipeline

import (
	"unsafe"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

var (
	nodeSize   = int(unsafe.Sizeof(cpptree.Node{}))
	symbolSize = int(unsafe.Sizeof(cpptree.Symbol{}))
	usageSize  = int(unsafe.Sizeof(cpptree.Usage{}))
)

// treeBytes approximates the heap held by a tree: node headers, text and
// the backing arrays of children and usage hashes.
func treeBytes(n *cpptree.Node) int {
	total := 0
	n.Walk(func(node *cpptree.Node, _ int) bool {
		total += nodeSize + len(node.Kind) + len(node.Value) + len(node.Annotated)
		total += cap(node.Children)*nodeSize + cap(node.UsageHashes)*8
		return true
	})
	return total
}

// symbolBytes approximates the symbol and usage tables of s.
func symbolBytes(s *cpptree.Session) int {
	classes := s.ClassSymbols()
	functions := s.FunctionSymbols()
	usages := s.ClassUsages()

	total := (len(classes)+len(functions))*symbolSize + len(usages)*usageSize
	for _, sym := range classes {
		total += len(sym.Name) + len(sym.Signature)
	}
	for _, sym := range functions {
		total += len(sym.Name) + len(sym.Signature) + len(sym.FunctionKey)
	}
	for _, u := range usages {
		total += len(u.Name) + len(u.NodeValue)
	}
	return total
}
