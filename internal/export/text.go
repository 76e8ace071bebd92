// Package export renders analysis results: indented tree text, HTML pages,
// the JSON run report and Mermaid dependency diagrams.
package export

import (
	"strconv"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// Text renders root as one line per node, indented two spaces per level:
//
//	Kind: value | ctx_hash=N | scope_usage_hashes=a,b
//
// The value part is omitted for nodes with no text and the usage part for
// nodes with no propagated hashes.
func Text(root cpptree.Node) string {
	var b strings.Builder
	root.Walk(func(n *cpptree.Node, depth int) bool {
		writeTextLine(&b, n, depth)
		return true
	})
	return b.String()
}

func writeTextLine(b *strings.Builder, n *cpptree.Node, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(string(n.Kind))
	if v := n.Display(); v != "" {
		b.WriteString(": ")
		b.WriteString(v)
	}
	b.WriteString(" | ctx_hash=")
	b.WriteString(strconv.FormatUint(n.Hash, 10))
	if len(n.UsageHashes) > 0 {
		b.WriteString(" | scope_usage_hashes=")
		b.WriteString(cpptree.FormatHashes(n.UsageHashes))
	}
	b.WriteByte('\n')
}
