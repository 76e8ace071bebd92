package export

import (
	"strconv"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

const treeStyle = `  <style>
    body { font-family: Segoe UI, sans-serif; margin: 24px; background: #f8fbff; color: #1f2937; }
    h1 { margin: 0 0 12px; font-size: 1.15rem; }
    p { margin: 0; color: #475569; }
    ul { list-style: none; margin: 0; padding-left: 1.1rem; border-left: 1px solid #d1d5db; }
    li { margin: 0.35rem 0; }
    .kind { font-weight: 700; color: #0f172a; }
    .value { color: #334155; }
    .hash { color: #94a3b8; font-size: 0.8rem; }
  </style>
`

const codeStyle = "  <style>body{font-family:Consolas,monospace;margin:24px;background:#f8fbff;color:#1f2937;}" +
	"pre{white-space:pre-wrap;border:1px solid #d1d5db;padding:12px;background:#fff;}</style>\n"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// HTML renders root as a standalone page with one nested list item per node.
// A root without children renders emptyMessage instead of the list.
func HTML(root cpptree.Node, title, emptyMessage string) string {
	var b strings.Builder
	writeHead(&b, title, treeStyle)
	if len(root.Children) == 0 {
		b.WriteString("  <p>" + escapeHTML(emptyMessage) + "</p>\n")
	} else {
		b.WriteString("  <ul>")
		writeItem(&b, &root)
		b.WriteString("</ul>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

// CodeHTML wraps source text in a <pre> block.
func CodeHTML(title, code string) string {
	var b strings.Builder
	writeHead(&b, title, codeStyle)
	b.WriteString("  <pre>" + escapeHTML(code) + "</pre>\n")
	b.WriteString("</body>\n</html>\n")
	return b.String()
}

func writeHead(b *strings.Builder, title, style string) {
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("  <meta charset=\"utf-8\">\n")
	b.WriteString("  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("  <title>" + escapeHTML(title) + "</title>\n")
	b.WriteString(style)
	b.WriteString("</head>\n<body>\n")
	b.WriteString("  <h1>" + escapeHTML(title) + "</h1>\n")
}

func writeItem(b *strings.Builder, n *cpptree.Node) {
	b.WriteString(`<li><span class="kind">` + escapeHTML(string(n.Kind)) + "</span>")
	if v := n.Display(); v != "" {
		b.WriteString(` <span class="value">` + escapeHTML(v) + "</span>")
	}
	b.WriteString(` <span class="hash">ctx_hash=` + strconv.FormatUint(n.Hash, 10))
	if len(n.UsageHashes) > 0 {
		b.WriteString(" usage=" + cpptree.FormatHashes(n.UsageHashes))
	}
	b.WriteString("</span>")

	if len(n.Children) > 0 {
		b.WriteString("<ul>")
		for i := range n.Children {
			writeItem(b, &n.Children[i])
		}
		b.WriteString("</ul>")
	}
	b.WriteString("</li>")
}
