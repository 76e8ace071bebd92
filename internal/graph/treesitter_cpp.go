package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cppExtractor collects class, struct and function definitions plus
// #include specifiers from a C++ syntax tree. Forward declarations and
// function prototypes are not definitions and are skipped.
type cppExtractor struct{}

func (e cppExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) ([]SymbolNode, []Edge) {
	var symbols []SymbolNode
	var edges []Edge
	e.walk(root, source, filePath, "", &symbols, &edges)
	return symbols, edges
}

func (e cppExtractor) walk(node *tree_sitter.Node, source []byte, filePath, owner string, symbols *[]SymbolNode, edges *[]Edge) {
	switch node.Kind() {
	case "class_specifier", "struct_specifier":
		body := node.ChildByFieldName("body")
		nameNode := node.ChildByFieldName("name")
		if body == nil || nameNode == nil {
			break
		}
		kind := SymbolKindClass
		if node.Kind() == "struct_specifier" {
			kind = SymbolKindStruct
		}
		sym := SymbolNode{
			Name:      lastSegment(nameNode.Utf8Text(source)),
			Kind:      kind,
			Signature: collapse(string(source[node.StartByte():body.StartByte()])),
			FilePath:  filePath,
			StartLine: int(node.StartPosition().Row) + 1,
			EndLine:   int(node.EndPosition().Row) + 1,
		}
		*symbols = append(*symbols, sym)
		*edges = append(*edges, Edge{SourceID: filePath, TargetID: sym.ID(), Kind: EdgeKindDefines})
		e.walk(body, source, filePath, sym.Name, symbols, edges)
		return

	case "function_definition":
		if sym := e.function(node, source, filePath, owner); sym != nil {
			*symbols = append(*symbols, *sym)
			*edges = append(*edges, Edge{SourceID: filePath, TargetID: sym.ID(), Kind: EdgeKindDefines})
		}
		// Local classes inside bodies are ignored.
		return

	case "preproc_include":
		if p := node.ChildByFieldName("path"); p != nil {
			specifier := strings.Trim(p.Utf8Text(source), `"<> `)
			if specifier != "" {
				*edges = append(*edges, Edge{SourceID: filePath, TargetID: specifier, Kind: EdgeKindIncludes})
			}
		}
		return
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		if child := node.Child(i); child != nil {
			e.walk(child, source, filePath, owner, symbols, edges)
		}
	}
}

// function builds a symbol for a function_definition. Out-of-class
// definitions ("Widget* Factory::make()") take their owner from the
// qualified name.
func (e cppExtractor) function(node *tree_sitter.Node, source []byte, filePath, owner string) *SymbolNode {
	decl := functionDeclarator(node.ChildByFieldName("declarator"))
	if decl == nil {
		return nil
	}
	nameNode := decl.ChildByFieldName("declarator")
	if nameNode == nil {
		return nil
	}

	full := strings.ReplaceAll(nameNode.Utf8Text(source), " ", "")
	name := full
	if i := strings.LastIndex(full, "::"); i >= 0 {
		owner = lastSegment(full[:i])
		name = full[i+2:]
	}
	if name == "" {
		return nil
	}

	end := node.EndByte()
	if body := node.ChildByFieldName("body"); body != nil {
		end = body.StartByte()
	}

	kind := SymbolKindFunction
	if owner != "" {
		kind = SymbolKindMethod
	}
	return &SymbolNode{
		Name:      name,
		Kind:      kind,
		Owner:     owner,
		Signature: collapse(string(source[node.StartByte():end])),
		FilePath:  filePath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}

// functionDeclarator unwraps pointer and reference declarators down to the
// function_declarator, or returns nil.
func functionDeclarator(n *tree_sitter.Node) *tree_sitter.Node {
	for n != nil {
		switch n.Kind() {
		case "function_declarator":
			return n
		case "pointer_declarator", "reference_declarator", "parenthesized_declarator":
			next := n.ChildByFieldName("declarator")
			if next == nil && n.NamedChildCount() > 0 {
				next = n.NamedChild(n.NamedChildCount() - 1)
			}
			n = next
		default:
			return nil
		}
	}
	return nil
}

// lastSegment strips namespace qualifiers and template arguments.
func lastSegment(name string) string {
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndex(name, "::"); i >= 0 {
		name = name[i+2:]
	}
	return strings.TrimSpace(name)
}

// collapse joins whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
