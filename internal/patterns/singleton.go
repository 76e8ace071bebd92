package patterns

import (
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// Singleton finds class methods that declare a static instance of their own
// class and return it.
func Singleton(root cpptree.Node) cpptree.Node {
	out := cpptree.Node{Kind: KindSingletonRoot, Value: LabelSingleton}

	for _, cls := range classBlocks(&root) {
		name := cpptree.ClassNameFromSignature(cls.Value)
		if name == "" {
			continue
		}
		classNode := cpptree.Node{Kind: KindClass, Value: name}

		for i := range cls.Children {
			fn := &cls.Children[i]
			if !cpptree.IsFunctionBlock(*fn) {
				continue
			}
			id, ok := staticInstance(fn, name)
			if !ok || !returnsIdentifier(fn, id) {
				continue
			}
			classNode.Children = append(classNode.Children, cpptree.Node{
				Kind:  KindSingletonFunction,
				Value: cpptree.FunctionNameFromSignature(fn.Value),
				Children: []cpptree.Node{
					{Kind: KindStaticInstanceDecl, Value: "static " + name + " " + id},
					{Kind: KindReturnIdentifier, Value: id},
				},
			})
		}

		if len(classNode.Children) > 0 {
			out.Children = append(out.Children, classNode)
		}
	}
	return out
}

// staticInstance finds "static <class> <id>" in a statement under fn.
func staticInstance(fn *cpptree.Node, class string) (string, bool) {
	var id string
	fn.Walk(func(n *cpptree.Node, _ int) bool {
		if id != "" {
			return false
		}
		if n.Kind != cpptree.KindStatement && n.Kind != cpptree.KindAssignmentOrDecl {
			return true
		}
		words := cpptree.SplitWords(n.Value)
		for i := 0; i+2 < len(words); i++ {
			if strings.ToLower(words[i]) == "static" && words[i+1] == class {
				id = words[i+2]
				return false
			}
		}
		return true
	})
	return id, id != ""
}

func returnsIdentifier(fn *cpptree.Node, id string) bool {
	found := false
	fn.Walk(func(n *cpptree.Node, _ int) bool {
		if found {
			return false
		}
		if n.Kind == cpptree.KindReturn {
			if words := cpptree.SplitWords(returnExpression(n.Value)); len(words) > 0 && words[0] == id {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
