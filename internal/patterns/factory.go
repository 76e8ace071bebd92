package patterns

import (
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// ClassIndex answers whether a name is a registered class.
// *cpptree.Session satisfies it once Resolve has run.
type ClassIndex interface {
	ClassByName(name string) (cpptree.Symbol, bool)
}

// Factory finds class methods with a conditional branch that returns a newly
// allocated instance of a known class, either through new or through one of
// the allocator templates.
func Factory(classes ClassIndex, root cpptree.Node) cpptree.Node {
	out := cpptree.Node{Kind: KindFactoryRoot, Value: LabelFactory}

	for _, cls := range classBlocks(&root) {
		classNode := cpptree.Node{Kind: KindClass, Value: cpptree.ClassNameFromSignature(cls.Value)}

		for _, fn := range cls.Children {
			if !cpptree.IsFunctionBlock(fn) {
				continue
			}
			fnNode := cpptree.Node{Kind: KindFunction, Value: cpptree.FunctionNameFromSignature(fn.Value)}

			for _, cond := range fn.Children {
				if !isConditionalBlock(cond) {
					continue
				}
				condNode := cpptree.Node{Kind: KindConditional, Value: strings.TrimSpace(cond.Value)}

				for _, inner := range cond.Children {
					if inner.Kind != cpptree.KindReturn {
						continue
					}
					expr := returnExpression(inner.Value)
					if class, ok := allocatedClass(classes, expr); ok {
						condNode.Children = append(condNode.Children, cpptree.Node{
							Kind:  KindAllocatorReturn,
							Value: expr + " | class=" + class,
						})
					}
				}

				if len(condNode.Children) > 0 {
					fnNode.Children = append(fnNode.Children, condNode)
				}
			}

			if len(fnNode.Children) > 0 {
				classNode.Children = append(classNode.Children, fnNode)
			}
		}

		if len(classNode.Children) > 0 {
			out.Children = append(out.Children, classNode)
		}
	}
	return out
}

func isConditionalBlock(n cpptree.Node) bool {
	if n.Kind != cpptree.KindBlock {
		return false
	}
	tokens := cpptree.Tokenize(strings.ToLower(n.Value))
	if len(tokens) == 0 {
		return false
	}
	switch tokens[0] {
	case "if", "switch":
		return true
	case "else":
		return len(tokens) > 1 && tokens[1] == "if"
	}
	return false
}

// allocatedClass reports the known class allocated by a return expression.
func allocatedClass(classes ClassIndex, expr string) (string, bool) {
	trimmed := strings.TrimSpace(expr)
	lowered := strings.ToLower(trimmed)

	if strings.HasPrefix(lowered, "new ") {
		words := cpptree.SplitWords(trimmed[len("new "):])
		if len(words) == 0 {
			return "", false
		}
		if _, ok := classes.ClassByName(words[0]); ok {
			return words[0], true
		}
		return "", false
	}

	compact := strings.Join(strings.Fields(lowered), "")
	for _, allocator := range cpptree.AllocatorTemplateFunctions {
		if !strings.Contains(compact, allocator+"<") {
			continue
		}
		candidate := templateArgument(trimmed)
		if candidate == "" {
			continue
		}
		if _, ok := classes.ClassByName(candidate); ok {
			return candidate, true
		}
	}
	return "", false
}

func templateArgument(expr string) string {
	l := strings.IndexByte(expr, '<')
	if l < 0 {
		return ""
	}
	r := strings.IndexByte(expr[l+1:], '>')
	if r <= 0 {
		return ""
	}
	return strings.TrimSpace(expr[l+1 : l+1+r])
}
