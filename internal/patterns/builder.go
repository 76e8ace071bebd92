package patterns

import "github.com/dusk-indust/cppshadow/internal/cpptree"

// Builder finds classes with at least two methods whose bodies assign state.
func Builder(root cpptree.Node) cpptree.Node {
	out := cpptree.Node{Kind: KindBuilderRoot, Value: LabelBuilder}

	for _, cls := range classBlocks(&root) {
		classNode := cpptree.Node{Kind: KindClass, Value: cpptree.ClassNameFromSignature(cls.Value)}
		for _, fn := range cls.Children {
			if cpptree.IsFunctionBlock(fn) && assignsState(fn) {
				classNode.Children = append(classNode.Children, cpptree.Node{
					Kind:  KindBuilderMethod,
					Value: cpptree.FunctionNameFromSignature(fn.Value),
				})
			}
		}
		if len(classNode.Children) >= minBuilderMethods {
			out.Children = append(out.Children, classNode)
		}
	}
	return out
}

func assignsState(fn cpptree.Node) bool {
	for _, n := range fn.Children {
		if n.Kind == cpptree.KindAssignmentOrDecl || n.Kind == cpptree.KindMemberAssignment {
			return true
		}
	}
	return false
}
