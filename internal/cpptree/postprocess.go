package cpptree

// collectClassDefinitions maps each class defined by a Block under n to file.
// Later files overwrite earlier ones.
func collectClassDefinitions(n *Node, file string, out map[string]string) {
	if n.Kind == KindBlock {
		if words := Tokenize(n.Value); len(words) >= 2 && IsClassKeyword(words[0]) {
			out[words[1]] = file
		}
	}
	for i := range n.Children {
		collectClassDefinitions(&n.Children[i], file, out)
	}
}

// resolveIncludes rewrites includes whose target is the basename of an input
// file to "target -> path". Unresolved includes are left alone.
func resolveIncludes(n *Node, basenames map[string]string) {
	if n.Kind == KindIncludeDependency {
		if full, ok := basenames[n.Value]; ok {
			n.Value = n.Value + dependencyArrow + full
		}
	}
	for i := range n.Children {
		resolveIncludes(&n.Children[i], basenames)
	}
}

// collectSymbolDependencies returns one SymbolDependency per class named in
// fileNode's subtree that is defined in another file, deduplicated by
// (file, defining file, name).
func collectSymbolDependencies(fileNode *Node, file string, classFiles map[string]string) []Node {
	emitted := make(map[string]bool)
	var deps []Node
	fileNode.Walk(func(n *Node, _ int) bool {
		if n.Value == "" {
			return true
		}
		for _, word := range Tokenize(n.Value) {
			defFile, ok := classFiles[word]
			if !ok || defFile == file {
				continue
			}
			key := file + "|" + defFile + "|" + word
			if emitted[key] {
				continue
			}
			emitted[key] = true
			deps = append(deps, Node{Kind: KindSymbolDependency, Value: word + dependencyArrow + defFile})
		}
		return true
	})
	return deps
}

func isClassSignature(signature string) bool {
	words := Tokenize(signature)
	return len(words) >= 2 && IsClassKeyword(words[0])
}

func isFunctionSignature(signature string) bool {
	words := Tokenize(signature)
	if len(words) == 0 {
		return false
	}
	var open, closed bool
	for _, w := range words {
		switch w {
		case "(":
			open = true
		case ")":
			closed = true
		}
	}
	if !open || !closed || IsFunctionExclusion(words[0]) {
		return false
	}
	return !isClassSignature(signature)
}

func isClassDeclarationNode(n Node) bool {
	if n.Kind == KindClassDecl || n.Kind == KindStructDecl {
		return true
	}
	return n.Kind == KindBlock && isClassSignature(n.Value)
}

func isGlobalFunctionNode(n Node) bool {
	return n.Kind == KindBlock && isFunctionSignature(n.Value)
}

// bucketize regroups a file's direct children: pass-through nodes first, then
// a class bucket, then a global function bucket. Every child subtree is
// rehashed because positions changed.
func (s *Session) bucketize(fileNode *Node) {
	var classes, functions, passthrough []Node
	for _, child := range fileNode.Children {
		switch {
		case isClassDeclarationNode(child):
			classes = append(classes, child)
		case isGlobalFunctionNode(child):
			functions = append(functions, child)
		default:
			passthrough = append(passthrough, child)
		}
	}

	children := make([]Node, 0, len(passthrough)+2)
	children = append(children, passthrough...)
	if len(classes) > 0 {
		children = append(children, Node{Kind: KindClassBucket, Value: classBucketValue, Children: classes})
	}
	if len(functions) > 0 {
		children = append(children, Node{Kind: KindGlobalFunctionBucket, Value: functionBucketValue, Children: functions})
	}

	fileNode.Children = children
	for i := range fileNode.Children {
		s.rehash(&fileNode.Children[i], fileNode.Hash, i)
	}
}
