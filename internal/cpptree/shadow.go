package cpptree

// ExtractShadow filters main down to the nodes relevant to the tracked class
// and function names. The TranslationUnit and FileUnit levels are always
// kept. Kept nodes carry their main-tree hashes unchanged and the result is
// never rehashed, so every shadow hash also appears in main.
func ExtractShadow(main Node, classes, functions []string) Node {
	tracked := make(map[string]bool, len(classes)+len(functions))
	for _, name := range classes {
		tracked[name] = true
	}
	for _, name := range functions {
		tracked[name] = true
	}

	shadow := shallowCopy(main)
	shadow.Children = make([]Node, 0, len(main.Children))
	for _, file := range main.Children {
		shadowFile := shallowCopy(file)
		for _, child := range file.Children {
			if kept, ok := filterRelevant(child, tracked); ok {
				shadowFile.Children = append(shadowFile.Children, kept)
			}
		}
		shadow.Children = append(shadow.Children, shadowFile)
	}
	return shadow
}

func filterRelevant(n Node, tracked map[string]bool) (Node, bool) {
	var kept []Node
	for _, child := range n.Children {
		if c, ok := filterRelevant(child, tracked); ok {
			kept = append(kept, c)
		}
	}

	if n.Kind == KindGlobalFunctionBucket && len(kept) == 0 {
		return Node{}, false
	}

	relevant := len(n.UsageHashes) > 0 ||
		containsTrackedToken(n.Value, tracked) ||
		containsTrackedToken(n.Annotated, tracked)
	if !relevant && len(kept) == 0 {
		return Node{}, false
	}

	out := shallowCopy(n)
	out.Children = kept
	return out, true
}

func containsTrackedToken(text string, tracked map[string]bool) bool {
	if text == "" || len(tracked) == 0 {
		return false
	}
	for _, tok := range Tokenize(text) {
		if tracked[tok] {
			return true
		}
	}
	return false
}

func shallowCopy(n Node) Node {
	out := Node{
		Kind:      n.Kind,
		Value:     n.Value,
		Annotated: n.Annotated,
		Hash:      n.Hash,
	}
	if len(n.UsageHashes) > 0 {
		out.UsageHashes = append([]uint64(nil), n.UsageHashes...)
	}
	return out
}
