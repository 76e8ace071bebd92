package cpptree

// C++ keyword tables used by statement classification and symbol detection.
var (
	conditionalKeywords = set("if", "switch", "else")
	loopKeywords        = set("for", "while", "do")
	classKeywords       = set("class", "struct")

	primitiveTypeKeywords = set(
		"auto", "bool", "char", "double", "float", "int", "long",
		"short", "signed", "size_t", "std", "string", "unsigned", "void",
	)

	// Blocks starting with one of these are never function bodies.
	functionExclusionKeywords = set("if", "else", "switch", "for", "while", "do", "class", "struct")
)

// AllocatorTemplateFunctions are the smart-pointer factories recognised as
// allocating returns, in match order.
var AllocatorTemplateFunctions = []string{"make_unique", "make_shared", "allocate_shared"}

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// IsClassKeyword reports whether word (any case) is class or struct.
func IsClassKeyword(word string) bool {
	return classKeywords[lower(word)]
}

// IsFunctionExclusion reports whether a block starting with word (any case)
// can never be a function definition.
func IsFunctionExclusion(word string) bool {
	return functionExclusionKeywords[lower(word)]
}

// classifyStatement picks the node kind for a flushed statement buffer.
func classifyStatement(tokens []string) NodeKind {
	if len(tokens) == 0 {
		return KindStatement
	}

	first := tokens[0]
	switch {
	case conditionalKeywords[first]:
		return KindConditional
	case loopKeywords[first]:
		return KindLoop
	case first == "return":
		return KindReturn
	case first == "class":
		return KindClassDecl
	case first == "struct":
		return KindStructDecl
	case first == "namespace":
		return KindNamespaceDecl
	}

	var assign, arrow bool
	for _, t := range tokens {
		switch t {
		case "=":
			assign = true
		case "->":
			arrow = true
		}
	}

	switch {
	case assign && arrow:
		return KindMemberAssignment
	case assign || primitiveTypeKeywords[first]:
		return KindAssignmentOrDecl
	}
	return KindStatement
}
