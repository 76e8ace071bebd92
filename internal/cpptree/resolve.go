package cpptree

import (
	"strconv"
	"strings"
)

const (
	ownerClass  = "class"
	ownerGlobal = "global"
)

// Symbol is a resolved class or function declaration.
type Symbol struct {
	Name                string `json:"name"`
	Signature           string `json:"signature"`
	FilePath            string `json:"file_path"`
	OwnerScope          string `json:"owner_scope"`
	FunctionKey         string `json:"function_key,omitempty"`
	NameHash            uint64 `json:"name_hash"`
	ContextualHash      uint64 `json:"contextual_hash"`
	Hash                uint64 `json:"hash"`
	DefinitionNodeIndex int    `json:"definition_node_index"`
}

// Usage is one token occurrence that resolves, by name hash, to a class.
type Usage struct {
	Name               string   `json:"name"`
	TypeString         string   `json:"type_string"`
	FilePath           string   `json:"file_path"`
	NodeKind           NodeKind `json:"node_kind"`
	NodeValue          string   `json:"node_value"`
	NodeIndex          int      `json:"node_index"`
	NodeContextualHash uint64   `json:"node_contextual_hash"`
	ClassNameHash      uint64   `json:"class_name_hash"`
	Hash               uint64   `json:"hash"`
	HashCollision      bool     `json:"hash_collision"`
	RefactorCandidate  bool     `json:"refactor_candidate"`
}

// Resolve rebuilds the class, function and usage tables from root. Previous
// tables are discarded first; the crucial registry is left as is.
func (s *Session) Resolve(root Node) {
	s.resetSymbols()

	idx := 0
	s.collectSymbols(&root, "", "", &idx)

	idx = 0
	s.collectUsages(&root, "", &idx)
}

func (s *Session) collectSymbols(n *Node, file, classScope string, idx *int) {
	*idx++

	if n.Kind == KindFileUnit {
		file = n.Value
	}

	if isClassNode(*n) {
		s.addClass(n.Value, file, *idx, n.Hash)
		if name := ClassNameFromSignature(n.Value); name != "" {
			classScope = name
		}
	} else if IsFunctionBlock(*n) {
		s.addFunction(n.Value, file, classScope, *idx, n.Hash)
	}

	for i := range n.Children {
		s.collectSymbols(&n.Children[i], file, classScope, idx)
	}
}

func (s *Session) addClass(signature, file string, nodeIndex int, ctxHash uint64) {
	name := ClassNameFromSignature(signature)
	if name == "" {
		return
	}
	if _, seen := s.classByContext[ctxHash]; seen {
		return
	}

	sym := Symbol{
		Name:                name,
		Signature:           signature,
		FilePath:            file,
		OwnerScope:          ownerClass,
		NameHash:            s.hash(name),
		ContextualHash:      ctxHash,
		Hash:                s.hash(file + "|" + name),
		DefinitionNodeIndex: nodeIndex,
	}

	i := len(s.classes)
	s.classes = append(s.classes, sym)
	s.classByName[name] = append(s.classByName[name], i)
	s.classByNameHash[sym.NameHash] = append(s.classByNameHash[sym.NameHash], i)
	s.classBySymbolHash[sym.Hash] = append(s.classBySymbolHash[sym.Hash], i)
	s.classByContext[ctxHash] = i
}

func (s *Session) addFunction(signature, file, owner string, nodeIndex int, ctxHash uint64) {
	name := FunctionNameFromSignature(signature)
	if name == "" || lower(name) == "main" {
		return
	}
	if owner == "" {
		owner = ownerGlobal
	}

	key := FunctionKey(file, owner, name, signature)
	if _, seen := s.funcByKey[key]; seen {
		return
	}

	i := len(s.functions)
	s.functions = append(s.functions, Symbol{
		Name:                name,
		Signature:           signature,
		FilePath:            file,
		OwnerScope:          owner,
		FunctionKey:         key,
		NameHash:            s.hash(name),
		ContextualHash:      ctxHash,
		Hash:                s.hash(key),
		DefinitionNodeIndex: nodeIndex,
	})
	s.funcByName[name] = append(s.funcByName[name], i)
	s.funcByKey[key] = i
}

func (s *Session) collectUsages(n *Node, file string, idx *int) {
	*idx++

	if n.Kind == KindFileUnit {
		file = n.Value
	}

	if n.Value != "" && n.Kind != KindIncludeDependency && n.Kind != KindSymbolDependency {
		declared := ""
		if isClassNode(*n) {
			declared = ClassNameFromSignature(n.Value)
		}

		for _, word := range SplitWords(n.Value) {
			h := s.hash(word)
			bucket, ok := s.classByNameHash[h]
			if !ok {
				continue
			}
			if declared != "" && declared == word {
				continue
			}

			exact := 0
			for _, ci := range bucket {
				if s.classes[ci].Name == word {
					exact++
				}
			}

			_, crucial := s.crucialByName[word]
			s.usages = append(s.usages, Usage{
				Name:               word,
				TypeString:         word,
				FilePath:           file,
				NodeKind:           n.Kind,
				NodeValue:          n.Value,
				NodeIndex:          *idx,
				NodeContextualHash: n.Hash,
				ClassNameHash:      h,
				Hash:               s.hash(file + "|" + strconv.FormatUint(n.Hash, 10) + "|" + word),
				HashCollision:      exact != 1 || len(bucket) > exact,
				RefactorCandidate:  crucial,
			})
		}
	}

	for i := range n.Children {
		s.collectUsages(&n.Children[i], file, idx)
	}
}

// --- Signature helpers (shared with the pattern detectors) ---

func isClassNode(n Node) bool {
	return n.Kind == KindClassDecl || n.Kind == KindStructDecl || IsClassBlock(n)
}

// IsClassBlock reports whether n is a Block opening a class or struct body.
func IsClassBlock(n Node) bool {
	if n.Kind != KindBlock {
		return false
	}
	v := lower(strings.TrimSpace(n.Value))
	return strings.HasPrefix(v, "class ") || strings.HasPrefix(v, "struct ")
}

// IsFunctionBlock reports whether n is a Block opening a function body.
func IsFunctionBlock(n Node) bool {
	if n.Kind != KindBlock {
		return false
	}
	sig := strings.TrimSpace(n.Value)
	if !strings.Contains(sig, "(") || !strings.Contains(sig, ")") {
		return false
	}
	words := SplitWords(sig)
	if len(words) == 0 || IsFunctionExclusion(words[0]) {
		return false
	}
	lowered := lower(sig)
	for kw := range functionExclusionKeywords {
		if strings.HasPrefix(lowered, kw+" ") || strings.HasPrefix(lowered, kw+"(") {
			return false
		}
	}
	return !IsClassBlock(n)
}

// ClassNameFromSignature returns the word following the first class/struct
// keyword, or "".
func ClassNameFromSignature(signature string) string {
	words := SplitWords(signature)
	for i := 0; i+1 < len(words); i++ {
		if IsClassKeyword(words[i]) {
			return words[i+1]
		}
	}
	return ""
}

// FunctionNameFromSignature returns the last word before the first '('.
func FunctionNameFromSignature(signature string) string {
	trimmed := strings.TrimSpace(signature)
	open := strings.IndexByte(trimmed, '(')
	if open < 0 {
		return ""
	}
	words := SplitWords(trimmed[:open])
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

// FunctionKey builds the identity of a function declaration:
// file|owner|name|parameters-without-whitespace.
func FunctionKey(file, owner, name, signature string) string {
	if owner == "" {
		owner = ownerGlobal
	}
	return file + "|" + owner + "|" + name + "|" + ParameterShape(signature)
}

// ParameterShape returns the text between the first pair of parentheses of
// signature with whitespace removed.
func ParameterShape(signature string) string {
	open := strings.IndexByte(signature, '(')
	if open < 0 {
		return ""
	}
	rest := signature[open+1:]
	closing := strings.IndexByte(rest, ')')
	if closing <= 0 {
		return ""
	}
	return strings.Map(func(r rune) rune {
		if r < 0x80 && isSpace(byte(r)) {
			return -1
		}
		return r
	}, rest[:closing])
}
