package cpptree

import (
	"strconv"
	"strings"
)

// scannedClass is a class name seen by the line scanner, before any tree
// exists. Bucketed by the hash of its name.
type scannedClass struct {
	name     string
	file     string
	nameHash uint64
	ctxHash  uint64
}

// LineHashTrace records the hash chain produced when a token of a line names
// a class registered during scanning.
type LineHashTrace struct {
	FilePath                   string   `json:"file_path"`
	LineNumber                 int      `json:"line_number"`
	ClassName                  string   `json:"class_name"`
	ClassNameHash              uint64   `json:"class_name_hash"`
	MatchedClassContextualHash uint64   `json:"matched_class_contextual_hash"`
	HitTokenIndex              int      `json:"hit_token_index"`
	OutgoingHash               uint64   `json:"outgoing_hash"`
	DirtyTokenCount            int      `json:"dirty_token_count"`
	HashCollision              bool     `json:"hash_collision"`
	HashChain                  []uint64 `json:"hash_chain,omitempty"`
}

// LineHashTraces returns the traces recorded by the last Build.
func (s *Session) LineHashTraces() []LineHashTrace {
	out := make([]LineHashTrace, len(s.traces))
	copy(out, s.traces)
	return out
}

// Build resets the session, parses every file into the main tree, resolves
// symbols over it and extracts the shadow tree.
func (s *Session) Build(files []SourceFile, bc BuildContext) Bundle {
	s.Reset()
	s.ctx = bc
	s.strategy = SelectStrategy(bc.SourcePattern)

	root := Node{Kind: KindTranslationUnit, Value: rootValue, Hash: s.rootHash()}
	root.Children = make([]Node, 0, len(files))

	basenames := make(map[string]string, len(files))
	for i, f := range files {
		root.Children = append(root.Children, Node{
			Kind:  KindFileUnit,
			Value: f.Path,
			Hash:  s.childHash(root.Hash, KindFileUnit, f.Path, i),
		})
		basenames[basename(f.Path)] = f.Path
	}

	classFiles := make(map[string]string)
	for i, f := range files {
		fileNode := &root.Children[i]
		s.parseFile(f, fileNode)
		collectClassDefinitions(fileNode, f.Path, classFiles)
	}

	for i := range root.Children {
		fileNode := &root.Children[i]
		resolveIncludes(fileNode, basenames)
		for _, dep := range collectSymbolDependencies(fileNode, fileNode.Value, classFiles) {
			s.appendAt(fileNode, nil, dep)
		}
		s.bucketize(fileNode)
	}

	s.Resolve(root)

	return Bundle{
		Main:   root,
		Shadow: ExtractShadow(root, s.TrackedClasses(), s.TrackedFunctions()),
	}
}

// TrackedClasses returns the crucial class names.
func (s *Session) TrackedClasses() []string {
	names := make([]string, 0, len(s.crucial))
	for _, c := range s.crucial {
		names = append(names, c.Name)
	}
	return names
}

// TrackedFunctions returns the names of functions owned by crucial classes.
func (s *Session) TrackedFunctions() []string {
	seen := make(map[string]bool)
	var names []string
	for _, fn := range s.functions {
		if _, ok := s.crucialByName[fn.OwnerScope]; !ok || seen[fn.Name] {
			continue
		}
		seen[fn.Name] = true
		names = append(names, fn.Name)
	}
	return names
}

// appendAt appends n under the node at path, stamping its hash from the
// parent and its sibling index. It returns that index.
func (s *Session) appendAt(root *Node, path []int, n Node) int {
	target := nodeAt(root, path)
	if target == nil {
		return 0
	}
	idx := len(target.Children)
	n.Hash = s.childHash(target.Hash, n.Kind, n.Value, idx)
	target.Children = append(target.Children, n)
	return idx
}

// statement buffers the tokens of the statement being read.
type statement struct {
	tokens    []string
	annotated []string
	hashes    []uint64
}

func (st *statement) empty() bool { return len(st.tokens) == 0 }

func (st *statement) node(kind NodeKind) Node {
	n := Node{Kind: kind, Value: strings.Join(st.tokens, " ")}
	if annotated := strings.Join(st.annotated, " "); annotated != n.Value {
		n.Annotated = annotated
	}
	if len(st.hashes) > 0 {
		n.UsageHashes = append([]uint64(nil), st.hashes...)
	}
	return n
}

func (st *statement) reset() {
	st.tokens = st.tokens[:0]
	st.annotated = st.annotated[:0]
	st.hashes = st.hashes[:0]
}

// parseFile reads one file line by line into fileNode.
func (s *Session) parseFile(f SourceFile, fileNode *Node) {
	lines := SplitLines(StripComments(f.Content))

	var path []int
	scopes := [][]uint64{nil}
	var st statement

	scopeHash := func() uint64 {
		if n := nodeAt(fileNode, path); n != nil {
			return n.Hash
		}
		return fileNode.Hash
	}

	flush := func() {
		if st.empty() {
			return
		}
		s.appendAt(fileNode, path, st.node(classifyStatement(st.tokens)))
		st.reset()
	}

	for lineIdx, line := range lines {
		tokens := Tokenize(line)

		if target, ok := includeTarget(tokens); ok {
			s.appendAt(fileNode, nil, Node{Kind: KindIncludeDependency, Value: target})
		}

		s.scanClasses(f.Path, tokens)

		current := scopeHash()
		for i, tok := range tokens {
			s.traceHit(f.Path, lineIdx+1, tokens, i, tok, current)
		}

		// Preprocessor lines never join a statement.
		if len(tokens) > 0 && tokens[0] == "#" {
			continue
		}

		for _, tok := range tokens {
			switch tok {
			case "{":
				idx := s.appendAt(fileNode, path, st.node(KindBlock))
				path = append(path, idx)
				top := scopes[len(scopes)-1]
				scopes = append(scopes, append([]uint64(nil), top...))
				st.reset()
				continue
			case "}":
				flush()
				if len(path) > 0 {
					path = path[:len(path)-1]
				}
				if len(scopes) > 1 {
					scopes = scopes[:len(scopes)-1]
				}
				continue
			case ";":
				flush()
				continue
			}

			top := &scopes[len(scopes)-1]
			annotated := tok
			if len(*top) > 0 {
				annotated += "@[" + FormatHashes(*top) + "]"
			}
			st.tokens = append(st.tokens, tok)
			st.annotated = append(st.annotated, annotated)
			for _, h := range *top {
				addUnique(&st.hashes, h)
			}

			if nameHash, ok := s.crucialByName[tok]; ok {
				scoped := s.combine(scopeHash(), strconv.FormatUint(nameHash, 10))
				addUnique(top, scoped)
				addUnique(&st.hashes, scoped)
			}
		}
	}

	flush()
}

// includeTarget extracts the target of an #include line.
func includeTarget(tokens []string) (string, bool) {
	if len(tokens) < 3 || tokens[0] != "#" || lower(tokens[1]) != "include" {
		return "", false
	}

	var closing string
	switch tokens[2] {
	case "<":
		closing = ">"
	case "\"":
		closing = "\""
	default:
		return tokens[2], true
	}

	var b strings.Builder
	for _, t := range tokens[3:] {
		if t == closing {
			break
		}
		b.WriteString(t)
	}
	if b.Len() == 0 {
		return "", false
	}
	return b.String(), true
}

// scanClasses registers every class/struct name declared on a line and
// offers it to the structural hook.
func (s *Session) scanClasses(file string, tokens []string) {
	for i := 0; i+1 < len(tokens); i++ {
		if !IsClassKeyword(tokens[i]) {
			continue
		}
		name := tokens[i+1]
		h := s.hash(name)

		known := false
		for _, c := range s.scanned[h] {
			if c.name == name && c.file == file {
				known = true
				break
			}
		}
		if !known {
			s.scanned[h] = append(s.scanned[h], scannedClass{
				name:     name,
				file:     file,
				nameHash: h,
				ctxHash:  s.hash(file + "|" + name),
			})
		}

		s.classifyScanned(name, tokens)
	}
}

// traceHit records a LineHashTrace when tok names a scanned class.
func (s *Session) traceHit(file string, lineNo int, tokens []string, hit int, tok string, scopeHash uint64) {
	h := s.hash(tok)
	bucket, ok := s.scanned[h]
	if !ok {
		return
	}

	exact := 0
	var matched uint64
	for _, c := range bucket {
		if c.name == tok {
			if exact == 0 {
				matched = c.ctxHash
			}
			exact++
		}
	}
	if exact == 0 {
		return
	}

	cur := s.combine(scopeHash, strconv.FormatUint(h, 10))
	chain := make([]uint64, 0, len(tokens)-1)
	for i := hit; i > 0; i-- {
		cur = s.combine(cur, tokens[i-1])
		chain = append(chain, cur)
	}
	for i := hit + 1; i < len(tokens); i++ {
		cur = s.combine(cur, tokens[i])
		chain = append(chain, cur)
	}

	s.traces = append(s.traces, LineHashTrace{
		FilePath:                   file,
		LineNumber:                 lineNo,
		ClassName:                  tok,
		ClassNameHash:              h,
		MatchedClassContextualHash: matched,
		HitTokenIndex:              hit,
		OutgoingHash:               cur,
		DirtyTokenCount:            len(tokens),
		HashCollision:              exact != 1 || len(bucket) > exact,
		HashChain:                  chain,
	})
}

func basename(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
