package cpptree

import "strings"

// ClassLookup is the answer to a hash lookup. Exact is true only when the
// hash matched a declaration site (contextual hash) or a file-scoped class
// hash. Candidates lists every class that could be meant, so a caller that
// got a name-hash fallback can see the alternatives that were not chosen.
type ClassLookup struct {
	Symbol     *Symbol  `json:"symbol,omitempty"`
	Exact      bool     `json:"exact"`
	Collision  bool     `json:"hash_collision"`
	Candidates []Symbol `json:"candidates,omitempty"`
}

// Found reports whether the lookup produced a symbol.
func (l ClassLookup) Found() bool {
	return l.Symbol != nil
}

// ClassSymbols returns the class table in registration order.
func (s *Session) ClassSymbols() []Symbol {
	return append([]Symbol(nil), s.classes...)
}

// FunctionSymbols returns the function table in registration order.
func (s *Session) FunctionSymbols() []Symbol {
	return append([]Symbol(nil), s.functions...)
}

// ClassUsages returns the usage table in traversal order.
func (s *Session) ClassUsages() []Usage {
	return append([]Usage(nil), s.usages...)
}

// ClassByName returns the first registered class with this name.
func (s *Session) ClassByName(name string) (Symbol, bool) {
	idx := s.classByName[name]
	if len(idx) == 0 {
		return Symbol{}, false
	}
	return s.classes[idx[0]], true
}

// ClassesByName returns every class registered under name.
func (s *Session) ClassesByName(name string) []Symbol {
	return s.pick(s.classes, s.classByName[name])
}

// ClassesByNameHash returns the whole name-hash bucket for h, which may hold
// classes with different names.
func (s *Session) ClassesByNameHash(h uint64) []Symbol {
	return s.pick(s.classes, s.classByNameHash[h])
}

// ClassByHash resolves h against, in order, the contextual hash of a
// declaration, the file-scoped class hash and the class name hash. Only the
// first two are exact; the name-hash fallback returns the first registered
// entry of the bucket and flags Collision when the bucket holds more than one
// class.
func (s *Session) ClassByHash(h uint64) ClassLookup {
	if i, ok := s.classByContext[h]; ok {
		sym := s.classes[i]
		return ClassLookup{Symbol: &sym, Exact: true, Candidates: []Symbol{sym}}
	}

	if idx := s.classBySymbolHash[h]; len(idx) > 0 {
		sym := s.classes[idx[0]]
		return ClassLookup{
			Symbol:     &sym,
			Exact:      len(idx) == 1,
			Collision:  len(idx) > 1,
			Candidates: s.pick(s.classes, idx),
		}
	}

	idx := s.classByNameHash[h]
	if len(idx) == 0 {
		return ClassLookup{}
	}
	candidates := s.pick(s.classes, idx)
	sym := candidates[0]
	return ClassLookup{
		Symbol:     &sym,
		Exact:      false,
		Collision:  len(idx) > 1,
		Candidates: candidates,
	}
}

// FunctionByName returns the first registered function with this name.
func (s *Session) FunctionByName(name string) (Symbol, bool) {
	idx := s.funcByName[name]
	if len(idx) == 0 {
		return Symbol{}, false
	}
	return s.functions[idx[0]], true
}

// FunctionByKey returns the function with this exact key.
func (s *Session) FunctionByKey(key string) (Symbol, bool) {
	i, ok := s.funcByKey[key]
	if !ok {
		return Symbol{}, false
	}
	return s.functions[i], true
}

// FunctionsByName returns every function registered under name.
func (s *Session) FunctionsByName(name string) []Symbol {
	return s.pick(s.functions, s.funcByName[name])
}

// UsagesByName returns the usages whose token is name.
func (s *Session) UsagesByName(name string) []Usage {
	var out []Usage
	for _, u := range s.usages {
		if u.Name == name {
			out = append(out, u)
		}
	}
	return out
}

// ReturnTargetsKnownClass reports whether a return expression such as
// "return new Widget()" names a registered class.
func (s *Session) ReturnTargetsKnownClass(expr string) bool {
	e := strings.TrimSpace(expr)
	if strings.HasPrefix(lower(e), "return") {
		e = strings.TrimSpace(e[len("return"):])
	}
	if strings.HasPrefix(lower(e), "new ") {
		e = strings.TrimSpace(e[len("new "):])
	}
	words := SplitWords(e)
	if len(words) == 0 {
		return false
	}
	_, ok := s.ClassByName(words[0])
	return ok
}

func (s *Session) pick(from []Symbol, idx []int) []Symbol {
	if len(idx) == 0 {
		return nil
	}
	out := make([]Symbol, 0, len(idx))
	for _, i := range idx {
		out = append(out, from[i])
	}
	return out
}
