package cpptree

// Session owns every registry of one analysis: crucial classes, the scan-time
// class index, line traces and the symbol/usage tables. A Session is not safe
// for concurrent use; independent sessions may run in parallel.
type Session struct {
	hash     HashFunc
	ctx      BuildContext
	strategy Strategy

	crucialByName map[string]uint64
	crucial       []CrucialClass

	scanned map[uint64][]scannedClass
	traces  []LineHashTrace

	classes   []Symbol
	functions []Symbol
	usages    []Usage

	classByName       map[string][]int
	classByNameHash   map[uint64][]int
	classBySymbolHash map[uint64][]int
	classByContext    map[uint64]int
	funcByName        map[string][]int
	funcByKey         map[string]int
}

// Option configures a Session.
type Option func(*Session)

// WithHashFunc replaces the default FNV-1a hash.
func WithHashFunc(h HashFunc) Option {
	return func(s *Session) {
		if h != nil {
			s.hash = h
		}
	}
}

// NewSession returns an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{hash: FNV64a}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Reset clears every registry, including the crucial-class registry and the
// build context.
func (s *Session) Reset() {
	s.ctx = BuildContext{}
	s.strategy = SelectStrategy("")
	s.crucialByName = make(map[string]uint64)
	s.crucial = nil
	s.scanned = make(map[uint64][]scannedClass)
	s.traces = nil
	s.resetSymbols()
}

func (s *Session) resetSymbols() {
	s.classes = nil
	s.functions = nil
	s.usages = nil
	s.classByName = make(map[string][]int)
	s.classByNameHash = make(map[uint64][]int)
	s.classBySymbolHash = make(map[uint64][]int)
	s.classByContext = make(map[uint64]int)
	s.funcByName = make(map[string][]int)
	s.funcByKey = make(map[string]int)
}

// Hash exposes the session's hash function to collaborators that need to
// derive comparable identities.
func (s *Session) Hash(text string) uint64 {
	return s.hash(text)
}

// Context returns the build context of the last Build.
func (s *Session) Context() BuildContext {
	return s.ctx
}

// Strategy returns the structural strategy selected for the last Build.
func (s *Session) Strategy() Strategy {
	return s.strategy
}

// --- Crucial-class registry ---

// CrucialClass is a class the active strategy flagged for this run.
type CrucialClass struct {
	Name         string `json:"name"`
	NameHash     uint64 `json:"name_hash"`
	StrategyName string `json:"strategy_name"`
}

// classifyScanned runs the structural hook for a class seen while scanning.
// Only positive classifications are recorded and the first one wins.
func (s *Session) classifyScanned(name string, declTokens []string) {
	if !s.strategy.IsCrucial(name, declTokens) {
		return
	}
	if _, ok := s.crucialByName[name]; ok {
		return
	}
	h := s.hash(name)
	s.crucialByName[name] = h
	s.crucial = append(s.crucial, CrucialClass{
		Name:         name,
		NameHash:     h,
		StrategyName: s.strategy.Name(),
	})
}

// CrucialClasses returns the crucial registry in classification order.
func (s *Session) CrucialClasses() []CrucialClass {
	out := make([]CrucialClass, len(s.crucial))
	copy(out, s.crucial)
	return out
}

// IsCrucial reports whether name was classified crucial, with its name hash.
func (s *Session) IsCrucial(name string) (uint64, bool) {
	h, ok := s.crucialByName[name]
	return h, ok
}
