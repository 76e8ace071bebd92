package cpptree

import "strings"

// StrategyKind enumerates the structural classification strategies.
type StrategyKind string

const (
	StrategyFactory   StrategyKind = "factory"
	StrategySingleton StrategyKind = "singleton"
	StrategyBuilder   StrategyKind = "builder"
	StrategyStrategy  StrategyKind = "strategy"
	StrategyObserver  StrategyKind = "observer"
	StrategyNull      StrategyKind = "null"
)

var strategyKeywords = map[StrategyKind][]string{
	StrategyFactory:   {"factory", "creator", "create"},
	StrategySingleton: {"singleton", "instance", "config"},
	StrategyBuilder:   {"builder", "build", "director"},
	StrategyStrategy:  {"strategy", "context"},
	StrategyObserver:  {"observer", "subject", "listener"},
}

var strategyNames = map[StrategyKind]string{
	StrategyFactory:   "FactoryStructuralStrategy",
	StrategySingleton: "SingletonStructuralStrategy",
	StrategyBuilder:   "BuilderStructuralStrategy",
	StrategyStrategy:  "StrategyStructuralStrategy",
	StrategyObserver:  "ObserverStructuralStrategy",
	StrategyNull:      "NullStructuralStrategy",
}

// Strategy decides which scanned classes are crucial for a run. It is a
// closed variant: the kind selects a fixed keyword list.
type Strategy struct {
	Kind     StrategyKind
	Keywords []string
}

// SelectStrategy maps a source pattern name (any case) to its strategy.
// Unknown names select the null strategy, which accepts nothing.
func SelectStrategy(sourcePattern string) Strategy {
	kind := StrategyKind(lower(strings.TrimSpace(sourcePattern)))
	keywords, ok := strategyKeywords[kind]
	if !ok {
		return Strategy{Kind: StrategyNull}
	}
	return Strategy{Kind: kind, Keywords: keywords}
}

// Name is the strategy's display name recorded on crucial classes.
func (s Strategy) Name() string {
	if name, ok := strategyNames[s.Kind]; ok {
		return name
	}
	return strategyNames[StrategyNull]
}

// IsCrucial reports whether the class name or any declaration token contains
// one of the strategy keywords, case-insensitively.
func (s Strategy) IsCrucial(className string, declTokens []string) bool {
	if len(s.Keywords) == 0 {
		return false
	}
	if s.matches(lower(className)) {
		return true
	}
	for _, tok := range declTokens {
		if s.matches(lower(tok)) {
			return true
		}
	}
	return false
}

func (s Strategy) matches(lowered string) bool {
	for _, kw := range s.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
