package patterns

import (
	"strconv"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// SymbolTables is the resolved view the scaffold detectors read from.
type SymbolTables interface {
	ClassIndex
	ClassSymbols() []cpptree.Symbol
	FunctionSymbols() []cpptree.Symbol
}

// Creational combines the factory and singleton detectors. Empty detector
// trees are left out; when both are empty the root label says so.
func Creational(tables SymbolTables, root cpptree.Node) cpptree.Node {
	out := cpptree.Node{Kind: KindCreationalRoot, Value: LabelCreational}

	if f := Factory(tables, root); len(f.Children) > 0 {
		out.Children = append(out.Children, f)
	}
	if s := Singleton(root); len(s.Children) > 0 {
		out.Children = append(out.Children, s)
	}
	if len(out.Children) == 0 {
		out.Value = LabelNoPattern
	}
	return out
}

// ClassScaffold lists every registered class with its symbol hash.
func ClassScaffold(tables SymbolTables) cpptree.Node {
	out := cpptree.Node{Kind: KindCreationalEntry, Value: LabelClassEntry}
	for _, cls := range tables.ClassSymbols() {
		out.Children = append(out.Children, cpptree.Node{
			Kind:  KindClass,
			Value: cls.Name + " | hash=" + strconv.FormatUint(cls.Hash, 10),
		})
	}
	return out
}

// Behavioural lists every registered function.
func Behavioural(tables SymbolTables) cpptree.Node {
	out := cpptree.Node{Kind: KindBehaviouralEntry, Value: LabelFuncEntry}
	for _, fn := range tables.FunctionSymbols() {
		if cpptree.IsFunctionExclusion(fn.Name) {
			continue
		}
		out.Children = append(out.Children, cpptree.Node{Kind: KindFunction, Value: fn.Name})
	}
	return out
}

// Report bundles every detector's output for one run.
type Report struct {
	Creational    cpptree.Node `json:"creational"`
	Builder       cpptree.Node `json:"builder"`
	Behavioural   cpptree.Node `json:"behavioural"`
	ClassScaffold cpptree.Node `json:"class_scaffold"`
}

// DetectAll runs every detector against root.
func DetectAll(tables SymbolTables, root cpptree.Node) Report {
	return Report{
		Creational:    Creational(tables, root),
		Builder:       Builder(root),
		Behavioural:   Behavioural(tables),
		ClassScaffold: ClassScaffold(tables),
	}
}

// ForPattern returns the detector tree that matches a source pattern name.
// Patterns without a dedicated detector get the combined creational tree.
func ForPattern(tables SymbolTables, root cpptree.Node, pattern string) cpptree.Node {
	switch cpptree.SelectStrategy(strings.TrimSpace(pattern)).Kind {
	case cpptree.StrategyFactory:
		return Factory(tables, root)
	case cpptree.StrategySingleton:
		return Singleton(root)
	case cpptree.StrategyBuilder:
		return Builder(root)
	case cpptree.StrategyStrategy, cpptree.StrategyObserver:
		return Behavioural(tables)
	default:
		return Creational(tables, root)
	}
}
