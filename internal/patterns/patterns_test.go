package patterns

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

const factorySource = `class Widget { };
class Gadget { };
class WidgetFactory {
    Widget* make(int kind) {
        if (kind == 1) {
            return new Widget();
        }
        else if (kind == 2) {
            return std::make_unique<Gadget>();
        }
        if (kind == 3) {
            return new Unknown();
        }
    }
};
`

const singletonSource = `class Config {
    static Config& get() {
        static Config instance;
        return instance;
    }
    int value() { return 1; }
};
`

const builderSource = `class PizzaBuilder {
    void setSize(int s) { this->size = s; }
    void setCrust(int c) { crust = c; }
    int get() { return size; }
};
class Lonely {
    void set(int v) { value = v; }
};
`

func analyze(t *testing.T, pattern, content string) (*cpptree.Session, cpptree.Node) {
	t.Helper()
	s := cpptree.NewSession()
	bundle := s.Build([]cpptree.SourceFile{{Path: "input.cpp", Content: content}}, cpptree.BuildContext{SourcePattern: pattern})
	return s, bundle.Main
}

func values(n cpptree.Node) []string {
	out := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		out = append(out, c.Value)
	}
	return out
}

// ---------------------------------------------------------------------------
// TestFactory
// ---------------------------------------------------------------------------

func TestFactory_AllocatorReturns(t *testing.T) {
	s, root := analyze(t, "factory", factorySource)

	tree := Factory(s, root)
	assert.Equal(t, KindFactoryRoot, tree.Kind)
	assert.Equal(t, LabelFactory, tree.Value)
	require.Len(t, tree.Children, 1)

	cls := tree.Children[0]
	assert.Equal(t, KindClass, cls.Kind)
	assert.Equal(t, "WidgetFactory", cls.Value)
	require.Len(t, cls.Children, 1)

	fn := cls.Children[0]
	assert.Equal(t, KindFunction, fn.Kind)
	assert.Equal(t, "make", fn.Value)
	assert.Equal(t, []string{"if ( kind == 1 )", "else if ( kind == 2 )"}, values(fn))

	assert.Equal(t, []string{"new Widget ( ) | class=Widget"}, values(fn.Children[0]))
	assert.Equal(t, KindAllocatorReturn, fn.Children[0].Children[0].Kind)
	assert.Equal(t, []string{"std :: make_unique < Gadget > ( ) | class=Gadget"}, values(fn.Children[1]))
}

func TestFactory_NothingFound(t *testing.T) {
	s, root := analyze(t, "factory", singletonSource)
	assert.Empty(t, Factory(s, root).Children)
}

func TestAllocatedClass(t *testing.T) {
	s, _ := analyze(t, "", "class Widget { };")

	tests := []struct {
		expr  string
		class string
		ok    bool
	}{
		{"new Widget()", "Widget", true},
		{"new Widget", "Widget", true},
		{"make_shared<Widget>()", "Widget", true},
		{"std :: allocate_shared < Widget > ( alloc )", "Widget", true},
		{"new Other()", "", false},
		{"make_unique<>()", "", false},
		{"widget", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			class, ok := allocatedClass(s, tt.expr)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.class, class)
		})
	}
}

// ---------------------------------------------------------------------------
// TestSingleton
// ---------------------------------------------------------------------------

func TestSingleton_StaticInstance(t *testing.T) {
	_, root := analyze(t, "singleton", singletonSource)

	tree := Singleton(root)
	assert.Equal(t, KindSingletonRoot, tree.Kind)
	require.Len(t, tree.Children, 1)

	cls := tree.Children[0]
	assert.Equal(t, "Config", cls.Value)
	require.Len(t, cls.Children, 1)

	fn := cls.Children[0]
	assert.Equal(t, KindSingletonFunction, fn.Kind)
	assert.Equal(t, "get", fn.Value)
	require.Len(t, fn.Children, 2)
	assert.Equal(t, cpptree.Node{Kind: KindStaticInstanceDecl, Value: "static Config instance"}, fn.Children[0])
	assert.Equal(t, cpptree.Node{Kind: KindReturnIdentifier, Value: "instance"}, fn.Children[1])
}

func TestSingleton_RequiresReturnOfInstance(t *testing.T) {
	src := "class Config {\n    static Config& get() {\n        static Config instance;\n        return other;\n    }\n};\n"
	_, root := analyze(t, "singleton", src)
	assert.Empty(t, Singleton(root).Children)
}

// ---------------------------------------------------------------------------
// TestBuilder
// ---------------------------------------------------------------------------

func TestBuilder_TwoAssigningMethods(t *testing.T) {
	_, root := analyze(t, "builder", builderSource)

	tree := Builder(root)
	assert.Equal(t, KindBuilderRoot, tree.Kind)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "PizzaBuilder", tree.Children[0].Value)
	assert.Equal(t, []string{"setSize", "setCrust"}, values(tree.Children[0]))
	assert.Equal(t, KindBuilderMethod, tree.Children[0].Children[0].Kind)
}

// ---------------------------------------------------------------------------
// TestCreational / scaffolds
// ---------------------------------------------------------------------------

func TestCreational_Combined(t *testing.T) {
	s, root := analyze(t, "factory", factorySource+singletonSource)

	tree := Creational(s, root)
	assert.Equal(t, LabelCreational, tree.Value)
	require.Len(t, tree.Children, 2)
	assert.Equal(t, KindFactoryRoot, tree.Children[0].Kind)
	assert.Equal(t, KindSingletonRoot, tree.Children[1].Kind)
}

func TestCreational_NoPattern(t *testing.T) {
	s, root := analyze(t, "factory", builderSource)

	tree := Creational(s, root)
	assert.Equal(t, KindCreationalRoot, tree.Kind)
	assert.Equal(t, LabelNoPattern, tree.Value)
	assert.Empty(t, tree.Children)
}

func TestClassScaffold(t *testing.T) {
	s, _ := analyze(t, "factory", factorySource)

	tree := ClassScaffold(s)
	assert.Equal(t, KindCreationalEntry, tree.Kind)
	classes := s.ClassSymbols()
	require.Len(t, tree.Children, len(classes))
	for i, cls := range classes {
		assert.Equal(t, cls.Name+" | hash="+strconv.FormatUint(cls.Hash, 10), tree.Children[i].Value)
	}
}

func TestBehavioural(t *testing.T) {
	s, _ := analyze(t, "strategy", builderSource)

	tree := Behavioural(s)
	assert.Equal(t, KindBehaviouralEntry, tree.Kind)
	assert.Equal(t, []string{"setSize", "setCrust", "get", "set"}, values(tree))
}

func TestForPattern(t *testing.T) {
	s, root := analyze(t, "factory", factorySource)

	assert.Equal(t, KindFactoryRoot, ForPattern(s, root, "Factory").Kind)
	assert.Equal(t, KindSingletonRoot, ForPattern(s, root, "singleton").Kind)
	assert.Equal(t, KindBuilderRoot, ForPattern(s, root, "builder").Kind)
	assert.Equal(t, KindBehaviouralEntry, ForPattern(s, root, "observer").Kind)
	assert.Equal(t, KindCreationalRoot, ForPattern(s, root, "visitor").Kind)

	report := DetectAll(s, root)
	assert.Equal(t, KindCreationalRoot, report.Creational.Kind)
	assert.Equal(t, KindBuilderRoot, report.Builder.Kind)
	assert.Len(t, report.ClassScaffold.Children, 3)
}
