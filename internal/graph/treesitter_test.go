package graph

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// findSymbol returns the first symbol with this qualified name, or nil.
func findSymbol(symbols []SymbolNode, qualified string) *SymbolNode {
	for i := range symbols {
		if symbols[i].QualifiedName() == qualified {
			return &symbols[i]
		}
	}
	return nil
}

func findEdgesByKind(edges []Edge, kind EdgeKind) []Edge {
	var out []Edge
	for _, e := range edges {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// readFixture reads a file relative to the repository root. Tests run from
// internal/graph/.
func readFixture(t *testing.T, relPath string) []byte {
	t.Helper()
	data, err := os.ReadFile("../../" + relPath)
	require.NoError(t, err, "reading fixture %s", relPath)
	return data
}

func parse(t *testing.T, path string, source []byte) *ParseResult {
	t.Helper()
	p := NewTreeSitterParser()
	t.Cleanup(func() { _ = p.Close() })
	res, err := p.Parse(context.Background(), path, source)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_Fixture
// ---------------------------------------------------------------------------

func TestTreeSitterParser_Fixture(t *testing.T) {
	const dir = "testdata/fixtures/cpp_project/"

	t.Run("widget.h", func(t *testing.T) {
		res := parse(t, "include/widget.h", readFixture(t, dir+"include/widget.h"))
		assert.Equal(t, FileNode{Path: "include/widget.h", Language: LangCpp, LOC: 10}, res.File)

		widget := findSymbol(res.Symbols, "Widget")
		require.NotNil(t, widget)
		assert.Equal(t, SymbolKindClass, widget.Kind)
		assert.Equal(t, 4, widget.StartLine)
		assert.Equal(t, 8, widget.EndLine)
		assert.Equal(t, "class Widget", widget.Signature)

		ctor := findSymbol(res.Symbols, "Widget::Widget")
		require.NotNil(t, ctor)
		assert.Equal(t, SymbolKindMethod, ctor.Kind)
		assert.Equal(t, 6, ctor.StartLine)

		assert.Empty(t, findEdgesByKind(res.Edges, EdgeKindIncludes))
		assert.Len(t, findEdgesByKind(res.Edges, EdgeKindDefines), 2)
	})

	t.Run("factory.h", func(t *testing.T) {
		res := parse(t, "include/factory.h", readFixture(t, dir+"include/factory.h"))

		require.NotNil(t, findSymbol(res.Symbols, "WidgetFactory"))
		method := findSymbol(res.Symbols, "WidgetFactory::make")
		require.NotNil(t, method)
		assert.Equal(t, "Widget* make(int kind)", method.Signature)
		assert.Equal(t, 6, method.StartLine)
		assert.Equal(t, 11, method.EndLine)

		assert.Equal(t, []Edge{
			{SourceID: "include/factory.h", TargetID: "widget.h", Kind: EdgeKindIncludes},
			{SourceID: "include/factory.h", TargetID: "memory", Kind: EdgeKindIncludes},
		}, findEdgesByKind(res.Edges, EdgeKindIncludes))
	})

	t.Run("main.cpp", func(t *testing.T) {
		res := parse(t, "src/main.cpp", readFixture(t, dir+"src/main.cpp"))

		render := findSymbol(res.Symbols, "render")
		require.NotNil(t, render)
		assert.Equal(t, SymbolKindFunction, render.Kind)
		assert.Equal(t, "int render(Widget* w)", render.Signature)
		require.NotNil(t, findSymbol(res.Symbols, "main"))
		assert.Len(t, res.Symbols, 2)
	})
}

// ---------------------------------------------------------------------------
// TestTreeSitterParser_Definitions
// ---------------------------------------------------------------------------

func TestTreeSitterParser_Definitions(t *testing.T) {
	src := []byte(`class Fwd;
int proto(int a);
namespace app {
struct Point { int x; };
class Factory {
public:
    Widget* make(int k);
    ~Factory() {}
};
}
Widget* app::Factory::make(int k) { return nullptr; }
const Widget& current() { static Widget w; return w; }
`)
	res := parse(t, "defs.cpp", src)

	var names []string
	for _, s := range res.Symbols {
		names = append(names, string(s.Kind)+" "+s.QualifiedName())
	}
	assert.Equal(t, []string{
		"struct Point",
		"class Factory",
		"method Factory::~Factory",
		"method Factory::make",
		"function current",
	}, names)
}

func TestTreeSitterParser_EmptyFile(t *testing.T) {
	res := parse(t, "empty.cpp", nil)
	assert.Empty(t, res.Symbols)
	assert.Empty(t, res.Edges)
	assert.Equal(t, 0, res.File.LOC)
}

func TestTreeSitterParser_CanceledContext(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Parse(ctx, "a.cpp", []byte("int x;"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCountLOC(t *testing.T) {
	assert.Equal(t, 0, countLOC(nil))
	assert.Equal(t, 1, countLOC([]byte("int x;")))
	assert.Equal(t, 1, countLOC([]byte("int x;\n")))
	assert.Equal(t, 2, countLOC([]byte("a\nb")))
}
