//go:build cgo

package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/graph"
)

func TestGraphContext(t *testing.T) {
	sources := []cpptree.SourceFile{
		{Path: "src/widget.h", Content: "class Widget { int kind; };\n"},
		{Path: "src/factory.h", Content: "#include \"widget.h\"\nclass WidgetFactory { Widget* make() { return new Widget(); } };\n"},
		{Path: "src/main.cpp", Content: "#include \"factory.h\"\nint run() { WidgetFactory f; return 0; }\n"},
	}
	s := cpptree.NewSession()
	bundle := s.Build(sources, cpptree.BuildContext{SourcePattern: "factory", TargetPattern: "singleton"})
	store := graph.NewMemStore()
	_, err := graph.Ingest(context.Background(), store, s, bundle.Main, sources)
	require.NoError(t, err)

	text, err := graphContext(context.Background(), store, "WidgetFactory")
	require.NoError(t, err)
	assert.Contains(t, text, `## Graph context for "WidgetFactory"`)
	assert.Contains(t, text, "- `class WidgetFactory` in `src/factory.h` (crucial)")
	assert.Contains(t, text, "**Includes (upstream from `src/factory.h`):**\n- `src/widget.h`\n")
	assert.Contains(t, text, "**Dependents (1 files use `src/factory.h`):**\n- `src/main.cpp`\n")
	assert.Contains(t, text, "**Cluster:** src")

	text, err = graphContext(context.Background(), store, "nothing")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestRun_ContextWithoutGraph(t *testing.T) {
	stdout, _, err := runCLI(t, "context", "-graph-path", t.TempDir()+"/none", "Widget")
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestRun_DiagramWithoutGraph(t *testing.T) {
	_, _, err := runCLI(t, "diagram", "-graph-path", t.TempDir()+"/none")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no graph found")
}
