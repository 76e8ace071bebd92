package status

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/pipeline"
)

func writeRun(t *testing.T, dir string) pipeline.OutputPaths {
	t.Helper()
	p := pipeline.New(pipeline.Options{
		SourcePattern: "factory",
		TargetPattern: "singleton",
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	defer p.Close()

	art, err := p.Run(context.Background(), []cpptree.SourceFile{
		{Path: "factory.cpp", Content: "class WidgetFactory { Widget* make() { return new Widget(); } };\n"},
	})
	require.NoError(t, err)
	paths, err := pipeline.WriteOutputs(dir, art)
	require.NoError(t, err)
	return paths
}

func TestScan(t *testing.T) {
	dir := t.TempDir()
	paths := writeRun(t, dir)
	require.NoError(t, os.Remove(paths.ShadowTreeHTML))

	st, err := Scan(dir)
	require.NoError(t, err)

	assert.NotEmpty(t, st.RunID)
	assert.Equal(t, "factory", st.SourcePattern)
	assert.Equal(t, "singleton", st.TargetPattern)
	assert.Equal(t, 1, st.InputFiles)
	assert.True(t, st.GraphConsistent)
	assert.True(t, st.GrammarAgrees)
	assert.Len(t, st.Stages, len(pipeline.Stages))

	require.Len(t, st.Outputs, 10)
	assert.Equal(t, 1, st.Missing)
	for _, o := range st.Outputs {
		if o.Path == paths.ShadowTreeHTML {
			assert.False(t, o.Present)
			continue
		}
		assert.True(t, o.Present, o.Label)
		assert.Positive(t, o.Size, o.Label)
	}
}

func TestScan_NoRun(t *testing.T) {
	_, err := Scan(t.TempDir())
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestScan_BadReport(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte("{"), 0o644))

	_, err := Scan(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoRun)
}
