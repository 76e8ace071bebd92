package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/export"
	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/patterns"
	"github.com/dusk-indust/cppshadow/internal/source"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var factorySources = []cpptree.SourceFile{
	{Path: "widget.h", Content: "class Widget {\npublic:\n    int kind;\n};\n"},
	{Path: "factory.cpp", Content: `#include "widget.h"
class WidgetFactory {
public:
    Widget* make(int kind) {
        if (kind == 1) {
            return new Widget();
        }
        return nullptr;
    }
};
int main() {
    WidgetFactory f;
    return 0;
}
`},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newPipeline(opts Options) *Pipeline {
	if opts.SourcePattern == "" {
		opts.SourcePattern = "factory"
	}
	if opts.TargetPattern == "" {
		opts.TargetPattern = "singleton"
	}
	opts.Logger = quietLogger()
	return New(opts)
}

// drain closes the pipeline and collects every buffered event.
func drain(p *Pipeline) []ProgressEvent {
	p.Close()
	var events []ProgressEvent
	for ev := range p.Progress() {
		events = append(events, ev)
	}
	return events
}

type stubParser struct {
	err error
}

func (s *stubParser) Parse(_ context.Context, path string, _ []byte) (*graph.ParseResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &graph.ParseResult{File: graph.FileNode{Path: path, Language: graph.LangCpp}}, nil
}

func (s *stubParser) Close() error { return nil }

// ---------------------------------------------------------------------------
// TestRun
// ---------------------------------------------------------------------------

func TestRun_StagesAndReport(t *testing.T) {
	p := newPipeline(Options{})
	art, err := p.Run(context.Background(), factorySources)
	require.NoError(t, err)

	r := art.Report
	_, err = uuid.Parse(r.RunID)
	assert.NoError(t, err)
	assert.Equal(t, "factory", r.SourcePattern)
	assert.Equal(t, "singleton", r.TargetPattern)
	assert.Equal(t, "FactoryStructuralStrategy", r.Strategy)
	assert.Equal(t, 2, r.InputFileCount)
	assert.True(t, r.GraphConsistent)

	require.Len(t, r.Stages, len(Stages))
	peak := 0
	for i, m := range r.Stages {
		assert.Equal(t, Stages[i].String(), m.Name)
		peak = max(peak, m.EstimatedBytes)
	}
	assert.Equal(t, peak, r.PeakEstimatedBytes)
	assert.Positive(t, r.PeakEstimatedBytes)
	assert.Equal(t, 0, r.Stages[StageCrossCheckGrammar].EstimatedBytes)
	assert.Nil(t, r.GrammarCheck)

	require.Len(t, r.CrucialClasses, 1)
	assert.Equal(t, "WidgetFactory", r.CrucialClasses[0].Name)
	assert.Len(t, r.ClassRegistry, 2)
	assert.NotNil(t, r.Patterns)

	assert.Equal(t, export.Text(art.Shadow), art.Monolithic)
	assert.Contains(t, art.Monolithic, "WidgetFactory")
	assert.Equal(t, patterns.KindFactoryRoot, art.PatternTree.Kind)
	assert.Len(t, art.PatternTree.Children, 1)
	assert.Contains(t, art.BaseCode, "// Generated base code\n")
	assert.Contains(t, art.TargetCode, "auto& f = WidgetFactory::instance();")
}

func TestRun_ProgressEvents(t *testing.T) {
	p := newPipeline(Options{})
	_, err := p.Run(context.Background(), factorySources)
	require.NoError(t, err)

	counts := make(map[ProgressStatus]int)
	for _, ev := range drain(p) {
		counts[ev.Status]++
	}
	assert.Equal(t, len(Stages), counts[ProgressWorking])
	assert.Equal(t, len(Stages)-1, counts[ProgressComplete])
	assert.Equal(t, 1, counts[ProgressSkipped])
	assert.Zero(t, counts[ProgressFailed])
}

func TestRun_ShadowMatchesBuild(t *testing.T) {
	p := newPipeline(Options{})
	art, err := p.Run(context.Background(), factorySources)
	require.NoError(t, err)

	s := cpptree.NewSession()
	bundle := s.Build(factorySources, cpptree.BuildContext{SourcePattern: "factory", TargetPattern: "singleton"})
	assert.Equal(t, bundle.Shadow, art.Shadow)
	assert.Equal(t, bundle.Main, art.Main)
}

func TestRun_Validation(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		files  []cpptree.SourceFile
		expect error
	}{
		{"no source pattern", Options{SourcePattern: " ", TargetPattern: "singleton"}, factorySources, ErrNoSourcePattern},
		{"no target pattern", Options{SourcePattern: "factory", TargetPattern: "\t"}, factorySources, ErrNoTargetPattern},
		{"no files", Options{SourcePattern: "factory", TargetPattern: "singleton"}, nil, ErrNoInputFiles},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.Logger = quietLogger()
			_, err := New(tt.opts).Run(context.Background(), tt.files)
			assert.ErrorIs(t, err, tt.expect)
		})
	}
}

func TestRun_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newPipeline(Options{}).Run(ctx, factorySources)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_GrammarCheck(t *testing.T) {
	p := newPipeline(Options{Parser: &stubParser{}})
	art, err := p.Run(context.Background(), factorySources)
	require.NoError(t, err)

	check := art.Report.GrammarCheck
	require.NotNil(t, check)
	assert.Equal(t, 2, check.ParsedFiles)
	assert.ElementsMatch(t, []string{"widget.h:Widget", "factory.cpp:WidgetFactory"}, check.InventedClasses)
	assert.False(t, check.Agrees())
}

func TestRun_GrammarCheckFailure(t *testing.T) {
	boom := errors.New("boom")
	p := newPipeline(Options{Parser: &stubParser{err: boom}})

	_, err := p.Run(context.Background(), factorySources)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "CrossCheckGrammar")

	var failed []ProgressEvent
	for _, ev := range drain(p) {
		if ev.Status == ProgressFailed {
			failed = append(failed, ev)
		}
	}
	require.Len(t, failed, 1)
	assert.Equal(t, StageCrossCheckGrammar, failed[0].Stage)
}

func TestRun_Fixture(t *testing.T) {
	paths, err := source.Expand([]string{"../../testdata/fixtures/cpp_project"}, source.Options{RespectGitignore: true})
	require.NoError(t, err)
	require.Len(t, paths, 3)

	files, err := source.Load(context.Background(), paths)
	require.NoError(t, err)

	parser := graph.NewTreeSitterParser()
	defer parser.Close()

	p := newPipeline(Options{Parser: parser})
	art, err := p.Run(context.Background(), files)
	require.NoError(t, err)

	assert.True(t, art.Report.GraphConsistent)
	require.NotNil(t, art.Report.GrammarCheck)
	assert.Equal(t, 3, art.Report.GrammarCheck.ParsedFiles)
	assert.Equal(t, 2, art.Report.GrammarCheck.ConfirmedClasses)
	assert.Empty(t, art.Report.GrammarCheck.MissedClasses)
	assert.Contains(t, art.TargetCode, "static WidgetFactory& instance()")
}

// ---------------------------------------------------------------------------
// TestConsistent
// ---------------------------------------------------------------------------

func TestConsistent(t *testing.T) {
	main := cpptree.Node{Kind: cpptree.KindTranslationUnit, Hash: 1, Children: []cpptree.Node{{Kind: cpptree.KindFileUnit, Hash: 2}}}
	shadow := cpptree.Node{Kind: cpptree.KindTranslationUnit, Hash: 1, Children: []cpptree.Node{{Kind: cpptree.KindFileUnit, Hash: 2}}}
	stray := cpptree.Node{Kind: cpptree.KindTranslationUnit, Hash: 1, Children: []cpptree.Node{{Kind: cpptree.KindFileUnit, Hash: 3}}}

	assert.True(t, Consistent(main, shadow, "text"))
	assert.False(t, Consistent(main, shadow, ""))
	assert.False(t, Consistent(cpptree.Node{}, shadow, "text"))
	assert.False(t, Consistent(main, cpptree.Node{}, "text"))
	assert.False(t, Consistent(main, stray, "text"))
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "ParseBaseGraph", StageParseBaseGraph.String())
	assert.Equal(t, "ValidateGraphConsistency", StageValidateGraphConsistency.String())
	assert.Equal(t, "unknown", Stage(42).String())
	assert.Equal(t, "unknown", Stage(-1).String())
}
