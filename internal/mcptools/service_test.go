package mcptools

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// fixtureDir returns the absolute path of the cpp_project fixture. Tests run
// from internal/mcptools/.
func fixtureDir(t *testing.T) string {
	t.Helper()
	abs, err := filepath.Abs("../../testdata/fixtures/cpp_project")
	require.NoError(t, err)
	return abs
}

func fixtureFile(t *testing.T, rel string) string {
	t.Helper()
	return filepath.Join(fixtureDir(t), rel)
}

func newService(t *testing.T, cacheSize int) *AnalysisService {
	t.Helper()
	svc, err := NewAnalysisService(nil, cacheSize, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func analyzeFixture(t *testing.T, svc *AnalysisService, sourcePattern string) AnalyzeSourcesOutput {
	t.Helper()
	_, out, err := svc.AnalyzeSources(context.Background(), nil, AnalyzeSourcesInput{
		Paths:         []string{fixtureDir(t)},
		SourcePattern: sourcePattern,
		TargetPattern: "singleton",
	})
	require.NoError(t, err)
	return out
}

// ---------------------------------------------------------------------------
// analyze_sources
// ---------------------------------------------------------------------------

func TestAnalyzeSources_Fixture(t *testing.T) {
	svc := newService(t, 4)
	out := analyzeFixture(t, svc, "factory")

	assert.Len(t, out.AnalysisID, analysisIDLength)
	assert.False(t, out.Cached)
	assert.Equal(t, []string{
		fixtureFile(t, "include/factory.h"),
		fixtureFile(t, "include/widget.h"),
		fixtureFile(t, "src/main.cpp"),
	}, out.Files, "generated/ is gitignored")
	assert.Equal(t, 2, out.Classes)
	assert.Equal(t, []string{"WidgetFactory"}, out.CrucialClasses)
	assert.True(t, out.GraphConsistent)
	assert.True(t, out.GrammarAgrees, "no parser means nothing to disagree with")
	assert.Equal(t, 3, out.Graph.FileCount)
	assert.Equal(t, 1, out.Graph.ClusterCount)
	assert.Len(t, out.Stages, 8)
}

func TestAnalyzeSources_Cached(t *testing.T) {
	svc := newService(t, 4)
	first := analyzeFixture(t, svc, "factory")
	second := analyzeFixture(t, svc, "factory")

	assert.True(t, second.Cached)
	assert.Equal(t, first.AnalysisID, second.AnalysisID)
	assert.Equal(t, first.RunID, second.RunID)

	other := analyzeFixture(t, svc, "builder")
	assert.False(t, other.Cached)
	assert.NotEqual(t, first.AnalysisID, other.AnalysisID)
}

func TestAnalyzeSources_Eviction(t *testing.T) {
	svc := newService(t, 1)
	first := analyzeFixture(t, svc, "factory")
	analyzeFixture(t, svc, "builder")

	_, _, err := svc.GetClusters(context.Background(), nil, GetClustersInput{AnalysisID: first.AnalysisID})
	assert.ErrorIs(t, err, ErrNoAnalysis)
}

func TestAnalyzeSources_Errors(t *testing.T) {
	svc := newService(t, 4)
	ctx := context.Background()

	_, _, err := svc.AnalyzeSources(ctx, nil, AnalyzeSourcesInput{SourcePattern: "factory", TargetPattern: "singleton"})
	assert.ErrorIs(t, err, ErrMissingInput)

	_, _, err = svc.AnalyzeSources(ctx, nil, AnalyzeSourcesInput{
		Paths:         []string{filepath.Join(t.TempDir(), "missing.cpp")},
		SourcePattern: "factory",
		TargetPattern: "singleton",
	})
	assert.Error(t, err)

	_, _, err = svc.AnalyzeSources(ctx, nil, AnalyzeSourcesInput{Paths: []string{fixtureDir(t)}, TargetPattern: "singleton"})
	assert.Error(t, err)
}

func TestLookup_NoAnalysis(t *testing.T) {
	svc := newService(t, 4)
	_, _, err := svc.QuerySymbols(context.Background(), nil, QuerySymbolsInput{Query: "x"})
	assert.ErrorIs(t, err, ErrNoAnalysis)
}

// ---------------------------------------------------------------------------
// Query tools
// ---------------------------------------------------------------------------

func TestQuerySymbols(t *testing.T) {
	svc := newService(t, 4)
	analyzeFixture(t, svc, "factory")
	ctx := context.Background()

	_, out, err := svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "widget", Kind: "CLASS"})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	var names []string
	for _, s := range out.Symbols {
		names = append(names, s.QualifiedName())
	}
	assert.ElementsMatch(t, []string{"Widget", "WidgetFactory"}, names)

	_, out, err = svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "widget", Kind: "class", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Total)
	assert.Len(t, out.Symbols, 1)

	_, out, err = svc.QuerySymbols(ctx, nil, QuerySymbolsInput{Query: "nothing-matches"})
	require.NoError(t, err)
	assert.Zero(t, out.Total)
	assert.NotNil(t, out.Symbols)
}

func TestGetClassUsages(t *testing.T) {
	svc := newService(t, 4)
	analyzeFixture(t, svc, "factory")
	ctx := context.Background()

	_, out, err := svc.GetClassUsages(ctx, nil, GetClassUsagesInput{ClassName: "Widget"})
	require.NoError(t, err)
	require.Len(t, out.Definitions, 1)
	assert.Equal(t, fixtureFile(t, "include/widget.h"), out.Definitions[0].FilePath)
	assert.False(t, out.Crucial)
	assert.NotEmpty(t, out.Usages)
	for _, u := range out.Usages {
		assert.Equal(t, "Widget", u.Name)
	}

	_, out, err = svc.GetClassUsages(ctx, nil, GetClassUsagesInput{ClassName: "WidgetFactory"})
	require.NoError(t, err)
	assert.True(t, out.Crucial)

	_, out, err = svc.GetClassUsages(ctx, nil, GetClassUsagesInput{ClassName: "Missing"})
	require.NoError(t, err)
	assert.Empty(t, out.Definitions)
	assert.NotNil(t, out.Usages)

	_, _, err = svc.GetClassUsages(ctx, nil, GetClassUsagesInput{})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestGetShadowTree(t *testing.T) {
	svc := newService(t, 4)
	analyzeFixture(t, svc, "factory")

	_, out, err := svc.GetShadowTree(context.Background(), nil, GetShadowTreeInput{})
	require.NoError(t, err)
	assert.Contains(t, out.Text, "WidgetFactory")
	assert.Positive(t, out.NodeCount)
	assert.Nil(t, out.Tree)

	_, out, err = svc.GetShadowTree(context.Background(), nil, GetShadowTreeInput{IncludeTree: true})
	require.NoError(t, err)
	tree, ok := out.Tree.(cpptree.Node)
	require.True(t, ok)
	assert.Equal(t, out.NodeCount, tree.Count())
}

func TestGetDependencies(t *testing.T) {
	svc := newService(t, 4)
	analyzeFixture(t, svc, "factory")
	ctx := context.Background()
	mainPath := fixtureFile(t, "src/main.cpp")

	_, out, err := svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: mainPath})
	require.NoError(t, err)
	var reached []string
	for _, c := range out.Chains {
		assert.Equal(t, mainPath, c.Nodes[0])
		reached = append(reached, c.Nodes[len(c.Nodes)-1])
	}
	assert.ElementsMatch(t, []string{fixtureFile(t, "include/factory.h"), fixtureFile(t, "include/widget.h")}, reached)

	_, out, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{Path: mainPath, Direction: "Downstream"})
	require.NoError(t, err)
	assert.Empty(t, out.Chains)

	_, _, err = svc.GetDependencies(ctx, nil, GetDependenciesInput{})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestAssessImpact(t *testing.T) {
	svc := newService(t, 4)
	analyzeFixture(t, svc, "factory")

	_, out, err := svc.AssessImpact(context.Background(), nil, AssessImpactInput{
		ChangedFiles: []string{fixtureFile(t, "include/widget.h")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{fixtureFile(t, "include/factory.h"), fixtureFile(t, "src/main.cpp")}, out.Impact.TransitivelyAffected)
	assert.InDelta(t, 2.0/3.0, out.Impact.RiskScore, 1e-9)

	_, _, err = svc.AssessImpact(context.Background(), nil, AssessImpactInput{})
	assert.ErrorIs(t, err, ErrMissingInput)
}

func TestGetClusters(t *testing.T) {
	svc := newService(t, 4)
	analyzeFixture(t, svc, "factory")

	_, out, err := svc.GetClusters(context.Background(), nil, GetClustersInput{})
	require.NoError(t, err)
	require.Len(t, out.Clusters, 1)
	assert.Len(t, out.Clusters[0].Members, 3)
}

// ---------------------------------------------------------------------------
// Fingerprint
// ---------------------------------------------------------------------------

func TestFingerprint(t *testing.T) {
	files := []cpptree.SourceFile{{Path: "a.cpp", Content: "class A { };"}}
	base := Fingerprint("factory", "singleton", files)

	assert.Len(t, base, analysisIDLength)
	assert.Equal(t, base, Fingerprint("factory", "singleton", files))
	assert.NotEqual(t, base, Fingerprint("builder", "singleton", files))
	assert.NotEqual(t, base, Fingerprint("factory", "singleton", []cpptree.SourceFile{{Path: "a.cpp", Content: "class B { };"}}))
	assert.NotEqual(t, base, Fingerprint("factory", "singleton", []cpptree.SourceFile{{Path: "b.cpp", Content: "class A { };"}}))
	assert.NotEqual(t, Fingerprint("ab", "c", nil), Fingerprint("a", "bc", nil))
}
