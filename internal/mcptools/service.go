package mcptools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/export"
	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/pipeline"
	"github.com/dusk-indust/cppshadow/internal/source"
)

const (
	defaultCacheSize = 16
	defaultLimit     = 20
	defaultMaxDepth  = 5
	analysisIDLength = 16
)

// analysis is one finished run with its session and file graph. It is
// never mutated after creation, so handlers read it without locking.
type analysis struct {
	id        string
	files     []string
	session   *cpptree.Session
	artifacts *pipeline.Artifacts
	store     graph.Store
}

// AnalysisService runs analyses and answers queries against them. Results
// are cached by a fingerprint of the patterns and file contents, so
// re-analyzing unchanged sources is free.
type AnalysisService struct {
	parser graph.Parser
	logger *slog.Logger
	cache  *lru.Cache[string, *analysis]

	mu     sync.Mutex
	latest string
}

// NewAnalysisService creates a service keeping up to cacheSize analyses.
// A nil parser skips the grammar cross-check; a nil logger uses
// slog.Default().
func NewAnalysisService(parser graph.Parser, cacheSize int, logger *slog.Logger) (*AnalysisService, error) {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &AnalysisService{parser: parser, logger: logger}
	cache, err := lru.NewWithEvict[string, *analysis](cacheSize, s.evicted)
	if err != nil {
		return nil, fmt.Errorf("create analysis cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

func (s *AnalysisService) evicted(id string, a *analysis) {
	if err := a.store.Close(); err != nil {
		s.logger.Warn("close evicted graph", "analysis_id", id, "err", err)
	}
}

// Close drops every cached analysis.
func (s *AnalysisService) Close() {
	s.cache.Purge()
}

// AnalyzeSources expands and loads the given paths, runs the pipeline and
// builds the file graph.
func (s *AnalysisService) AnalyzeSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeSourcesInput,
) (*mcp.CallToolResult, AnalyzeSourcesOutput, error) {
	if len(input.Paths) == 0 {
		return nil, AnalyzeSourcesOutput{}, fmt.Errorf("paths: %w", ErrMissingInput)
	}

	paths, err := source.Expand(input.Paths, source.Options{
		Exclude:          input.Exclude,
		RespectGitignore: !input.IgnoreGitignore,
	})
	if err != nil {
		return nil, AnalyzeSourcesOutput{}, err
	}
	files, err := source.Load(ctx, paths)
	if err != nil {
		return nil, AnalyzeSourcesOutput{}, err
	}

	id := Fingerprint(input.SourcePattern, input.TargetPattern, files)
	if a, ok := s.cache.Get(id); ok {
		s.setLatest(id)
		out, err := summarize(ctx, a)
		out.Cached = true
		return nil, out, err
	}

	a, err := s.analyze(ctx, id, input.SourcePattern, input.TargetPattern, files)
	if err != nil {
		return nil, AnalyzeSourcesOutput{}, err
	}
	s.cache.Add(id, a)
	s.setLatest(id)

	out, err := summarize(ctx, a)
	return nil, out, err
}

func (s *AnalysisService) analyze(ctx context.Context, id, sourcePattern, targetPattern string, files []cpptree.SourceFile) (*analysis, error) {
	p := pipeline.New(pipeline.Options{
		SourcePattern: sourcePattern,
		TargetPattern: targetPattern,
		Parser:        s.parser,
		Logger:        s.logger,
	})
	defer p.Close()

	art, err := p.Run(ctx, files)
	if err != nil {
		return nil, err
	}

	store := graph.NewMemStore()
	if _, err := graph.Ingest(ctx, store, p.Session(), art.Main, files); err != nil {
		store.Close()
		return nil, fmt.Errorf("ingest graph: %w", err)
	}

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return &analysis{id: id, files: paths, session: p.Session(), artifacts: art, store: store}, nil
}

func summarize(ctx context.Context, a *analysis) (AnalyzeSourcesOutput, error) {
	stats, err := a.store.Stats(ctx)
	if err != nil {
		return AnalyzeSourcesOutput{}, fmt.Errorf("stats: %w", err)
	}
	r := a.artifacts.Report

	crucial := make([]string, 0, len(r.CrucialClasses))
	for _, c := range r.CrucialClasses {
		crucial = append(crucial, c.Name)
	}
	return AnalyzeSourcesOutput{
		AnalysisID:      a.id,
		RunID:           r.RunID,
		Files:           a.files,
		Classes:         len(r.ClassRegistry),
		Functions:       len(r.FunctionRegistry),
		Usages:          len(r.ClassUsages),
		CrucialClasses:  crucial,
		GraphConsistent: r.GraphConsistent,
		GrammarAgrees:   r.GrammarCheck == nil || r.GrammarCheck.Agrees(),
		Graph:           *stats,
		Stages:          r.Stages,
	}, nil
}

func (s *AnalysisService) setLatest(id string) {
	s.mu.Lock()
	s.latest = id
	s.mu.Unlock()
}

// lookup returns the analysis with id, or the latest one when id is empty.
func (s *AnalysisService) lookup(id string) (*analysis, error) {
	if id == "" {
		s.mu.Lock()
		id = s.latest
		s.mu.Unlock()
	}
	if id == "" {
		return nil, ErrNoAnalysis
	}
	a, ok := s.cache.Get(id)
	if !ok {
		return nil, fmt.Errorf("analysis %s: %w", id, ErrNoAnalysis)
	}
	return a, nil
}

// QuerySymbols searches class and function symbols by qualified name.
func (s *AnalysisService) QuerySymbols(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuerySymbolsInput,
) (*mcp.CallToolResult, QuerySymbolsOutput, error) {
	a, err := s.lookup(input.AnalysisID)
	if err != nil {
		return nil, QuerySymbolsOutput{}, err
	}
	limit := input.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	// Filter before limiting so a kind filter still fills the page.
	symbols, err := a.store.QuerySymbols(ctx, input.Query, 0)
	if err != nil {
		return nil, QuerySymbolsOutput{}, fmt.Errorf("query symbols: %w", err)
	}
	if input.Kind != "" {
		kind := graph.SymbolKind(strings.ToLower(input.Kind))
		filtered := symbols[:0]
		for _, sym := range symbols {
			if sym.Kind == kind {
				filtered = append(filtered, sym)
			}
		}
		symbols = filtered
	}
	total := len(symbols)
	if len(symbols) > limit {
		symbols = symbols[:limit]
	}
	return nil, QuerySymbolsOutput{Symbols: nonNil(symbols), Total: total}, nil
}

// GetClassUsages returns the definitions of a class and every usage that
// resolved to it.
func (s *AnalysisService) GetClassUsages(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetClassUsagesInput,
) (*mcp.CallToolResult, GetClassUsagesOutput, error) {
	if input.ClassName == "" {
		return nil, GetClassUsagesOutput{}, fmt.Errorf("className: %w", ErrMissingInput)
	}
	a, err := s.lookup(input.AnalysisID)
	if err != nil {
		return nil, GetClassUsagesOutput{}, err
	}

	_, crucial := a.session.IsCrucial(input.ClassName)
	return nil, GetClassUsagesOutput{
		Definitions: nonNil(a.session.ClassesByName(input.ClassName)),
		Crucial:     crucial,
		Usages:      nonNil(a.session.UsagesByName(input.ClassName)),
	}, nil
}

// GetShadowTree returns the shadow tree in its text rendering.
func (s *AnalysisService) GetShadowTree(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input GetShadowTreeInput,
) (*mcp.CallToolResult, GetShadowTreeOutput, error) {
	a, err := s.lookup(input.AnalysisID)
	if err != nil {
		return nil, GetShadowTreeOutput{}, err
	}
	shadow := a.artifacts.Shadow
	out := GetShadowTreeOutput{
		Text:      export.Text(shadow),
		NodeCount: shadow.Count(),
	}
	if input.IncludeTree {
		out.Tree = shadow
	}
	return nil, out, nil
}

// GetDependencies walks include and dependency edges from a file.
func (s *AnalysisService) GetDependencies(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetDependenciesInput,
) (*mcp.CallToolResult, GetDependenciesOutput, error) {
	if input.Path == "" {
		return nil, GetDependenciesOutput{}, fmt.Errorf("path: %w", ErrMissingInput)
	}
	a, err := s.lookup(input.AnalysisID)
	if err != nil {
		return nil, GetDependenciesOutput{}, err
	}
	maxDepth := input.MaxDepth
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}

	direction := graph.ParseDirection(strings.ToLower(input.Direction))
	chains, err := a.store.GetDependencies(ctx, input.Path, direction, maxDepth)
	if err != nil {
		return nil, GetDependenciesOutput{}, fmt.Errorf("get dependencies: %w", err)
	}
	return nil, GetDependenciesOutput{Chains: nonNil(chains)}, nil
}

// AssessImpact computes which analyzed files are affected by changing others.
func (s *AnalysisService) AssessImpact(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AssessImpactInput,
) (*mcp.CallToolResult, AssessImpactOutput, error) {
	if len(input.ChangedFiles) == 0 {
		return nil, AssessImpactOutput{}, fmt.Errorf("changedFiles: %w", ErrMissingInput)
	}
	a, err := s.lookup(input.AnalysisID)
	if err != nil {
		return nil, AssessImpactOutput{}, err
	}
	impact, err := a.store.AssessImpact(ctx, input.ChangedFiles)
	if err != nil {
		return nil, AssessImpactOutput{}, fmt.Errorf("assess impact: %w", err)
	}
	return nil, AssessImpactOutput{Impact: *impact}, nil
}

// GetClusters returns the file clusters of an analysis.
func (s *AnalysisService) GetClusters(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetClustersInput,
) (*mcp.CallToolResult, GetClustersOutput, error) {
	a, err := s.lookup(input.AnalysisID)
	if err != nil {
		return nil, GetClustersOutput{}, err
	}
	clusters, err := a.store.GetClusters(ctx)
	if err != nil {
		return nil, GetClustersOutput{}, fmt.Errorf("get clusters: %w", err)
	}
	return nil, GetClustersOutput{Clusters: nonNil(clusters)}, nil
}

// Fingerprint identifies an analysis by its patterns and the path and
// content of every file, in order.
func Fingerprint(sourcePattern, targetPattern string, files []cpptree.SourceFile) string {
	h := sha256.New()
	for _, part := range []string{sourcePattern, targetPattern} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	for _, f := range files {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write([]byte(f.Content))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:analysisIDLength]
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
