package mcptools

import (
	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/export"
	"github.com/dusk-indust/cppshadow/internal/graph"
)

// --- MCP tool inputs and outputs ---
// The MCP SDK derives each tool's JSON schema from these structs.

// AnalyzeSourcesInput is the input for the analyze_sources tool.
type AnalyzeSourcesInput struct {
	Paths           []string `json:"paths" jsonschema:"C++ files or directories to analyze"`
	SourcePattern   string   `json:"sourcePattern" jsonschema:"pattern whose classes are tracked: factory, singleton, builder, strategy or observer"`
	TargetPattern   string   `json:"targetPattern" jsonschema:"pattern the sources are rewritten towards"`
	Exclude         []string `json:"exclude,omitempty" jsonschema:"glob patterns to skip when walking directories"`
	IgnoreGitignore bool     `json:"ignoreGitignore,omitempty" jsonschema:"also collect files matched by .gitignore"`
}

// AnalyzeSourcesOutput summarizes one analysis.
type AnalyzeSourcesOutput struct {
	AnalysisID      string               `json:"analysisId"`
	RunID           string               `json:"runId"`
	Cached          bool                 `json:"cached"`
	Files           []string             `json:"files"`
	Classes         int                  `json:"classes"`
	Functions       int                  `json:"functions"`
	Usages          int                  `json:"usages"`
	CrucialClasses  []string             `json:"crucialClasses"`
	GraphConsistent bool                 `json:"graphConsistent"`
	GrammarAgrees   bool                 `json:"grammarAgrees"`
	Graph           graph.GraphStats     `json:"graph"`
	Stages          []export.StageMetric `json:"stages"`
}

// QuerySymbolsInput is the input for the query_symbols tool.
type QuerySymbolsInput struct {
	AnalysisID string `json:"analysisId,omitempty" jsonschema:"analysis to query (default: the latest)"`
	Query      string `json:"query" jsonschema:"substring of the qualified symbol name, case-insensitive"`
	Kind       string `json:"kind,omitempty" jsonschema:"filter by kind: class, struct, function, method"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of results (default: 20)"`
}

// QuerySymbolsOutput is the result of the query_symbols tool.
type QuerySymbolsOutput struct {
	Symbols []graph.SymbolNode `json:"symbols"`
	Total   int                `json:"total"`
}

// GetClassUsagesInput is the input for the get_class_usages tool.
type GetClassUsagesInput struct {
	AnalysisID string `json:"analysisId,omitempty" jsonschema:"analysis to query (default: the latest)"`
	ClassName  string `json:"className" jsonschema:"class name as written in the source"`
}

// GetClassUsagesOutput lists the definitions and usages of one class.
type GetClassUsagesOutput struct {
	Definitions []cpptree.Symbol `json:"definitions"`
	Crucial     bool             `json:"crucial"`
	Usages      []cpptree.Usage  `json:"usages"`
}

// GetShadowTreeInput is the input for the get_shadow_tree tool.
type GetShadowTreeInput struct {
	AnalysisID  string `json:"analysisId,omitempty" jsonschema:"analysis to query (default: the latest)"`
	IncludeTree bool   `json:"includeTree,omitempty" jsonschema:"also return the tree as structured nodes"`
}

// GetShadowTreeOutput carries the shadow tree of an analysis. Tree holds a
// cpptree.Node; it is typed any because schema inference rejects recursive
// types.
type GetShadowTreeOutput struct {
	Text      string `json:"text"`
	NodeCount int    `json:"nodeCount"`
	Tree      any    `json:"tree,omitempty"`
}

// GetDependenciesInput is the input for the get_dependencies tool.
type GetDependenciesInput struct {
	AnalysisID string `json:"analysisId,omitempty" jsonschema:"analysis to query (default: the latest)"`
	Path       string `json:"path" jsonschema:"file path as analyzed"`
	Direction  string `json:"direction,omitempty" jsonschema:"upstream (what it includes or uses) or downstream (what includes or uses it). Default: upstream"`
	MaxDepth   int    `json:"maxDepth,omitempty" jsonschema:"maximum traversal depth (default: 5)"`
}

// GetDependenciesOutput is the result of the get_dependencies tool.
type GetDependenciesOutput struct {
	Chains []graph.DependencyChain `json:"chains"`
}

// AssessImpactInput is the input for the assess_impact tool.
type AssessImpactInput struct {
	AnalysisID   string   `json:"analysisId,omitempty" jsonschema:"analysis to query (default: the latest)"`
	ChangedFiles []string `json:"changedFiles" jsonschema:"file paths that will be modified"`
}

// AssessImpactOutput is the result of the assess_impact tool.
type AssessImpactOutput struct {
	Impact graph.ImpactResult `json:"impact"`
}

// GetClustersInput is the input for the get_clusters tool.
type GetClustersInput struct {
	AnalysisID string `json:"analysisId,omitempty" jsonschema:"analysis to query (default: the latest)"`
}

// GetClustersOutput is the result of the get_clusters tool.
type GetClustersOutput struct {
	Clusters []graph.ClusterNode `json:"clusters"`
}
