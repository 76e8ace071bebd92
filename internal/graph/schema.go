package graph

import "strconv"

// NodeKind classifies nodes in the project graph.
type NodeKind string

const (
	NodeKindFile    NodeKind = "file"
	NodeKindSymbol  NodeKind = "symbol"
	NodeKindCluster NodeKind = "cluster"
)

// SymbolKind classifies C++ symbols.
type SymbolKind string

const (
	SymbolKindClass    SymbolKind = "class"
	SymbolKindStruct   SymbolKind = "struct"
	SymbolKindFunction SymbolKind = "function"
	SymbolKindMethod   SymbolKind = "method"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindDefines   EdgeKind = "DEFINES"    // file -> symbol
	EdgeKindIncludes  EdgeKind = "INCLUDES"   // file -> file, from #include
	EdgeKindDependsOn EdgeKind = "DEPENDS_ON" // file -> file, from a referenced class
	EdgeKindUses      EdgeKind = "USES"       // file -> class symbol
	EdgeKindMemberOf  EdgeKind = "MEMBER_OF"  // method -> class symbol
	EdgeKindBelongs   EdgeKind = "BELONGS"    // file -> cluster
)

// Valid reports whether k is one of the edge kinds above.
func (k EdgeKind) Valid() bool {
	switch k {
	case EdgeKindDefines, EdgeKindIncludes, EdgeKindDependsOn, EdgeKindUses, EdgeKindMemberOf, EdgeKindBelongs:
		return true
	}
	return false
}

// FileEdgeKinds are the edge kinds that connect two files. Dependency
// traversal, impact analysis and clustering only follow these.
var FileEdgeKinds = []EdgeKind{EdgeKindIncludes, EdgeKindDependsOn}

// IsFileEdge reports whether k connects two file nodes.
func IsFileEdge(k EdgeKind) bool {
	return k == EdgeKindIncludes || k == EdgeKindDependsOn
}

// Language identifies the grammar a file was parsed with.
type Language string

const (
	LangCpp Language = "cpp"
)

// --- Models ---

// FileNode represents a source file in the project graph.
type FileNode struct {
	Path     string   `json:"path"`
	Language Language `json:"language"`
	LOC      int      `json:"loc"`
}

// SymbolNode represents a class, struct or function definition.
//
// NameHash and ContextualHash are carried as decimal strings because the
// graph backend has no unsigned 64-bit column type.
//
// Discriminator tells apart symbols that share a file and qualified name:
// "(params)" for functions and methods, "#index" for a repeated class
// declaration.
type SymbolNode struct {
	Name            string     `json:"name"`
	Kind            SymbolKind `json:"kind"`
	Owner           string     `json:"owner,omitempty"`
	Discriminator   string     `json:"discriminator,omitempty"`
	Signature       string     `json:"signature,omitempty"`
	FilePath        string     `json:"filePath"`
	NameHash        string     `json:"nameHash,omitempty"`
	ContextualHash  string     `json:"contextualHash,omitempty"`
	DefinitionIndex int        `json:"definitionIndex,omitempty"`
	Crucial         bool       `json:"crucial,omitempty"`
	StartLine       int        `json:"startLine,omitempty"`
	EndLine         int        `json:"endLine,omitempty"`
}

// QualifiedName returns Owner::Name for members and Name otherwise.
func (s SymbolNode) QualifiedName() string {
	if s.Owner == "" {
		return s.Name
	}
	return s.Owner + "::" + s.Name
}

// ID is the graph identifier of the symbol:
// "filePath:qualifiedName" followed by the discriminator.
func (s SymbolNode) ID() string {
	return symbolID(s.FilePath, s.QualifiedName()) + s.Discriminator
}

// symbolID builds the composite key used for symbol nodes and edges.
func symbolID(filePath, qualifiedName string) string {
	return filePath + ":" + qualifiedName
}

// FormatHash renders a 64-bit hash the way SymbolNode stores it.
func FormatHash(h uint64) string {
	return strconv.FormatUint(h, 10)
}

// ClusterNode represents a group of files connected by include or
// dependency edges.
type ClusterNode struct {
	Name          string   `json:"name"`
	CohesionScore float64  `json:"cohesionScore"`
	Members       []string `json:"members"` // file paths
}

// Edge represents a relationship between two nodes.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes a project graph.
type GraphStats struct {
	FileCount    int `json:"fileCount"`
	SymbolCount  int `json:"symbolCount"`
	ClusterCount int `json:"clusterCount"`
	EdgeCount    int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of file paths forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"`
	Depth int      `json:"depth"`
}

// ImpactResult describes which files are affected when a set of files changes.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files that include or depend on a changed file
	TransitivelyAffected []string `json:"transitivelyAffected"` // full dependent closure
	RiskScore            float64  `json:"riskScore"`            // share of all files affected
}
