//go:build cgo

package graph

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements Store on top of an embedded KuzuDB. It requires cgo
// because go-kuzu wraps the C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

var _ Store = (*KuzuStore)(nil)

// NewKuzuStore opens an in-memory KuzuDB.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore opens (or creates) a KuzuDB at dbPath so the project graph
// survives between runs. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	db, err := kuzu.OpenDatabase(path, kuzu.DefaultSystemConfig())
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database %s: %w", path, err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the connection and the database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema ----------

// ddlStatements run in order: node tables before relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		name STRING,
		qualified STRING,
		kind STRING,
		owner STRING,
		discriminator STRING,
		signature STRING,
		file_path STRING,
		name_hash STRING,
		ctx_hash STRING,
		def_index INT64,
		crucial BOOLEAN,
		start_line INT64,
		end_line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Cluster(
		name STRING,
		cohesion_score DOUBLE,
		PRIMARY KEY(name)
	)`,
	`CREATE REL TABLE IF NOT EXISTS DEFINES(FROM File TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS INCLUDES(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS DEPENDS_ON(FROM File TO File)`,
	`CREATE REL TABLE IF NOT EXISTS USES(FROM File TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS MEMBER_OF(FROM Symbol TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS BELONGS_TO(FROM File TO Cluster)`,
}

// relTables maps each edge kind to its relationship table and endpoint keys.
var relTables = []struct {
	kind  EdgeKind
	table string
	from  string // node label and key of the source
	to    string // node label and key of the target
}{
	{EdgeKindDefines, "DEFINES", "File.path", "Symbol.id"},
	{EdgeKindIncludes, "INCLUDES", "File.path", "File.path"},
	{EdgeKindDependsOn, "DEPENDS_ON", "File.path", "File.path"},
	{EdgeKindUses, "USES", "File.path", "Symbol.id"},
	{EdgeKindMemberOf, "MEMBER_OF", "Symbol.id", "Symbol.id"},
	{EdgeKindBelongs, "BELONGS_TO", "File.path", "Cluster.name"},
}

// InitSchema creates all tables that do not exist yet.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Writes ----------

// AddFile upserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		"MERGE (f:File {path: $path}) SET f.language = $lang, f.loc = $loc",
		map[string]any{
			"path": node.Path,
			"lang": string(node.Language),
			"loc":  int64(node.LOC),
		},
	)
}

// AddSymbol upserts a Symbol node.
func (s *KuzuStore) AddSymbol(_ context.Context, node SymbolNode) error {
	return s.exec(
		`MERGE (s:Symbol {id: $id})
		 SET s.name = $name, s.qualified = $qualified, s.kind = $kind,
		     s.owner = $owner, s.discriminator = $disc,
		     s.signature = $sig, s.file_path = $fp,
		     s.name_hash = $nh, s.ctx_hash = $ch, s.def_index = $di,
		     s.crucial = $crucial, s.start_line = $sl, s.end_line = $el`,
		map[string]any{
			"id":        node.ID(),
			"name":      node.Name,
			"qualified": node.QualifiedName(),
			"kind":      string(node.Kind),
			"owner":     node.Owner,
			"disc":      node.Discriminator,
			"sig":       node.Signature,
			"fp":        node.FilePath,
			"nh":        node.NameHash,
			"ch":        node.ContextualHash,
			"di":        int64(node.DefinitionIndex),
			"crucial":   node.Crucial,
			"sl":        int64(node.StartLine),
			"el":        int64(node.EndLine),
		},
	)
}

// AddCluster upserts a Cluster node. Membership is stored as BELONGS edges.
func (s *KuzuStore) AddCluster(_ context.Context, node ClusterNode) error {
	return s.exec(
		"MERGE (c:Cluster {name: $name}) SET c.cohesion_score = $score",
		map[string]any{"name": node.Name, "score": node.CohesionScore},
	)
}

// AddEdge creates a relationship between two existing nodes. Adding the same
// edge twice leaves a single relationship.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	cypher, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	return s.exec(cypher, map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	})
}

// edgeCypher returns the MATCH-MERGE statement for an edge kind.
func edgeCypher(kind EdgeKind) (string, error) {
	for _, rt := range relTables {
		if rt.kind != kind {
			continue
		}
		fromLabel, fromKey := splitEndpoint(rt.from)
		toLabel, toKey := splitEndpoint(rt.to)
		return fmt.Sprintf(
			"MATCH (a:%s {%s: $src}), (b:%s {%s: $dst}) MERGE (a)-[:%s]->(b)",
			fromLabel, fromKey, toLabel, toKey, rt.table,
		), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedEdge, kind)
}

func splitEndpoint(e string) (label, key string) {
	label, key, _ = strings.Cut(e, ".")
	return label, key
}

// ---------- Reads ----------

// GetFile returns the File node for path, or nil if absent.
func (s *KuzuStore) GetFile(_ context.Context, path string) (*FileNode, error) {
	rows, err := s.query(
		"MATCH (f:File {path: $path}) RETURN f.path, f.language, f.loc",
		map[string]any{"path": path},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r := rows[0]
	return &FileNode{
		Path:     toString(r[0]),
		Language: Language(toString(r[1])),
		LOC:      toInt(r[2]),
	}, nil
}

const symbolColumns = `s.name, s.kind, s.owner, s.signature, s.file_path,
	s.name_hash, s.ctx_hash, s.def_index, s.crucial, s.start_line, s.end_line,
	s.discriminator`

// GetSymbol returns the symbol for filePath and qualifiedName, or nil if
// absent. Among overloads the lowest id wins.
func (s *KuzuStore) GetSymbol(_ context.Context, filePath, qualifiedName string) (*SymbolNode, error) {
	rows, err := s.query(
		"MATCH (s:Symbol) WHERE s.file_path = $fp AND s.qualified = $q RETURN "+
			symbolColumns+" ORDER BY s.id LIMIT 1",
		map[string]any{"fp": filePath, "q": qualifiedName},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToSymbol(rows[0]), nil
}

// QuerySymbols returns symbols whose qualified name contains the query
// (case-insensitive), ordered by id. A limit <= 0 returns all matches.
func (s *KuzuStore) QuerySymbols(_ context.Context, queryStr string, limit int) ([]SymbolNode, error) {
	cypher := "MATCH (s:Symbol) WHERE lower(s.qualified) CONTAINS lower($q) RETURN " +
		symbolColumns + " ORDER BY s.id"
	params := map[string]any{"q": queryStr}
	if limit > 0 {
		cypher += " LIMIT $lim"
		params["lim"] = int64(limit)
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSymbol(r))
	}
	return out, nil
}

// ---------- Traversal ----------

// GetDependencies walks INCLUDES and DEPENDS_ON from path.
func (s *KuzuStore) GetDependencies(_ context.Context, path string, dir Direction, maxDepth int) ([]DependencyChain, error) {
	var walkErr error
	chains := walkDependencies(path, maxDepth, func(id string) []string {
		if walkErr != nil {
			return nil
		}
		nbs, err := s.fileNeighbors(id, dir)
		if err != nil {
			walkErr = err
		}
		return nbs
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return chains, nil
}

// fileNeighbors returns files one INCLUDES or DEPENDS_ON hop from path, sorted.
func (s *KuzuStore) fileNeighbors(path string, dir Direction) ([]string, error) {
	var pattern string
	switch dir {
	case DirectionUpstream:
		pattern = "MATCH (a:File {path: $path})-[:%s]->(b:File) RETURN b.path"
	case DirectionDownstream:
		pattern = "MATCH (b:File)-[:%s]->(a:File {path: $path}) RETURN b.path"
	default:
		return nil, fmt.Errorf("kuzu: unknown direction: %s", dir)
	}

	set := make(map[string]bool)
	for _, kind := range FileEdgeKinds {
		rows, err := s.query(fmt.Sprintf(pattern, string(kind)), map[string]any{"path": path})
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			set[toString(r[0])] = true
		}
	}
	return setToSlice(set), nil
}

// maxImpactDepth bounds the transitive dependent search.
const maxImpactDepth = 32

// AssessImpact finds the files that include or depend on any changed file.
func (s *KuzuStore) AssessImpact(ctx context.Context, changedFiles []string) (*ImpactResult, error) {
	totalFiles, err := s.countTable("File")
	if err != nil {
		return nil, err
	}

	changed := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		changed[f] = true
	}

	direct := map[string]bool{}
	transitive := map[string]bool{}
	for _, f := range changedFiles {
		chains, err := s.GetDependencies(ctx, f, DirectionDownstream, maxImpactDepth)
		if err != nil {
			return nil, err
		}
		for _, c := range chains {
			last := c.Nodes[len(c.Nodes)-1]
			if changed[last] {
				continue
			}
			transitive[last] = true
			if c.Depth == 1 {
				direct[last] = true
			}
		}
	}

	res := newImpactResult(setToSlice(direct), setToSlice(transitive), totalFiles)
	res.RiskScore = math.Min(1.0, res.RiskScore)
	return res, nil
}

// GetClusters returns every cluster with its members, ordered by name.
func (s *KuzuStore) GetClusters(_ context.Context) ([]ClusterNode, error) {
	rows, err := s.query("MATCH (c:Cluster) RETURN c.name, c.cohesion_score ORDER BY c.name", nil)
	if err != nil {
		return nil, err
	}
	out := make([]ClusterNode, 0, len(rows))
	for _, r := range rows {
		name := toString(r[0])
		memberRows, err := s.query(
			"MATCH (f:File)-[:BELONGS_TO]->(c:Cluster {name: $name}) RETURN f.path",
			map[string]any{"name": name},
		)
		if err != nil {
			return nil, err
		}
		members := make([]string, 0, len(memberRows))
		for _, mr := range memberRows {
			members = append(members, toString(mr[0]))
		}
		sort.Strings(members)
		out = append(out, ClusterNode{
			Name:          name,
			CohesionScore: toFloat64(r[1]),
			Members:       members,
		})
	}
	return out, nil
}

// GetAllEdges returns the edges of every relationship table.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	var edges []Edge
	for _, rt := range relTables {
		fromLabel, fromKey := splitEndpoint(rt.from)
		toLabel, toKey := splitEndpoint(rt.to)
		cypher := fmt.Sprintf("MATCH (a:%s)-[:%s]->(b:%s) RETURN a.%s, b.%s",
			fromLabel, rt.table, toLabel, fromKey, toKey)
		rows, err := s.query(cypher, nil)
		if err != nil {
			return nil, err
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				SourceID: toString(r[0]),
				TargetID: toString(r[1]),
				Kind:     rt.kind,
			})
		}
	}
	return edges, nil
}

// Stats returns node and relationship counts.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	symbols, err := s.countTable("Symbol")
	if err != nil {
		return nil, err
	}
	clusters, err := s.countTable("Cluster")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		FileCount:    files,
		SymbolCount:  symbols,
		ClusterCount: clusters,
		EdgeCount:    edges,
	}, nil
}

// ---------- Helpers ----------

// exec runs a parameterized statement and discards its result.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a statement and collects every row as a []any in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable counts the rows of a node table. table is always a constant.
func (s *KuzuStore) countTable(table string) (int, error) {
	rows, err := s.query(fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table), nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges sums the row counts of all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, rt := range relTables {
		rows, err := s.query(fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", rt.table), nil)
		if err != nil {
			return 0, err
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// rowToSymbol converts a row selected with symbolColumns.
func rowToSymbol(r []any) *SymbolNode {
	return &SymbolNode{
		Name:            toString(r[0]),
		Kind:            SymbolKind(toString(r[1])),
		Owner:           toString(r[2]),
		Signature:       toString(r[3]),
		FilePath:        toString(r[4]),
		NameHash:        toString(r[5]),
		ContextualHash:  toString(r[6]),
		DefinitionIndex: toInt(r[7]),
		Crucial:         toBool(r[8]),
		StartLine:       toInt(r[9]),
		EndLine:         toInt(r[10]),
		Discriminator:   toString(r[11]),
	}
}

// KuzuDB hands back typed values (int64, float64, bool, string); these
// coerce them without panicking on NULLs.

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	b, _ := v.(bool)
	return b
}
