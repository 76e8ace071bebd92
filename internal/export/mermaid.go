package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/graph"
)

// Mermaid produces a "graph TD" diagram of the file graph in store. Files
// are grouped into one subgraph per cluster. INCLUDES edges are solid
// arrows and DEPENDS_ON edges dotted ones. Output is sorted so the same
// graph always renders the same text.
func Mermaid(ctx context.Context, store graph.Store) (string, error) {
	clusters, err := store.GetClusters(ctx)
	if err != nil {
		return "", fmt.Errorf("get clusters: %w", err)
	}
	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return "", fmt.Errorf("get edges: %w", err)
	}

	var fileEdges []graph.Edge
	for _, e := range edges {
		if graph.IsFileEdge(e.Kind) {
			fileEdges = append(fileEdges, e)
		}
	}
	sort.Slice(fileEdges, func(i, j int) bool {
		a, b := fileEdges[i], fileEdges[j]
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		if a.TargetID != b.TargetID {
			return a.TargetID < b.TargetID
		}
		return a.Kind < b.Kind
	})
	sort.Slice(clusters, func(i, j int) bool { return clusters[i].Name < clusters[j].Name })

	ids := make(map[string]string)
	nodeID := func(key string) string {
		if id, ok := ids[key]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", len(ids))
		ids[key] = id
		return id
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	declared := make(map[string]bool)
	for i, c := range clusters {
		if len(c.Members) == 0 {
			continue
		}
		members := append([]string(nil), c.Members...)
		sort.Strings(members)

		fmt.Fprintf(&sb, "  subgraph C%d[\"%.40s\"]\n", i, c.Name)
		for _, m := range members {
			fmt.Fprintf(&sb, "    %s[\"%s\"]\n", nodeID(m), shortPath(m))
			declared[m] = true
		}
		sb.WriteString("  end\n")
	}

	for _, e := range fileEdges {
		for _, p := range []string{e.SourceID, e.TargetID} {
			if !declared[p] {
				fmt.Fprintf(&sb, "  %s[\"%s\"]\n", nodeID(p), shortPath(p))
				declared[p] = true
			}
		}
	}

	for _, e := range fileEdges {
		arrow := "-->"
		if e.Kind == graph.EdgeKindDependsOn {
			arrow = "-.->"
		}
		fmt.Fprintf(&sb, "  %s %s %s\n", nodeID(e.SourceID), arrow, nodeID(e.TargetID))
	}

	return sb.String(), nil
}

// shortPath keeps the last two path segments.
func shortPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) <= 2 {
		return path
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
