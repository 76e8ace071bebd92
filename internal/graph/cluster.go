package graph

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

// ComputeClusters groups files that are connected through INCLUDES or
// DEPENDS_ON edges and stores each group as a ClusterNode with BELONGS edges
// for its members. Isolated files form no cluster.
//
// The cohesion score of a cluster is its edge density: distinct connected
// member pairs divided by all possible member pairs.
func ComputeClusters(ctx context.Context, store Store, files []FileNode) ([]ClusterNode, error) {
	adj, err := fileAdjacency(ctx, store, files)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)

	visited := make(map[string]bool, len(paths))
	used := make(map[string]bool)
	var clusters []ClusterNode

	for _, p := range paths {
		if visited[p] {
			continue
		}
		members := component(p, adj, visited)
		if len(members) < 2 {
			continue
		}
		cluster := ClusterNode{
			Name:          clusterName(members, len(clusters)+1, used),
			CohesionScore: density(members, adj),
			Members:       members,
		}
		if err := store.AddCluster(ctx, cluster); err != nil {
			return nil, fmt.Errorf("graph: add cluster %s: %w", cluster.Name, err)
		}
		for _, m := range members {
			if err := store.AddEdge(ctx, Edge{SourceID: m, TargetID: cluster.Name, Kind: EdgeKindBelongs}); err != nil {
				return nil, fmt.Errorf("graph: add cluster member %s: %w", m, err)
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters, nil
}

// fileAdjacency builds an undirected adjacency set over file edges between
// the given files. Self-edges are dropped.
func fileAdjacency(ctx context.Context, store Store, files []FileNode) (map[string]map[string]bool, error) {
	adj := make(map[string]map[string]bool, len(files))
	for _, f := range files {
		adj[f.Path] = make(map[string]bool)
	}

	edges, err := store.GetAllEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("graph: list edges: %w", err)
	}
	for _, e := range edges {
		if !IsFileEdge(e.Kind) || e.SourceID == e.TargetID {
			continue
		}
		if adj[e.SourceID] != nil && adj[e.TargetID] != nil {
			adj[e.SourceID][e.TargetID] = true
			adj[e.TargetID][e.SourceID] = true
		}
	}
	return adj, nil
}

// component returns the sorted set of files reachable from start, marking
// each one visited.
func component(start string, adj map[string]map[string]bool, visited map[string]bool) []string {
	var members []string
	queue := []string{start}
	visited[start] = true

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		members = append(members, n)
		for nb := range adj[n] {
			if !visited[nb] {
				visited[nb] = true
				queue = append(queue, nb)
			}
		}
	}
	sort.Strings(members)
	return members
}

func density(members []string, adj map[string]map[string]bool) float64 {
	n := len(members)
	if n < 2 {
		return 0
	}
	pairs := 0
	for _, m := range members {
		for nb := range adj[m] {
			if m < nb {
				pairs++
			}
		}
	}
	return float64(pairs) / float64(n*(n-1)/2)
}

// clusterName names a cluster after the directory its members share. Members
// without a shared directory get "cluster-N". Names are made unique.
func clusterName(members []string, n int, used map[string]bool) string {
	name := strings.TrimSuffix(commonDir(members), "/")
	if name == "" || name == "." {
		name = fmt.Sprintf("cluster-%d", n)
	}
	base := name
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s#%d", base, i)
	}
	used[name] = true
	return name
}

// commonDir returns the longest directory prefix (with a trailing slash)
// shared by every path, or "" when they share none.
func commonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}
	prefix := path.Dir(paths[0]) + "/"
	if prefix == "./" {
		return ""
	}
	for _, p := range paths[1:] {
		for !strings.HasPrefix(p, prefix) {
			trimmed := strings.TrimSuffix(prefix, "/")
			idx := strings.LastIndex(trimmed, "/")
			if idx < 0 {
				return ""
			}
			prefix = trimmed[:idx+1]
		}
	}
	return prefix
}
