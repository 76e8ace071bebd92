//go:build cgo

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/pipeline"
)

func init() {
	persistGraph = persistKuzu
	commands["diagram"] = runDiagram
	commands["context"] = runContext
}

// persistKuzu replaces the graph at path with the file graph of art.
func persistKuzu(ctx context.Context, path string, p *pipeline.Pipeline, art *pipeline.Artifacts) (*graph.IngestResult, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove old graph: %w", err)
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	if err := store.InitSchema(ctx); err != nil {
		return nil, err
	}
	return graph.Ingest(ctx, store, p.Session(), art.Main, art.Files)
}

// openGraph opens the persisted graph, or reports how to create it.
func openGraph(path string) (*graph.KuzuStore, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no graph found at %s\nRun 'cppshadow -persist <source_pattern> <target_pattern> <dir>' first to index the sources", path)
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil, fmt.Errorf("open graph: %w", err)
	}
	return store, nil
}
