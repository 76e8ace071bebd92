//go:build cgo

package main

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/dusk-indust/cppshadow/internal/config"
	"github.com/dusk-indust/cppshadow/internal/export"
)

// runDiagram prints the persisted file graph as a Mermaid flowchart.
func runDiagram(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cppshadow diagram", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectRoot := fs.String("project-root", ".", "directory holding cppshadow.yml")
	graphPath := fs.String("graph-path", "", "on-disk graph written by -persist")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return err
	}
	store, err := openGraph(firstNonEmpty(*graphPath, cfg.GraphPath, defaultGraphPath))
	if err != nil {
		return err
	}
	defer store.Close()

	mermaid, err := export.Mermaid(context.Background(), store)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(stdout, mermaid)
	return err
}
