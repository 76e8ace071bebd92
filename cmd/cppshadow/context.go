//go:build cgo

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/config"
	"github.com/dusk-indust/cppshadow/internal/graph"
)

const (
	contextSymbolLimit = 10
	contextDepth       = 2
	contextShown       = 8
)

// runContext prints what the persisted graph knows about symbols matching a
// pattern: where they are defined, which files they pull in, which files
// depend on them and their cluster. It prints nothing when no graph exists
// or nothing matches, so editor hooks can call it unconditionally.
func runContext(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cppshadow context", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectRoot := fs.String("project-root", ".", "directory holding cppshadow.yml")
	graphPath := fs.String("graph-path", "", "on-disk graph written by -persist")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pattern := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if pattern == "" {
		return nil
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return err
	}
	path := firstNonEmpty(*graphPath, cfg.GraphPath, defaultGraphPath)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	store, err := graph.NewKuzuFileStore(path)
	if err != nil {
		return nil
	}
	defer store.Close()

	text, err := graphContext(context.Background(), store, pattern)
	if err != nil || text == "" {
		return nil
	}
	_, err = fmt.Fprint(stdout, text)
	return err
}

// graphContext renders the context block for pattern, or "" when no symbol
// matches.
func graphContext(ctx context.Context, store graph.Store, pattern string) (string, error) {
	symbols, err := store.QuerySymbols(ctx, pattern, contextSymbolLimit)
	if err != nil || len(symbols) == 0 {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Graph context for %q\n\n", pattern)

	sb.WriteString("**Symbols found:**\n")
	for _, sym := range symbols {
		fmt.Fprintf(&sb, "- `%s %s` in `%s`", sym.Kind, sym.QualifiedName(), sym.FilePath)
		if sym.Crucial {
			sb.WriteString(" (crucial)")
		}
		sb.WriteString("\n")
	}

	primary := symbols[0].FilePath
	upstream, err := store.GetDependencies(ctx, primary, graph.DirectionUpstream, contextDepth)
	if err == nil && len(upstream) > 0 {
		fmt.Fprintf(&sb, "\n**Includes (upstream from `%s`):**\n", primary)
		for _, chain := range upstream {
			fmt.Fprintf(&sb, "- `%s`\n", chain.Nodes[len(chain.Nodes)-1])
		}
	}

	downstream, err := store.GetDependencies(ctx, primary, graph.DirectionDownstream, contextDepth)
	if err == nil && len(downstream) > 0 {
		fmt.Fprintf(&sb, "\n**Dependents (%d files use `%s`):**\n", len(downstream), primary)
		for i, chain := range downstream {
			if i == contextShown {
				fmt.Fprintf(&sb, "- ... (%d more)\n", len(downstream)-contextShown)
				break
			}
			fmt.Fprintf(&sb, "- `%s`\n", chain.Nodes[len(chain.Nodes)-1])
		}
	}

	clusters, err := store.GetClusters(ctx)
	if err == nil {
		for _, c := range clusters {
			for _, member := range c.Members {
				if member == primary {
					fmt.Fprintf(&sb, "\n**Cluster:** %s (cohesion: %.2f), %d files\n", c.Name, c.CohesionScore, len(c.Members))
					break
				}
			}
		}
	}
	return sb.String(), nil
}
