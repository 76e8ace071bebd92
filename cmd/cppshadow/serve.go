package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/mcptools"
)

// runServeMCP serves the analysis tools over stdio, or over streamable HTTP
// when -http is given. Logs go to stderr because stdout carries the protocol.
func runServeMCP(args []string, _, stderr io.Writer) error {
	fs := flag.NewFlagSet("cppshadow serve-mcp", flag.ContinueOnError)
	fs.SetOutput(stderr)
	addr := fs.String("http", "", "listen address for the streamable HTTP transport (default: stdio)")
	cacheSize := fs.Int("cache", 16, "number of analyses kept in memory")
	noGrammar := fs.Bool("no-grammar", false, "skip the tree-sitter cross-check")
	verbose := fs.Bool("verbose", false, "log every pipeline stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var parser graph.Parser
	if !*noGrammar {
		tsp := graph.NewTreeSitterParser()
		defer tsp.Close()
		parser = tsp
	}

	svc, err := mcptools.NewAnalysisService(parser, *cacheSize, newLogger(stderr, *verbose))
	if err != nil {
		return err
	}
	defer svc.Close()
	server := mcptools.NewServer(svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *addr != "" {
		fmt.Fprintf(stderr, "cppshadow MCP server listening on %s\n", *addr)
		return mcptools.RunHTTP(ctx, server, *addr)
	}
	return mcptools.RunStdio(ctx, server)
}
