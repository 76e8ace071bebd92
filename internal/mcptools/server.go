package mcptools

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

const shutdownTimeout = 5 * time.Second

// NewServer creates an MCP server exposing the analysis tools of svc.
func NewServer(svc *AnalysisService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "cppshadow",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_sources",
		Description: "Analyze C++ files or directories for a source pattern. Builds the block tree, resolves class and function symbols, extracts the shadow tree of crucial classes and indexes the include graph. Results are cached by content, and the returned analysisId can be passed to the other tools.",
	}, svc.AnalyzeSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_symbols",
		Description: "Search class, struct, function and method symbols by qualified name substring. Optionally filter by kind.",
	}, svc.QuerySymbols)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_class_usages",
		Description: "List the definitions of a class and every usage in the sources that resolved to it, with hash-collision and refactor-candidate flags.",
	}, svc.GetClassUsages)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_shadow_tree",
		Description: "Return the shadow tree: the part of the block tree that touches the crucial classes of the source pattern, rendered as indented text.",
	}, svc.GetShadowTree)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dependencies",
		Description: "Walk include and class-dependency edges upstream or downstream from a file. Returns one chain per reachable file.",
	}, svc.GetDependencies)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "assess_impact",
		Description: "Compute which analyzed files are affected when the given files change, with a risk score.",
	}, svc.AssessImpact)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_clusters",
		Description: "Return groups of files connected by include or class-dependency edges, with cohesion scores.",
	}, svc.GetClusters)

	return server
}

// RunStdio serves on stdin/stdout until the client disconnects or ctx is done.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves the streamable HTTP transport on addr until ctx is done.
func RunHTTP(ctx context.Context, server *mcp.Server, addr string) error {
	handler := mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server { return server },
		nil,
	)
	httpServer := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
