package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dusk-indust/cppshadow/internal/config"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// mcpEntry is the MCP server configuration for the cppshadow binary.
var mcpEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "cppshadow",
  "args": ["serve-mcp"]
}`)

// runInit writes a default cppshadow.yml and registers the MCP server in
// .mcp.json of the project directory.
func runInit(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cppshadow init", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectRoot := fs.String("project-root", ".", "directory to initialize")
	force := fs.Bool("force", false, "overwrite existing files")
	if err := fs.Parse(args); err != nil {
		return err
	}

	abs, err := filepath.Abs(*projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	path, created, err := config.WriteDefault(abs, *force)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(stdout, "  created %s\n", dotRelative(abs, path))
	} else {
		fmt.Fprintf(stdout, "  skipped %s (exists, use -force to overwrite)\n", dotRelative(abs, path))
	}

	if err := mergeMCPConfig(stdout, filepath.Join(abs, ".mcp.json"), *force); err != nil {
		return err
	}

	fmt.Fprintln(stdout, "\nSetup complete. Run 'cppshadow <source_pattern> <target_pattern> <dir>' to analyze.")
	return nil
}

// mergeMCPConfig creates or merges the cppshadow entry into .mcp.json,
// keeping every other server.
func mergeMCPConfig(stdout io.Writer, mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["cppshadow"]; exists && !force {
		fmt.Fprintln(stdout, "  skipped .mcp.json cppshadow entry (exists, use -force to overwrite)")
		return nil
	}

	cfg.MCPServers["cppshadow"] = mcpEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Fprintf(stdout, "  %s .mcp.json with cppshadow MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to base, prefixed with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
