package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// version is set with -ldflags -X at build time.
var version = "dev"

const usage = "usage: cppshadow <source_pattern> <target_pattern> <file1> [file2 ...]"

// command runs one subcommand with the arguments after its name.
type command func(args []string, stdout, stderr io.Writer) error

// commands maps subcommand names to their handlers. Files built with cgo add
// the graph-backed ones.
var commands = map[string]command{
	"init":      runInit,
	"status":    runStatus,
	"serve-mcp": runServeMCP,
	"version": func(_ []string, stdout, _ io.Writer) error {
		_, err := fmt.Fprintln(stdout, version)
		return err
	},
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches to a subcommand when the first argument names one and
// analyzes sources otherwise.
func run(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return cmd(args[1:], stdout, stderr)
		}
	}
	return runAnalyze(args, stdout, stderr)
}

// newLogger writes structured events to w. Verbose lowers the level to
// debug; otherwise only warnings and errors show.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
