package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/dusk-indust/cppshadow/internal/config"
	"github.com/dusk-indust/cppshadow/internal/export"
	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/pipeline"
	"github.com/dusk-indust/cppshadow/internal/source"
)

const (
	defaultOutputDir = "cppshadow-out"
	defaultGraphPath = ".cppshadow/graph"
)

// analyzeFlags are the flags of the default command. Empty values fall back
// to cppshadow.yml.
type analyzeFlags struct {
	ProjectRoot string
	OutputDir   string
	GraphPath   string
	Exclude     string
	NoGitignore bool
	NoGrammar   bool
	Persist     bool
	PrintMain   bool
	Verbose     bool
}

// persistGraph writes an analysis to the on-disk graph. It is set by builds
// with cgo.
var persistGraph func(ctx context.Context, path string, p *pipeline.Pipeline, art *pipeline.Artifacts) (*graph.IngestResult, error)

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	var flags analyzeFlags

	fs := flag.NewFlagSet("cppshadow", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&flags.ProjectRoot, "project-root", ".", "directory holding cppshadow.yml")
	fs.StringVar(&flags.OutputDir, "output-dir", "", "directory for generated code, HTML pages and report.json")
	fs.StringVar(&flags.GraphPath, "graph-path", "", "on-disk graph location used with -persist")
	fs.StringVar(&flags.Exclude, "exclude", "", "comma-separated glob patterns to skip inside directories")
	fs.BoolVar(&flags.NoGitignore, "no-gitignore", false, "also analyze files matched by .gitignore")
	fs.BoolVar(&flags.NoGrammar, "no-grammar", false, "skip the tree-sitter cross-check")
	fs.BoolVar(&flags.Persist, "persist", false, "write the file graph to -graph-path for diagram and context")
	fs.BoolVar(&flags.PrintMain, "print-main", false, "also print the full block tree")
	fs.BoolVar(&flags.Verbose, "verbose", false, "log every pipeline stage")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(flags.ProjectRoot)
	if err != nil {
		return err
	}
	sourcePattern, targetPattern, inputs, err := positional(fs.Args(), cfg)
	if err != nil {
		return err
	}

	opts := source.Options{
		Extensions:       cfg.Extensions,
		Exclude:          cfg.Exclude,
		RespectGitignore: cfg.GitignoreEnabled() && !flags.NoGitignore,
	}
	if flags.Exclude != "" {
		opts.Exclude = append(opts.Exclude, splitList(flags.Exclude)...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	paths, err := source.Expand(inputs, opts)
	if err != nil {
		return err
	}
	files, err := source.Load(ctx, paths)
	if err != nil {
		return err
	}

	var parser graph.Parser
	if !flags.NoGrammar {
		tsp := graph.NewTreeSitterParser()
		defer tsp.Close()
		parser = tsp
	}

	p := pipeline.New(pipeline.Options{
		SourcePattern: sourcePattern,
		TargetPattern: targetPattern,
		Parser:        parser,
		Logger:        newLogger(stderr, flags.Verbose || cfg.Verbose),
	})
	art, runErr := p.Run(ctx, files)
	p.Close()
	for ev := range p.Progress() {
		fmt.Fprintln(stderr, pipeline.FormatProgress(ev))
	}
	if runErr != nil {
		return runErr
	}

	if flags.PrintMain {
		fmt.Fprintln(stdout, "== Block tree ==")
		fmt.Fprint(stdout, export.Text(art.Main))
	}
	fmt.Fprintln(stdout, "== Shadow tree ==")
	fmt.Fprint(stdout, art.Monolithic)
	printSummary(stdout, art.Report)

	outputDir := firstNonEmpty(flags.OutputDir, cfg.OutputDir, defaultOutputDir)
	written, err := pipeline.WriteOutputs(outputDir, art)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Outputs:")
	for _, path := range written.All() {
		fmt.Fprintf(stdout, "  %s\n", path)
	}

	if flags.Persist {
		graphPath := firstNonEmpty(flags.GraphPath, cfg.GraphPath, defaultGraphPath)
		if persistGraph == nil {
			return errors.New("graph persistence requires a build with cgo")
		}
		res, err := persistGraph(ctx, graphPath, p, art)
		if err != nil {
			return fmt.Errorf("persist graph: %w", err)
		}
		fmt.Fprintf(stdout, "Graph: %d files, %d symbols, %d edges, %d clusters -> %s\n",
			len(res.Files), res.Symbols, res.Edges, len(res.Clusters), graphPath)
	}
	return nil
}

// positional splits the arguments into patterns and inputs. When
// cppshadow.yml names both patterns, the arguments may be inputs only.
func positional(args []string, cfg *config.ProjectConfig) (sourcePattern, targetPattern string, inputs []string, err error) {
	if len(args) >= 3 {
		return args[0], args[1], args[2:], nil
	}
	if cfg.SourcePattern != "" && cfg.TargetPattern != "" && len(args) > 0 {
		return cfg.SourcePattern, cfg.TargetPattern, args, nil
	}
	return "", "", nil, errors.New(usage)
}

func printSummary(w io.Writer, r *export.Report) {
	crucial := make([]string, 0, len(r.CrucialClasses))
	for _, c := range r.CrucialClasses {
		crucial = append(crucial, c.Name)
	}

	fmt.Fprintln(w, "== Summary ==")
	fmt.Fprintf(w, "run_id=%s | strategy=%s | files=%d\n", r.RunID, r.Strategy, r.InputFileCount)
	fmt.Fprintf(w, "classes=%d | functions=%d | usages=%d | crucial=%s\n",
		len(r.ClassRegistry), len(r.FunctionRegistry), len(r.ClassUsages), strings.Join(crucial, ","))
	fmt.Fprintf(w, "graph_consistent=%t | total_elapsed_ms=%.3f | peak_estimated_bytes=%d\n",
		r.GraphConsistent, r.TotalElapsedMS, r.PeakEstimatedBytes)
	if g := r.GrammarCheck; g != nil && !g.Agrees() {
		log.Printf("WARNING: grammar cross-check disagrees: %d missed and %d invented classes, %d missed and %d invented functions",
			len(g.MissedClasses), len(g.InventedClasses), len(g.MissedFunctions), len(g.InventedFunctions))
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
