package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dusk-indust/cppshadow/internal/config"
	"github.com/dusk-indust/cppshadow/internal/status"
)

func runStatus(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cppshadow status", flag.ContinueOnError)
	fs.SetOutput(stderr)
	projectRoot := fs.String("project-root", ".", "directory holding cppshadow.yml")
	outputDir := fs.String("output-dir", "", "output directory of the run to inspect")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*projectRoot)
	if err != nil {
		return err
	}
	dir := firstNonEmpty(*outputDir, cfg.OutputDir, defaultOutputDir)

	st, err := status.Scan(dir)
	if errors.Is(err, status.ErrNoRun) {
		fmt.Fprintf(stdout, "No analysis found in %s.\n", dir)
		fmt.Fprintln(stdout, "Run 'cppshadow <source_pattern> <target_pattern> <dir>' first.")
		return nil
	}
	if err != nil {
		return err
	}

	printRunStatus(stdout, st)
	return nil
}

func printRunStatus(w io.Writer, st *status.RunStatus) {
	fmt.Fprintf(w, "Run %s: %s -> %s (%d files)\n", st.RunID, st.SourcePattern, st.TargetPattern, st.InputFiles)
	fmt.Fprintf(w, "  graph consistent: %t | grammar agrees: %t\n\n", st.GraphConsistent, st.GrammarAgrees)

	for _, s := range st.Stages {
		fmt.Fprintf(w, "  %-34s %10.3f ms %12d bytes\n", s.Name, s.ElapsedMS, s.EstimatedBytes)
	}
	fmt.Fprintln(w)

	for _, o := range st.Outputs {
		label := "present"
		if !o.Present {
			label = "missing"
		}
		fmt.Fprintf(w, "  %-18s [%s] %s\n", o.Label, label, o.Path)
	}
	if st.Missing > 0 {
		fmt.Fprintf(w, "  %d outputs missing; re-run the analysis to regenerate them.\n", st.Missing)
	}
}
