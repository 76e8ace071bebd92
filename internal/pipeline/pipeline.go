// Package pipeline runs one analysis over a set of C++ sources: build the
// block tree and its shadow, detect patterns, resolve symbols, cross-check
// against the C++ grammar, render the shadow tree and rewrite the sources
// for the target pattern. Every stage is timed and sized for the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/export"
	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/patterns"
	"github.com/dusk-indust/cppshadow/internal/rewrite"
)

// Options configures a Pipeline.
type Options struct {
	SourcePattern string
	TargetPattern string

	// Parser enables the CrossCheckGrammar stage. Nil skips it.
	Parser graph.Parser

	// Logger receives one structured event per stage. Nil uses slog.Default().
	Logger *slog.Logger

	// SessionOptions are passed to cpptree.NewSession.
	SessionOptions []cpptree.Option
}

// Artifacts is everything one run produces.
type Artifacts struct {
	Files       []cpptree.SourceFile
	Main        cpptree.Node
	Shadow      cpptree.Node
	Patterns    patterns.Report
	PatternTree cpptree.Node // detector tree for the source pattern
	Monolithic  string       // text rendering of the shadow tree
	BaseCode    string
	TargetCode  string
	Report      *export.Report
}

// Pipeline owns the analysis session of one run. A Pipeline is not safe for
// concurrent use; create one per run.
type Pipeline struct {
	opts     Options
	session  *cpptree.Session
	progress *ProgressReporter
	log      *slog.Logger
}

// errSkipped marks a stage with nothing to do.
var errSkipped = errors.New("skipped")

// New creates a Pipeline with a fresh session and progress reporter.
func New(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		opts:     opts,
		session:  cpptree.NewSession(opts.SessionOptions...),
		progress: NewProgressReporter(),
		log:      logger,
	}
}

// Session exposes the analysis session. Its tables reflect the last Run.
func (p *Pipeline) Session() *cpptree.Session {
	return p.session
}

// Progress returns the stage event channel.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close closes the progress channel.
func (p *Pipeline) Close() {
	p.progress.Close()
}

// Run executes every stage in order over files.
func (p *Pipeline) Run(ctx context.Context, files []cpptree.SourceFile) (*Artifacts, error) {
	if err := p.validate(files); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	art := &Artifacts{
		Files: files,
		Report: &export.Report{
			RunID:          runID,
			SourcePattern:  p.opts.SourcePattern,
			TargetPattern:  p.opts.TargetPattern,
			InputFileCount: len(files),
		},
	}
	logger := p.log.With("run_id", runID)

	begin := time.Now()
	for _, stage := range Stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.runStage(ctx, logger, stage, art); err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", stage, err)
		}
	}
	art.Report.TotalElapsedMS = millis(time.Since(begin))
	art.Report.FillRegistries(p.session)

	logger.Info("run complete",
		"files", len(files),
		"elapsed_ms", art.Report.TotalElapsedMS,
		"peak_estimated_bytes", art.Report.PeakEstimatedBytes,
		"graph_consistent", art.Report.GraphConsistent)
	return art, nil
}

func (p *Pipeline) validate(files []cpptree.SourceFile) error {
	if strings.TrimSpace(p.opts.SourcePattern) == "" {
		return ErrNoSourcePattern
	}
	if strings.TrimSpace(p.opts.TargetPattern) == "" {
		return ErrNoTargetPattern
	}
	if len(files) == 0 {
		return ErrNoInputFiles
	}
	return nil
}

func (p *Pipeline) runStage(ctx context.Context, logger *slog.Logger, stage Stage, art *Artifacts) error {
	p.progress.Emit(ProgressEvent{Stage: stage, Status: ProgressWorking})

	start := time.Now()
	bytes, err := p.execute(ctx, logger, stage, art)
	elapsed := millis(time.Since(start))

	switch {
	case errors.Is(err, errSkipped):
		p.progress.Emit(ProgressEvent{Stage: stage, Status: ProgressSkipped, Message: "no grammar parser"})
		logger.Debug("stage skipped", "stage", stage.String())
	case err != nil:
		p.progress.Emit(ProgressEvent{Stage: stage, Status: ProgressFailed, Message: err.Error()})
		logger.Error("stage failed", "stage", stage.String(), "err", err)
		return err
	default:
		p.progress.Emit(ProgressEvent{Stage: stage, Status: ProgressComplete, ElapsedMS: elapsed, EstimatedBytes: bytes})
		logger.Info("stage complete", "stage", stage.String(), "elapsed_ms", elapsed, "estimated_bytes", bytes)
	}

	art.Report.AddStage(export.StageMetric{Name: stage.String(), ElapsedMS: elapsed, EstimatedBytes: bytes})
	return nil
}

func (p *Pipeline) execute(ctx context.Context, logger *slog.Logger, stage Stage, art *Artifacts) (int, error) {
	s := p.session

	switch stage {
	case StageParseBaseGraph:
		paths := make([]string, len(art.Files))
		for i, f := range art.Files {
			paths[i] = f.Path
		}
		bundle := s.Build(art.Files, cpptree.BuildContext{
			SourcePattern: p.opts.SourcePattern,
			TargetPattern: p.opts.TargetPattern,
			InputFiles:    paths,
		})
		art.Main, art.Shadow = bundle.Main, bundle.Shadow
		return treeBytes(&art.Main) + treeBytes(&art.Shadow) + symbolBytes(s), nil

	case StageDetectPatternInstances:
		art.Patterns = patterns.DetectAll(s, art.Main)
		art.PatternTree = patterns.ForPattern(s, art.Main, p.opts.SourcePattern)
		art.Report.Patterns = &art.Patterns
		return treeBytes(&art.Patterns.Creational) + treeBytes(&art.Patterns.Builder) +
			treeBytes(&art.Patterns.Behavioural) + treeBytes(&art.Patterns.ClassScaffold), nil

	case StageCreateVirtualSubgraph:
		art.Shadow = cpptree.ExtractShadow(art.Main, s.TrackedClasses(), s.TrackedFunctions())
		return treeBytes(&art.Shadow), nil

	case StageHashAffectedNodes:
		s.Resolve(art.Main)
		return symbolBytes(s), nil

	case StageCrossCheckGrammar:
		if p.opts.Parser == nil {
			return 0, errSkipped
		}
		check, err := graph.CrossCheck(ctx, p.opts.Parser, s, art.Files)
		if err != nil {
			return 0, err
		}
		art.Report.GrammarCheck = check
		if !check.Agrees() {
			logger.Warn("grammar cross-check disagrees",
				"missed_classes", len(check.MissedClasses),
				"invented_classes", len(check.InventedClasses),
				"missed_functions", len(check.MissedFunctions),
				"invented_functions", len(check.InventedFunctions))
		}
		return checkBytes(check), nil

	case StageGenerateMonolithicRepresentation:
		art.Monolithic = export.Text(art.Shadow)
		return len(art.Monolithic), nil

	case StageApplyTargetPolicies:
		joined := rewrite.Join(art.Files)
		art.BaseCode = rewrite.Base(joined)
		art.TargetCode = rewrite.Target(joined, p.opts.SourcePattern, p.opts.TargetPattern)
		return len(art.BaseCode) + len(art.TargetCode), nil

	case StageValidateGraphConsistency:
		art.Report.GraphConsistent = Consistent(art.Main, art.Shadow, art.Monolithic)
		return treeBytes(&art.Main), nil
	}
	return 0, fmt.Errorf("unknown stage %d", stage)
}

// Consistent reports whether both trees exist, the shadow rendering is not
// empty and every shadow hash also appears in the main tree.
func Consistent(main, shadow cpptree.Node, monolithic string) bool {
	if main.Kind == "" || shadow.Kind == "" || monolithic == "" {
		return false
	}
	known := main.HashSet()
	ok := true
	shadow.Walk(func(n *cpptree.Node, _ int) bool {
		if !known[n.Hash] {
			ok = false
		}
		return ok
	})
	return ok
}

func checkBytes(c *graph.GrammarCheck) int {
	total := 0
	for _, list := range [][]string{c.MissedClasses, c.InventedClasses, c.MissedFunctions, c.InventedFunctions, c.UnresolvedIncludes} {
		for _, s := range list {
			total += len(s)
		}
	}
	for _, e := range c.Includes {
		total += len(e.SourceID) + len(e.TargetID) + len(e.Kind)
	}
	return total
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
