package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dusk-indust/cppshadow/internal/cpptree"
	"github.com/dusk-indust/cppshadow/internal/graph"
	"github.com/dusk-indust/cppshadow/internal/patterns"
)

// StageMetric is the measurement of one pipeline stage.
type StageMetric struct {
	Name           string  `json:"name"`
	ElapsedMS      float64 `json:"elapsed_ms"`
	EstimatedBytes int     `json:"estimated_bytes"`
}

// Report is the JSON document written next to the generated code.
type Report struct {
	RunID              string                  `json:"run_id"`
	SourcePattern      string                  `json:"source_pattern"`
	TargetPattern      string                  `json:"target_pattern"`
	Strategy           string                  `json:"strategy"`
	InputFileCount     int                     `json:"input_file_count"`
	TotalElapsedMS     float64                 `json:"total_elapsed_ms"`
	PeakEstimatedBytes int                     `json:"peak_estimated_bytes"`
	GraphConsistent    bool                    `json:"graph_consistent"`
	ClassRegistry      []cpptree.Symbol        `json:"class_registry"`
	FunctionRegistry   []cpptree.Symbol        `json:"function_registry"`
	CrucialClasses     []cpptree.CrucialClass  `json:"crucial_classes"`
	ClassUsages        []cpptree.Usage         `json:"class_usages"`
	LineHashTraces     []cpptree.LineHashTrace `json:"line_hash_traces"`
	Patterns           *patterns.Report        `json:"patterns,omitempty"`
	GrammarCheck       *graph.GrammarCheck     `json:"grammar_check,omitempty"`
	Stages             []StageMetric           `json:"stages"`
}

// AddStage appends m and raises the peak when m is the largest stage so far.
func (r *Report) AddStage(m StageMetric) {
	r.Stages = append(r.Stages, m)
	if m.EstimatedBytes > r.PeakEstimatedBytes {
		r.PeakEstimatedBytes = m.EstimatedBytes
	}
}

// FillRegistries copies the symbol, usage, crucial and trace tables of s.
// Empty tables are written as [] rather than null.
func (r *Report) FillRegistries(s *cpptree.Session) {
	r.ClassRegistry = nonNil(s.ClassSymbols())
	r.FunctionRegistry = nonNil(s.FunctionSymbols())
	r.CrucialClasses = nonNil(s.CrucialClasses())
	r.ClassUsages = nonNil(s.ClassUsages())
	r.LineHashTraces = nonNil(s.LineHashTraces())
	r.Strategy = s.Strategy().Name()
}

// WriteJSON encodes r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
