// Package status inspects the output directory of a previous analysis run.
package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dusk-indust/cppshadow/internal/export"
	"github.com/dusk-indust/cppshadow/internal/pipeline"
)

// ErrNoRun is returned when a directory holds no report.json.
var ErrNoRun = errors.New("no analysis run found")

// OutputInfo describes one file a run is expected to produce.
type OutputInfo struct {
	Label   string // human-readable name (e.g. "Shadow tree")
	Path    string
	Present bool
	Size    int64
}

// RunStatus summarizes the last run written to an output directory.
type RunStatus struct {
	Dir             string
	RunID           string
	SourcePattern   string
	TargetPattern   string
	InputFiles      int
	GraphConsistent bool
	GrammarAgrees   bool
	Stages          []export.StageMetric
	Outputs         []OutputInfo
	Missing         int
}

// Scan reads dir/report.json and checks which of the run's outputs are on
// disk.
func Scan(dir string) (*RunStatus, error) {
	layout := pipeline.Layout(dir, "", "")
	data, err := os.ReadFile(layout.Report)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoRun)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", layout.Report, err)
	}

	var report export.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse %s: %w", layout.Report, err)
	}

	st := &RunStatus{
		Dir:             dir,
		RunID:           report.RunID,
		SourcePattern:   report.SourcePattern,
		TargetPattern:   report.TargetPattern,
		InputFiles:      report.InputFileCount,
		GraphConsistent: report.GraphConsistent,
		GrammarAgrees:   report.GrammarCheck == nil || report.GrammarCheck.Agrees(),
		Stages:          report.Stages,
	}

	layout = pipeline.Layout(dir, report.SourcePattern, report.TargetPattern)
	for _, o := range labelled(layout) {
		info, err := os.Stat(o.Path)
		if err == nil {
			o.Present = true
			o.Size = info.Size()
		} else {
			st.Missing++
		}
		st.Outputs = append(st.Outputs, o)
	}
	return st, nil
}

func labelled(p pipeline.OutputPaths) []OutputInfo {
	return []OutputInfo{
		{Label: "Base code", Path: p.BaseCode},
		{Label: "Target code", Path: p.TargetCode},
		{Label: "Base code page", Path: p.BaseHTML},
		{Label: "Target code page", Path: p.TargetHTML},
		{Label: "Parse tree", Path: p.MainTreeHTML},
		{Label: "Shadow tree", Path: p.ShadowTreeHTML},
		{Label: "Creational tree", Path: p.CreationalHTML},
		{Label: "Behavioural tree", Path: p.BehaviouralHTML},
		{Label: "Pattern tree", Path: p.PatternHTML},
		{Label: "Report", Path: p.Report},
	}
}
