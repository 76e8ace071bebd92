package pipeline

import "errors"

var (
	// ErrNoSourcePattern is returned when a run is started without a source pattern.
	ErrNoSourcePattern = errors.New("source pattern is required")

	// ErrNoTargetPattern is returned when a run is started without a target pattern.
	ErrNoTargetPattern = errors.New("target pattern is required")

	// ErrNoInputFiles is returned when a run has nothing to analyze.
	ErrNoInputFiles = errors.New("at least one input file is required")
)
