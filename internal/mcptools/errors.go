package mcptools

import "errors"

var (
	// ErrNoAnalysis is returned by query tools before analyze_sources has run
	// or when the requested analysis was evicted from the cache.
	ErrNoAnalysis = errors.New("no analysis available, call analyze_sources first")

	// ErrMissingInput is returned when a required tool argument is empty.
	ErrMissingInput = errors.New("missing required input")
)
