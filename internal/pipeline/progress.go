package pipeline

import "fmt"

const progressBuffer = 64

// ProgressReporter fans stage events out through a buffered channel.
type ProgressReporter struct {
	ch chan ProgressEvent
}

// NewProgressReporter creates a reporter with room for 64 pending events.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{ch: make(chan ProgressEvent, progressBuffer)}
}

// Emit sends event without blocking. Events are dropped while the buffer is full.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns the event channel.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress renders an event as a status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case ProgressWorking:
		return fmt.Sprintf("  ● %s...", event.Stage)
	case ProgressComplete:
		return fmt.Sprintf("  ✓ %s | elapsed_ms=%.3f | estimated_bytes=%d",
			event.Stage, event.ElapsedMS, event.EstimatedBytes)
	case ProgressSkipped:
		return fmt.Sprintf("  - %s skipped: %s", event.Stage, event.Message)
	case ProgressFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.Stage, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Stage)
	}
}
