package pipeline

import (
	"sync"
	"time"

	"murmur/hotkey"
)

// Sink receives pipeline outcomes. Sinks are notified synchronously in
// registration order; a slow sink delays the worker that finished the
// run, nothing else.
type Sink interface {
	PipelineCompleted(mode hotkey.Mode, text string, elapsed time.Duration)
	PipelineError(stage string, err error)
}

// RecordingSink collects outcomes for tests.
type RecordingSink struct {
	mu        sync.Mutex
	completed []CompletedEvent
	errors    []ErrorEvent
}

type CompletedEvent struct {
	Mode    hotkey.Mode
	Text    string
	Elapsed time.Duration
}

type ErrorEvent struct {
	Stage string
	Err   error
}

func (s *RecordingSink) PipelineCompleted(mode hotkey.Mode, text string, elapsed time.Duration) {
	s.mu.Lock()
	s.completed = append(s.completed, CompletedEvent{Mode: mode, Text: text, Elapsed: elapsed})
	s.mu.Unlock()
}

func (s *RecordingSink) PipelineError(stage string, err error) {
	s.mu.Lock()
	s.errors = append(s.errors, ErrorEvent{Stage: stage, Err: err})
	s.mu.Unlock()
}

func (s *RecordingSink) Completed() []CompletedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CompletedEvent{}, s.completed...)
}

func (s *RecordingSink) Errors() []ErrorEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ErrorEvent{}, s.errors...)
}
