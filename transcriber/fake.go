package transcriber

import (
	"context"
	"fmt"
	"sync"
)

// FakeTranscriber returns a fixed result for tests.
type FakeTranscriber struct {
	text string
	err  error

	mu    sync.Mutex
	paths []string
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string { return "fake" }

func (f *FakeTranscriber) Transcribe(_ context.Context, path string) (Result, error) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()

	if f.err != nil {
		return Result{}, fmt.Errorf("fake transcriber error: %w", f.err)
	}
	return Result{Text: f.text, Language: "en", Duration: 1.0}, nil
}

// Paths reports the artifacts transcribed so far.
func (f *FakeTranscriber) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.paths...)
}
