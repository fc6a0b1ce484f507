package llm

import (
	"context"
	"sync"
)

// FakeCompleter returns canned responses for tests.
type FakeCompleter struct {
	Configured bool
	Response   string
	Err        error

	mu   sync.Mutex
	reqs []Request
}

func NewFakeCompleter(response string, err error) *FakeCompleter {
	return &FakeCompleter{Configured: true, Response: response, Err: err}
}

func (f *FakeCompleter) Name() string       { return "fake" }
func (f *FakeCompleter) IsConfigured() bool { return f.Configured }

func (f *FakeCompleter) Complete(_ context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Response, nil
}

// Requests reports the completion calls made so far.
func (f *FakeCompleter) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request{}, f.reqs...)
}
