package screenshot

import "sync"

// Fake satisfies Capturer for tests.
type Fake struct {
	Path string
	Err  error

	mu    sync.Mutex
	calls int
}

func (f *Fake) Capture() (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Path, nil
}

func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
