package hotkey

import "sync"

// FakeSource is a scriptable Source for tests. SimKeyDown/SimKeyUp
// deliver events synchronously and return the handler's suppress
// decision; Fail simulates an abnormal hook termination.
type FakeSource struct {
	mu      sync.Mutex
	handler Handler
	errs    chan error
	started int
	stopped int
	startFn func() error
}

func NewFake() *FakeSource {
	return &FakeSource{errs: make(chan error, 4)}
}

func (f *FakeSource) Start(h Handler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started++
	if f.startFn != nil {
		if err := f.startFn(); err != nil {
			return err
		}
	}
	f.handler = h
	return nil
}

func (f *FakeSource) Stop() {
	f.mu.Lock()
	f.stopped++
	f.mu.Unlock()
}

func (f *FakeSource) Err() <-chan error { return f.errs }

// SetStartFunc installs a hook called on every Start, letting tests
// inject start failures.
func (f *FakeSource) SetStartFunc(fn func() error) {
	f.mu.Lock()
	f.startFn = fn
	f.mu.Unlock()
}

func (f *FakeSource) StartCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.started
}

func (f *FakeSource) SimKeyDown(k Key) bool {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return false
	}
	return h.KeyDown(k)
}

func (f *FakeSource) SimKeyUp(k Key) bool {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return false
	}
	return h.KeyUp(k)
}

func (f *FakeSource) Fail(err error) { f.errs <- err }
