package hotkey

import (
	"errors"
	"sync"
	"testing"
	"time"
)

const testBase = 10 * time.Millisecond

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(d time.Duration) {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
}

func (s *sleepRecorder) all() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration{}, s.delays...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestListenerRestartsWithGrowingDelay(t *testing.T) {
	src := NewFake()
	m := NewMachine(DefaultTriggers())
	l := NewListener(src, m, testBase)
	rec := &sleepRecorder{}
	l.sleep = rec.sleep

	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Stop()

	for i := 1; i <= 3; i++ {
		src.Fail(errors.New("hook died"))
		want := i + 1
		waitFor(t, "restart", func() bool { return src.StartCount() == want })
	}

	delays := rec.all()
	if len(delays) != 3 {
		t.Fatalf("delays = %v, want 3", delays)
	}
	for i, want := range []time.Duration{testBase, 2 * testBase, 3 * testBase} {
		if delays[i] != want {
			t.Errorf("delay %d = %v, want %v", i, delays[i], want)
		}
	}
}

func TestListenerFourthFailureIsFatal(t *testing.T) {
	src := NewFake()
	m := NewMachine(DefaultTriggers())
	l := NewListener(src, m, testBase)
	rec := &sleepRecorder{}
	l.sleep = rec.sleep

	fatal := make(chan error, 1)
	l.OnFatal(func(err error) { fatal <- err })

	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Stop()

	for i := 1; i <= 3; i++ {
		src.Fail(errors.New("hook died"))
		want := i + 1
		waitFor(t, "restart", func() bool { return src.StartCount() == want })
	}

	// The budget is spent: the next failure must not be retried.
	src.Fail(errors.New("hook died again"))
	select {
	case <-fatal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fatal callback")
	}

	if got := src.StartCount(); got != 4 {
		t.Errorf("start count = %d, want 4 (no retry after budget)", got)
	}
	if got := rec.all(); len(got) != 3 {
		t.Errorf("delays = %v, want exactly 3", got)
	}
}

func TestListenerFailedRestartConsumesBudget(t *testing.T) {
	src := NewFake()
	m := NewMachine(DefaultTriggers())
	l := NewListener(src, m, testBase)
	rec := &sleepRecorder{}
	l.sleep = rec.sleep

	fatal := make(chan error, 1)
	l.OnFatal(func(err error) { fatal <- err })

	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Stop()

	src.SetStartFunc(func() error { return errors.New("hook unavailable") })
	src.Fail(errors.New("hook died"))

	select {
	case <-fatal:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fatal callback")
	}

	delays := rec.all()
	if len(delays) != 3 {
		t.Fatalf("delays = %v, want 3", delays)
	}
	for i, want := range []time.Duration{testBase, 2 * testBase, 3 * testBase} {
		if delays[i] != want {
			t.Errorf("delay %d = %v, want %v", i, delays[i], want)
		}
	}
}

func TestListenerAbandonsTransmissionOnFailure(t *testing.T) {
	src := NewFake()
	m := NewMachine(DefaultTriggers())
	l := NewListener(src, m, testBase)
	rec := &sleepRecorder{}
	l.sleep = rec.sleep

	if err := l.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer l.Stop()

	src.SimKeyDown(KeyF8)
	if _, active := m.Active(); !active {
		t.Fatal("transmission should be active before failure")
	}

	src.Fail(errors.New("hook died"))
	waitFor(t, "restart", func() bool { return src.StartCount() == 2 })

	if _, active := m.Active(); active {
		t.Error("failure must abandon the in-flight transmission")
	}
}
