package hotkey

import (
	"sync"
	"testing"
	"time"
)

// recordingObserver collects machine events in order.
type recordingObserver struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingObserver) TransmissionStarted(mode Mode) { r.add("start:" + mode.String()) }
func (r *recordingObserver) TransmissionEnded(mode Mode)   { r.add("end:" + mode.String()) }
func (r *recordingObserver) TTSTriggered()                 { r.add("tts") }
func (r *recordingObserver) VisionCaptureStarted()         { r.add("vision") }

func (r *recordingObserver) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingObserver) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.events...)
}

func newTestMachine() (*Machine, *recordingObserver) {
	m := NewMachine(DefaultTriggers())
	obs := &recordingObserver{}
	m.Subscribe(obs)
	return m, obs
}

func expectEvents(t *testing.T, obs *recordingObserver, want ...string) {
	t.Helper()
	got := obs.all()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestPlainCapture(t *testing.T) {
	m, obs := newTestMachine()

	if !m.KeyDown(KeyF8) {
		t.Error("capture key-down should be suppressed")
	}
	if !m.KeyUp(KeyF8) {
		t.Error("capture key-up ending a transmission should be suppressed")
	}
	expectEvents(t, obs, "start:plain", "end:plain")
}

func TestSecondStartIsNoOp(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyF8)
	m.KeyDown(KeyLeftShift)
	if !m.KeyDown(KeyF9) {
		t.Error("qualifying key-down during active transmission is still suppressed")
	}
	m.KeyUp(KeyLeftShift)
	m.KeyUp(KeyF8)

	expectEvents(t, obs, "start:plain", "end:plain")
}

func TestPromptCapture(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyLeftShift)
	m.KeyDown(KeyF9)
	m.KeyUp(KeyLeftShift)
	m.KeyUp(KeyF9)

	expectEvents(t, obs, "start:prompt", "end:prompt")
}

func TestCopyPromptCapture(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyRightCtrl)
	m.KeyDown(KeyF9)
	m.KeyUp(KeyF9)
	m.KeyUp(KeyRightCtrl)

	expectEvents(t, obs, "start:copy-prompt", "end:copy-prompt")
}

func TestVisionHold(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyLeftCtrl)
	m.KeyDown(KeyF10)
	m.KeyUp(KeyF10)
	m.KeyUp(KeyLeftCtrl)

	expectEvents(t, obs, "start:vision-hold", "end:vision-hold")
}

func TestVisionImmediate(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyLeftShift)
	if !m.KeyDown(KeyF10) {
		t.Error("immediate vision key-down should be suppressed")
	}
	if m.KeyUp(KeyF10) {
		t.Error("vision key-up with no hold active should pass through")
	}
	m.KeyUp(KeyLeftShift)

	expectEvents(t, obs, "vision")
}

// A capture release while ctrl is held must not end a plain capture:
// F8 under ctrl belongs to the TTS chord, not to the hold.
func TestCaptureReleaseUnderCtrlKeepsHold(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyF8) // plain capture starts
	m.KeyDown(KeyLeftCtrl)
	if m.KeyUp(KeyF8) {
		t.Error("capture release under ctrl should pass through")
	}
	if mode, active := m.Active(); !active || mode != ModePlain {
		t.Fatalf("transmission should still be active, mode=%v active=%v", mode, active)
	}
	m.KeyUp(KeyLeftCtrl)
	m.KeyDown(KeyF8) // re-press is ignored, transmission already active
	m.KeyUp(KeyF8)   // now ends it

	expectEvents(t, obs, "start:plain", "end:plain")
}

func TestTTSDebounce(t *testing.T) {
	m, obs := newTestMachine()
	base := time.Now()
	current := base
	m.now = func() time.Time { return current }

	m.KeyDown(KeyLeftCtrl)

	m.KeyDown(KeyF8) // first trigger accepted
	m.KeyUp(KeyF8)

	current = base.Add(150 * time.Millisecond)
	if !m.KeyDown(KeyF8) {
		t.Error("debounced trigger is still suppressed")
	}
	m.KeyUp(KeyF8)

	current = base.Add(250 * time.Millisecond)
	m.KeyDown(KeyF8) // outside the window again
	m.KeyUp(KeyF8)

	expectEvents(t, obs, "tts", "tts")
}

func TestModifierTrackingPerKey(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyLeftCtrl)
	m.KeyDown(KeyRightCtrl)
	m.KeyUp(KeyLeftCtrl)

	// Right ctrl still held: F9 is copy-prompt.
	m.KeyDown(KeyF9)
	m.KeyUp(KeyF9)
	m.KeyUp(KeyRightCtrl)

	// All modifiers released: F9 alone matches nothing.
	if m.KeyDown(KeyF9) {
		t.Error("bare prompt key should pass through")
	}
	m.KeyUp(KeyF9)

	expectEvents(t, obs, "start:copy-prompt", "end:copy-prompt")
}

func TestModifierEventsPassThrough(t *testing.T) {
	m, _ := newTestMachine()

	if m.KeyDown(KeyLeftShift) || m.KeyUp(KeyLeftShift) {
		t.Error("modifier events must never be suppressed")
	}
}

func TestUnrelatedKeyPassesThrough(t *testing.T) {
	m, obs := newTestMachine()

	const keyA Key = 30
	if m.KeyDown(keyA) || m.KeyUp(keyA) {
		t.Error("unrelated keys must pass through")
	}
	expectEvents(t, obs)
}

func TestAbandonClearsActiveTransmission(t *testing.T) {
	m, obs := newTestMachine()

	m.KeyDown(KeyF8)
	mode, ok := m.Abandon()
	if !ok || mode != ModePlain {
		t.Fatalf("abandon = %v, %v", mode, ok)
	}
	if _, active := m.Active(); active {
		t.Error("abandon must clear the active transmission")
	}
	// No end event is emitted for an abandoned transmission.
	expectEvents(t, obs, "start:plain")
}

func TestSetTriggersTakesEffect(t *testing.T) {
	m, obs := newTestMachine()

	const keyF6 Key = 64
	m.SetTriggers(Triggers{Capture: keyF6, Prompt: KeyF9, Vision: KeyF10})

	// The old capture key is just another key now.
	if m.KeyDown(KeyF8) || m.KeyUp(KeyF8) {
		t.Error("former capture key should pass through after retrigger")
	}
	expectEvents(t, obs)

	m.KeyDown(keyF6)
	m.KeyUp(keyF6)
	expectEvents(t, obs, "start:plain", "end:plain")
}

func TestObserverOrder(t *testing.T) {
	m := NewMachine(DefaultTriggers())
	var order []int
	var mu sync.Mutex
	for i := 0; i < 3; i++ {
		i := i
		m.Subscribe(funcObserver(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	m.KeyDown(KeyF8)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 3 || order[0] != 0 || order[1] != 1 || order[2] != 2 {
		t.Errorf("notification order = %v, want registration order", order)
	}
}

// funcObserver adapts a func to Observer for ordering tests.
type funcObserver func()

func (f funcObserver) TransmissionStarted(Mode) { f() }
func (f funcObserver) TransmissionEnded(Mode)   { f() }
func (f funcObserver) TTSTriggered()            { f() }
func (f funcObserver) VisionCaptureStarted()    { f() }
