package hotkey

import (
	"sync"
	"time"
)

// Mode is the transmission mode a key combination maps to.
type Mode int

const (
	ModeNone Mode = iota
	ModePlain
	ModePrompt
	ModeCopyPrompt
	ModeVisionHold
	ModeVisionImmediate
	ModeTTS
)

func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModePrompt:
		return "prompt"
	case ModeCopyPrompt:
		return "copy-prompt"
	case ModeVisionHold:
		return "vision-hold"
	case ModeVisionImmediate:
		return "vision"
	case ModeTTS:
		return "tts"
	}
	return "none"
}

// Augmented reports whether transcripts in this mode go through an
// LLM before delivery.
func (m Mode) Augmented() bool {
	return m == ModePrompt || m == ModeCopyPrompt || m == ModeVisionHold
}

// Observer receives semantic events from the Machine. Observers are
// notified synchronously, in registration order, off the Machine's lock.
type Observer interface {
	TransmissionStarted(mode Mode)
	TransmissionEnded(mode Mode)
	TTSTriggered()
	VisionCaptureStarted()
}

// Triggers names the three overloaded trigger keys.
type Triggers struct {
	Capture Key // plain capture; with ctrl: immediate TTS
	Prompt  Key // with shift: prompt capture; with ctrl: copy-prompt capture
	Vision  Key // with shift: immediate vision; with ctrl: vision hold
}

func DefaultTriggers() Triggers {
	return Triggers{Capture: KeyF8, Prompt: KeyF9, Vision: KeyF10}
}

// DebounceWindow is the minimum spacing between two accepted
// immediate TTS triggers.
const DebounceWindow = 200 * time.Millisecond

// Machine classifies raw key events into transmission starts and ends.
// At most one transmission is active at a time; a qualifying key-down
// while one is active is silently ignored. The lock guards only the
// admission decision and is never held across observer calls.
type Machine struct {
	mu      sync.Mutex
	trig    Triggers
	mods    map[Key]bool
	mode    Mode
	lastTTS time.Time

	observers []Observer
	now       func() time.Time
}

func NewMachine(trig Triggers) *Machine {
	return &Machine{
		trig: trig,
		mods: make(map[Key]bool),
		now:  time.Now,
	}
}

// Subscribe registers an observer. Not safe to call concurrently with
// event delivery; register everything before starting the listener.
func (m *Machine) Subscribe(o Observer) {
	m.observers = append(m.observers, o)
}

// SetTriggers swaps the trigger keys, e.g. after a settings change. An
// active transmission keeps running; it still ends on the key that
// started it only if that key remains a trigger.
func (m *Machine) SetTriggers(trig Triggers) {
	m.mu.Lock()
	m.trig = trig
	m.mu.Unlock()
}

// Active reports whether a transmission is in flight and its mode.
func (m *Machine) Active() (Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode, m.mode != ModeNone
}

func (m *Machine) ctrlHeld() bool  { return m.mods[KeyLeftCtrl] || m.mods[KeyRightCtrl] }
func (m *Machine) shiftHeld() bool { return m.mods[KeyLeftShift] || m.mods[KeyRightShift] }

// KeyDown implements Handler. Classification precedence: modifiers,
// debounced TTS, plain capture, prompt capture, copy-prompt capture,
// immediate vision, vision hold; first match wins.
func (m *Machine) KeyDown(k Key) bool {
	m.mu.Lock()

	if k.IsModifier() {
		m.mods[k] = true
		m.mu.Unlock()
		return false
	}

	switch {
	case k == m.trig.Capture && m.ctrlHeld():
		now := m.now()
		if now.Sub(m.lastTTS) < DebounceWindow {
			m.mu.Unlock()
			return true // debounced: drop but still swallow the event
		}
		m.lastTTS = now
		m.mu.Unlock()
		m.notify(func(o Observer) { o.TTSTriggered() })
		return true

	case k == m.trig.Capture:
		return m.begin(ModePlain)

	case k == m.trig.Prompt && m.shiftHeld():
		return m.begin(ModePrompt)

	case k == m.trig.Prompt && m.ctrlHeld():
		return m.begin(ModeCopyPrompt)

	case k == m.trig.Vision && m.shiftHeld():
		m.mu.Unlock()
		m.notify(func(o Observer) { o.VisionCaptureStarted() })
		return true

	case k == m.trig.Vision && m.ctrlHeld():
		return m.begin(ModeVisionHold)
	}

	m.mu.Unlock()
	return false
}

// begin starts a transmission if none is active. Called with the lock
// held; releases it.
func (m *Machine) begin(mode Mode) bool {
	if m.mode != ModeNone {
		m.mu.Unlock()
		return true // second start is a no-op, event still suppressed
	}
	m.mode = mode
	m.mu.Unlock()
	m.notify(func(o Observer) { o.TransmissionStarted(mode) })
	return true
}

// KeyUp implements Handler. A key-up ends the active transmission only
// if it matches the key that started it under the modifier context that
// started it. In particular a Capture release does not end a plain
// capture while ctrl is held: Capture+ctrl is a different mode entirely
// and must not terminate the hold.
func (m *Machine) KeyUp(k Key) bool {
	m.mu.Lock()

	if k.IsModifier() {
		delete(m.mods, k)
		m.mu.Unlock()
		return false
	}

	ended := ModeNone
	switch {
	case k == m.trig.Capture && m.mode == ModePlain && !m.ctrlHeld():
		ended = m.mode
	case k == m.trig.Prompt && (m.mode == ModePrompt || m.mode == ModeCopyPrompt):
		ended = m.mode
	case k == m.trig.Vision && m.mode == ModeVisionHold:
		ended = m.mode
	}
	if ended == ModeNone {
		m.mu.Unlock()
		return false
	}
	m.mode = ModeNone
	m.mu.Unlock()
	m.notify(func(o Observer) { o.TransmissionEnded(ended) })
	return true
}

// Abandon clears any in-flight transmission without emitting an end
// event. Used when the listener dies under an active hold; the
// transmission is unrecoverable at that point.
func (m *Machine) Abandon() (Mode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mode == ModeNone {
		return ModeNone, false
	}
	mode := m.mode
	m.mode = ModeNone
	return mode, true
}

func (m *Machine) notify(fn func(Observer)) {
	for _, o := range m.observers {
		fn(o)
	}
}
