package hotkey

import (
	"fmt"
	"runtime"
	"sync"

	hook "github.com/robotn/gohook"
)

// GohookSource adapts the robotn/gohook global keyboard hook to the
// Source interface. gohook cannot swallow events, so suppress decisions
// are advisory on this source.
type GohookSource struct {
	translate func(rawcode uint16) Key

	mu      sync.Mutex
	running bool
	errs    chan error
}

// NewGohook builds a source using the given rawcode translation.
// A nil translate falls back to the platform default.
func NewGohook(translate func(rawcode uint16) Key) *GohookSource {
	if translate == nil {
		translate = DefaultTranslate
	}
	return &GohookSource{translate: translate, errs: make(chan error, 1)}
}

// DefaultTranslate maps platform raw key codes onto the Linux
// input-event codes the rest of the package speaks.
func DefaultTranslate(rawcode uint16) Key {
	if runtime.GOOS == "linux" && rawcode >= 8 {
		// X11 keycodes are evdev codes offset by 8.
		return Key(rawcode - 8)
	}
	return Key(rawcode)
}

func (g *GohookSource) Start(h Handler) error {
	g.mu.Lock()
	if g.running {
		g.mu.Unlock()
		return fmt.Errorf("hook already running")
	}
	g.running = true
	g.mu.Unlock()

	events := hook.Start()
	go g.pump(events, h)
	return nil
}

func (g *GohookSource) pump(events chan hook.Event, h Handler) {
	for ev := range events {
		switch ev.Kind {
		case hook.KeyDown:
			h.KeyDown(g.translate(ev.Rawcode))
		case hook.KeyUp:
			h.KeyUp(g.translate(ev.Rawcode))
		}
	}

	g.mu.Lock()
	wasRunning := g.running
	g.running = false
	g.mu.Unlock()

	if wasRunning {
		// Channel closed without Stop: the hook thread died on us.
		select {
		case g.errs <- fmt.Errorf("gohook event stream closed unexpectedly"):
		default:
		}
	}
}

func (g *GohookSource) Stop() {
	g.mu.Lock()
	if !g.running {
		g.mu.Unlock()
		return
	}
	g.running = false
	g.mu.Unlock()
	hook.End()
}

func (g *GohookSource) Err() <-chan error { return g.errs }
