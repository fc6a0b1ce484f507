package hotkey

import (
	"sync"
	"time"

	"murmur/log"
)

// maxRestarts bounds how many listener crashes are survivable.
// The counter is cumulative for the process lifetime: once exhausted
// the hotkey surface stays down until restart.
const maxRestarts = 3

// Listener supervises a Source feeding a Machine. When the OS hook
// terminates abnormally the listener restarts it, waiting 1x, 2x, 3x
// the base interval before successive attempts.
type Listener struct {
	src     Source
	machine *Machine
	base    time.Duration

	sleep   func(time.Duration)
	onFatal func(error)

	done     chan struct{}
	stopOnce sync.Once
}

func NewListener(src Source, m *Machine, base time.Duration) *Listener {
	return &Listener{
		src:     src,
		machine: m,
		base:    base,
		sleep:   time.Sleep,
		done:    make(chan struct{}),
	}
}

// OnFatal installs a callback invoked once the restart budget is
// exhausted. Must be set before Start.
func (l *Listener) OnFatal(fn func(error)) { l.onFatal = fn }

// Start installs the hook and begins supervision.
func (l *Listener) Start() error {
	if err := l.src.Start(l.machine); err != nil {
		return err
	}
	go l.supervise()
	return nil
}

// Stop ends supervision and removes the hook.
func (l *Listener) Stop() {
	l.stopOnce.Do(func() {
		close(l.done)
		l.src.Stop()
	})
}

func (l *Listener) supervise() {
	failures := 0
	for {
		select {
		case <-l.done:
			return
		case err := <-l.src.Err():
			if mode, ok := l.machine.Abandon(); ok {
				log.Warnf("transmission orphaned by listener failure: mode=%s", mode)
			}
			log.Errorf("key listener terminated: %v", err)

			recovered := false
			for !recovered {
				failures++
				if failures > maxRestarts {
					log.Error("key listener restarts exhausted; hotkeys disabled until process restart")
					if l.onFatal != nil {
						l.onFatal(err)
					}
					return
				}
				l.sleep(l.base * time.Duration(failures))
				if startErr := l.src.Start(l.machine); startErr != nil {
					log.Errorf("key listener restart %d/%d failed: %v", failures, maxRestarts, startErr)
					continue
				}
				log.Infof("key listener restarted after failure %d/%d", failures, maxRestarts)
				recovered = true
			}
		}
	}
}
