// Package clipboard owns the system clipboard. Platform clipboard APIs
// want to be driven from a single thread, so every operation is
// marshalled onto one dedicated locked OS thread for the life of the
// service.
package clipboard

import (
	"errors"
	"runtime"

	cb "github.com/atotto/clipboard"
)

var ErrClosed = errors.New("clipboard service closed")

// Service serializes clipboard access on its own OS thread.
type Service struct {
	ops  chan func()
	quit chan struct{}
	done chan struct{}
}

func New() *Service {
	s := &Service{
		ops:  make(chan func()),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Service) run() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)
	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.quit:
			return
		}
	}
}

func (s *Service) submit(op func()) error {
	wait := make(chan struct{})
	select {
	case s.ops <- func() { op(); close(wait) }:
		<-wait
		return nil
	case <-s.quit:
		return ErrClosed
	}
}

// SetText places text on the system clipboard.
func (s *Service) SetText(text string) error {
	var err error
	if subErr := s.submit(func() { err = cb.WriteAll(text) }); subErr != nil {
		return subErr
	}
	return err
}

// Text reads the current clipboard contents.
func (s *Service) Text() (string, error) {
	var (
		text string
		err  error
	)
	if subErr := s.submit(func() { text, err = cb.ReadAll() }); subErr != nil {
		return "", subErr
	}
	return text, err
}

// Paste sends the platform paste keystroke to the focused window.
func (s *Service) Paste() error {
	var err error
	if subErr := s.submit(func() { err = sendPaste() }); subErr != nil {
		return subErr
	}
	return err
}

// Close stops the clipboard thread. In-flight operations complete first.
func (s *Service) Close() {
	close(s.quit)
	<-s.done
}
