package recorder

import (
	"os"
	"sync"
)

// Fake is a Recorder for tests. It materializes Artifact at the
// requested path on Stop, unless SkipWrite simulates a capture that
// never produced a file.
type Fake struct {
	StartErr  error
	StopErr   error
	Artifact  []byte
	SkipWrite bool
	// Silent simulates a recording with no detected speech.
	Silent bool

	mu    sync.Mutex
	path  string
	armed bool
}

func NewFakeRecorder() *Fake {
	return &Fake{Artifact: []byte("pcm")}
}

func (f *Fake) Start(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.StartErr != nil {
		return f.StartErr
	}
	f.path = path
	f.armed = true
	return nil
}

func (f *Fake) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.armed {
		return os.ErrInvalid
	}
	f.armed = false
	if f.StopErr != nil {
		return f.StopErr
	}
	if !f.SkipWrite {
		return os.WriteFile(f.path, f.Artifact, 0644)
	}
	return nil
}

func (f *Fake) VoiceDetected() bool { return !f.Silent }

// Path reports where the last recording was asked to go.
func (f *Fake) Path() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path
}
