package recorder

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
)

// Mic records from the default capture device through malgo.
type Mic struct {
	ctx    *malgo.AllocatedContext
	format string
	gate   *speechGate

	mu  sync.Mutex
	dev *malgo.Device
	out artifactWriter
}

func NewMic(format string) (*Mic, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("audio context init: %w", err)
	}
	// A gate failure only disables the silent-recording shortcut.
	gate, err := newSpeechGate()
	if err != nil {
		gate = nil
	}
	return &Mic{ctx: ctx, format: format, gate: gate}, nil
}

// SetFormat selects the artifact encoding for subsequent recordings.
func (m *Mic) SetFormat(format string) {
	m.mu.Lock()
	m.format = format
	m.mu.Unlock()
}

func (m *Mic) Start(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dev != nil {
		return fmt.Errorf("recording already in progress")
	}

	if m.gate != nil {
		m.gate.Reset()
	}
	out, err := newArtifactWriter(m.format, path)
	if err != nil {
		return err
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = Channels
	deviceConfig.SampleRate = SampleRate

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, data []byte, frameCount uint32) {
			if len(data) == 0 {
				return
			}
			pcm := make([]byte, len(data))
			copy(pcm, data)
			m.feed(pcm)
		},
	}

	dev, err := malgo.InitDevice(m.ctx.Context, deviceConfig, callbacks)
	if err != nil {
		out.Close()
		return err
	}
	if err := dev.Start(); err != nil {
		dev.Uninit()
		out.Close()
		return err
	}

	m.dev = dev
	m.out = out
	return nil
}

// feed runs on the capture thread. Writes happen under the lock so a
// concurrent Stop cannot close the writer mid-write.
func (m *Mic) feed(pcm []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.out == nil {
		return
	}
	m.out.Write(pcm)
	if m.gate != nil {
		m.gate.Process(pcm)
	}
}

// VoiceDetected reports whether the last recording contained speech.
// Always true when voice detection is unavailable.
func (m *Mic) VoiceDetected() bool {
	if m.gate == nil {
		return true
	}
	return m.gate.VoiceDetected()
}

func (m *Mic) Stop() error {
	m.mu.Lock()
	dev := m.dev
	out := m.out
	m.dev = nil
	m.out = nil
	m.mu.Unlock()

	if dev == nil {
		return fmt.Errorf("no recording in progress")
	}
	dev.Stop()
	dev.Uninit()
	return out.Close()
}

func (m *Mic) Close() {
	m.ctx.Uninit()
	m.ctx.Free()
}
