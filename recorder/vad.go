package recorder

import (
	"sync"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"
)

const (
	vadMode       = 3
	vadFrameMs    = 20
	vadFrameBytes = SampleRate * vadFrameMs / 1000 * 2 // 640 bytes
	vadDebounce   = 3                                  // consecutive speech frames to confirm voice
)

// speechGate runs voice activity detection over the capture stream so
// silent recordings can skip the transcription call entirely.
type speechGate struct {
	vad *webrtcvad.VAD

	mu            sync.Mutex
	buf           []byte
	voiceDetected bool
	speechRun     int
}

func newSpeechGate() (*speechGate, error) {
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(vadMode); err != nil {
		return nil, err
	}
	return &speechGate{vad: v}, nil
}

func (g *speechGate) Process(data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.buf = append(g.buf, data...)
	for len(g.buf) >= vadFrameBytes {
		frame := g.buf[:vadFrameBytes]
		g.buf = g.buf[vadFrameBytes:]

		active, err := g.vad.Process(SampleRate, frame)
		if err != nil {
			continue
		}
		if active {
			g.speechRun++
			if g.speechRun >= vadDebounce {
				g.voiceDetected = true
			}
		} else {
			g.speechRun = 0
		}
	}
}

func (g *speechGate) VoiceDetected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.voiceDetected
}

func (g *speechGate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.buf = g.buf[:0]
	g.voiceDetected = false
	g.speechRun = 0
}
