// Package notify plays short synthesized tones to signal pipeline
// outcomes. Playback failures never surface past this package; audio
// feedback must not be able to break a pipeline.
package notify

// Kind is the outcome being signalled.
type Kind int

const (
	// KindPlain: a raw transcript was delivered.
	KindPlain Kind = iota
	// KindLLM: an augmented result was delivered.
	KindLLM
	// KindError: the pipeline reported a failure.
	KindError
)

// Player plays a notification tone for an outcome kind.
type Player interface {
	Play(kind Kind)
}

var disabled bool

func Disable() { disabled = true }

const (
	sampleRate = 44100

	// LLM tone: high pitch, short
	llmFreq   = 1200
	llmVolume = 0.5
	llmDecay  = 60

	// Plain tone: medium pitch, slightly longer
	plainFreq   = 900
	plainVolume = 0.5
	plainDecay  = 40

	// Error tone: low pitch double-beep
	errorFreq   = 350
	errorVolume = 0.6
	errorDecay  = 30
)

// TonePlayer is the default Player backed by the platform audio layer.
type TonePlayer struct{}

func NewTonePlayer() *TonePlayer {
	Init()
	return &TonePlayer{}
}

func (TonePlayer) Play(kind Kind) {
	switch kind {
	case KindPlain:
		PlayPlain()
	case KindLLM:
		PlayLLM()
	case KindError:
		PlayError()
	}
}
