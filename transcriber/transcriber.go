// Package transcriber turns recorded audio artifacts into text.
package transcriber

import "context"

type Segment struct {
	Text         string
	Start        float64
	End          float64
	NoSpeechProb float64
	AvgLogProb   float64
}

type Result struct {
	Text     string
	Language string
	Duration float64
	Segments []Segment
}

// Transcriber recognizes speech in the artifact at path.
type Transcriber interface {
	Name() string
	Transcribe(ctx context.Context, path string) (Result, error)
}
