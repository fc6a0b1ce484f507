// Package recorder captures microphone audio into a temporary artifact
// file. The artifact is owned exclusively by the caller for the
// duration of one transmission.
package recorder

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096

	FormatWAV  = "wav"
	FormatFLAC = "flac"
)

// Recorder writes microphone audio to the given path between Start and
// Stop. At most one recording is active at a time.
type Recorder interface {
	Start(path string) error
	Stop() error
}

// artifactWriter encodes PCM16LE bytes into the artifact file.
type artifactWriter interface {
	Write(pcm []byte) error
	Close() error
}

func newArtifactWriter(format, path string) (artifactWriter, error) {
	if format == FormatFLAC {
		return newFLACWriter(path)
	}
	return newWAVWriter(path)
}

// Ext returns the artifact file extension for a format.
func Ext(format string) string {
	if format == FormatFLAC {
		return ".flac"
	}
	return ".wav"
}
