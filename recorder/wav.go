package recorder

import (
	"encoding/binary"
	"os"
)

const wavHeaderSize = 44

// wavWriter streams PCM data after a placeholder header and patches the
// chunk sizes on close.
type wavWriter struct {
	f       *os.File
	dataLen uint32
}

func newWAVWriter(path string) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w := &wavWriter{f: f}
	if err := w.writeHeader(); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *wavWriter) writeHeader() error {
	var h [wavHeaderSize]byte
	copy(h[0:], "RIFF")
	copy(h[8:], "WAVE")
	copy(h[12:], "fmt ")
	binary.LittleEndian.PutUint32(h[16:], 16) // PCM fmt chunk size
	binary.LittleEndian.PutUint16(h[20:], 1)  // PCM
	binary.LittleEndian.PutUint16(h[22:], Channels)
	binary.LittleEndian.PutUint32(h[24:], SampleRate)
	binary.LittleEndian.PutUint32(h[28:], SampleRate*Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(h[32:], Channels*BitsPerSample/8)
	binary.LittleEndian.PutUint16(h[34:], BitsPerSample)
	copy(h[36:], "data")
	_, err := w.f.Write(h[:])
	return err
}

func (w *wavWriter) Write(pcm []byte) error {
	n, err := w.f.Write(pcm)
	w.dataLen += uint32(n)
	return err
}

func (w *wavWriter) Close() error {
	var sz [4]byte
	binary.LittleEndian.PutUint32(sz[:], 36+w.dataLen)
	if _, err := w.f.WriteAt(sz[:], 4); err != nil {
		w.f.Close()
		return err
	}
	binary.LittleEndian.PutUint32(sz[:], w.dataLen)
	if _, err := w.f.WriteAt(sz[:], 40); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
