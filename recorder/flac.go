package recorder

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
)

// flacWriter losslessly compresses PCM into the artifact file, one
// fixed-size block per frame with a final partial block on close.
type flacWriter struct {
	f   *os.File
	enc *flac.Encoder
	buf []int16
}

func newFLACWriter(path string) (*flacWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	info := &meta.StreamInfo{
		BlockSizeMin:  BlockSize,
		BlockSizeMax:  BlockSize,
		SampleRate:    SampleRate,
		NChannels:     Channels,
		BitsPerSample: BitsPerSample,
		NSamples:      0,
	}
	enc, err := flac.NewEncoder(f, info)
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, fmt.Errorf("creating flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)
	return &flacWriter{f: f, enc: enc}, nil
}

func (w *flacWriter) Write(pcm []byte) error {
	for i := 0; i+1 < len(pcm); i += 2 {
		w.buf = append(w.buf, int16(binary.LittleEndian.Uint16(pcm[i:])))
	}
	for len(w.buf) >= BlockSize {
		if err := w.writeFrame(w.buf[:BlockSize]); err != nil {
			return err
		}
		w.buf = w.buf[BlockSize:]
	}
	return nil
}

func (w *flacWriter) writeFrame(block []int16) error {
	samples32 := make([]int32, len(block))
	for i, s := range block {
		samples32[i] = int32(s)
	}

	subframe := &frame.Subframe{
		SubHeader: frame.SubHeader{
			Pred: frame.PredVerbatim,
		},
		Samples:  samples32,
		NSamples: len(block),
	}

	f := &frame.Frame{
		Header: frame.Header{
			BlockSize:     uint16(len(block)),
			SampleRate:    SampleRate,
			Channels:      frame.ChannelsMono,
			BitsPerSample: BitsPerSample,
		},
		Subframes: []*frame.Subframe{subframe},
	}

	if err := w.enc.WriteFrame(f); err != nil {
		return fmt.Errorf("writing flac frame: %w", err)
	}
	return nil
}

func (w *flacWriter) Close() error {
	if len(w.buf) > 0 {
		if err := w.writeFrame(w.buf); err != nil {
			w.f.Close()
			return err
		}
		w.buf = nil
	}
	if err := w.enc.Close(); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}
