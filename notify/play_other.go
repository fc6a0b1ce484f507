//go:build !linux && !darwin

package notify

// No tone playback on this platform.

func Init()      {}
func PlayLLM()   {}
func PlayPlain() {}
func PlayError() {}
