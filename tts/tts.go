// Package tts speaks text through an external synthesis command.
package tts

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// Speaker renders text as audio.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Bridge pipes text into a user-configured command ("say", "espeak",
// "piper ..."). The command reads the text from stdin.
type Bridge struct {
	command string
}

func NewBridge(command string) *Bridge {
	return &Bridge{command: command}
}

func (b *Bridge) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to speak")
	}
	if b.command == "" {
		return fmt.Errorf("no tts command configured")
	}
	cmd := exec.CommandContext(ctx, "sh", "-c", b.command)
	cmd.Stdin = strings.NewReader(text)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tts command failed: %w", err)
	}
	return nil
}

// Fake records spoken text for tests.
type Fake struct {
	Err error

	mu     sync.Mutex
	spoken []string
}

func (f *Fake) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	f.spoken = append(f.spoken, text)
	f.mu.Unlock()
	return f.Err
}

func (f *Fake) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.spoken...)
}
