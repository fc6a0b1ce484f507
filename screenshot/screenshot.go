// Package screenshot captures the screen for vision transmissions.
package screenshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Capturer grabs a screen region and returns the saved image path.
type Capturer interface {
	Capture() (string, error)
}

// Tool shells out to the platform screenshot utility.
type Tool struct {
	tempDir string
}

func NewTool(tempDir string) *Tool {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Tool{tempDir: tempDir}
}

func (t *Tool) targetPath() string {
	name := fmt.Sprintf("murmur_capture_%d.png", time.Now().UnixNano())
	return filepath.Join(t.tempDir, name)
}

// Capture runs the interactive capture tool. An empty selection (the
// user pressed escape) is reported as an error so callers can abort.
func (t *Tool) Capture() (string, error) {
	path := t.targetPath()
	if err := capture(path); err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("capture cancelled or failed to save")
	}
	return path, nil
}
