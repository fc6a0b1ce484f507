package screenshot

import (
	"fmt"
	"os/exec"
)

// -i: interactive selection, -x: no shutter sound
func capture(path string) error {
	if err := exec.Command("screencapture", "-i", "-x", path).Run(); err != nil {
		return fmt.Errorf("screencapture failed: %w", err)
	}
	return nil
}
