//go:build !darwin && !linux

package screenshot

import "fmt"

func capture(string) error {
	return fmt.Errorf("screen capture not supported on this platform")
}
