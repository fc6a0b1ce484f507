package screenshot

import (
	"fmt"
	"os/exec"
)

func capture(path string) error {
	switch {
	case have("gnome-screenshot"):
		return run("gnome-screenshot", "-a", "-f", path)
	case have("grim") && have("slurp"):
		// grim takes slurp's region selection on wayland.
		return exec.Command("sh", "-c", fmt.Sprintf(`grim -g "$(slurp)" %q`, path)).Run()
	case have("scrot"):
		return run("scrot", "-s", path)
	case have("import"):
		return run("import", path)
	}
	return fmt.Errorf("no screenshot tool found (tried gnome-screenshot, grim, scrot, import)")
}

func have(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func run(name string, args ...string) error {
	if err := exec.Command(name, args...).Run(); err != nil {
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}
