package cli

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openCommand returns the platform file-manager invocation for dir.
func openCommand(goos, dir string) (string, []string) {
	switch goos {
	case "windows":
		return "explorer", []string{dir}
	case "darwin":
		return "open", []string{dir}
	default:
		return "xdg-open", []string{dir}
	}
}

// OpenFolder shows dir in the desktop file manager without waiting for it.
func OpenFolder(dir string) error {
	name, args := openCommand(runtime.GOOS, dir)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("open %s with %s: %w", dir, name, err)
	}
	return nil
}
