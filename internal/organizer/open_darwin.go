//go:build darwin

package organizer

import "os/exec"

// platformOpen opens the path using the macOS 'open' command.
func platformOpen(path string) error {
	return exec.Command("open", path).Start()
}
