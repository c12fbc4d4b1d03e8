//go:build linux

package organizer

import "os/exec"

// platformOpen opens the path using 'xdg-open' (default application).
func platformOpen(path string) error {
	return exec.Command("xdg-open", path).Start()
}
