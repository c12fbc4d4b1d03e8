//go:build windows

package organizer

import "os/exec"

// platformOpen opens the path using the Windows 'start' command.
func platformOpen(path string) error {
	// 'cmd /c start "" "path"' is the standard way to launch paths on Windows
	return exec.Command("cmd", "/c", "start", "", path).Start()
}
