package organizer

import (
	"fmt"
	"os"
)

// OpenRequest asks for a path to be shown in the host's file browser.
type OpenRequest struct {
	Path string `json:"path"`
}

// OpenResponse reports whether the path could be opened.
type OpenResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// OpenOutput opens the given path in the platform file browser. A path
// that no longer exists fails gracefully instead of handing a dead path
// to the desktop.
func (s *Service) OpenOutput(req OpenRequest) OpenResponse {
	if _, err := os.Stat(req.Path); err != nil {
		s.log.LogWarn(fmt.Sprintf("open %s: %v", req.Path, err))
		return OpenResponse{Error: fmt.Sprintf("path is not accessible: %v", err)}
	}

	if err := platformOpen(req.Path); err != nil {
		s.log.LogError(fmt.Sprintf("open %s: %v", req.Path, err))
		return OpenResponse{Error: fmt.Sprintf("open file browser: %v", err)}
	}

	return OpenResponse{Success: true}
}
