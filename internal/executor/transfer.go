package executor

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	dirPermission  = 0o755
	filePermission = 0o644
)

// ensureOutputDir resolves and creates the output directory.
func ensureOutputDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve output path %s: %w", path, err)
	}
	if err := os.MkdirAll(abs, dirPermission); err != nil {
		return "", fmt.Errorf("create output directory %s: %w", abs, err)
	}
	return abs, nil
}

// safeJoin joins path segments under root and rejects any result that
// escapes it. Category names come from rule tables, including
// user-supplied custom rules, so they are not trusted blindly.
func safeJoin(root string, segments ...string) (string, error) {
	joined := filepath.Join(append([]string{root}, segments...)...)

	rel, err := filepath.Rel(root, joined)
	if err != nil {
		return "", fmt.Errorf("resolve path under %s: %w", root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes output directory", filepath.Join(segments...))
	}
	return joined, nil
}

// transferFile places src at dest, creating destDir first. An existing
// destination is a failure; files are never overwritten.
func transferFile(src, destDir, dest string, transfer Transfer) error {
	if err := os.MkdirAll(destDir, dirPermission); err != nil {
		return fmt.Errorf("create category directory: %w", err)
	}

	if _, err := os.Lstat(dest); err == nil {
		return fmt.Errorf("destination already exists: %s", dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check destination: %w", err)
	}

	switch transfer {
	case TransferCopy:
		return copyFile(src, dest)
	default:
		return moveFile(src, dest)
	}
}

// moveFile renames src to dest, falling back to copy and remove when
// rename fails across devices.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	if err := copyFile(src, dest); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove source after copy: %w", err)
	}
	return nil
}

// copyFile copies src to dest, preserving the source's permission bits.
// A partial destination is removed on failure.
func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermission)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("copy contents: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close destination: %w", err)
	}

	if err := os.Chmod(dest, info.Mode().Perm()); err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	return nil
}
