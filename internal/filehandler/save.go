package filehandler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

// maxNameAttempts bounds the search for a free numbered filename.
const maxNameAttempts = 1000

// SaveDownload writes dl into dir and returns the final path. The data is
// written to a temporary file first and renamed into place, so a failed
// write never leaves a partial image. An existing file is never replaced:
// "photo-editor-edit.png" becomes "photo-editor-edit-2.png" and so on.
func SaveDownload(dir string, dl editor.Download) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".edit-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Removing after a successful rename fails harmlessly.
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(dl.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	target, err := claimPath(dir, filepath.Base(dl.Filename))
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmpPath, target); err != nil {
		os.Remove(target)
		return "", fmt.Errorf("failed to move image into place: %w", err)
	}

	log.Info().
		Str("path", target).
		Int("size_bytes", len(dl.Data)).
		Msg("Edited image saved")
	return target, nil
}

// claimPath creates an empty placeholder at dir/name, or at the first free
// dir/base-N.ext, and returns its path. O_EXCL makes the claim atomic, so the
// later rename only ever replaces the placeholder.
func claimPath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for i := 2; i < maxNameAttempts; i++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			f.Close()
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("failed to claim %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", base, i, ext))
	}
	return "", fmt.Errorf("no free filename for %s in %s", name, dir)
}
