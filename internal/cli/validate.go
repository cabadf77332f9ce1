// Package cli holds the terminal helpers shared by the photo-edit command:
// directory checks, key validation messages, prompts, and the file picker.
package cli

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/auth"
)

// ResolveOutputDirectory creates dirPath if needed and returns its absolute
// path. Exits fatally when the path exists but is not a directory.
func ResolveOutputDirectory(dirPath string) string {
	info, err := os.Stat(dirPath)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(dirPath, 0o755); err != nil {
			log.Fatal().Err(err).Str("path", dirPath).Msg("Failed to create output directory")
		}
	case err != nil:
		log.Fatal().Err(err).Str("path", dirPath).Msg("Failed to access directory")
	case !info.IsDir():
		log.Fatal().Str("path", dirPath).Msg("Path is not a directory")
	}

	absPath, err := filepath.Abs(dirPath)
	if err == nil {
		dirPath = absPath
	}

	return dirPath
}

// HandleValidationError logs the hint for a failed key check and exits.
func HandleValidationError(err error) {
	var validationErr *auth.ValidationError
	if !errors.As(err, &validationErr) {
		log.Fatal().Err(err).Msg("unexpected error during API key validation")
	}
	log.Fatal().
		Err(validationErr.Err).
		Str("kind", validationErr.Kind().String()).
		Msg(validationErr.Hint())
	os.Exit(1)
}
