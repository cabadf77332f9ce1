package cli

import (
	"errors"

	"github.com/ncruces/zenity"

	"github.com/fpang/gemini-photo-editor/internal/filehandler"
)

// ErrPickCanceled is returned when the user closes the file dialog.
var ErrPickCanceled = errors.New("file selection canceled")

// PickImage opens a native file dialog filtered to the accepted image types
// and returns the selected path.
func PickImage() (string, error) {
	path, err := zenity.SelectFile(
		zenity.Title("Select a photo to edit"),
		zenity.FileFilters{
			{Name: "Images", Patterns: filehandler.PickerPatterns},
		},
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return "", ErrPickCanceled
	}
	return path, err
}
