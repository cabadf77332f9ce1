// Package filehandler turns local files into editor upload candidates and
// writes edited images back to disk.
//
// Media types are derived from the file extension; the editor's validator
// decides whether the type is acceptable. Image metadata (EXIF) and
// dimensions are read with pure Go decoders for display only.
package filehandler

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

// SupportedImageExtensions maps the file extensions the editor accepts to
// their media types.
var SupportedImageExtensions = map[string]string{
	".jpg":  editor.MediaTypeJPEG,
	".jpeg": editor.MediaTypeJPEG,
	".png":  editor.MediaTypePNG,
	".webp": editor.MediaTypeWEBP,
}

// PickerPatterns are the glob patterns offered by file dialogs.
var PickerPatterns = []string{"*.png", "*.jpg", "*.jpeg", "*.webp"}

// GetMIMEType returns the media type for a file extension. Extensions the
// editor does not accept still resolve through the system table so the
// validator can report them as unsupported.
func GetMIMEType(ext string) string {
	ext = strings.ToLower(ext)
	if mimeType, ok := SupportedImageExtensions[ext]; ok {
		return mimeType
	}
	if mimeType := mime.TypeByExtension(ext); mimeType != "" {
		return editor.NormalizeMediaType(mimeType)
	}
	return "application/octet-stream"
}

// LoadCandidate stats a local file and returns an upload candidate whose
// content is opened lazily. Nothing is read here.
func LoadCandidate(filePath string) (editor.UploadCandidate, error) {
	log.Debug().Str("path", filePath).Msg("Loading image file")

	info, err := os.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return editor.UploadCandidate{}, fmt.Errorf("file not found: %s", filePath)
		}
		return editor.UploadCandidate{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return editor.UploadCandidate{}, fmt.Errorf("path is a directory, not a file: %s", filePath)
	}

	c := editor.UploadCandidate{
		Name:      filepath.Base(filePath),
		MediaType: GetMIMEType(filepath.Ext(filePath)),
		Size:      info.Size(),
		Content:   editor.FileSource(filePath),
	}

	log.Info().
		Str("path", filePath).
		Str("mime_type", c.MediaType).
		Int64("size_bytes", c.Size).
		Msg("Image file loaded")

	return c, nil
}

// ContainsPathTraversal returns true if the path contains directory traversal
// sequences that could escape the intended directory.
//
// We check the raw segments before filepath.Clean resolves them, because
// Clean("/tmp/../etc") silently produces "/etc" with no ".." remaining.
func ContainsPathTraversal(p string) bool {
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg == ".." {
			return true
		}
	}
	return false
}

// CoordinatesToDMS converts decimal degrees to degrees, minutes, seconds format.
func CoordinatesToDMS(lat, lon float64) string {
	latDir := "N"
	if lat < 0 {
		latDir = "S"
		lat = -lat
	}

	lonDir := "E"
	if lon < 0 {
		lonDir = "W"
		lon = -lon
	}

	latDeg := int(lat)
	latMin := int((lat - float64(latDeg)) * 60)
	latSec := ((lat-float64(latDeg))*60 - float64(latMin)) * 60

	lonDeg := int(lon)
	lonMin := int((lon - float64(lonDeg)) * 60)
	lonSec := ((lon-float64(lonDeg))*60 - float64(lonMin)) * 60

	return fmt.Sprintf("%d°%d'%.2f\"%s, %d°%d'%.2f\"%s",
		latDeg, latMin, latSec, latDir,
		lonDeg, lonMin, lonSec, lonDir)
}
