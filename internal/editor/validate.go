// Package editor implements the photo edit pipeline: validation, encoding,
// the single request to the image model, response interpretation, and the
// presentation of the result.
//
// Hosts (CLI, web server, Lambda, MCP) drive the pipeline through Session,
// which keeps one edit in flight at a time.
package editor

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"strings"
)

// MaxUploadSize is the largest accepted input image (4 MiB).
const MaxUploadSize int64 = 4 * 1024 * 1024

// Accepted input media types.
const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
	MediaTypeWEBP = "image/webp"
)

var allowedMediaTypes = map[string]bool{
	MediaTypePNG:  true,
	MediaTypeJPEG: true,
	MediaTypeWEBP: true,
}

// ContentSource opens the binary content of an upload.
type ContentSource interface {
	Open() (io.ReadCloser, error)
}

// BytesSource serves content already held in memory.
type BytesSource []byte

// Open returns a reader over the bytes.
func (b BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b)), nil
}

// FileSource serves content from a file on disk.
type FileSource string

// Open opens the file.
func (f FileSource) Open() (io.ReadCloser, error) {
	return os.Open(string(f))
}

// UploadCandidate is a file selected for editing, before it is accepted.
type UploadCandidate struct {
	Name      string
	MediaType string
	Size      int64
	Content   ContentSource
}

// NormalizeMediaType lowercases a media type and strips any parameters.
func NormalizeMediaType(mediaType string) string {
	mt := strings.TrimSpace(mediaType)
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		return parsed
	}
	return strings.ToLower(mt)
}

// IsSupportedMediaType reports whether mediaType is PNG, JPEG, or WEBP.
func IsSupportedMediaType(mediaType string) bool {
	return allowedMediaTypes[NormalizeMediaType(mediaType)]
}

// Validate checks c against the size and type constraints. The size check
// runs first, so an oversized file is TooLarge whatever its type.
func Validate(c UploadCandidate) (UploadCandidate, error) {
	if c.Size > MaxUploadSize {
		return UploadCandidate{}, newError(KindTooLarge,
			fmt.Sprintf("file is %d bytes, limit is %d", c.Size, MaxUploadSize), nil)
	}
	if !IsSupportedMediaType(c.MediaType) {
		return UploadCandidate{}, newError(KindUnsupportedType,
			fmt.Sprintf("media type %q is not supported", c.MediaType), nil)
	}
	return c, nil
}
