package editor

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for DecodeConfig
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// ProductName prefixes download filenames when no prefix is configured.
const ProductName = "photo-editor"

// DefaultExtension is used when a media type cannot be parsed.
const DefaultExtension = "png"

// DisplayableImage is an edited image ready to render.
type DisplayableImage struct {
	URI       string `json:"uri"`
	MediaType string `json:"mediaType"`
	// Width and Height are 0 when the image header could not be decoded.
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

// Download is a file ready to hand to a save mechanism.
type Download struct {
	Filename  string
	MediaType string
	Data      []byte
}

// ToDisplayable wraps a successful result into a data URI.
func ToDisplayable(s Success) DisplayableImage {
	return DisplayableImage{
		URI:       "data:" + s.MediaType + ";base64," + s.ImageData,
		MediaType: s.MediaType,
	}
}

// ProbeDisplayable is ToDisplayable plus the image dimensions, read from the
// image header. Decoding failures are not errors.
func ProbeDisplayable(s Success) DisplayableImage {
	img := ToDisplayable(s)
	raw, err := base64.StdEncoding.DecodeString(s.ImageData)
	if err != nil {
		return img
	}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
		img.Width, img.Height = cfg.Width, cfg.Height
	}
	return img
}

// parseDataURI splits "data:<mediaType>;base64,<payload>".
func parseDataURI(uri string) (mediaType, payload string, ok bool) {
	rest, found := strings.CutPrefix(uri, "data:")
	if !found {
		return "", "", false
	}
	header, payload, found := strings.Cut(rest, ",")
	if !found {
		return "", "", false
	}
	mediaType, found = strings.CutSuffix(header, ";base64")
	if !found {
		return "", "", false
	}
	return mediaType, payload, true
}

// ExtensionFor returns the file extension for a media type: the subtype,
// lowercased, without any "+suffix". Unparseable input yields DefaultExtension.
func ExtensionFor(mediaType string) string {
	mt := NormalizeMediaType(mediaType)
	_, sub, found := strings.Cut(mt, "/")
	if !found {
		return DefaultExtension
	}
	sub, _, _ = strings.Cut(sub, "+")
	sub = strings.TrimSpace(sub)
	if sub == "" || strings.ContainsAny(sub, `/\. `) {
		return DefaultExtension
	}
	return sub
}

// DownloadFilename builds "<prefix>-edit.<ext>".
func DownloadFilename(prefix, mediaType string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = ProductName
	}
	return prefix + "-edit." + ExtensionFor(mediaType)
}

// ToDownload prepares img for saving. The extension comes from the media type
// embedded in the URI. The payload must be valid base64.
func ToDownload(img DisplayableImage, prefix string) (Download, error) {
	mediaType, payload, ok := parseDataURI(img.URI)
	if !ok {
		return Download{}, fmt.Errorf("image reference is not a base64 data URI")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Download{}, fmt.Errorf("failed to decode image data: %w", err)
	}

	return Download{
		Filename:  DownloadFilename(prefix, mediaType),
		MediaType: mediaType,
		Data:      data,
	}, nil
}
