package editor

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestToDisplayable(t *testing.T) {
	got := ToDisplayable(Success{ImageData: "aGVsbG8=", MediaType: "image/webp"})
	if want := "data:image/webp;base64,aGVsbG8="; got.URI != want {
		t.Errorf("URI = %q, want %q", got.URI, want)
	}
	if got.MediaType != "image/webp" {
		t.Errorf("MediaType = %q", got.MediaType)
	}
}

func TestProbeDisplayable(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(encodePNG(t, 7, 3))
	got := ProbeDisplayable(Success{ImageData: data, MediaType: "image/png"})
	if got.Width != 7 || got.Height != 3 {
		t.Errorf("dimensions = %dx%d, want 7x3", got.Width, got.Height)
	}

	got = ProbeDisplayable(Success{ImageData: "aGVsbG8=", MediaType: "image/png"})
	if got.Width != 0 || got.Height != 0 {
		t.Errorf("undecodable image should have 0x0, got %dx%d", got.Width, got.Height)
	}
}

func TestExtensionFor(t *testing.T) {
	tests := []struct {
		mediaType string
		want      string
	}{
		{"image/png", "png"},
		{"image/jpeg", "jpeg"},
		{"image/webp", "webp"},
		{"IMAGE/PNG", "png"},
		{"image/svg+xml", "svg"},
		{"image/png; foo=bar", "png"},
		{"", "png"},
		{"garbage", "png"},
		{"image/", "png"},
		{"image/../etc", "png"},
	}
	for _, tt := range tests {
		t.Run(tt.mediaType, func(t *testing.T) {
			if got := ExtensionFor(tt.mediaType); got != tt.want {
				t.Errorf("ExtensionFor(%q) = %q, want %q", tt.mediaType, got, tt.want)
			}
		})
	}
}

func TestToDownload(t *testing.T) {
	payload := []byte("edited image bytes")
	enc := base64.StdEncoding.EncodeToString(payload)

	tests := []struct {
		name     string
		uri      string
		prefix   string
		wantName string
	}{
		{"png", "data:image/png;base64," + enc, "studio", "studio-edit.png"},
		{"jpeg", "data:image/jpeg;base64," + enc, "studio", "studio-edit.jpeg"},
		{"default prefix", "data:image/webp;base64," + enc, "", ProductName + "-edit.webp"},
		{"unparseable media type", "data:nonsense;base64," + enc, "studio", "studio-edit.png"},
		{"empty media type", "data:;base64," + enc, "studio", "studio-edit.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dl, err := ToDownload(DisplayableImage{URI: tt.uri}, tt.prefix)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dl.Filename != tt.wantName {
				t.Errorf("Filename = %q, want %q", dl.Filename, tt.wantName)
			}
			if !bytes.Equal(dl.Data, payload) {
				t.Errorf("Data = %q, want %q", dl.Data, payload)
			}
		})
	}
}

func TestToDownloadErrors(t *testing.T) {
	for _, uri := range []string{
		"https://example.com/x.png",
		"data:image/png,rawtext",
		"data:image/png;base64,@@not-base64@@",
	} {
		if _, err := ToDownload(DisplayableImage{URI: uri}, "p"); err == nil {
			t.Errorf("ToDownload(%q) expected error", uri)
		}
	}
}
