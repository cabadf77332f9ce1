package filehandler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

func TestGetMIMEType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{".png", "image/png"},
		{".JPG", "image/jpeg"},
		{".jpeg", "image/jpeg"},
		{".webp", "image/webp"},
		{".gif", "image/gif"},
		{".nope-not-real", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := GetMIMEType(tt.ext); got != tt.want {
			t.Errorf("GetMIMEType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestLoadCandidate(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.PNG")
	if err := os.WriteFile(path, []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadCandidate(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Name != "cat.PNG" || c.MediaType != editor.MediaTypePNG || c.Size != 5 {
		t.Errorf("candidate = %+v", c)
	}
	if _, err := editor.Validate(c); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadCandidateUnsupportedTypeReachesValidator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	if err := os.WriteFile(path, []byte("GIF89a"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadCandidate(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := editor.Validate(c); editor.KindOf(err) != editor.KindUnsupportedType {
		t.Errorf("kind = %v, want UnsupportedType", editor.KindOf(err))
	}
}

func TestLoadCandidateErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadCandidate(filepath.Join(dir, "missing.png")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadCandidate(dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestContainsPathTraversal(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/tmp/photo.png", false},
		{"/tmp/../etc/passwd", true},
		{"..", true},
		{"photos/..hidden.png", false},
	}
	for _, tt := range tests {
		if got := ContainsPathTraversal(tt.path); got != tt.want {
			t.Errorf("ContainsPathTraversal(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestCoordinatesToDMS(t *testing.T) {
	got := CoordinatesToDMS(40.5, -74.25)
	want := "40°30'0.00\"N, 74°15'0.00\"W"
	if got != want {
		t.Errorf("CoordinatesToDMS = %q, want %q", got, want)
	}
}
