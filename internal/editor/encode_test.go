package editor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

type failingSource struct {
	openErr error
}

func (f failingSource) Open() (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return io.NopCloser(errReader{}), nil
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestEncodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		{0x00},
		{0xff, 0xfe, 0xfd},
		[]byte("\x89PNG\r\n\x1a\n"),
		bytes.Repeat([]byte{0x00, 0x7f, 0x80, 0xff}, 100_000),
	}
	for i, in := range inputs {
		c := UploadCandidate{MediaType: MediaTypePNG, Size: int64(len(in)), Content: BytesSource(in)}
		enc, err := Encode(context.Background(), c)
		if err != nil {
			t.Fatalf("case %d: unexpected error: %v", i, err)
		}
		out, err := base64.StdEncoding.DecodeString(enc)
		if err != nil {
			t.Fatalf("case %d: result is not valid base64: %v", i, err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("case %d: round trip mismatch (%d bytes in, %d out)", i, len(in), len(out))
		}
	}
}

func TestEncodeFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photo.jpg")
	data := []byte("not really a jpeg")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	enc, err := Encode(context.Background(), UploadCandidate{MediaType: MediaTypeJPEG, Content: FileSource(path)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := base64.StdEncoding.EncodeToString(data); enc != want {
		t.Errorf("Encode = %q, want %q", enc, want)
	}
}

func TestEncodeReadFailure(t *testing.T) {
	tests := []struct {
		name string
		src  ContentSource
	}{
		{"nil source", nil},
		{"open fails", failingSource{openErr: errors.New("permission denied")}},
		{"read fails", failingSource{}},
		{"missing file", FileSource(filepath.Join(t.TempDir(), "gone.png"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(context.Background(), UploadCandidate{MediaType: MediaTypePNG, Content: tt.src})
			if KindOf(err) != KindReadFailure {
				t.Errorf("kind = %v, want ReadFailure (err: %v)", KindOf(err), err)
			}
			if !KindOf(err).IsLocal() {
				t.Error("ReadFailure should be a local failure")
			}
		})
	}
}

func TestEncodeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Encode(ctx, UploadCandidate{MediaType: MediaTypePNG, Content: BytesSource("abc")})
	if KindOf(err) != KindReadFailure {
		t.Fatalf("kind = %v, want ReadFailure", KindOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected wrapped context.Canceled, got %v", err)
	}
}
