package s3util

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

type fakePutter struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	return &s3.PutObjectOutput{}, f.err
}

type fakePresigner struct {
	input  *s3.GetObjectInput
	expiry time.Duration
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	f.input = in
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expiry = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://bucket.s3.amazonaws.com/" + *in.Key + "?sig=abc"}, nil
}

func TestExport(t *testing.T) {
	put := &fakePutter{}
	presign := &fakePresigner{}
	exp := NewExporter(put, presign, "edits-bucket", 0)

	dl := editor.Download{Filename: "photo-editor-edit.png", MediaType: "image/png", Data: []byte("img")}
	key, url, err := exp.Export(context.Background(), "sess-1", dl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "exports/sess-1/photo-editor-edit.png" {
		t.Errorf("key = %q", key)
	}
	if !strings.Contains(url, key) {
		t.Errorf("url = %q", url)
	}

	if *put.input.Bucket != "edits-bucket" || *put.input.ContentType != "image/png" {
		t.Errorf("put input = %+v", put.input)
	}
	if *put.input.Tagging != "Project=photo-editor" {
		t.Errorf("tagging = %q", *put.input.Tagging)
	}
	if string(put.body) != "img" {
		t.Errorf("body = %q", put.body)
	}

	if presign.expiry != DefaultPresignExpiry {
		t.Errorf("expiry = %s", presign.expiry)
	}
	if presign.input.ResponseContentDisposition == nil ||
		!strings.Contains(*presign.input.ResponseContentDisposition, `filename="photo-editor-edit.png"`) {
		t.Errorf("content disposition = %v", presign.input.ResponseContentDisposition)
	}
}

func TestExportUploadFailure(t *testing.T) {
	put := &fakePutter{err: errors.New("access denied")}
	exp := NewExporter(put, &fakePresigner{}, "b", time.Minute)
	_, _, err := exp.Export(context.Background(), "s", editor.Download{Filename: "x.png"})
	if err == nil || !strings.Contains(err.Error(), "access denied") {
		t.Errorf("expected wrapped upload error, got %v", err)
	}
}

func TestExportKeyStripsDirectories(t *testing.T) {
	if got := ExportKey("s", "../../x.png"); got != "exports/s/x.png" {
		t.Errorf("ExportKey = %q", got)
	}
}
