// Package s3util exports edited images to S3 and hands back pre-signed
// download URLs.
package s3util

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

// DefaultPresignExpiry is how long an export download link stays valid.
const DefaultPresignExpiry = 15 * time.Minute

// PutObjectAPI is the subset of *s3.Client the exporter uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// PresignGetAPI is the subset of *s3.PresignClient the exporter uses.
type PresignGetAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Exporter uploads downloads under exports/<session>/ in one bucket.
type Exporter struct {
	client    PutObjectAPI
	presigner PresignGetAPI
	bucket    string
	expiry    time.Duration
}

// NewExporter creates an Exporter. A zero expiry selects DefaultPresignExpiry.
func NewExporter(client PutObjectAPI, presigner PresignGetAPI, bucket string, expiry time.Duration) *Exporter {
	if expiry <= 0 {
		expiry = DefaultPresignExpiry
	}
	return &Exporter{client: client, presigner: presigner, bucket: bucket, expiry: expiry}
}

// Bucket returns the export bucket name.
func (e *Exporter) Bucket() string { return e.bucket }

// ExportKey returns the object key for a session's download.
func ExportKey(sessionID, filename string) string {
	return path.Join("exports", sessionID, path.Base(filename))
}

// Export uploads dl and returns its key and a pre-signed GET URL that makes
// browsers save it under dl.Filename.
func (e *Exporter) Export(ctx context.Context, sessionID string, dl editor.Download) (key, url string, err error) {
	key = ExportKey(sessionID, dl.Filename)
	contentType := dl.MediaType

	log.Debug().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("size_bytes", len(dl.Data)).
		Msg("Uploading edited image to S3")

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &e.bucket,
		Key:         &key,
		Body:        bytes.NewReader(dl.Data),
		ContentType: &contentType,
		Tagging:     ProjectTagging(),
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload edited image to S3: %w", err)
	}

	url, err = GeneratePresignedURL(ctx, e.presigner, e.bucket, key, dl.Filename, e.expiry)
	if err != nil {
		return key, "", err
	}

	log.Info().
		Str("key", key).
		Dur("expiry", e.expiry).
		Msg("Edited image exported to S3")
	return key, url, nil
}

// GeneratePresignedURL creates a pre-signed GET URL for an S3 object. A
// non-empty filename sets an attachment Content-Disposition on the response.
func GeneratePresignedURL(ctx context.Context, presignClient PresignGetAPI, bucket, key, filename string, expiry time.Duration) (string, error) {
	input := &s3.GetObjectInput{Bucket: &bucket, Key: &key}
	if filename != "" {
		disposition := fmt.Sprintf("attachment; filename=%q", path.Base(filename))
		input.ResponseContentDisposition = &disposition
	}
	result, err := presignClient.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", fmt.Errorf("presign GetObject: %w", err)
	}
	return result.URL, nil
}
