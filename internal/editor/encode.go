package editor

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// ctxReader stops a copy once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Encode reads the full content of c and returns it as standard base64.
// Any failure to open or read the content is a ReadFailure.
func Encode(ctx context.Context, c UploadCandidate) (string, error) {
	if c.Content == nil {
		return "", newError(KindReadFailure, "no content to read", errors.New("nil content source"))
	}

	rc, err := c.Content.Open()
	if err != nil {
		return "", newError(KindReadFailure, "failed to open image", err)
	}
	defer rc.Close()

	var sb strings.Builder
	if c.Size > 0 {
		sb.Grow(base64.StdEncoding.EncodedLen(int(c.Size)))
	}
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := io.Copy(enc, ctxReader{ctx: ctx, r: rc}); err != nil {
		return "", newError(KindReadFailure, "failed to read image", err)
	}
	if err := enc.Close(); err != nil {
		return "", newError(KindReadFailure, "failed to encode image", err)
	}
	return sb.String(), nil
}
