package chat

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// NewGeminiClient creates a genai client for the Gemini API backend.
// A non-empty baseURL overrides the service endpoint.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return client, nil
}

// SDKImageClient edits images through the genai SDK's Models.GenerateContent.
type SDKImageClient struct {
	client *genai.Client
	model  string
}

// NewSDKImageClient wraps an existing genai client. An empty model selects
// GetImageModelName.
func NewSDKImageClient(client *genai.Client, model string) *SDKImageClient {
	if model == "" {
		model = GetImageModelName()
	}
	return &SDKImageClient{client: client, model: model}
}

// Model returns the image model ID this client sends requests to.
func (c *SDKImageClient) Model() string { return c.model }

// GenerateImage sends one generateContent call with the image and prompt.
func (c *SDKImageClient) GenerateImage(ctx context.Context, req editor.EditRequest) (*editor.Response, error) {
	imageBytes, err := base64.StdEncoding.DecodeString(req.EncodedImage())
	if err != nil {
		return nil, fmt.Errorf("failed to decode image data: %w", err)
	}

	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_bytes", len(imageBytes)).
		Str("image_mime", req.MediaType()).
		Msg("Sending image to Gemini for editing (SDK)")

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: req.MediaType(), Data: imageBytes}},
		genai.NewPartFromText(req.Prompt()),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generate content failed: %w", err)
	}

	out := fromGenAI(resp)
	log.Info().
		Int("candidates", len(out.Candidates)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini image editing call complete (SDK)")
	return out, nil
}

// fromGenAI maps an SDK response onto the wire shape the interpreter reads.
func fromGenAI(resp *genai.GenerateContentResponse) *editor.Response {
	out := &editor.Response{}
	if resp == nil {
		return out
	}
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		c := editor.Candidate{FinishReason: string(cand.FinishReason)}
		if cand.Content != nil {
			content := &editor.Content{Role: cand.Content.Role}
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				part := editor.Part{Text: p.Text}
				if p.InlineData != nil {
					part.InlineData = &editor.InlineData{
						MIMEType: p.InlineData.MIMEType,
						Data:     base64.StdEncoding.EncodeToString(p.InlineData.Data),
					}
				}
				content.Parts = append(content.Parts, part)
			}
			c.Content = content
		}
		out.Candidates = append(out.Candidates, c)
	}
	return out
}
