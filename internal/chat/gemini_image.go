package chat

// gemini_image.go provides a REST API client for Gemini image editing.
// The request carries the photo as base64 inline data followed by the
// instruction text, and asks for IMAGE output only.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the Gemini REST API base URL.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultTimeout bounds a single image-editing HTTP call.
const DefaultTimeout = 120 * time.Second // Image generation can take 10-30s

// GeminiImageClient calls a Gemini image model via REST API for photo editing.
type GeminiImageClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a GeminiImageClient.
type ClientOption func(*GeminiImageClient)

// WithModel overrides the image model ID.
func WithModel(model string) ClientOption {
	return func(c *GeminiImageClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL points the client at a different API root (tests, proxies).
func WithBaseURL(baseURL string) ClientOption {
	return func(c *GeminiImageClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *GeminiImageClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewGeminiImageClient creates a new client for Gemini image editing.
func NewGeminiImageClient(apiKey string, opts ...ClientOption) *GeminiImageClient {
	c := &GeminiImageClient{
		apiKey:  apiKey,
		model:   GetImageModelName(),
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Model returns the image model ID this client sends requests to.
func (c *GeminiImageClient) Model() string { return c.model }

// --- REST API request/response types ---

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *geminiBlobData `json:"inlineData,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiBlobData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64 encoded
}

type geminiResponse struct {
	editor.Response
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// buildRequest assembles the generateContent body: image part first, then
// the instruction.
func buildRequest(req editor.EditRequest) geminiRequest {
	return geminiRequest{
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{"IMAGE"},
		},
		Contents: []geminiContent{
			{
				Role: "user",
				Parts: []geminiPart{
					{
						InlineData: &geminiBlobData{
							MIMEType: req.MediaType(),
							Data:     req.EncodedImage(),
						},
					},
					{Text: req.Prompt()},
				},
			},
		},
	}
}

// GenerateImage sends the photo and instruction in one generateContent call
// and returns the decoded response. It never retries.
func (c *GeminiImageClient) GenerateImage(ctx context.Context, req editor.EditRequest) (*editor.Response, error) {
	startTime := time.Now()
	log.Info().
		Str("model", c.model).
		Int("image_b64_bytes", len(req.EncodedImage())).
		Str("image_mime", req.MediaType()).
		Int("prompt_length", len(req.Prompt())).
		Msg("Sending image to Gemini for editing")

	body, err := json.Marshal(buildRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// The URL carries the key; report only the underlying cause.
		return nil, fmt.Errorf("HTTP request failed: %w", unwrapURLError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Gemini image editing API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, apiErrorMessage(respBody))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(respBody, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", geminiResp.Error.Message, geminiResp.Error.Code)
	}

	log.Info().
		Int("candidates", len(geminiResp.Candidates)).
		Int("response_bytes", len(respBody)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini image editing call complete")

	return &geminiResp.Response, nil
}

// apiErrorMessage prefers the structured error message over the raw body.
func apiErrorMessage(body []byte) string {
	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return truncateString(strings.TrimSpace(string(body)), 200)
}

// unwrapURLError strips the *url.Error wrapper, whose message includes the
// request URL and therefore the API key.
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
