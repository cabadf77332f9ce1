package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

// Transport names a Generator implementation.
type Transport string

const (
	// TransportREST posts JSON to the generateContent REST endpoint.
	TransportREST Transport = "rest"
	// TransportSDK goes through google.golang.org/genai.
	TransportSDK Transport = "sdk"
)

// ParseTransport accepts "rest" or "sdk" (case-insensitive). Empty means REST.
func ParseTransport(s string) (Transport, error) {
	switch Transport(strings.ToLower(strings.TrimSpace(s))) {
	case "", TransportREST:
		return TransportREST, nil
	case TransportSDK:
		return TransportSDK, nil
	}
	return "", fmt.Errorf("unknown transport %q (want rest or sdk)", s)
}

// NewGenerator builds the Generator for the given transport. With an empty
// apiKey it returns nil so the orchestrator reports NotConfigured.
func NewGenerator(ctx context.Context, transport Transport, apiKey, model, baseURL string) (editor.Generator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}
	switch transport {
	case TransportSDK:
		client, err := NewGeminiClient(ctx, apiKey, baseURL)
		if err != nil {
			return nil, err
		}
		return NewSDKImageClient(client, model), nil
	case TransportREST, "":
		return NewGeminiImageClient(apiKey, WithModel(model), WithBaseURL(baseURL)), nil
	}
	return nil, fmt.Errorf("unknown transport %q", transport)
}
