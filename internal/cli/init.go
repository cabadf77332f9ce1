package cli

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/auth"
	"github.com/fpang/gemini-photo-editor/internal/chat"
)

// CheckAPIKey makes one minimal text call with apiKey and exits with a
// specific message when the key is rejected.
func CheckAPIKey(ctx context.Context, apiKey, baseURL string) {
	if apiKey == "" {
		HandleValidationError(&auth.ValidationError{Type: auth.ErrTypeNoKey, Message: "no API key"})
	}
	client, err := chat.NewGeminiClient(ctx, apiKey, baseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Gemini client")
	}
	if err := auth.ValidateAPIKey(ctx, client, chat.ModelGemini3FlashPreview); err != nil {
		HandleValidationError(err)
	}
	log.Info().Msg("API key validation complete")
}
