package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/fpang/gemini-photo-editor/internal/metrics"
)

// ValidationErrorType categorizes why a key check failed.
type ValidationErrorType int

const (
	ErrTypeNoKey ValidationErrorType = iota
	ErrTypeInvalidKey
	ErrTypeNetworkError
	ErrTypeQuotaExceeded
	ErrTypeUnknown
)

var typeLabels = map[ValidationErrorType]string{
	ErrTypeNoKey:         "no_key",
	ErrTypeInvalidKey:    "invalid",
	ErrTypeNetworkError:  "network_error",
	ErrTypeQuotaExceeded: "quota",
}

// String returns the metric label for t.
func (t ValidationErrorType) String() string {
	if s, ok := typeLabels[t]; ok {
		return s
	}
	return "unknown"
}

// Kind maps t onto the editor's error taxonomy. A missing or rejected key
// means the editor is not configured; anything else is a transport problem.
func (t ValidationErrorType) Kind() editor.Kind {
	switch t {
	case ErrTypeNoKey, ErrTypeInvalidKey:
		return editor.KindNotConfigured
	default:
		return editor.KindTransportFailure
	}
}

var typeHints = map[ValidationErrorType]string{
	ErrTypeNoKey:         "No API key configured. Set GEMINI_API_KEY or store it encrypted in ~/.photo-editor/credentials.gpg",
	ErrTypeInvalidKey:    "Invalid API key. Please check your API key and try again",
	ErrTypeNetworkError:  "Network error. Please check your internet connection",
	ErrTypeQuotaExceeded: "API quota exceeded. Please try again later or check your usage limits",
}

// ValidationError is a failed key check.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Kind returns the editor error kind for e.
func (e *ValidationError) Kind() editor.Kind { return e.Type.Kind() }

// Hint returns the line shown to a terminal user.
func (e *ValidationError) Hint() string {
	if h, ok := typeHints[e.Type]; ok {
		return h
	}
	return "API key validation failed"
}

// ValidateAPIKey makes one minimal text call against model. It returns nil
// when the key works and a *ValidationError otherwise.
func ValidateAPIKey(ctx context.Context, client *genai.Client, model string) error {
	log.Debug().Str("model", model).Msg("Validating API key with Gemini API")

	start := time.Now()
	resp, err := client.Models.GenerateContent(ctx, model, genai.Text("hi"), nil)
	elapsed := time.Since(start)

	var valErr *ValidationError
	switch {
	case err != nil:
		valErr = classifyError(err)
	case resp == nil || len(resp.Candidates) == 0:
		valErr = &ValidationError{Type: ErrTypeUnknown, Message: "API returned empty response"}
	}

	if valErr != nil {
		recordValidation(valErr.Type.String(), elapsed)
		log.Error().Err(valErr.Err).
			Str("type", valErr.Type.String()).
			Str("kind", valErr.Kind().String()).
			Msg(valErr.Message)
		return valErr
	}

	recordValidation("success", elapsed)
	log.Info().Dur("duration", elapsed).Msg("API key validated successfully")
	return nil
}

func recordValidation(result string, elapsed time.Duration) {
	metrics.New(metrics.Namespace).
		Dimension("Result", result).
		Duration("ApiKeyValidationMs", elapsed).
		Count("ApiKeyValidationResult").
		Flush()
}

// messageRule matches lowercase error text the SDK produces without a
// structured status.
type messageRule struct {
	typ     ValidationErrorType
	message string
	needles []string
}

var messageRules = []messageRule{
	{ErrTypeInvalidKey, "API key is invalid or has been revoked",
		[]string{"api key not valid", "invalid api key", "api_key_invalid", "permission denied"}},
	{ErrTypeQuotaExceeded, "API quota exceeded or rate limited",
		[]string{"quota", "resource exhausted", "rate limit"}},
	{ErrTypeNetworkError, "Network error - check your internet connection",
		[]string{"connection", "network", "timeout", "dial", "no such host", "unreachable"}},
}

// classifyError sorts a failed validation call into a ValidationError.
func classifyError(err error) *ValidationError {
	if err == nil {
		return nil
	}

	// The SDK returns APIError by value; older paths wrap a pointer.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, apiErr.Message, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return classifyStatus(apiErrPtr.Code, apiErrPtr.Message, err)
	}

	text := strings.ToLower(err.Error())
	for _, rule := range messageRules {
		for _, needle := range rule.needles {
			if strings.Contains(text, needle) {
				return &ValidationError{Type: rule.typ, Message: rule.message, Err: err}
			}
		}
	}
	return &ValidationError{Type: ErrTypeUnknown, Message: "Failed to validate API key", Err: err}
}

// classifyStatus maps an HTTP status from the Gemini API.
func classifyStatus(code int, message string, err error) *ValidationError {
	switch {
	case code == 400:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "Bad request - API key may be malformed", Err: err}
	case code == 401 || code == 403:
		return &ValidationError{Type: ErrTypeInvalidKey, Message: "API key is invalid, expired, or lacks permissions", Err: err}
	case code == 429:
		return &ValidationError{Type: ErrTypeQuotaExceeded, Message: "API rate limit exceeded - try again later", Err: err}
	case code >= 500:
		return &ValidationError{Type: ErrTypeNetworkError, Message: "Gemini API server error - try again later", Err: err}
	default:
		if message == "" {
			message = "Google API error"
		}
		return &ValidationError{Type: ErrTypeUnknown, Message: message, Err: err}
	}
}
