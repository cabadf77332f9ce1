package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"google.golang.org/genai"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

func TestGetAPIKeyFromEnv(t *testing.T) {
	const testKey = "test-api-key-12345"
	t.Setenv("GEMINI_API_KEY", "  "+testKey+"\n")

	key, err := GetAPIKey()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != testKey {
		t.Errorf("expected key %q, got %q", testKey, key)
	}
}

func TestGetAPIKeyNoSource(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("HOME", t.TempDir())

	_, err := GetAPIKey()
	if !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if got := LookupAPIKey(); got != "" {
		t.Errorf("LookupAPIKey() = %q, want empty", got)
	}
}

func TestGetCredentialPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := getCredentialPath()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := filepath.Join(home, ".photo-editor", "credentials.gpg")
	if path != expected {
		t.Errorf("expected path %q, got %q", expected, path)
	}
}

func TestGetFromGPGFileNotFound(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	if _, err := getFromGPG(); err == nil {
		t.Error("expected error when credentials file does not exist")
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ValidationErrorType
	}{
		{"api 401", genai.APIError{Code: 401, Message: "unauthenticated"}, ErrTypeInvalidKey},
		{"api 403 wrapped", fmt.Errorf("call: %w", genai.APIError{Code: 403}), ErrTypeInvalidKey},
		{"api 429", genai.APIError{Code: 429}, ErrTypeQuotaExceeded},
		{"api 503", genai.APIError{Code: 503}, ErrTypeNetworkError},
		{"api other", genai.APIError{Code: 418, Message: "teapot"}, ErrTypeUnknown},
		{"message invalid key", errors.New("API key not valid. Please pass a valid API key."), ErrTypeInvalidKey},
		{"message quota", errors.New("Resource exhausted: quota"), ErrTypeQuotaExceeded},
		{"message network", errors.New("dial tcp: lookup generativelanguage.googleapis.com: no such host"), ErrTypeNetworkError},
		{"message unknown", errors.New("something odd"), ErrTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyError(tt.err)
			if got.Type != tt.want {
				t.Errorf("classifyError(%v).Type = %v, want %v", tt.err, got.Type, tt.want)
			}
			if !errors.Is(got, tt.err) && got.Err == nil {
				t.Error("validation error should keep the cause")
			}
		})
	}
	if classifyError(nil) != nil {
		t.Error("classifyError(nil) should be nil")
	}
}

func TestValidationErrorTypeString(t *testing.T) {
	want := map[ValidationErrorType]string{
		ErrTypeNoKey:         "no_key",
		ErrTypeInvalidKey:    "invalid",
		ErrTypeNetworkError:  "network_error",
		ErrTypeQuotaExceeded: "quota",
		ErrTypeUnknown:       "unknown",
	}
	for typ, s := range want {
		if typ.String() != s {
			t.Errorf("%d.String() = %q, want %q", typ, typ.String(), s)
		}
	}
}

func newTestGenAIClient(t *testing.T, handler http.HandlerFunc) *genai.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: server.URL},
	})
	if err != nil {
		t.Fatalf("genai.NewClient: %v", err)
	}
	return client
}

func TestValidateAPIKey(t *testing.T) {
	client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"hello"}]},"finishReason":"STOP"}]}`))
	})
	if err := ValidateAPIKey(context.Background(), client, "gemini-3-flash-preview"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateAPIKeyRejected(t *testing.T) {
	client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"API key not valid. Please pass a valid API key.","status":"PERMISSION_DENIED"}}`))
	})
	err := ValidateAPIKey(context.Background(), client, "gemini-3-flash-preview")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Type != ErrTypeInvalidKey {
		t.Errorf("Type = %v, want invalid", valErr.Type)
	}
	if valErr.Kind() != editor.KindNotConfigured {
		t.Errorf("Kind() = %v, want NotConfigured", valErr.Kind())
	}
}

func TestValidateAPIKeyEmptyResponse(t *testing.T) {
	client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	})
	err := ValidateAPIKey(context.Background(), client, "gemini-3-flash-preview")
	var valErr *ValidationError
	if !errors.As(err, &valErr) || valErr.Type != ErrTypeUnknown {
		t.Errorf("expected unknown ValidationError, got %v", err)
	}
}

func TestValidationErrorKind(t *testing.T) {
	tests := []struct {
		typ  ValidationErrorType
		want editor.Kind
	}{
		{ErrTypeNoKey, editor.KindNotConfigured},
		{ErrTypeInvalidKey, editor.KindNotConfigured},
		{ErrTypeNetworkError, editor.KindTransportFailure},
		{ErrTypeQuotaExceeded, editor.KindTransportFailure},
		{ErrTypeUnknown, editor.KindTransportFailure},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			e := &ValidationError{Type: tt.typ, Message: "m"}
			if got := e.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
			if e.Hint() == "" {
				t.Error("Hint() should not be empty")
			}
		})
	}
}

func TestValidateAPIKeyServerErrorIsTransportFailure(t *testing.T) {
	client := newTestGenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":{"code":503,"message":"overloaded","status":"UNAVAILABLE"}}`))
	})
	err := ValidateAPIKey(context.Background(), client, "gemini-3-flash-preview")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if valErr.Type != ErrTypeNetworkError || valErr.Kind() != editor.KindTransportFailure {
		t.Errorf("got type %v kind %v", valErr.Type, valErr.Kind())
	}
}
