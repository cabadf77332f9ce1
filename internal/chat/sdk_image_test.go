package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"google.golang.org/genai"
)

func TestSDKImageClientGenerateImage(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/test-image-model:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"here you go"},{"inlineData":{"mimeType":"image/png","data":"b3V0"}}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	ctx := context.Background()
	client, err := NewGeminiClient(ctx, "test-key", server.URL)
	if err != nil {
		t.Fatalf("NewGeminiClient: %v", err)
	}
	sdk := NewSDKImageClient(client, "test-image-model")

	resp, err := sdk.GenerateImage(ctx, newTestRequest(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Candidates) != 1 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) != 2 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Candidates[0].FinishReason != "STOP" {
		t.Errorf("finish reason = %q", resp.Candidates[0].FinishReason)
	}
	img := resp.Candidates[0].Content.Parts[1].InlineData
	if img == nil || img.Data != "b3V0" || img.MIMEType != "image/png" {
		t.Errorf("inline data = %+v", img)
	}
	// The interpreter only trusts the first part, which is text here.
	if got := editor.Interpret(resp); got != (editor.Failure{Reason: editor.KindNoImageReturned}) {
		t.Errorf("Interpret = %#v, want NoImageReturned", got)
	}

	contents, _ := gotBody["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("contents = %v", gotBody["contents"])
	}
	parts, _ := contents[0].(map[string]any)["parts"].([]any)
	if len(parts) != 2 {
		t.Fatalf("parts = %v", parts)
	}
	if _, ok := parts[0].(map[string]any)["inlineData"]; !ok {
		t.Errorf("first part should be inline image: %v", parts[0])
	}
	if text := parts[1].(map[string]any)["text"]; text != "add a hat" {
		t.Errorf("second part text = %v", text)
	}
}

func TestSDKImageClientRejectsBadBase64(t *testing.T) {
	req, err := editor.NewEditRequest("@@@", "image/png", "x")
	if err != nil {
		t.Fatal(err)
	}
	sdk := NewSDKImageClient(nil, "m")
	if _, err := sdk.GenerateImage(context.Background(), req); err == nil {
		t.Error("expected decode error")
	}
}

func TestFromGenAI(t *testing.T) {
	tests := []struct {
		name string
		in   *genai.GenerateContentResponse
		want editor.EditResult
	}{
		{"nil", nil, editor.Failure{Reason: editor.KindNoImageReturned}},
		{
			"image",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/webp", Data: []byte("out")}}}},
			}}},
			editor.Success{ImageData: "b3V0", MediaType: "image/webp"},
		},
		{
			"safety",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}},
			editor.Failure{Reason: editor.KindSafetyBlocked},
		},
		{
			"image safety",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReason("IMAGE_SAFETY")}}},
			editor.Failure{Reason: editor.KindSafetyBlocked},
		},
		{
			"empty blob",
			&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png"}}}},
			}}},
			editor.Failure{Reason: editor.KindNoImageReturned},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := editor.Interpret(fromGenAI(tt.in)); got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
