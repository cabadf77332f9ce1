package chat

import "os"

// Gemini image model IDs
//
// | Model Name                  | API Model ID                    | Use Case                  |
// |-----------------------------|---------------------------------|---------------------------|
// | Gemini 2.5 Flash Image      | gemini-2.5-flash-image-preview  | Fast conversational edits |
// | Gemini 3 Pro Image          | gemini-3-pro-image-preview      | Advanced image edit       |
const (
	// ModelGemini25FlashImage is fast, low-cost image editing.
	ModelGemini25FlashImage = "gemini-2.5-flash-image-preview"

	// ModelGemini3ProImage is for advanced image generation/edit.
	ModelGemini3ProImage = "gemini-3-pro-image-preview"

	// ModelGemini3FlashPreview is the text model used for API key checks.
	ModelGemini3FlashPreview = "gemini-3-flash-preview"
)

// DefaultImageModel is the image model used when GEMINI_IMAGE_MODEL is unset.
const DefaultImageModel = ModelGemini25FlashImage

// GetImageModelName returns the image model to use, resolved from:
// 1. GEMINI_IMAGE_MODEL environment variable (if set)
// 2. Default: gemini-2.5-flash-image-preview
func GetImageModelName() string {
	if env := os.Getenv("GEMINI_IMAGE_MODEL"); env != "" {
		return env
	}
	return DefaultImageModel
}
