package editor

import (
	"strings"
)

// EditRequest is one submission to the image model. It is immutable once
// built by NewEditRequest.
type EditRequest struct {
	encodedImage string
	mediaType    string
	prompt       string
}

// NewEditRequest builds a request, trimming the prompt. An empty image or a
// blank prompt is an InvalidRequest.
func NewEditRequest(encodedImage, mediaType, prompt string) (EditRequest, error) {
	if encodedImage == "" {
		return EditRequest{}, newError(KindInvalidRequest, "encoded image is empty", nil)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return EditRequest{}, newError(KindInvalidRequest, "prompt is empty", nil)
	}
	return EditRequest{
		encodedImage: encodedImage,
		mediaType:    NormalizeMediaType(mediaType),
		prompt:       prompt,
	}, nil
}

// EncodedImage returns the base64 image data.
func (r EditRequest) EncodedImage() string { return r.encodedImage }

// MediaType returns the declared media type of the image.
func (r EditRequest) MediaType() string { return r.mediaType }

// Prompt returns the trimmed editing instruction.
func (r EditRequest) Prompt() string { return r.prompt }

// EditResult is either a Success or a Failure.
type EditResult interface {
	isEditResult()
}

// Success carries the edited image as base64 data and its media type.
type Success struct {
	ImageData string
	MediaType string
}

// Failure carries the reason the service produced no image.
type Failure struct {
	Reason Kind
}

func (Success) isEditResult() {}
func (Failure) isEditResult() {}

// Err converts the failure into an *Error.
func (f Failure) Err() error {
	return newError(f.Reason, f.Reason.UserMessage(), nil)
}

// Response mirrors the parts of a generateContent response the pipeline reads.
type Response struct {
	Candidates []Candidate `json:"candidates"`
}

// Candidate is one generated answer.
type Candidate struct {
	Content      *Content `json:"content,omitempty"`
	FinishReason string   `json:"finishReason,omitempty"`
}

// Content holds the parts of a candidate.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a single text or inline-data part.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData is base64 data embedded in a part.
type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Outcome names the result of one submission for metrics and logs:
// "Success", or the failure kind.
func Outcome(res EditResult, err error) string {
	if err != nil {
		return KindOf(err).String()
	}
	switch r := res.(type) {
	case Success:
		return "Success"
	case Failure:
		return r.Reason.String()
	}
	return KindUnknown.String()
}
