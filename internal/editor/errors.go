package editor

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindUnknown is never produced by the pipeline; it is the zero value.
	KindUnknown Kind = iota
	// KindNotConfigured means no credential is available for the image service.
	KindNotConfigured
	// KindTooLarge means the candidate exceeds MaxUploadSize.
	KindTooLarge
	// KindUnsupportedType means the candidate is not PNG, JPEG, or WEBP.
	KindUnsupportedType
	// KindReadFailure means the candidate's content could not be read.
	KindReadFailure
	// KindInvalidRequest means an edit request was missing its image or prompt.
	KindInvalidRequest
	// KindTransportFailure wraps any network or service-level failure.
	KindTransportFailure
	// KindSafetyBlocked means the service declined on safety grounds.
	KindSafetyBlocked
	// KindNoImageReturned means the service answered without an image or a safety signal.
	KindNoImageReturned
)

var kindNames = map[Kind]string{
	KindUnknown:          "Unknown",
	KindNotConfigured:    "NotConfigured",
	KindTooLarge:         "TooLarge",
	KindUnsupportedType:  "UnsupportedType",
	KindReadFailure:      "ReadFailure",
	KindInvalidRequest:   "InvalidRequest",
	KindTransportFailure: "TransportFailure",
	KindSafetyBlocked:    "SafetyBlocked",
	KindNoImageReturned:  "NoImageReturned",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// userMessages are the fixed texts shown to a user for each kind.
var userMessages = map[Kind]string{
	KindNotConfigured:    "Image editing is unavailable: the Gemini API key is not configured.",
	KindTooLarge:         "The image is too large. Please choose a file of 4 MB or less.",
	KindUnsupportedType:  "Unsupported file type. Please choose a PNG, JPEG, or WEBP image.",
	KindReadFailure:      "The selected file could not be read. Please try selecting it again.",
	KindInvalidRequest:   "Please select an image and enter an editing instruction.",
	KindTransportFailure: "The image service request failed.",
	KindSafetyBlocked:    "The request was blocked for safety reasons. Please adjust your prompt and try again.",
	KindNoImageReturned:  "The model did not return an image. Please try a different prompt.",
}

// UserMessage returns the fixed user-facing text for k.
func (k Kind) UserMessage() string {
	if msg, ok := userMessages[k]; ok {
		return msg
	}
	return "An unexpected error occurred."
}

// IsLocal reports whether failures of this kind happen before any network call.
func (k Kind) IsLocal() bool {
	switch k {
	case KindTooLarge, KindUnsupportedType, KindReadFailure, KindInvalidRequest:
		return true
	}
	return false
}

// Error is the error type returned by every pipeline stage.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UserMessage returns the text a host should display for this error.
// Transport failures carry their cause when one is known.
func (e *Error) UserMessage() string {
	if e.Kind == KindTransportFailure {
		if e.Err != nil && e.Err.Error() != "" {
			return e.Kind.UserMessage() + " " + e.Err.Error()
		}
		return e.Kind.UserMessage() + " Please try again."
	}
	return e.Kind.UserMessage()
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// UserMessageOf returns the user-facing text for err.
func UserMessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.UserMessage()
	}
	return KindUnknown.UserMessage()
}
