package editor

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Generator sends one edit request to the image model and returns its raw
// response. Implementations must make exactly one call and never retry.
type Generator interface {
	GenerateImage(ctx context.Context, req EditRequest) (*Response, error)
}

// Orchestrator turns an encoded image and a prompt into an EditResult.
// It holds no mutable state; callers serialize submissions per session.
type Orchestrator struct {
	apiKey  string
	gen     Generator
	timeout time.Duration
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeout bounds the network step of each Submit. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

// NewOrchestrator creates an Orchestrator. An empty apiKey yields an
// Orchestrator whose every Submit fails with NotConfigured; gen may then be nil.
func NewOrchestrator(apiKey string, gen Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		apiKey: strings.TrimSpace(apiKey),
		gen:    gen,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Configured reports whether a credential is present.
func (o *Orchestrator) Configured() bool {
	return o != nil && o.apiKey != "" && o.gen != nil
}

// Submit sends one edit request and interprets the response.
//
// A missing credential fails with NotConfigured before anything else is
// checked. Service-side refusals (SafetyBlocked, NoImageReturned) come back as
// a Failure result with a nil error; local and transport problems come back as
// an *Error.
func (o *Orchestrator) Submit(ctx context.Context, encodedImage, mediaType, prompt string) (EditResult, error) {
	if !o.Configured() {
		return nil, newError(KindNotConfigured, "Gemini API key is not configured", nil)
	}

	req, err := NewEditRequest(encodedImage, mediaType, prompt)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	resp, err := o.gen.GenerateImage(callCtx, req)
	if err != nil {
		return nil, newError(KindTransportFailure, "image service request failed", err)
	}
	if resp == nil {
		return nil, newError(KindTransportFailure, "image service request failed",
			errors.New("empty response from image service"))
	}

	return Interpret(resp), nil
}
