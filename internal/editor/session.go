package editor

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// State is the position of a Session in the edit workflow.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateReady
	StateSubmitting
	StateSucceeded
	StateFailed
)

var stateNames = [...]string{"idle", "validating", "ready", "submitting", "succeeded", "failed"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Busy reports whether the state has work in flight.
func (s State) Busy() bool {
	return s == StateValidating || s == StateSubmitting
}

var (
	// ErrBusy is returned when a load or edit is already in flight.
	ErrBusy = errors.New("an edit is already in progress")
	// ErrNoImage is returned by Edit and Download when nothing usable is held.
	ErrNoImage = errors.New("no image loaded")
	// ErrNoResult is returned by Download before any edit succeeded.
	ErrNoResult = errors.New("no edited image available")
)

// ImageInfo describes the accepted input image.
type ImageInfo struct {
	Name      string `json:"name"`
	MediaType string `json:"mediaType"`
	Size      int64  `json:"size"`
}

// Session is one user's editing slot. It moves through
// Idle → Validating → Ready → Submitting → Succeeded | Failed and rejects
// a new load or edit while one is in flight. The lock is never held across
// the encoder or the network call.
type Session struct {
	mu sync.Mutex

	id        string
	state     State
	failure   *Error
	image     ImageInfo
	encoded   string
	prompt    string
	result    *DisplayableImage
	createdAt time.Time
	updatedAt time.Time
}

// NewSession creates an idle session with a random UUID.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		id:        uuid.NewString(),
		state:     StateIdle,
		createdAt: now,
		updatedAt: now,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot is a read-only view of a session for rendering.
type Snapshot struct {
	ID          string            `json:"sessionId"`
	State       string            `json:"state"`
	FailureKind string            `json:"failureKind,omitempty"`
	Message     string            `json:"message,omitempty"`
	Image       *ImageInfo        `json:"image,omitempty"`
	Prompt      string            `json:"prompt,omitempty"`
	Result      *DisplayableImage `json:"result,omitempty"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:        s.id,
		State:     s.state.String(),
		Prompt:    s.prompt,
		UpdatedAt: s.updatedAt,
	}
	if s.state == StateFailed && s.failure != nil {
		snap.FailureKind = s.failure.Kind.String()
		snap.Message = s.failure.UserMessage()
	}
	if s.encoded != "" {
		img := s.image
		snap.Image = &img
	}
	if s.result != nil {
		res := *s.result
		snap.Result = &res
	}
	return snap
}

// State returns the current state and, when failed, the failure kind.
func (s *Session) State() (State, Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateFailed && s.failure != nil {
		return s.state, s.failure.Kind
	}
	return s.state, KindUnknown
}

// setFailed must be called with mu held. A failed session holds no result.
func (s *Session) setFailed(err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = newError(KindUnknown, "unexpected error", err)
	}
	s.state = StateFailed
	s.failure = e
	s.result = nil
	s.updatedAt = time.Now()
}

// Load validates and encodes c, replacing any previously held image and result.
func (s *Session) Load(ctx context.Context, c UploadCandidate) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = StateValidating
	s.failure = nil
	s.image = ImageInfo{}
	s.encoded = ""
	s.prompt = ""
	s.result = nil
	s.updatedAt = time.Now()
	s.mu.Unlock()

	encoded, err := prepare(ctx, c)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.setFailed(err)
		return err
	}
	s.image = ImageInfo{Name: c.Name, MediaType: NormalizeMediaType(c.MediaType), Size: c.Size}
	s.encoded = encoded
	s.state = StateReady
	s.updatedAt = time.Now()
	return nil
}

// prepare runs the Validator then the Encoder. Nothing is read when
// validation fails.
func prepare(ctx context.Context, c UploadCandidate) (string, error) {
	valid, err := Validate(c)
	if err != nil {
		return "", err
	}
	return Encode(ctx, valid)
}

// Edit submits the held image with prompt through orch. Any earlier result is
// dropped, so the result always belongs to the current prompt. A missing
// credential is reported before anything else. SafetyBlocked and NoImageReturned come
// back as a Failure result with a nil error, like Orchestrator.Submit.
func (s *Session) Edit(ctx context.Context, orch *Orchestrator, prompt string) (EditResult, error) {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	if !orch.Configured() {
		err := newError(KindNotConfigured, "Gemini API key is not configured", nil)
		s.setFailed(err)
		s.mu.Unlock()
		return nil, err
	}
	if s.encoded == "" {
		s.mu.Unlock()
		return nil, ErrNoImage
	}
	encoded, mediaType := s.encoded, s.image.MediaType
	s.state = StateSubmitting
	s.failure = nil
	s.result = nil
	s.prompt = strings.TrimSpace(prompt)
	s.updatedAt = time.Now()
	s.mu.Unlock()

	res, err := orch.Submit(ctx, encoded, mediaType, prompt)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.setFailed(err)
		return nil, err
	}
	switch r := res.(type) {
	case Success:
		img := ProbeDisplayable(r)
		s.result = &img
		s.state = StateSucceeded
		s.updatedAt = time.Now()
	case Failure:
		s.setFailed(r.Err())
	}
	return res, nil
}

// Download returns the latest edited image prepared for saving.
func (s *Session) Download(prefix string) (Download, error) {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return Download{}, ErrBusy
	}
	if s.result == nil {
		s.mu.Unlock()
		return Download{}, ErrNoResult
	}
	img := *s.result
	s.mu.Unlock()
	return ToDownload(img, prefix)
}

// Original returns the decoded input image and its media type.
func (s *Session) Original() ([]byte, string, error) {
	s.mu.Lock()
	encoded, mediaType := s.encoded, s.image.MediaType
	s.mu.Unlock()
	if encoded == "" {
		return nil, "", ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("decode held image: %w", err)
	}
	return data, mediaType, nil
}

// Reset returns the session to Idle and drops everything it holds.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Busy() {
		return ErrBusy
	}
	s.state = StateIdle
	s.failure = nil
	s.image = ImageInfo{}
	s.encoded = ""
	s.prompt = ""
	s.result = nil
	s.updatedAt = time.Now()
	return nil
}
