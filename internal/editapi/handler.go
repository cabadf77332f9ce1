// Package editapi serves the session-based JSON API for the photo editor.
// The same handler runs behind the local web server and behind API Gateway
// in Lambda.
package editapi

import (
	"net/http"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/fpang/gemini-photo-editor/internal/s3util"
)

// Options configures a Handler.
type Options struct {
	Orchestrator *editor.Orchestrator
	// Exporter, when set, makes downloads redirect to a presigned S3 URL.
	Exporter       *s3util.Exporter
	DownloadPrefix string
	AccessToken    string
	Model          string
	SessionTTL     time.Duration
	// AllowLocalPaths enables loading images by filesystem path. Only the
	// local web server turns it on.
	AllowLocalPaths bool
	// Static serves everything outside /api/.
	Static http.Handler
}

// Handler routes API requests to sessions held in a Registry.
type Handler struct {
	orch            *editor.Orchestrator
	exporter        *s3util.Exporter
	prefix          string
	accessToken     string
	model           string
	allowLocalPaths bool
	static          http.Handler
	sessions        *Registry
}

// New builds a Handler from opts.
func New(opts Options) *Handler {
	prefix := opts.DownloadPrefix
	if prefix == "" {
		prefix = editor.ProductName
	}
	return &Handler{
		orch:            opts.Orchestrator,
		exporter:        opts.Exporter,
		prefix:          prefix,
		accessToken:     opts.AccessToken,
		model:           opts.Model,
		allowLocalPaths: opts.AllowLocalPaths,
		static:          opts.Static,
		sessions:        NewRegistry(opts.SessionTTL),
	}
}

// Sessions returns the registry backing the handler.
func (h *Handler) Sessions() *Registry { return h.sessions }

// Mux registers the API routes on a new ServeMux without middleware.
func (h *Handler) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(healthPath, h.handleHealth)
	mux.HandleFunc("/api/config", h.handleConfig)
	mux.HandleFunc("/api/sessions", h.handleCreateSession)
	mux.HandleFunc(sessionsPrefix, h.handleSessionRoutes)
	if h.static != nil {
		mux.Handle("/", withSecurityHeaders(h.static))
	}
	return mux
}

// Routes returns the API wrapped with gzip, logging, CORS, metrics, and the
// access token check.
func (h *Handler) Routes() http.Handler {
	return Wrap(h.Mux(), h.accessToken)
}

// Wrap applies the API middleware stack to next. Hosts that add their own
// routes build a mux from Mux and wrap it themselves.
func Wrap(next http.Handler, accessToken string) http.Handler {
	return gzhttp.GzipHandler(withLogging(withCORS(withMetrics(withAccessToken(accessToken, next)))))
}

// GET /api/health
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// configResponse tells the UI whether editing is available and what it accepts.
type configResponse struct {
	Configured     bool     `json:"configured"`
	Model          string   `json:"model,omitempty"`
	MaxUploadBytes int64    `json:"maxUploadBytes"`
	AcceptedTypes  []string `json:"acceptedTypes"`
	Export         bool     `json:"export"`
	LocalPaths     bool     `json:"localPaths"`
}

// GET /api/config
func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	respondJSON(w, http.StatusOK, configResponse{
		Configured:     h.orch != nil && h.orch.Configured(),
		Model:          h.model,
		MaxUploadBytes: editor.MaxUploadSize,
		AcceptedTypes:  []string{editor.MediaTypePNG, editor.MediaTypeJPEG, editor.MediaTypeWEBP},
		Export:         h.exporter != nil,
		LocalPaths:     h.allowLocalPaths,
	})
}

// POST /api/sessions
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s := h.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]string{"sessionId": s.ID()})
}
