package editapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fpang/gemini-photo-editor/internal/editor"
)

const sessionsPrefix = "/api/sessions/"

// parseSessionRoute extracts the session ID and action from a path like
// /api/sessions/{id}/{action}. The action is empty for /api/sessions/{id}.
func parseSessionRoute(path string) (sessionID, action string, ok bool) {
	rest := strings.Trim(strings.TrimPrefix(path, sessionsPrefix), "/")
	if rest == "" {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) > 2 {
		return "", "", false
	}
	sessionID = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return sessionID, action, true
}

// endpointLabel collapses session IDs so metrics group by route.
func endpointLabel(path string) string {
	if !strings.HasPrefix(path, sessionsPrefix) {
		return path
	}
	_, action, ok := parseSessionRoute(path)
	if !ok {
		return path
	}
	if action == "" {
		return sessionsPrefix + "{id}"
	}
	return sessionsPrefix + "{id}/" + action
}

// errorBody is the JSON shape of every API error.
type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, errorBody{Error: message})
}

func kindError(w http.ResponseWriter, status int, kind, message string) {
	respondJSON(w, status, errorBody{Error: message, Kind: kind})
}

// statusForKind maps a pipeline failure to its HTTP status.
func statusForKind(k editor.Kind) int {
	switch k {
	case editor.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case editor.KindUnsupportedType:
		return http.StatusUnsupportedMediaType
	case editor.KindInvalidRequest, editor.KindReadFailure:
		return http.StatusBadRequest
	case editor.KindNotConfigured:
		return http.StatusServiceUnavailable
	case editor.KindTransportFailure:
		return http.StatusBadGateway
	case editor.KindSafetyBlocked, editor.KindNoImageReturned:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an API error body.
func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, editor.ErrBusy):
		kindError(w, http.StatusConflict, "Busy", "An edit is already in progress. Please wait for it to finish.")
	case errors.Is(err, editor.ErrNoImage):
		kindError(w, http.StatusBadRequest, editor.KindInvalidRequest.String(), editor.KindInvalidRequest.UserMessage())
	case errors.Is(err, editor.ErrNoResult):
		kindError(w, http.StatusNotFound, "NoResult", "There is no edited image to download yet.")
	default:
		kind := editor.KindOf(err)
		kindError(w, statusForKind(kind), kind.String(), editor.UserMessageOf(err))
	}
}
