package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/cli"
)

// pickResponse is the body of POST /api/pick.
type pickResponse struct {
	Path     string `json:"path"`
	Canceled bool   `json:"canceled"`
}

// POST /api/pick
// Opens a native file dialog and returns the selected image path. The page
// then loads it with POST /api/sessions/{id}/path.
func handlePick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	path, err := cli.PickImage()
	if errors.Is(err, cli.ErrPickCanceled) {
		respondJSON(w, http.StatusOK, pickResponse{Canceled: true})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("File picker failed")
		respondJSON(w, http.StatusInternalServerError, map[string]string{"error": "file picker failed"})
		return
	}

	log.Info().Str("path", path).Msg("Image picked via native dialog")
	respondJSON(w, http.StatusOK, pickResponse{Path: path})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
