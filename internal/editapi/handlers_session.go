package editapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fpang/gemini-photo-editor/internal/editor"
	"github.com/fpang/gemini-photo-editor/internal/filehandler"
	"github.com/fpang/gemini-photo-editor/internal/metrics"
)

// maxUploadBody bounds a multipart upload. It leaves room above
// MaxUploadSize so an oversized image still reaches the validator and is
// reported as TooLarge rather than cut off mid-stream.
const maxUploadBody = 2*editor.MaxUploadSize + 1<<20

// maxJSONBody bounds the small JSON bodies of edit and path requests.
const maxJSONBody = 64 << 10

// uploadField is the multipart field carrying the image.
const uploadField = "file"

// /api/sessions/{id}[/{action}]
func (h *Handler) handleSessionRoutes(w http.ResponseWriter, r *http.Request) {
	id, action, ok := parseSessionRoute(r.URL.Path)
	if !ok {
		httpError(w, http.StatusNotFound, "not found")
		return
	}
	if _, err := uuid.Parse(id); err != nil {
		httpError(w, http.StatusNotFound, "session not found")
		return
	}
	sess, found := h.sessions.Get(id)
	if !found {
		httpError(w, http.StatusNotFound, "session not found")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		respondJSON(w, http.StatusOK, sess.Snapshot())
	case action == "" && r.Method == http.MethodDelete:
		h.handleDelete(w, sess)
	case action == "image" && r.Method == http.MethodPost:
		h.handleUpload(w, r, sess)
	case action == "path" && r.Method == http.MethodPost && h.allowLocalPaths:
		h.handleLoadPath(w, r, sess)
	case action == "edit" && r.Method == http.MethodPost:
		h.handleEdit(w, r, sess)
	case action == "download" && r.Method == http.MethodGet:
		h.handleDownload(w, r, sess)
	case action == "thumbnail" && r.Method == http.MethodGet:
		h.handleThumbnail(w, sess)
	case action == "" || action == "image" || action == "edit" || action == "download" || action == "thumbnail":
		httpError(w, http.StatusMethodNotAllowed, "method not allowed")
	default:
		httpError(w, http.StatusNotFound, "not found")
	}
}

// DELETE /api/sessions/{id}
func (h *Handler) handleDelete(w http.ResponseWriter, sess *editor.Session) {
	if err := sess.Reset(); err != nil {
		respondError(w, err)
		return
	}
	h.sessions.Remove(sess.ID())
	w.WriteHeader(http.StatusNoContent)
}

// fileHeaderSource opens an uploaded multipart file.
type fileHeaderSource struct {
	fh *multipart.FileHeader
}

func (s fileHeaderSource) Open() (io.ReadCloser, error) {
	return s.fh.Open()
}

// uploadMediaType prefers the declared part type and falls back to the
// filename extension when the client sent none.
func uploadMediaType(fh *multipart.FileHeader) string {
	declared := editor.NormalizeMediaType(fh.Header.Get("Content-Type"))
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return filehandler.GetMIMEType(filepath.Ext(fh.Filename))
}

// POST /api/sessions/{id}/image
func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, &editor.Error{Kind: editor.KindTooLarge, Message: "upload exceeds request limit", Err: err})
			return
		}
		respondError(w, &editor.Error{Kind: editor.KindReadFailure, Message: "cannot parse upload", Err: err})
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[uploadField]
	if len(files) == 0 {
		respondError(w, &editor.Error{Kind: editor.KindInvalidRequest, Message: "missing file field"})
		return
	}
	fh := files[0]

	c := editor.UploadCandidate{
		Name:      filepath.Base(fh.Filename),
		MediaType: uploadMediaType(fh),
		Size:      fh.Size,
		Content:   fileHeaderSource{fh: fh},
	}
	h.load(w, r, sess, c)
}

// pathRequest is the body of POST /api/sessions/{id}/path.
type pathRequest struct {
	Path string `json:"path"`
}

// POST /api/sessions/{id}/path
func (h *Handler) handleLoadPath(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req pathRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Path == "" || filehandler.ContainsPathTraversal(req.Path) || !filepath.IsAbs(req.Path) {
		httpError(w, http.StatusBadRequest, "invalid path")
		return
	}
	c, err := filehandler.LoadCandidate(req.Path)
	if err != nil {
		respondError(w, &editor.Error{Kind: editor.KindReadFailure, Message: "cannot open file", Err: err})
		return
	}
	h.load(w, r, sess, c)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request, sess *editor.Session, c editor.UploadCandidate) {
	if err := sess.Load(r.Context(), c); err != nil {
		log.Warn().Err(err).
			Str("sessionId", sess.ID()).
			Str("name", c.Name).
			Str("mediaType", c.MediaType).
			Int64("size", c.Size).
			Msg("Image rejected")
		respondError(w, err)
		return
	}
	log.Info().
		Str("sessionId", sess.ID()).
		Str("name", c.Name).
		Int64("size", c.Size).
		Msg("Image loaded")
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

// editRequest is the body of POST /api/sessions/{id}/edit.
type editRequest struct {
	Prompt string `json:"prompt"`
}

// POST /api/sessions/{id}/edit
func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	var req editRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	res, err := sess.Edit(r.Context(), h.orch, req.Prompt)
	elapsed := time.Since(start)

	if errors.Is(err, editor.ErrBusy) || errors.Is(err, editor.ErrNoImage) {
		respondError(w, err)
		return
	}

	outcome := editor.Outcome(res, err)
	metrics.Edit(outcome, elapsed)
	ev := log.Info()
	if err != nil {
		if editor.KindOf(err).IsLocal() {
			ev = log.Warn().Err(err)
		} else {
			ev = log.Error().Err(err)
		}
	}
	ev.Str("sessionId", sess.ID()).
		Str("outcome", outcome).
		Dur("duration", elapsed).
		Msg("Edit finished")

	if err != nil {
		respondError(w, err)
		return
	}
	if f, ok := res.(editor.Failure); ok {
		respondError(w, f.Err())
		return
	}
	respondJSON(w, http.StatusOK, sess.Snapshot())
}

// GET /api/sessions/{id}/download
func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request, sess *editor.Session) {
	dl, err := sess.Download(h.prefix)
	if err != nil {
		respondError(w, err)
		return
	}

	if h.exporter != nil {
		_, url, err := h.exporter.Export(r.Context(), sess.ID(), dl)
		if err != nil {
			log.Error().Err(err).Str("sessionId", sess.ID()).Msg("Export failed")
			httpError(w, http.StatusBadGateway, "failed to export image")
			return
		}
		http.Redirect(w, r, url, http.StatusFound)
		return
	}

	w.Header().Set("Content-Type", dl.MediaType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(dl.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(dl.Data)
}

// GET /api/sessions/{id}/thumbnail
func (h *Handler) handleThumbnail(w http.ResponseWriter, sess *editor.Session) {
	data, _, err := sess.Original()
	if err != nil {
		if errors.Is(err, editor.ErrNoImage) {
			httpError(w, http.StatusNotFound, "no image loaded")
			return
		}
		httpError(w, http.StatusInternalServerError, "cannot read image")
		return
	}
	thumb, mimeType, err := filehandler.GenerateThumbnail(data, filehandler.DefaultThumbnailMaxDimension)
	if err != nil {
		log.Warn().Err(err).Str("sessionId", sess.ID()).Msg("Thumbnail generation failed")
		httpError(w, http.StatusUnprocessableEntity, "cannot generate thumbnail")
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "private, max-age=60")
	w.Write(thumb)
}
