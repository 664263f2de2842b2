package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vidshelf-backend/internal/models"
	"vidshelf-backend/internal/store"
	"vidshelf-backend/internal/validate"
)

type VideoHandler struct {
	store *store.Store
}

func NewVideoHandler(store *store.Store) *VideoHandler {
	return &VideoHandler{store: store}
}

// List returns the collection, optionally restricted by
// ?filter=all|watched|unwatched.
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, ok := models.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "filter must be all, watched, or unwatched", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": h.store.Filtered(filter),
	})
}

func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	video, ok := h.store.Video(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video": video,
	})
}

func (h *VideoHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentTime float64 `json:"currentTime" validate:"gte=0"`
		Duration    float64 `json:"duration" validate:"gte=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Check(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	video, ok := h.store.UpdateProgress(chi.URLParam(r, "id"), req.CurrentTime, req.Duration)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video": video,
	})
}

func (h *VideoHandler) MarkWatched(w http.ResponseWriter, r *http.Request) {
	video, ok := h.store.MarkWatched(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video": video,
	})
}

func (h *VideoHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text      string  `json:"text" validate:"required"`
		Timestamp float64 `json:"timestamp" validate:"gte=0"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Check(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	comment, ok := h.store.AddComment(chi.URLParam(r, "id"), req.Text, req.Timestamp)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"comment": comment,
	})
}

func (h *VideoHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	if !h.store.DeleteComment(chi.URLParam(r, "id"), chi.URLParam(r, "commentId")) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Comment not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Comment deleted"})
}

func (h *VideoHandler) SetCurrent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if err := validate.Check(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	video, ok := h.store.SetCurrent(req.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video": video,
	})
}

func (h *VideoHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	video, ok := h.store.Current()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No video selected", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"video": video,
	})
}

func (h *VideoHandler) ClearCurrent(w http.ResponseWriter, r *http.Request) {
	h.store.ClearCurrent()
	writeJSON(w, http.StatusOK, map[string]string{"message": "Selection cleared"})
}
