package handlers

import (
	"net/http"

	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/services"
	"github.com/davidpoza/dps-toggl-api/validation"
)

type TagHandler struct {
	tags      *services.TagService
	validator *validation.Validator
}

func NewTagHandler(tags *services.TagService, validator *validation.Validator) *TagHandler {
	return &TagHandler{tags: tags, validator: validator}
}

func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeValidated(h.validator, r, validation.CreateTag, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	tag, err := h.tags.CreateTag(r.Context(), caller, payload.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, tag)
}

func (h *TagHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	userFilter, err := queryID(r, "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tags, err := h.tags.GetTags(r.Context(), caller, userFilter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tags)
}

func (h *TagHandler) GetTag(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	tagID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tag, err := h.tags.GetTag(r.Context(), caller, tagID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tag)
}

func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	tagID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var payload struct {
		Name *string `json:"name"`
	}
	if err := decodeValidated(h.validator, r, validation.UpdateTag, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	tag, err := h.tags.UpdateTag(r.Context(), caller, tagID, payload.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	tagID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.tags.DeleteTag(r.Context(), caller, tagID); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"message": "Tag deleted successfully."})
}
