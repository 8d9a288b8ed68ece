package handlers

import (
	"net/http"

	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/services"
	"github.com/davidpoza/dps-toggl-api/validation"
)

type ProjectHandler struct {
	projects  *services.ProjectService
	validator *validation.Validator
}

func NewProjectHandler(projects *services.ProjectService, validator *validation.Validator) *ProjectHandler {
	return &ProjectHandler{projects: projects, validator: validator}
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	var payload struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := decodeValidated(h.validator, r, validation.CreateProject, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	project, err := h.projects.CreateProject(r.Context(), caller, payload.Name, payload.Color)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, project)
}

func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	ownerFilter, err := queryID(r, "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	projects, err := h.projects.GetProjects(r.Context(), caller, ownerFilter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	projectID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	project, err := h.projects.GetProject(r.Context(), caller, projectID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	projectID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var payload struct {
		Name          *string  `json:"name"`
		Color         *string  `json:"color"`
		AddMembers    []string `json:"add_members"`
		DeleteMembers []string `json:"delete_members"`
	}
	if err := decodeValidated(h.validator, r, validation.UpdateProject, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	addMembers, err := hexIDs(payload.AddMembers)
	if err != nil {
		respondError(w, r, err)
		return
	}
	deleteMembers, err := hexIDs(payload.DeleteMembers)
	if err != nil {
		respondError(w, r, err)
		return
	}

	project, err := h.projects.UpdateProject(r.Context(), caller, projectID, services.ProjectUpdateInput{
		Name:          payload.Name,
		Color:         payload.Color,
		AddMembers:    addMembers,
		DeleteMembers: deleteMembers,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, project)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	projectID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.projects.DeleteProject(r.Context(), caller, projectID); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"message": "Project deleted successfully."})
}
