package handlers

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/services"
	"github.com/davidpoza/dps-toggl-api/validation"
)

type TaskHandler struct {
	tasks     *services.TaskService
	validator *validation.Validator
}

func NewTaskHandler(tasks *services.TaskService, validator *validation.Validator) *TaskHandler {
	return &TaskHandler{tasks: tasks, validator: validator}
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	var payload struct {
		Desc      string   `json:"desc"`
		Date      string   `json:"date"`
		StartHour string   `json:"start_hour"`
		EndHour   string   `json:"end_hour"`
		HourValue float64  `json:"hour_value"`
		Tags      []string `json:"tags"`
		Project   *string  `json:"project"`
	}
	if err := decodeValidated(h.validator, r, validation.CreateTask, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	tags, err := hexIDs(payload.Tags)
	if err != nil {
		respondError(w, r, err)
		return
	}
	var project *primitive.ObjectID
	if payload.Project != nil {
		id, err := primitive.ObjectIDFromHex(*payload.Project)
		if err != nil {
			respondError(w, r, apperrors.New(apperrors.BadRequest, "project must be a valid id"))
			return
		}
		project = &id
	}

	task, err := h.tasks.CreateTask(r.Context(), caller, services.TaskCreateInput{
		Desc:      payload.Desc,
		Date:      payload.Date,
		StartHour: payload.StartHour,
		EndHour:   payload.EndHour,
		HourValue: payload.HourValue,
		Tags:      tags,
		Project:   project,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, task)
}

func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())

	userFilter, err := queryID(r, "user_id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	tasks, err := h.tasks.GetTasks(r.Context(), caller, r.URL.Query().Get("date"), userFilter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tasks)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	taskID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var payload struct {
		Desc       *string           `json:"desc"`
		Date       *string           `json:"date"`
		StartHour  *string           `json:"start_hour"`
		EndHour    *string           `json:"end_hour"`
		HourValue  *float64          `json:"hour_value"`
		Project    models.OptionalID `json:"project"`
		AddTags    []string          `json:"add_tags"`
		DeleteTags []string          `json:"delete_tags"`
	}
	if err := decodeValidated(h.validator, r, validation.UpdateTask, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	addTags, err := hexIDs(payload.AddTags)
	if err != nil {
		respondError(w, r, err)
		return
	}
	deleteTags, err := hexIDs(payload.DeleteTags)
	if err != nil {
		respondError(w, r, err)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), caller, taskID, services.TaskUpdateInput{
		Desc:       payload.Desc,
		Date:       payload.Date,
		StartHour:  payload.StartHour,
		EndHour:    payload.EndHour,
		HourValue:  payload.HourValue,
		Project:    payload.Project,
		AddTags:    addTags,
		DeleteTags: deleteTags,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, task)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	taskID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.tasks.DeleteTask(r.Context(), caller, taskID); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"message": "Task deleted successfully."})
}
