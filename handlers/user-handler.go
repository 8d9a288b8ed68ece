package handlers

import (
	"errors"
	"net/http"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/media"
	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/services"
	"github.com/davidpoza/dps-toggl-api/validation"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	users     *services.UserService
	avatars   *media.AvatarStore
	validator *validation.Validator
}

func NewUserHandler(users *services.UserService, avatars *media.AvatarStore, validator *validation.Validator) *UserHandler {
	return &UserHandler{users: users, avatars: avatars, validator: validator}
}

func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	users, err := h.users.GetUsers(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, users)
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	user, err := h.users.GetUser(r.Context(), caller.ID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	var payload struct {
		FirstName            *string               `json:"first_name"`
		LastName             *string               `json:"last_name"`
		CurrentPassword      *string               `json:"current_password"`
		Password             *string               `json:"password"`
		RepeatPassword       *string               `json:"repeat_password"`
		Active               *bool                 `json:"active"`
		Admin                *bool                 `json:"admin"`
		CurrentTaskDesc      models.OptionalString `json:"current_task_desc"`
		CurrentTaskDate      models.OptionalString `json:"current_task_date"`
		CurrentTaskStartHour models.OptionalString `json:"current_task_start_hour"`
	}
	if err := decodeValidated(h.validator, r, validation.UpdateUser, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), caller, userID, services.UserUpdateInput{
		FirstName:            payload.FirstName,
		LastName:             payload.LastName,
		Password:             payload.Password,
		RepeatPassword:       payload.RepeatPassword,
		Active:               payload.Active,
		Admin:                payload.Admin,
		CurrentTaskDesc:      payload.CurrentTaskDesc,
		CurrentTaskDate:      payload.CurrentTaskDate,
		CurrentTaskStartHour: payload.CurrentTaskStartHour,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), caller, userID); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"message": "User deleted successfully."})
}

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	userID, err := pathID(r, "id")
	if err != nil {
		respondError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)
	file, _, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, r, apperrors.Wrap(apperrors.BadRequest, "avatar file is required", err))
		return
	}
	defer file.Close()

	filename, err := h.avatars.Save(file)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			respondError(w, r, apperrors.New(apperrors.BadRequest, "uploaded file is not a valid image"))
			return
		}
		respondError(w, r, apperrors.Wrap(apperrors.Internal, "failed to store avatar", err))
		return
	}

	updated, err := h.users.SetAvatar(r.Context(), caller, userID, filename)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}
