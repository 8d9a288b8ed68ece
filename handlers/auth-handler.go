package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/logging"
	"github.com/davidpoza/dps-toggl-api/middleware"
	"github.com/davidpoza/dps-toggl-api/services"
	"github.com/davidpoza/dps-toggl-api/validation"
)

type AuthHandler struct {
	auth      *services.AuthService
	users     *services.UserService
	validator *validation.Validator
}

func NewAuthHandler(auth *services.AuthService, users *services.UserService, validator *validation.Validator) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, validator: validator}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	}
	if err := decodeValidated(h.validator, r, validation.RegisterUser, &payload); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.users.Register(r.Context(), payload.Email, payload.Password, payload.FirstName, payload.LastName)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: New user registered with email %s", user.Email)
	respondData(w, http.StatusOK, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, r, apperrors.Wrap(apperrors.BadRequest, "malformed request body", err))
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respondError(w, r, apperrors.New(apperrors.BadRequest, "email and password fields are required."))
		return
	}

	token, user, err := h.auth.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	logging.Logger.Infof("Event ID: USER_LOGIN, Description: User %s logged in", user.Email)
	respondData(w, http.StatusOK, map[string]string{"token": token})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	caller := middleware.UserFrom(r.Context())
	token, err := h.auth.Refresh(r.Context(), caller)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"token": token})
}
