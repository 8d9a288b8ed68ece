package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
	"github.com/davidpoza/dps-toggl-api/utils"
)

type AuthService struct {
	store store.Store
}

func NewAuthService(st store.Store) *AuthService {
	return &AuthService{store: st}
}

// Login verifies the credentials and issues a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	var users []models.User
	if err := s.store.FindWhere(ctx, store.Users, bson.M{"email": email}, nil, &users); err != nil {
		return "", nil, err
	}
	if len(users) == 0 || !utils.CheckPassword(users[0].Password, password) {
		return "", nil, apperrors.New(apperrors.NotFound, "email or password not correct.")
	}
	user := users[0]

	token, err := utils.GenerateToken(user.ID.Hex(), user.Email)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.Internal, "failed to sign token", err)
	}
	return token, &user, nil
}

// Refresh issues a fresh token for an already-authenticated user.
func (s *AuthService) Refresh(ctx context.Context, caller *models.User) (string, error) {
	token, err := utils.GenerateToken(caller.ID.Hex(), caller.Email)
	if err != nil {
		return "", apperrors.Wrap(apperrors.Internal, "failed to sign token", err)
	}
	return token, nil
}
