package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
	"github.com/davidpoza/dps-toggl-api/utils"
)

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

type UserUpdateInput struct {
	FirstName            *string
	LastName             *string
	Password             *string
	RepeatPassword       *string
	Active               *bool
	Admin                *bool
	CurrentTaskDesc      models.OptionalString
	CurrentTaskDate      models.OptionalString
	CurrentTaskStartHour models.OptionalString
}

// Register creates an inactive, non-admin user. Registering an email that
// already exists is reported as an informational outcome, not an error.
func (s *UserService) Register(ctx context.Context, email, password, firstName, lastName string) (*models.User, error) {
	count, err := s.store.CountWhere(ctx, store.Users, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.New(apperrors.Informational, "user already exists")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
	}

	user := models.User{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Password:  hash,
		FirstName: firstName,
		LastName:  lastName,
		Admin:     false,
		Active:    false,
	}
	if _, err := s.store.InsertOne(ctx, store.Users, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// Lost the race against a concurrent registration.
			return nil, apperrors.New(apperrors.Conflict, "email already registered")
		}
		return nil, err
	}
	return &user, nil
}

// GetUsers returns everyone but the caller. The admin flag is only included
// when the caller is an admin; the password never is.
func (s *UserService) GetUsers(ctx context.Context, caller *models.User) ([]models.PublicUser, error) {
	var users []models.User
	filter := bson.M{"_id": bson.M{"$ne": caller.ID}}
	if err := s.store.FindWhere(ctx, store.Users, filter, bson.D{{Key: "email", Value: 1}}, &users); err != nil {
		return nil, err
	}
	public := make([]models.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public(caller.Admin))
	}
	return public, nil
}

func (s *UserService) GetUser(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	var user models.User
	if err := s.store.FindByID(ctx, store.Users, userID, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "User not found")
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, caller *models.User, userID primitive.ObjectID, in UserUpdateInput) (*models.User, error) {
	if caller.ID != userID && !caller.Admin {
		return nil, apperrors.New(apperrors.Forbidden, "You are not allowed to update this user")
	}
	if (in.Active != nil || in.Admin != nil) && !caller.Admin {
		return nil, apperrors.New(apperrors.Forbidden, "Only admins can change the active or admin flags")
	}

	set := bson.M{}
	if in.FirstName != nil {
		set["first_name"] = *in.FirstName
	}
	if in.LastName != nil {
		set["last_name"] = *in.LastName
	}
	// Password only changes when both fields are present and agree.
	if in.Password != nil && in.RepeatPassword != nil && *in.Password == *in.RepeatPassword {
		hash, err := utils.HashPassword(*in.Password)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.Internal, "failed to hash password", err)
		}
		set["password"] = hash
	}
	if in.Active != nil {
		set["active"] = *in.Active
	}
	if in.Admin != nil {
		set["admin"] = *in.Admin
	}
	if in.CurrentTaskDesc.Present {
		set["current_task_desc"] = in.CurrentTaskDesc.Value
	}
	if in.CurrentTaskDate.Present {
		set["current_task_date"] = in.CurrentTaskDate.Value
	}
	if in.CurrentTaskStartHour.Present {
		set["current_task_start_hour"] = in.CurrentTaskStartHour.Value
	}

	var updated models.User
	if len(set) == 0 {
		if err := s.store.FindByID(ctx, store.Users, userID, &updated); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, apperrors.New(apperrors.NotFound, "User not found")
			}
			return nil, err
		}
		return &updated, nil
	}
	if err := s.store.UpdateByID(ctx, store.Users, userID, bson.M{"$set": set}, &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "User not found")
		}
		return nil, err
	}
	return &updated, nil
}

// DeleteUser is admin-only and never allows self-deletion. The user's tasks,
// projects and tags are left in place.
func (s *UserService) DeleteUser(ctx context.Context, caller *models.User, userID primitive.ObjectID) error {
	if !caller.Admin {
		return apperrors.New(apperrors.Forbidden, "You are not allowed to delete this user")
	}
	if caller.ID == userID {
		return apperrors.New(apperrors.Forbidden, "You cannot delete your own account")
	}
	if err := s.store.DeleteByID(ctx, store.Users, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.New(apperrors.BadRequest, "User not found")
		}
		return err
	}
	return nil
}

// SetAvatar records the stored avatar filename on the user document.
func (s *UserService) SetAvatar(ctx context.Context, caller *models.User, userID primitive.ObjectID, filename string) (*models.User, error) {
	if caller.ID != userID && !caller.Admin {
		return nil, apperrors.New(apperrors.Forbidden, "You are not allowed to update this user")
	}
	var updated models.User
	if err := s.store.UpdateByID(ctx, store.Users, userID, bson.M{"$set": bson.M{"avatar": filename}}, &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "User not found")
		}
		return nil, err
	}
	return &updated, nil
}
