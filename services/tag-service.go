package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
)

type TagService struct {
	store store.Store
}

func NewTagService(st store.Store) *TagService {
	return &TagService{store: st}
}

func (s *TagService) CreateTag(ctx context.Context, caller *models.User, name string) (*models.Tag, error) {
	tag := models.Tag{
		ID:    primitive.NewObjectID(),
		Name:  name,
		User:  caller.ID,
		Tasks: []primitive.ObjectID{},
	}
	if _, err := s.store.InsertOne(ctx, store.Tags, tag); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create tag", err)
	}
	return &tag, nil
}

func (s *TagService) GetTags(ctx context.Context, caller *models.User, userFilter *primitive.ObjectID) ([]models.Tag, error) {
	filter := bson.M{}
	if !caller.Admin {
		filter["user"] = caller.ID
	} else if userFilter != nil {
		filter["user"] = *userFilter
	}
	var tags []models.Tag
	if err := s.store.FindWhere(ctx, store.Tags, filter, bson.D{{Key: "name", Value: 1}}, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *TagService) GetTag(ctx context.Context, caller *models.User, tagID primitive.ObjectID) (*models.Tag, error) {
	var tag models.Tag
	if err := s.store.FindByID(ctx, store.Tags, tagID, &tag); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "Tag not found")
		}
		return nil, err
	}
	if !caller.Admin && tag.User != caller.ID {
		return nil, apperrors.New(apperrors.NotFound, "Tag not found")
	}
	return &tag, nil
}

func (s *TagService) UpdateTag(ctx context.Context, caller *models.User, tagID primitive.ObjectID, name *string) (*models.Tag, error) {
	var tag models.Tag
	if err := s.store.FindByID(ctx, store.Tags, tagID, &tag); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "Tag not found")
		}
		return nil, err
	}
	if tag.User != caller.ID && !caller.Admin {
		return nil, apperrors.New(apperrors.Forbidden, "You are not allowed to modify this tag")
	}
	if name == nil {
		return &tag, nil
	}
	var updated models.Tag
	if err := s.store.UpdateByID(ctx, store.Tags, tag.ID, bson.M{"$set": bson.M{"name": *name}}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTag removes the tag from every task's forward array before deleting
// the tag document, so neither side of the mirror outlives the other.
func (s *TagService) DeleteTag(ctx context.Context, caller *models.User, tagID primitive.ObjectID) error {
	var tag models.Tag
	if err := s.store.FindByID(ctx, store.Tags, tagID, &tag); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "Tag not found")
		}
		return err
	}
	if tag.User != caller.ID && !caller.Admin {
		return apperrors.New(apperrors.Forbidden, "You are not allowed to delete this tag")
	}

	if _, err := s.store.UpdateWhere(ctx, store.Tasks, bson.M{"tags": tag.ID}, bson.M{
		"$pull": bson.M{"tags": tag.ID},
	}); err != nil {
		return err
	}
	return s.store.DeleteByID(ctx, store.Tags, tag.ID)
}
