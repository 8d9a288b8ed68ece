package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
)

// ConsistencyService keeps the denormalized back-references on Project and
// Tag documents in step with the forward references a Task declares. It only
// ever writes the mirror side; the task's own fields belong to the caller's
// update. There is no transaction around any of this: each mirror write is
// an independent store call and a failure aborts whatever has not run yet.
type ConsistencyService struct {
	store store.Store
}

func NewConsistencyService(st store.Store) *ConsistencyService {
	return &ConsistencyService{store: st}
}

// SyncProjectRefs reconciles the task-id sets on the projects involved in a
// project change. An absent newProject means the update does not touch the
// project field at all. The removal from the old project and the addition to
// the new one are independent writes issued concurrently and joined; either
// failure fails the whole operation.
func (s *ConsistencyService) SyncProjectRefs(ctx context.Context, taskID primitive.ObjectID, oldProject *primitive.ObjectID, newProject models.OptionalID) error {
	if !newProject.Present {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)

	// Only remove when the outcome actually leaves the old project, so a
	// no-op reassignment cannot race its own addition.
	if oldProject != nil && (newProject.ID == nil || *oldProject != *newProject.ID) {
		old := *oldProject
		g.Go(func() error {
			err := s.store.UpdateByID(gctx, store.Projects, old, bson.M{
				"$pull": bson.M{"tasks": taskID},
			}, nil)
			if errors.Is(err, store.ErrNotFound) {
				// The old project is already gone; nothing to unlink.
				return nil
			}
			return err
		})
	}

	if newProject.ID != nil {
		target := *newProject.ID
		g.Go(func() error {
			err := s.store.UpdateByID(gctx, store.Projects, target, bson.M{
				"$addToSet": bson.M{"tasks": taskID},
			}, nil)
			if errors.Is(err, store.ErrNotFound) {
				return apperrors.New(apperrors.BadRequest, "You are trying to assign a project that does not exist.")
			}
			return err
		})
	}

	return g.Wait()
}

// SyncTagRefs writes the task id into (or out of) the task sets of the given
// tags. Every id must resolve to an existing tag, checked by count-match
// before any mirror write; a mismatch aborts with no writes performed. The
// caller is responsible for never setting both lists on one call and for
// rejecting duplicate additions beforehand.
func (s *ConsistencyService) SyncTagRefs(ctx context.Context, taskID primitive.ObjectID, addTags, deleteTags []primitive.ObjectID) error {
	if len(addTags) > 0 {
		count, err := s.store.CountWhere(ctx, store.Tags, bson.M{"_id": bson.M{"$in": addTags}})
		if err != nil {
			return err
		}
		if count != int64(len(addTags)) {
			return apperrors.New(apperrors.BadRequest, "You are trying to add tags that do not exist.")
		}
		if _, err := s.store.UpdateWhere(ctx, store.Tags, bson.M{"_id": bson.M{"$in": addTags}}, bson.M{
			"$push": bson.M{"tasks": taskID},
		}); err != nil {
			return err
		}
	}

	if len(deleteTags) > 0 {
		count, err := s.store.CountWhere(ctx, store.Tags, bson.M{"_id": bson.M{"$in": deleteTags}})
		if err != nil {
			return err
		}
		if count != int64(len(deleteTags)) {
			return apperrors.New(apperrors.BadRequest, "You are trying to delete tags that do not exist.")
		}
		if _, err := s.store.UpdateWhere(ctx, store.Tags, bson.M{"_id": bson.M{"$in": deleteTags}}, bson.M{
			"$pull": bson.M{"tasks": taskID},
		}); err != nil {
			return err
		}
	}

	return nil
}
