package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
)

type ProjectService struct {
	store store.Store
}

func NewProjectService(st store.Store) *ProjectService {
	return &ProjectService{store: st}
}

type ProjectUpdateInput struct {
	Name          *string
	Color         *string
	AddMembers    []primitive.ObjectID
	DeleteMembers []primitive.ObjectID
}

func (s *ProjectService) CreateProject(ctx context.Context, caller *models.User, name, color string) (*models.Project, error) {
	project := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Color:     color,
		CreatedOn: time.Now(),
		Owner:     caller.ID,
		Members:   []primitive.ObjectID{},
		Tasks:     []primitive.ObjectID{},
	}
	if _, err := s.store.InsertOne(ctx, store.Projects, project); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create project", err)
	}
	return &project, nil
}

// GetProjects lists projects the caller owns or is a member of. Admins see
// everything, optionally narrowed to one owner.
func (s *ProjectService) GetProjects(ctx context.Context, caller *models.User, ownerFilter *primitive.ObjectID) ([]models.Project, error) {
	if caller.Admin {
		filter := bson.M{}
		if ownerFilter != nil {
			filter["owner"] = *ownerFilter
		}
		var projects []models.Project
		if err := s.store.FindWhere(ctx, store.Projects, filter, bson.D{{Key: "created_on", Value: -1}}, &projects); err != nil {
			return nil, err
		}
		return projects, nil
	}

	var owned, member []models.Project
	if err := s.store.FindWhere(ctx, store.Projects, bson.M{"owner": caller.ID}, bson.D{{Key: "created_on", Value: -1}}, &owned); err != nil {
		return nil, err
	}
	if err := s.store.FindWhere(ctx, store.Projects, bson.M{"members": caller.ID}, bson.D{{Key: "created_on", Value: -1}}, &member); err != nil {
		return nil, err
	}
	seen := make(map[primitive.ObjectID]bool, len(owned))
	for _, p := range owned {
		seen[p.ID] = true
	}
	for _, p := range member {
		if !seen[p.ID] {
			owned = append(owned, p)
		}
	}
	return owned, nil
}

func (s *ProjectService) GetProject(ctx context.Context, caller *models.User, projectID primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	if err := s.store.FindByID(ctx, store.Projects, projectID, &project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "Project not found")
		}
		return nil, err
	}
	if !caller.Admin && project.Owner != caller.ID && !containsID(project.Members, caller.ID) {
		// Not visible to the caller; indistinguishable from absent.
		return nil, apperrors.New(apperrors.NotFound, "Project not found")
	}
	return &project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, caller *models.User, projectID primitive.ObjectID, in ProjectUpdateInput) (*models.Project, error) {
	var project models.Project
	if err := s.store.FindByID(ctx, store.Projects, projectID, &project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "Project not found")
		}
		return nil, err
	}
	if project.Owner != caller.ID && !caller.Admin {
		return nil, apperrors.New(apperrors.Forbidden, "You are not allowed to modify this project")
	}
	if len(in.AddMembers) > 0 && len(in.DeleteMembers) > 0 {
		return nil, apperrors.New(apperrors.BadRequest, "It's not possible adding and deleting members in the same request.")
	}

	if len(in.AddMembers) > 0 {
		count, err := s.store.CountWhere(ctx, store.Users, bson.M{"_id": bson.M{"$in": in.AddMembers}})
		if err != nil {
			return nil, err
		}
		if count != int64(len(in.AddMembers)) {
			return nil, apperrors.New(apperrors.BadRequest, "You are trying to add members that do not exist.")
		}
	}
	if len(in.DeleteMembers) > 0 {
		count, err := s.store.CountWhere(ctx, store.Users, bson.M{"_id": bson.M{"$in": in.DeleteMembers}})
		if err != nil {
			return nil, err
		}
		if count != int64(len(in.DeleteMembers)) {
			return nil, apperrors.New(apperrors.BadRequest, "You are trying to delete members that do not exist.")
		}
	}

	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Color != nil {
		set["color"] = *in.Color
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(in.AddMembers) > 0 {
		// $addToSet keeps the members set duplicate-free.
		update["$addToSet"] = bson.M{"members": bson.M{"$each": in.AddMembers}}
	}
	if len(in.DeleteMembers) > 0 {
		update["$pullAll"] = bson.M{"members": in.DeleteMembers}
	}

	if len(update) == 0 {
		return &project, nil
	}
	var updated models.Project
	if err := s.store.UpdateByID(ctx, store.Projects, project.ID, update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteProject detaches every task pointing at the project before removing
// the project document; the tasks themselves survive.
func (s *ProjectService) DeleteProject(ctx context.Context, caller *models.User, projectID primitive.ObjectID) error {
	var project models.Project
	if err := s.store.FindByID(ctx, store.Projects, projectID, &project); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "Project not found")
		}
		return err
	}
	if project.Owner != caller.ID && !caller.Admin {
		return apperrors.New(apperrors.Forbidden, "You are not allowed to delete this project")
	}

	if _, err := s.store.UpdateWhere(ctx, store.Tasks, bson.M{"project": project.ID}, bson.M{
		"$set": bson.M{"project": nil},
	}); err != nil {
		return err
	}
	return s.store.DeleteByID(ctx, store.Projects, project.ID)
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
