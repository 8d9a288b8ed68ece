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

// TaskService sequences task mutations together with their mirror updates.
// Mirrors are written after the insert on create, before the task document
// update on update, and around the delete; see ConsistencyService for the
// partial-failure caveats.
type TaskService struct {
	store       store.Store
	consistency *ConsistencyService
}

func NewTaskService(st store.Store, consistency *ConsistencyService) *TaskService {
	return &TaskService{store: st, consistency: consistency}
}

type TaskCreateInput struct {
	Desc      string
	Date      string
	StartHour string
	EndHour   string
	HourValue float64
	Tags      []primitive.ObjectID
	Project   *primitive.ObjectID
}

type TaskUpdateInput struct {
	Desc       *string
	Date       *string
	StartHour  *string
	EndHour    *string
	HourValue  *float64
	Project    models.OptionalID
	AddTags    []primitive.ObjectID
	DeleteTags []primitive.ObjectID
}

func (s *TaskService) CreateTask(ctx context.Context, caller *models.User, in TaskCreateInput) (*models.TaskDetail, error) {
	task := models.Task{
		ID:        primitive.NewObjectID(),
		Desc:      in.Desc,
		Date:      in.Date,
		StartHour: in.StartHour,
		EndHour:   in.EndHour,
		HourValue: in.HourValue,
		User:      caller.ID,
		Project:   in.Project,
		Tags:      in.Tags,
	}
	if task.Tags == nil {
		task.Tags = []primitive.ObjectID{}
	}

	if _, err := s.store.InsertOne(ctx, store.Tasks, task); err != nil {
		return nil, apperrors.Wrap(apperrors.Internal, "failed to create task", err)
	}

	project := models.OptionalID{}
	if in.Project != nil {
		project = models.SomeID(*in.Project)
	}
	if err := s.consistency.SyncProjectRefs(ctx, task.ID, nil, project); err != nil {
		return nil, err
	}
	if len(task.Tags) > 0 {
		if err := s.consistency.SyncTagRefs(ctx, task.ID, task.Tags, nil); err != nil {
			return nil, err
		}
	}

	return s.populateOne(ctx, task)
}

func (s *TaskService) UpdateTask(ctx context.Context, caller *models.User, taskID primitive.ObjectID, in TaskUpdateInput) (*models.TaskDetail, error) {
	var task models.Task
	if err := s.store.FindByID(ctx, store.Tasks, taskID, &task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "Task not found")
		}
		return nil, err
	}
	if task.User != caller.ID && !caller.Admin {
		return nil, apperrors.New(apperrors.Forbidden, "You are not allowed to modify this task")
	}
	if len(in.AddTags) > 0 && len(in.DeleteTags) > 0 {
		return nil, apperrors.New(apperrors.BadRequest, "It's not possible adding and deleting tags in the same request.")
	}
	// A requested addition that is already assigned signals a duplicate-add
	// attempt; the tag mirrors do not de-duplicate appends.
	for _, add := range in.AddTags {
		for _, existing := range task.Tags {
			if add == existing {
				return nil, apperrors.New(apperrors.BadRequest, "Some tag you are trying to add is already assigned.")
			}
		}
	}

	if err := s.consistency.SyncProjectRefs(ctx, task.ID, task.Project, in.Project); err != nil {
		return nil, err
	}
	if err := s.consistency.SyncTagRefs(ctx, task.ID, in.AddTags, in.DeleteTags); err != nil {
		return nil, err
	}

	set := bson.M{}
	if in.Desc != nil {
		set["desc"] = *in.Desc
	}
	if in.Date != nil {
		set["date"] = *in.Date
	}
	if in.StartHour != nil {
		set["start_hour"] = *in.StartHour
	}
	if in.EndHour != nil {
		set["end_hour"] = *in.EndHour
	}
	if in.HourValue != nil {
		set["hour_value"] = *in.HourValue
	}
	if in.Project.Present {
		set["project"] = in.Project.ID
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(in.AddTags) > 0 {
		update["$push"] = bson.M{"tags": bson.M{"$each": in.AddTags}}
	}
	if len(in.DeleteTags) > 0 {
		update["$pullAll"] = bson.M{"tags": in.DeleteTags}
	}

	var updated models.Task
	if len(update) == 0 {
		updated = task
	} else if err := s.store.UpdateByID(ctx, store.Tasks, task.ID, update, &updated); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.New(apperrors.NotFound, "Task not found")
		}
		return nil, err
	}

	return s.populateOne(ctx, updated)
}

func (s *TaskService) DeleteTask(ctx context.Context, caller *models.User, taskID primitive.ObjectID) error {
	var task models.Task
	if err := s.store.FindByID(ctx, store.Tasks, taskID, &task); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.New(apperrors.NotFound, "Task not found")
		}
		return err
	}
	if task.User != caller.ID && !caller.Admin {
		return apperrors.New(apperrors.Forbidden, "You are not allowed to delete this task")
	}

	if task.Project != nil {
		err := s.store.UpdateByID(ctx, store.Projects, *task.Project, bson.M{
			"$pull": bson.M{"tasks": task.ID},
		}, nil)
		// A dangling project reference does not block the delete.
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	if len(task.Tags) > 0 {
		if _, err := s.store.UpdateWhere(ctx, store.Tags, bson.M{"_id": bson.M{"$in": task.Tags}}, bson.M{
			"$pull": bson.M{"tasks": task.ID},
		}); err != nil {
			return err
		}
	}

	return s.store.DeleteByID(ctx, store.Tasks, task.ID)
}

// GetTasks lists tasks visible to the caller: their own, or — for admins —
// optionally any single user's. An empty date means no date filter.
func (s *TaskService) GetTasks(ctx context.Context, caller *models.User, date string, userFilter *primitive.ObjectID) ([]models.TaskDetail, error) {
	filter := bson.M{}
	if !caller.Admin {
		filter["user"] = caller.ID
	} else if userFilter != nil {
		filter["user"] = *userFilter
	}
	if date != "" {
		filter["date"] = date
	}

	var tasks []models.Task
	if err := s.store.FindWhere(ctx, store.Tasks, filter, bson.D{{Key: "date", Value: -1}}, &tasks); err != nil {
		return nil, err
	}
	return s.Populate(ctx, tasks)
}

func (s *TaskService) populateOne(ctx context.Context, task models.Task) (*models.TaskDetail, error) {
	details, err := s.Populate(ctx, []models.Task{task})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// Populate resolves user, tag and project references into embedded documents.
// The embedded user is always the public projection without the admin flag.
func (s *TaskService) Populate(ctx context.Context, tasks []models.Task) ([]models.TaskDetail, error) {
	userIDs := make([]primitive.ObjectID, 0, len(tasks))
	tagIDs := make([]primitive.ObjectID, 0)
	projectIDs := make([]primitive.ObjectID, 0)
	for _, t := range tasks {
		userIDs = append(userIDs, t.User)
		tagIDs = append(tagIDs, t.Tags...)
		if t.Project != nil {
			projectIDs = append(projectIDs, *t.Project)
		}
	}

	users := make(map[primitive.ObjectID]models.User)
	tags := make(map[primitive.ObjectID]models.Tag)
	projects := make(map[primitive.ObjectID]models.Project)

	if len(userIDs) > 0 {
		var found []models.User
		if err := s.store.FindWhere(ctx, store.Users, bson.M{"_id": bson.M{"$in": userIDs}}, nil, &found); err != nil {
			return nil, err
		}
		for _, u := range found {
			users[u.ID] = u
		}
	}
	if len(tagIDs) > 0 {
		var found []models.Tag
		if err := s.store.FindWhere(ctx, store.Tags, bson.M{"_id": bson.M{"$in": tagIDs}}, nil, &found); err != nil {
			return nil, err
		}
		for _, t := range found {
			tags[t.ID] = t
		}
	}
	if len(projectIDs) > 0 {
		var found []models.Project
		if err := s.store.FindWhere(ctx, store.Projects, bson.M{"_id": bson.M{"$in": projectIDs}}, nil, &found); err != nil {
			return nil, err
		}
		for _, p := range found {
			projects[p.ID] = p
		}
	}

	details := make([]models.TaskDetail, 0, len(tasks))
	for _, t := range tasks {
		detail := models.TaskDetail{
			ID:        t.ID,
			Desc:      t.Desc,
			Date:      t.Date,
			StartHour: t.StartHour,
			EndHour:   t.EndHour,
			HourValue: t.HourValue,
			Tags:      []models.Tag{},
		}
		if u, ok := users[t.User]; ok {
			pub := u.Public(false)
			detail.User = &pub
		}
		if t.Project != nil {
			if p, ok := projects[*t.Project]; ok {
				detail.Project = &p
			}
		}
		for _, id := range t.Tags {
			if tag, ok := tags[id]; ok {
				detail.Tags = append(detail.Tags, tag)
			}
		}
		details = append(details, detail)
	}
	return details, nil
}
