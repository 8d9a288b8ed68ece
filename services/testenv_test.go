package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/models"
	"github.com/davidpoza/dps-toggl-api/store"
)

type testEnv struct {
	store       *store.MemoryStore
	consistency *ConsistencyService
	tasks       *TaskService
	projects    *ProjectService
	tags        *TagService
	users       *UserService
	reports     *ReportService
	auth        *AuthService

	owner *models.User
	admin *models.User
	other *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := store.NewMemoryStore()
	consistency := NewConsistencyService(st)
	tasks := NewTaskService(st, consistency)
	env := &testEnv{
		store:       st,
		consistency: consistency,
		tasks:       tasks,
		projects:    NewProjectService(st),
		tags:        NewTagService(st),
		users:       NewUserService(st),
		reports:     NewReportService(st, tasks),
		auth:        NewAuthService(st),
	}
	env.owner = env.seedUser(t, "owner@example.com", false)
	env.admin = env.seedUser(t, "admin@example.com", true)
	env.other = env.seedUser(t, "other@example.com", false)
	return env
}

func (e *testEnv) seedUser(t *testing.T, email string, admin bool) *models.User {
	t.Helper()
	user := models.User{
		ID:       primitive.NewObjectID(),
		Email:    email,
		Password: "not-a-real-hash",
		Admin:    admin,
		Active:   true,
	}
	if _, err := e.store.InsertOne(context.Background(), store.Users, user); err != nil {
		t.Fatalf("seeding user %s: %v", email, err)
	}
	return &user
}

func (e *testEnv) seedTag(t *testing.T, owner *models.User, name string) models.Tag {
	t.Helper()
	tag, err := e.tags.CreateTag(context.Background(), owner, name)
	if err != nil {
		t.Fatalf("seeding tag %s: %v", name, err)
	}
	return *tag
}

func (e *testEnv) seedProject(t *testing.T, owner *models.User, name string) models.Project {
	t.Helper()
	project, err := e.projects.CreateProject(context.Background(), owner, name, "#aabbcc")
	if err != nil {
		t.Fatalf("seeding project %s: %v", name, err)
	}
	return *project
}

func (e *testEnv) getTask(t *testing.T, id primitive.ObjectID) models.Task {
	t.Helper()
	var task models.Task
	if err := e.store.FindByID(context.Background(), store.Tasks, id, &task); err != nil {
		t.Fatalf("fetching task %s: %v", id.Hex(), err)
	}
	return task
}

func (e *testEnv) getTag(t *testing.T, id primitive.ObjectID) models.Tag {
	t.Helper()
	var tag models.Tag
	if err := e.store.FindByID(context.Background(), store.Tags, id, &tag); err != nil {
		t.Fatalf("fetching tag %s: %v", id.Hex(), err)
	}
	return tag
}

func (e *testEnv) getProject(t *testing.T, id primitive.ObjectID) models.Project {
	t.Helper()
	var project models.Project
	if err := e.store.FindByID(context.Background(), store.Projects, id, &project); err != nil {
		t.Fatalf("fetching project %s: %v", id.Hex(), err)
	}
	return project
}

func hasID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
