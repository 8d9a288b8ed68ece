package services

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/davidpoza/dps-toggl-api/apperrors"
	"github.com/davidpoza/dps-toggl-api/models"
)

func TestCreateTaskWithTagsAndProject(t *testing.T) {
	env := newTestEnv(t)
	g1 := env.seedTag(t, env.owner, "G1")
	g2 := env.seedTag(t, env.owner, "G2")
	project := env.seedProject(t, env.owner, "P1")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc:      "write report",
		Date:      "2020-03-01",
		StartHour: "09:00:00",
		EndHour:   "11:30:00",
		Tags:      []primitive.ObjectID{g1.ID, g2.ID},
		Project:   &project.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}
	if detail.User == nil || detail.User.Email != env.owner.Email {
		t.Fatalf("populated user = %+v, want owner", detail.User)
	}
	if detail.Project == nil || detail.Project.ID != project.ID {
		t.Fatalf("populated project = %+v, want %s", detail.Project, project.ID.Hex())
	}
	if len(detail.Tags) != 2 {
		t.Fatalf("populated tags = %v, want 2", detail.Tags)
	}

	for _, tag := range []models.Tag{g1, g2} {
		if got := env.getTag(t, tag.ID); !hasID(got.Tasks, detail.ID) {
			t.Fatalf("tag %s tasks = %v, want to contain the new task", tag.Name, got.Tasks)
		}
	}
	if got := env.getProject(t, project.ID); !hasID(got.Tasks, detail.ID) {
		t.Fatalf("project tasks = %v, want to contain the new task", got.Tasks)
	}
}

func TestCreateTaskUnknownTag(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc: "x",
		Date: "2020-03-01",
		Tags: []primitive.ObjectID{primitive.NewObjectID()},
	})
	if apperrors.KindOf(err) != apperrors.BadRequest {
		t.Fatalf("CreateTask() kind = %v, want BadRequest", apperrors.KindOf(err))
	}
}

func TestUpdateTaskDeleteTags(t *testing.T) {
	env := newTestEnv(t)
	g1 := env.seedTag(t, env.owner, "G1")
	g2 := env.seedTag(t, env.owner, "G2")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc: "x",
		Date: "2020-03-01",
		Tags: []primitive.ObjectID{g1.ID, g2.ID},
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	updated, err := env.tasks.UpdateTask(context.Background(), env.owner, detail.ID, TaskUpdateInput{
		DeleteTags: []primitive.ObjectID{g1.ID},
	})
	if err != nil {
		t.Fatalf("UpdateTask() = %v", err)
	}
	if len(updated.Tags) != 1 || updated.Tags[0].ID != g2.ID {
		t.Fatalf("task tags after delete = %v, want only G2", updated.Tags)
	}
	if got := env.getTag(t, g1.ID); hasID(got.Tasks, detail.ID) {
		t.Fatalf("tag G1 still mirrors the task: %v", got.Tasks)
	}
	if got := env.getTag(t, g2.ID); !hasID(got.Tasks, detail.ID) {
		t.Fatalf("tag G2 lost its mirror: %v", got.Tasks)
	}
}

func TestUpdateTaskAddAndDeleteTogether(t *testing.T) {
	env := newTestEnv(t)
	g1 := env.seedTag(t, env.owner, "G1")
	g2 := env.seedTag(t, env.owner, "G2")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc: "x",
		Date: "2020-03-01",
		Tags: []primitive.ObjectID{g1.ID},
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	_, err = env.tasks.UpdateTask(context.Background(), env.owner, detail.ID, TaskUpdateInput{
		AddTags:    []primitive.ObjectID{g2.ID},
		DeleteTags: []primitive.ObjectID{g1.ID},
	})
	if apperrors.KindOf(err) != apperrors.BadRequest {
		t.Fatalf("kind = %v, want BadRequest", apperrors.KindOf(err))
	}
	if apperrors.MessageOf(err) != "It's not possible adding and deleting tags in the same request." {
		t.Fatalf("message = %q", apperrors.MessageOf(err))
	}
}

func TestUpdateTaskDuplicateAdd(t *testing.T) {
	env := newTestEnv(t)
	g1 := env.seedTag(t, env.owner, "G1")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc: "x",
		Date: "2020-03-01",
		Tags: []primitive.ObjectID{g1.ID},
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	_, err = env.tasks.UpdateTask(context.Background(), env.owner, detail.ID, TaskUpdateInput{
		AddTags: []primitive.ObjectID{g1.ID},
	})
	if apperrors.KindOf(err) != apperrors.BadRequest {
		t.Fatalf("kind = %v, want BadRequest", apperrors.KindOf(err))
	}
	if apperrors.MessageOf(err) != "Some tag you are trying to add is already assigned." {
		t.Fatalf("message = %q", apperrors.MessageOf(err))
	}
	// The rejection happens before any write: the mirror must still list the
	// task exactly once.
	got := env.getTag(t, g1.ID)
	count := 0
	for _, id := range got.Tasks {
		if id == detail.ID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("task appears %d times in tag mirror %v, want exactly once", count, got.Tasks)
	}
}

func TestUpdateTaskMoveProject(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.seedProject(t, env.owner, "P1")
	p2 := env.seedProject(t, env.owner, "P2")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc:    "x",
		Date:    "2020-03-01",
		Project: &p1.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	updated, err := env.tasks.UpdateTask(context.Background(), env.owner, detail.ID, TaskUpdateInput{
		Project: models.SomeID(p2.ID),
	})
	if err != nil {
		t.Fatalf("UpdateTask() = %v", err)
	}
	if updated.Project == nil || updated.Project.ID != p2.ID {
		t.Fatalf("task project = %+v, want P2", updated.Project)
	}
	if got := env.getProject(t, p1.ID); hasID(got.Tasks, detail.ID) {
		t.Fatalf("old project still mirrors the task: %v", got.Tasks)
	}
	if got := env.getProject(t, p2.ID); !hasID(got.Tasks, detail.ID) {
		t.Fatalf("new project does not mirror the task: %v", got.Tasks)
	}
}

func TestUpdateTaskDetachProject(t *testing.T) {
	env := newTestEnv(t)
	p1 := env.seedProject(t, env.owner, "P1")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc:    "x",
		Date:    "2020-03-01",
		Project: &p1.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	updated, err := env.tasks.UpdateTask(context.Background(), env.owner, detail.ID, TaskUpdateInput{
		Project: models.NullID(),
	})
	if err != nil {
		t.Fatalf("UpdateTask() = %v", err)
	}
	if updated.Project != nil {
		t.Fatalf("task project = %+v, want nil", updated.Project)
	}
	if got := env.getProject(t, p1.ID); hasID(got.Tasks, detail.ID) {
		t.Fatalf("project still mirrors detached task: %v", got.Tasks)
	}
}

func TestUpdateTaskForbiddenForOtherUser(t *testing.T) {
	env := newTestEnv(t)
	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc: "x",
		Date: "2020-03-01",
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	_, err = env.tasks.UpdateTask(context.Background(), env.other, detail.ID, TaskUpdateInput{
		Desc: strPtr("hijacked"),
	})
	if apperrors.KindOf(err) != apperrors.Forbidden {
		t.Fatalf("kind = %v, want Forbidden", apperrors.KindOf(err))
	}

	// Admins may edit anyone's task.
	updated, err := env.tasks.UpdateTask(context.Background(), env.admin, detail.ID, TaskUpdateInput{
		Desc: strPtr("edited by admin"),
	})
	if err != nil {
		t.Fatalf("admin UpdateTask() = %v", err)
	}
	if updated.Desc != "edited by admin" {
		t.Fatalf("desc = %q", updated.Desc)
	}
}

func TestDeleteTaskCleansMirrors(t *testing.T) {
	env := newTestEnv(t)
	g1 := env.seedTag(t, env.owner, "G1")
	project := env.seedProject(t, env.owner, "P1")

	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc:    "x",
		Date:    "2020-03-01",
		Tags:    []primitive.ObjectID{g1.ID},
		Project: &project.ID,
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	if err := env.tasks.DeleteTask(context.Background(), env.owner, detail.ID); err != nil {
		t.Fatalf("DeleteTask() = %v", err)
	}
	if got := env.getTag(t, g1.ID); hasID(got.Tasks, detail.ID) {
		t.Fatalf("tag still mirrors deleted task: %v", got.Tasks)
	}
	if got := env.getProject(t, project.ID); hasID(got.Tasks, detail.ID) {
		t.Fatalf("project still mirrors deleted task: %v", got.Tasks)
	}

	_, err = env.tasks.UpdateTask(context.Background(), env.owner, detail.ID, TaskUpdateInput{})
	if apperrors.KindOf(err) != apperrors.NotFound {
		t.Fatalf("updating deleted task kind = %v, want NotFound", apperrors.KindOf(err))
	}
}

func TestDeleteTaskForbidden(t *testing.T) {
	env := newTestEnv(t)
	detail, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{
		Desc: "x",
		Date: "2020-03-01",
	})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	if err := env.tasks.DeleteTask(context.Background(), env.other, detail.ID); apperrors.KindOf(err) != apperrors.Forbidden {
		t.Fatalf("kind = %v, want Forbidden", apperrors.KindOf(err))
	}
	if err := env.tasks.DeleteTask(context.Background(), env.admin, detail.ID); err != nil {
		t.Fatalf("admin DeleteTask() = %v", err)
	}
}

func TestGetTasksScoping(t *testing.T) {
	env := newTestEnv(t)
	mine, err := env.tasks.CreateTask(context.Background(), env.owner, TaskCreateInput{Desc: "mine", Date: "2020-03-02"})
	if err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}
	if _, err := env.tasks.CreateTask(context.Background(), env.other, TaskCreateInput{Desc: "theirs", Date: "2020-03-01"}); err != nil {
		t.Fatalf("CreateTask() = %v", err)
	}

	got, err := env.tasks.GetTasks(context.Background(), env.owner, "", nil)
	if err != nil {
		t.Fatalf("GetTasks() = %v", err)
	}
	if len(got) != 1 || got[0].ID != mine.ID {
		t.Fatalf("owner sees %d tasks, want only their own", len(got))
	}

	all, err := env.tasks.GetTasks(context.Background(), env.admin, "", nil)
	if err != nil {
		t.Fatalf("admin GetTasks() = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("admin sees %d tasks, want 2", len(all))
	}
	if all[0].Date != "2020-03-02" {
		t.Fatalf("tasks not sorted by date descending: first is %s", all[0].Date)
	}

	filtered, err := env.tasks.GetTasks(context.Background(), env.admin, "", &env.other.ID)
	if err != nil {
		t.Fatalf("admin filtered GetTasks() = %v", err)
	}
	if len(filtered) != 1 || filtered[0].Desc != "theirs" {
		t.Fatalf("admin user filter returned %+v", filtered)
	}

	byDate, err := env.tasks.GetTasks(context.Background(), env.owner, "2020-03-01", nil)
	if err != nil {
		t.Fatalf("date GetTasks() = %v", err)
	}
	if len(byDate) != 0 {
		t.Fatalf("owner date filter returned %d tasks, want 0", len(byDate))
	}
}
