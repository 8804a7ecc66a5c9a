package db

import (
	"errors"
	"testing"

	"tracka/internal/models"
)

func TestTaskPositionsScopedPerProject(t *testing.T) {
	database := openTestDB(t)
	p1 := mustProject(t, database, models.NewProject{Name: "p1"})
	p2 := mustProject(t, database, models.NewProject{Name: "p2"})

	mustTask(t, database, models.NewTask{ProjectID: p1.ID, Title: "a"})
	mustTask(t, database, models.NewTask{ProjectID: p1.ID, Title: "b"})
	first := mustTask(t, database, models.NewTask{ProjectID: p2.ID, Title: "x"})

	// Each project's sequence starts at 1 independently.
	if first.Position == nil || *first.Position != 1 {
		t.Errorf("first task in fresh scope position = %v, want 1", first.Position)
	}

	tasks, err := database.ListTasks(p1.ID, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	for i, task := range tasks {
		if task.Position == nil || *task.Position != int64(i+1) {
			t.Errorf("task %q position = %v, want %d", task.Title, task.Position, i+1)
		}
	}
}

func TestCreateTaskDefaults(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t"})
	if task.Priority != models.DefaultPriority {
		t.Errorf("priority = %d, want %d", task.Priority, models.DefaultPriority)
	}
	if task.Status != models.TaskOpen {
		t.Errorf("status = %q, want %q", task.Status, models.TaskOpen)
	}
	if task.CompletedAt != nil {
		t.Errorf("completed_at = %v, want nil", task.CompletedAt)
	}
}

func TestCreateTaskRequiresTitleAndProject(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	if _, err := database.CreateTask(models.NewTask{ProjectID: project.ID, Title: ""}); !errors.Is(err, ErrInvalid) {
		t.Errorf("empty title err = %v, want ErrInvalid", err)
	}

	// A dangling project reference surfaces as a persistence failure.
	if _, err := database.CreateTask(models.NewTask{ProjectID: 9999, Title: "t"}); err == nil {
		t.Error("dangling project reference did not fail")
	}
}

func TestUpdateTaskStatusDrivesCompletedAt(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t"})

	if err := database.UpdateTask(task.ID, models.TaskPatch{Status: models.Some(models.TaskDone)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ := database.GetTask(task.ID)
	if got.Status != models.TaskDone || got.CompletedAt == nil {
		t.Fatalf("after done: status=%q completed_at=%v", got.Status, got.CompletedAt)
	}
	doneAt := *got.CompletedAt

	// An update not touching status leaves the timestamp alone.
	if err := database.UpdateTask(task.ID, models.TaskPatch{Notes: models.Some("more notes")}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ = database.GetTask(task.ID)
	if got.CompletedAt == nil || !got.CompletedAt.Equal(doneAt) {
		t.Errorf("completed_at moved on unrelated update: %v != %v", got.CompletedAt, doneAt)
	}

	// Reopening clears it.
	if err := database.UpdateTask(task.ID, models.TaskPatch{Status: models.Some(models.TaskOpen)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ = database.GetTask(task.ID)
	if got.Status != models.TaskOpen || got.CompletedAt != nil {
		t.Errorf("after reopen: status=%q completed_at=%v", got.Status, got.CompletedAt)
	}
}

func TestUpdateTaskRejectsUnknownStatus(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t"})

	err := database.UpdateTask(task.ID, models.TaskPatch{Status: models.Some("paused")})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestUpdateTaskOmittedVersusCleared(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	due := "2030-06-15"
	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t", DueDate: &due})

	// Patch that omits due_date: it must survive.
	if err := database.UpdateTask(task.ID, models.TaskPatch{Priority: models.Some(4)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ := database.GetTask(task.ID)
	if got.DueDate == nil || *got.DueDate != due {
		t.Errorf("omitted due_date changed: %v", got.DueDate)
	}
	if got.Priority != 4 {
		t.Errorf("priority = %d, want 4", got.Priority)
	}

	// Patch that explicitly clears it.
	if err := database.UpdateTask(task.ID, models.TaskPatch{DueDate: models.Null[string]()}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ = database.GetTask(task.ID)
	if got.DueDate != nil {
		t.Errorf("cleared due_date still present: %v", got.DueDate)
	}
}

func TestUpdateTaskEmptyPatchIsNoWrite(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	task := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "t"})

	// Pin updated_at to a sentinel so any write would be visible.
	if _, err := database.Exec(
		"UPDATE tasks SET updated_at = '2020-01-01 00:00:00' WHERE id = ?", task.ID); err != nil {
		t.Fatalf("pin updated_at: %v", err)
	}

	if err := database.UpdateTask(task.ID, models.TaskPatch{}); err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	got, _ := database.GetTask(task.ID)
	if got.UpdatedAt.Year() != 2020 {
		t.Errorf("empty patch touched updated_at: %v", got.UpdatedAt)
	}

	// A real patch does touch it.
	if err := database.UpdateTask(task.ID, models.TaskPatch{Notes: models.Some("n")}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	got, _ = database.GetTask(task.ID)
	if got.UpdatedAt.Year() == 2020 {
		t.Errorf("non-empty patch left updated_at at sentinel")
	}
}

func TestReorderTasksSwapsOnlyTheTwo(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	a := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "a"})
	b := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "b"})
	c := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "c"})

	if err := database.ReorderTasks(b.ID, c.ID); err != nil {
		t.Fatalf("ReorderTasks failed: %v", err)
	}

	tasks, err := database.ListTasks(project.ID, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	var order []string
	for _, task := range tasks {
		order = append(order, task.Title)
	}
	want := []string{"a", "c", "b"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
	if got, _ := database.GetTask(a.ID); *got.Position != *a.Position {
		t.Errorf("bystander position changed: %d", *got.Position)
	}
}

func TestTaskSearchAndFilters(t *testing.T) {
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})

	mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "Write intro", Notes: "draft chapter"})
	done := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "Setup repo"})
	if err := database.UpdateTask(done.ID, models.TaskPatch{Status: models.Some(models.TaskDone)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	tasks, err := database.ListTasks(project.ID, TaskFilter{Search: "chapter"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Write intro" {
		t.Errorf("search = %v, want [Write intro]", tasks)
	}

	tasks, err = database.ListTasks(project.ID, TaskFilter{Status: models.TaskOpen})
	if err != nil {
		t.Fatalf("status filter failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Write intro" {
		t.Errorf("open filter = %v, want [Write intro]", tasks)
	}
}
