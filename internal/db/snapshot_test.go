package db

import (
	"errors"
	"testing"

	"tracka/internal/models"
)

func populatedDB(t *testing.T) *DB {
	t.Helper()
	database := openTestDB(t)

	root := mustProject(t, database, models.NewProject{Name: "root", Color: "#112233", Tags: "a,b"})
	sub := mustProject(t, database, models.NewProject{Name: "sub", ParentID: &root.ID})

	due := "2026-05-01"
	t1 := mustTask(t, database, models.NewTask{ProjectID: root.ID, Title: "t1", DueDate: &due})
	t2 := mustTask(t, database, models.NewTask{ProjectID: sub.ID, Title: "t2"})
	if err := database.UpdateTask(t2.ID, models.TaskPatch{Status: models.Some(models.TaskDone)}); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if err := database.SetDependencies(t1.ID, []int64{t2.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}

	if _, err := database.CreateLink(models.NewLink{ProjectID: root.ID, TaskID: &t1.ID, Target: "https://x"}); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if _, err := database.CreateLink(models.NewLink{ProjectID: root.ID, Target: "/srv/data", Kind: models.LinkFolder}); err != nil {
		t.Fatalf("CreateLink failed: %v", err)
	}
	if _, err := database.CreateMilestone(models.NewMilestone{ProjectID: root.ID, Title: "m1"}); err != nil {
		t.Fatalf("CreateMilestone failed: %v", err)
	}
	if _, err := database.CreateNote(root.ID, "remember"); err != nil {
		t.Fatalf("CreateNote failed: %v", err)
	}
	if _, err := database.CreatePaper(models.NewPaper{ProjectID: sub.ID, Title: "paper"}); err != nil {
		t.Fatalf("CreatePaper failed: %v", err)
	}
	if _, err := database.CreateExperiment(models.NewExperiment{ProjectID: sub.ID, Name: "exp"}); err != nil {
		t.Fatalf("CreateExperiment failed: %v", err)
	}

	return database
}

func TestExportImportRoundTrip(t *testing.T) {
	source := populatedDB(t)

	snap, err := source.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if snap.ID == "" || snap.Version != models.SnapshotVersion {
		t.Errorf("snapshot header = %q v%d", snap.ID, snap.Version)
	}

	target := openTestDB(t)
	if err := target.ImportAll(snap); err != nil {
		t.Fatalf("ImportAll failed: %v", err)
	}

	restored, err := target.ExportAll()
	if err != nil {
		t.Fatalf("re-export failed: %v", err)
	}

	if len(restored.Projects) != len(snap.Projects) ||
		len(restored.Tasks) != len(snap.Tasks) ||
		len(restored.Links) != len(snap.Links) ||
		len(restored.Milestones) != len(snap.Milestones) ||
		len(restored.Notes) != len(snap.Notes) ||
		len(restored.Papers) != len(snap.Papers) ||
		len(restored.Experiments) != len(snap.Experiments) ||
		len(restored.Dependencies) != len(snap.Dependencies) {
		t.Fatalf("collection sizes differ: %+v vs %+v", restored, snap)
	}

	for i, p := range snap.Projects {
		r := restored.Projects[i]
		if r.ID != p.ID || r.Name != p.Name || r.Color != p.Color || r.Tags != p.Tags {
			t.Errorf("project %d differs: %+v vs %+v", p.ID, r, p)
		}
		if (r.ParentID == nil) != (p.ParentID == nil) {
			t.Errorf("project %d parent differs", p.ID)
		}
		if !r.CreatedAt.Equal(p.CreatedAt) {
			t.Errorf("project %d created_at differs: %v vs %v", p.ID, r.CreatedAt, p.CreatedAt)
		}
	}

	for i, task := range snap.Tasks {
		r := restored.Tasks[i]
		if r.ID != task.ID || r.ProjectID != task.ProjectID || r.Title != task.Title || r.Status != task.Status {
			t.Errorf("task %d differs: %+v vs %+v", task.ID, r, task)
		}
		if (r.CompletedAt == nil) != (task.CompletedAt == nil) {
			t.Errorf("task %d completed_at differs", task.ID)
		}
		if (r.Position == nil) != (task.Position == nil) || (r.Position != nil && *r.Position != *task.Position) {
			t.Errorf("task %d position differs", task.ID)
		}
	}

	for i, d := range snap.Dependencies {
		r := restored.Dependencies[i]
		if r.TaskID != d.TaskID || r.BlockedByID != d.BlockedByID {
			t.Errorf("dependency differs: %+v vs %+v", r, d)
		}
	}
}

func TestImportIntoNonEmptyStoreCollides(t *testing.T) {
	source := populatedDB(t)

	snap, err := source.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}

	// Importing over itself must hit an identifier collision.
	if err := source.ImportAll(snap); err == nil {
		t.Error("double import did not fail")
	}
}

func TestImportRejectsNewerVersion(t *testing.T) {
	database := openTestDB(t)

	err := database.ImportAll(&models.Snapshot{Version: models.SnapshotVersion + 1})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}

	if err := database.ImportAll(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("nil snapshot err = %v, want ErrInvalid", err)
	}
}
