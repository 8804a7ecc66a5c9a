package db

import (
	"path/filepath"
	"testing"

	"tracka/internal/models"
)

// openTestDB opens a migrated, unseeded database in a temp dir.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := database.Migrate(false); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return database
}

func mustProject(t *testing.T, database *DB, p models.NewProject) *models.Project {
	t.Helper()
	project, err := database.CreateProject(p)
	if err != nil {
		t.Fatalf("CreateProject(%q) failed: %v", p.Name, err)
	}
	return project
}

func mustTask(t *testing.T, database *DB, nt models.NewTask) *models.Task {
	t.Helper()
	task, err := database.CreateTask(nt)
	if err != nil {
		t.Fatalf("CreateTask(%q) failed: %v", nt.Title, err)
	}
	return task
}

func TestOpenCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	database, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(false); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
}

func TestSettings(t *testing.T) {
	database := openTestDB(t)

	v, err := database.GetSetting("last_project_id")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if v != "" {
		t.Errorf("unset setting = %q, want empty", v)
	}

	if err := database.SetSetting("last_project_id", "7"); err != nil {
		t.Fatalf("SetSetting failed: %v", err)
	}
	if err := database.SetSetting("last_project_id", "9"); err != nil {
		t.Fatalf("SetSetting overwrite failed: %v", err)
	}

	v, err = database.GetSetting("last_project_id")
	if err != nil {
		t.Fatalf("GetSetting failed: %v", err)
	}
	if v != "9" {
		t.Errorf("setting = %q, want 9", v)
	}
}
