package db

import (
	"testing"

	"tracka/internal/models"
)

func depsFixture(t *testing.T) (*DB, *models.Task, *models.Task, *models.Task) {
	t.Helper()
	database := openTestDB(t)
	project := mustProject(t, database, models.NewProject{Name: "p"})
	a := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "a"})
	b := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "b"})
	c := mustTask(t, database, models.NewTask{ProjectID: project.ID, Title: "c"})
	return database, a, b, c
}

func TestSetDependenciesDropsSelfEdge(t *testing.T) {
	database, a, _, _ := depsFixture(t)

	if err := database.SetDependencies(a.ID, []int64{a.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}

	deps, err := database.Dependencies(a.ID)
	if err != nil {
		t.Fatalf("Dependencies failed: %v", err)
	}
	if len(deps) != 0 {
		t.Errorf("self-edge stored: %v", deps)
	}
}

func TestSetDependenciesReplacesEdgeSet(t *testing.T) {
	database, a, b, c := depsFixture(t)

	if err := database.SetDependencies(a.ID, []int64{b.ID, c.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}
	if err := database.SetDependencies(a.ID, []int64{c.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}

	deps, err := database.Dependencies(a.ID)
	if err != nil {
		t.Fatalf("Dependencies failed: %v", err)
	}
	if len(deps) != 1 || deps[0] != c.ID {
		t.Errorf("deps = %v, want [%d]", deps, c.ID)
	}
}

func TestSetDependenciesIgnoresDuplicates(t *testing.T) {
	database, a, b, _ := depsFixture(t)

	if err := database.SetDependencies(a.ID, []int64{b.ID, b.ID, b.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}

	deps, err := database.Dependencies(a.ID)
	if err != nil {
		t.Fatalf("Dependencies failed: %v", err)
	}
	if len(deps) != 1 {
		t.Errorf("deps = %v, want a single edge", deps)
	}
}

func TestDependentsIsReverseLookup(t *testing.T) {
	database, a, b, c := depsFixture(t)

	if err := database.SetDependencies(a.ID, []int64{c.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}
	if err := database.SetDependencies(b.ID, []int64{c.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}

	blocked, err := database.Dependents(c.ID)
	if err != nil {
		t.Fatalf("Dependents failed: %v", err)
	}
	if len(blocked) != 2 || blocked[0] != a.ID || blocked[1] != b.ID {
		t.Errorf("dependents = %v, want [%d %d]", blocked, a.ID, b.ID)
	}
}

func TestDeleteTaskCascadesEdgesBothWays(t *testing.T) {
	database, a, b, c := depsFixture(t)

	if err := database.SetDependencies(a.ID, []int64{b.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}
	if err := database.SetDependencies(b.ID, []int64{c.ID}); err != nil {
		t.Fatalf("SetDependencies failed: %v", err)
	}

	if err := database.DeleteTask(b.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	var count int
	if err := database.QueryRow("SELECT COUNT(*) FROM task_dependencies").Scan(&count); err != nil {
		t.Fatalf("count edges: %v", err)
	}
	if count != 0 {
		t.Errorf("edges after cascade = %d, want 0", count)
	}
}
