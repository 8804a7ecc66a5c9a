package db

import (
	"fmt"
	"log"
	"strings"

	"tracka/internal/models"
)

// column is a structural migration step: a column added to a table after its
// original shape. Steps are applied in order; later steps (backfills) assume
// earlier ones have run.
type column struct {
	table string
	name  string
	def   string
}

// addedColumns lists every column introduced after the tables first shipped.
// Re-applying a step is a no-op: "duplicate column name" is treated as
// success.
var addedColumns = []column{
	{"projects", "path", "TEXT NOT NULL DEFAULT ''"},
	{"projects", "tags", "TEXT NOT NULL DEFAULT ''"},
	{"projects", "tint", "INTEGER"},
	{"projects", "archived", "INTEGER NOT NULL DEFAULT 0"},
	{"projects", "parent_id", "INTEGER REFERENCES projects(id) ON DELETE CASCADE"},
	{"projects", "position", "INTEGER"},
	{"tasks", "start_time", "TEXT"},
	{"tasks", "end_time", "TEXT"},
	{"tasks", "tone", "INTEGER"},
	{"tasks", "effort_min", "INTEGER"},
	{"tasks", "kind", "TEXT"},
	{"tasks", "remind_at", "DATETIME"},
	{"tasks", "recurrence", "TEXT"},
	{"tasks", "position", "INTEGER"},
	{"links", "task_id", "INTEGER REFERENCES tasks(id) ON DELETE CASCADE"},
	{"links", "notes", "TEXT NOT NULL DEFAULT ''"},
	{"links", "position", "INTEGER"},
	{"milestones", "position", "INTEGER"},
	{"papers", "position", "INTEGER"},
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_projects_parent ON projects(parent_id)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status)",
	"CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date)",
	"CREATE INDEX IF NOT EXISTS idx_links_project ON links(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_links_task ON links(task_id)",
	"CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_papers_project ON papers(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_experiments_project ON experiments(project_id)",
	"CREATE INDEX IF NOT EXISTS idx_deps_blocked_by ON task_dependencies(blocked_by_id)",
}

// Migrate brings the database to the current schema. It is safe to run on
// every startup against any prior shape: tables are created at the latest
// definition if missing, added columns and indexes are applied with repeat
// application tolerated, and null positions are backfilled per scope.
//
// Only a failure to create the base tables is fatal; optional steps log and
// continue, since a partially migrated but queryable store beats a crash
// loop. When seed is true and the store holds no projects at all, a small
// example project is inserted; seeding failures are swallowed.
func (db *DB) Migrate(seed bool) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	for _, c := range addedColumns {
		stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.name, c.def)
		if _, err := db.Exec(stmt); err != nil && !isDuplicateColumn(err) {
			log.Printf("migrate: add %s.%s: %v", c.table, c.name, err)
		}
	}

	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			log.Printf("migrate: %v", err)
		}
	}

	for _, b := range []struct {
		table, scopeCol, where string
	}{
		{"projects", "", ""},
		{"tasks", "project_id", ""},
		{"links", "project_id", "task_id IS NULL"},
		{"milestones", "project_id", ""},
		{"papers", "project_id", ""},
	} {
		if err := db.backfillPositions(b.table, b.scopeCol, b.where); err != nil {
			log.Printf("migrate: backfill %s: %v", b.table, err)
		}
	}

	if seed {
		db.seedExamples()
	}

	return nil
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(err.Error(), "duplicate column name")
}

// backfillPositions assigns the next position in sequence, ordered by
// (created_at, id), to every row whose position is null. scopeCol names the
// parent column the sequence is scoped by; empty means the whole table is one
// scope. where narrows the scope further (the unassigned-link bucket).
func (db *DB) backfillPositions(table, scopeCol, where string) error {
	cond := "position IS NULL"
	if where != "" {
		cond += " AND " + where
	}

	sel := "SELECT id FROM " + table + " WHERE " + cond + " ORDER BY created_at, id"
	if scopeCol != "" {
		sel = "SELECT id, " + scopeCol + " FROM " + table + " WHERE " + cond + " ORDER BY created_at, id"
	}

	rows, err := db.Query(sel)
	if err != nil {
		return err
	}
	defer rows.Close()

	type pending struct {
		id    int64
		scope int64
	}
	var todo []pending
	for rows.Next() {
		var p pending
		if scopeCol != "" {
			if err := rows.Scan(&p.id, &p.scope); err != nil {
				return err
			}
		} else {
			if err := rows.Scan(&p.id); err != nil {
				return err
			}
		}
		todo = append(todo, p)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	next := make(map[int64]int64)
	for _, p := range todo {
		if _, ok := next[p.scope]; !ok {
			maxQ := "SELECT COALESCE(MAX(position), 0) FROM " + table
			args := []any{}
			if scopeCol != "" {
				maxQ += " WHERE " + scopeCol + " = ?"
				args = append(args, p.scope)
				if where != "" {
					maxQ += " AND " + where
				}
			} else if where != "" {
				maxQ += " WHERE " + where
			}
			var max int64
			if err := db.QueryRow(maxQ, args...).Scan(&max); err != nil {
				return err
			}
			next[p.scope] = max + 1
		}

		if _, err := db.Exec("UPDATE "+table+" SET position = ? WHERE id = ?", next[p.scope], p.id); err != nil {
			return err
		}
		next[p.scope]++
	}

	return nil
}

// seedExamples inserts one example project with two tasks and a link, only
// when the store holds no projects at all. Failures are logged and swallowed;
// a store without examples is still a working store.
func (db *DB) seedExamples() {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count); err != nil || count > 0 {
		return
	}

	project, err := db.CreateProject(models.NewProject{
		Name:        "Getting Started",
		Description: "A sample project to poke around in",
	})
	if err != nil {
		log.Printf("seed: %v", err)
		return
	}

	for _, title := range []string{"Create your first project", "Add a few tasks"} {
		if _, err := db.CreateTask(models.NewTask{ProjectID: project.ID, Title: title}); err != nil {
			log.Printf("seed: %v", err)
			return
		}
	}

	_, err = db.CreateLink(models.NewLink{
		ProjectID: project.ID,
		Label:     "tracka",
		Target:    "https://github.com/tracka/tracka",
		Kind:      models.LinkURL,
	})
	if err != nil {
		log.Printf("seed: %v", err)
	}
}
