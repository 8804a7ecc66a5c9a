package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"tracka/internal/models"
)

// ExportAll dumps every collection, identifiers and timestamps included,
// into a neutral snapshot value. Writing the snapshot anywhere is the
// caller's concern.
func (db *DB) ExportAll() (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Version:    models.SnapshotVersion,
		ID:         uuid.New().String(),
		ExportedAt: time.Now().UTC(),
	}

	rows, err := db.Query("SELECT " + projectCols + " FROM projects ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export projects: %w", err)
	}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("export projects: %w", err)
		}
		snap.Projects = append(snap.Projects, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT " + taskCols + " FROM tasks ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export tasks: %w", err)
	}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("export tasks: %w", err)
		}
		snap.Tasks = append(snap.Tasks, *t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	snap.Links, err = db.queryLinks("SELECT " + linkCols + " FROM links ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export links: %w", err)
	}

	rows, err = db.Query("SELECT " + milestoneCols + " FROM milestones ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export milestones: %w", err)
	}
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("export milestones: %w", err)
		}
		snap.Milestones = append(snap.Milestones, *m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT " + noteCols + " FROM notes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export notes: %w", err)
	}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("export notes: %w", err)
		}
		snap.Notes = append(snap.Notes, *n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT " + paperCols + " FROM papers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export papers: %w", err)
	}
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("export papers: %w", err)
		}
		snap.Papers = append(snap.Papers, *p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT " + experimentCols + " FROM experiments ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("export experiments: %w", err)
	}
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("export experiments: %w", err)
		}
		snap.Experiments = append(snap.Experiments, *e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = db.Query("SELECT task_id, blocked_by_id, created_at FROM task_dependencies ORDER BY task_id, blocked_by_id")
	if err != nil {
		return nil, fmt.Errorf("export dependencies: %w", err)
	}
	for rows.Next() {
		var d models.Dependency
		if err := rows.Scan(&d.TaskID, &d.BlockedByID, &d.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("export dependencies: %w", err)
		}
		snap.Dependencies = append(snap.Dependencies, d)
	}
	rows.Close()
	return snap, rows.Err()
}

// ImportAll inserts every row of a snapshot, original identifiers and
// foreign keys preserved. No merging or de-duplication happens: importing
// into a non-empty store fails on the first identifier collision, and the
// caller decides when that is acceptable. Foreign key checks are deferred to
// commit so row order inside the snapshot does not matter.
func (db *DB) ImportAll(snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: nil snapshot", ErrInvalid)
	}
	if snap.Version > models.SnapshotVersion {
		return fmt.Errorf("%w: snapshot version %d is newer than supported %d",
			ErrInvalid, snap.Version, models.SnapshotVersion)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("defer foreign keys: %w", err)
	}

	for _, p := range snap.Projects {
		_, err := tx.Exec(`
			INSERT INTO projects (id, name, description, path, tags, color, tint, archived, parent_id, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.Name, p.Description, p.Path, p.Tags, p.Color, p.Tint, p.Archived, p.ParentID, p.Position, p.CreatedAt, p.UpdatedAt)
		if err != nil {
			return fmt.Errorf("import project %d: %w", p.ID, err)
		}
	}

	for _, t := range snap.Tasks {
		_, err := tx.Exec(`
			INSERT INTO tasks (id, project_id, title, notes, priority, due_date, start_time, end_time, tone, status, completed_at, effort_min, kind, remind_at, recurrence, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, t.ID, t.ProjectID, t.Title, t.Notes, t.Priority, t.DueDate, t.StartTime, t.EndTime, t.Tone,
			t.Status, t.CompletedAt, t.EffortMin, t.Kind, t.RemindAt, t.Recurrence, t.Position, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return fmt.Errorf("import task %d: %w", t.ID, err)
		}
	}

	for _, l := range snap.Links {
		_, err := tx.Exec(`
			INSERT INTO links (id, project_id, task_id, label, target, kind, notes, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, l.ProjectID, l.TaskID, l.Label, l.Target, l.Kind, l.Notes, l.Position, l.CreatedAt)
		if err != nil {
			return fmt.Errorf("import link %d: %w", l.ID, err)
		}
	}

	for _, m := range snap.Milestones {
		_, err := tx.Exec(`
			INSERT INTO milestones (id, project_id, title, due_date, status, notes, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, m.ID, m.ProjectID, m.Title, m.DueDate, m.Status, m.Notes, m.Position, m.CreatedAt)
		if err != nil {
			return fmt.Errorf("import milestone %d: %w", m.ID, err)
		}
	}

	for _, n := range snap.Notes {
		_, err := tx.Exec(`
			INSERT INTO notes (id, project_id, content, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, n.ID, n.ProjectID, n.Content, n.CreatedAt, n.UpdatedAt)
		if err != nil {
			return fmt.Errorf("import note %d: %w", n.ID, err)
		}
	}

	for _, p := range snap.Papers {
		_, err := tx.Exec(`
			INSERT INTO papers (id, project_id, title, authors, year, external_id, url, status, notes, position, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, p.ID, p.ProjectID, p.Title, p.Authors, p.Year, p.ExternalID, p.URL, p.Status, p.Notes, p.Position, p.CreatedAt)
		if err != nil {
			return fmt.Errorf("import paper %d: %w", p.ID, err)
		}
	}

	for _, e := range snap.Experiments {
		_, err := tx.Exec(`
			INSERT INTO experiments (id, project_id, name, protocol, variables, outcomes, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, e.ID, e.ProjectID, e.Name, e.Protocol, e.Variables, e.Outcomes, e.Status, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("import experiment %d: %w", e.ID, err)
		}
	}

	for _, d := range snap.Dependencies {
		_, err := tx.Exec(`
			INSERT INTO task_dependencies (task_id, blocked_by_id, created_at)
			VALUES (?, ?, ?)
		`, d.TaskID, d.BlockedByID, d.CreatedAt)
		if err != nil {
			return fmt.Errorf("import dependency %d->%d: %w", d.TaskID, d.BlockedByID, err)
		}
	}

	return tx.Commit()
}
