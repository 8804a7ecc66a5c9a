package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tracka/internal/models"
)

const taskCols = "id, project_id, title, notes, priority, due_date, start_time, end_time, tone, " +
	"status, completed_at, effort_min, kind, remind_at, recurrence, position, created_at, updated_at"

func scanTask(s scanner) (*models.Task, error) {
	t := &models.Task{}
	err := s.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Notes, &t.Priority, &t.DueDate,
		&t.StartTime, &t.EndTime, &t.Tone, &t.Status, &t.CompletedAt, &t.EffortMin,
		&t.Kind, &t.RemindAt, &t.Recurrence, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// CreateTask creates a new task at the end of its project's order. Priority
// defaults to the mid value when the caller does not supply one.
func (db *DB) CreateTask(t models.NewTask) (*models.Task, error) {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: task title is required", ErrInvalid)
	}

	priority := models.DefaultPriority
	if t.Priority != nil {
		priority = *t.Priority
	}

	position := t.Position
	if position == nil {
		next, err := db.nextPosition("tasks", "project_id", t.ProjectID, "")
		if err != nil {
			return nil, err
		}
		position = &next
	}

	result, err := db.Exec(`
		INSERT INTO tasks (project_id, title, notes, priority, due_date, start_time, end_time, kind, effort_min, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ProjectID, title, t.Notes, priority, t.DueDate, t.StartTime, t.EndTime, t.Kind, t.EffortMin, position)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetTask(id)
}

// GetTask retrieves a task by ID
func (db *DB) GetTask(id int64) (*models.Task, error) {
	task, err := scanTask(db.QueryRow("SELECT "+taskCols+" FROM tasks WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// TaskFilter narrows ListTasks; zero values mean "no filter".
type TaskFilter struct {
	Status string
	Kind   string
	Search string
}

// ListTasks returns a project's tasks in user order: position ascending,
// rows without a position last by age.
func (db *DB) ListTasks(projectID int64, f TaskFilter) ([]models.Task, error) {
	query := "SELECT " + taskCols + " FROM tasks WHERE project_id = ?"
	args := []any{projectID}

	if f.Status != "" {
		query += " AND status = ?"
		args = append(args, f.Status)
	}
	if f.Kind != "" {
		query += " AND kind = ?"
		args = append(args, f.Kind)
	}
	if f.Search != "" {
		query += " AND (title LIKE ? OR notes LIKE ?)"
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY " + positionOrder

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

// UpdateTask applies a partial update. Fields absent from the patch are left
// untouched; a present-but-null field is cleared. A status transition sets
// or clears the completion timestamp, and any non-empty patch touches
// updated_at. An empty patch performs no write at all.
func (db *DB) UpdateTask(id int64, p models.TaskPatch) error {
	var b patchBuilder

	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		if !p.Title.Valid || title == "" {
			return fmt.Errorf("%w: task title is required", ErrInvalid)
		}
		b.set("title", title)
	}
	if p.Notes.Set {
		b.set("notes", p.Notes.Value)
	}
	if p.Priority.Set {
		b.set("priority", p.Priority.Value)
	}
	if p.DueDate.Set {
		b.set("due_date", p.DueDate.Arg())
	}
	if p.StartTime.Set {
		b.set("start_time", p.StartTime.Arg())
	}
	if p.EndTime.Set {
		b.set("end_time", p.EndTime.Arg())
	}
	if p.Tone.Set {
		b.set("tone", p.Tone.Arg())
	}
	if p.EffortMin.Set {
		b.set("effort_min", p.EffortMin.Arg())
	}
	if p.Kind.Set {
		b.set("kind", p.Kind.Arg())
	}
	if p.RemindAt.Set {
		b.set("remind_at", p.RemindAt.Arg())
	}
	if p.Recurrence.Set {
		b.set("recurrence", p.Recurrence.Arg())
	}
	if p.Position.Set {
		b.set("position", p.Position.Arg())
	}

	if p.Status.Set {
		if !p.Status.Valid || (p.Status.Value != models.TaskOpen && p.Status.Value != models.TaskDone) {
			return fmt.Errorf("%w: status must be %q or %q", ErrInvalid, models.TaskOpen, models.TaskDone)
		}

		var current string
		err := db.QueryRow("SELECT status FROM tasks WHERE id = ?", id).Scan(&current)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get task status: %w", err)
		}

		if current != p.Status.Value {
			b.set("status", p.Status.Value)
			if p.Status.Value == models.TaskDone {
				b.set("completed_at", time.Now().UTC())
			} else {
				b.set("completed_at", nil)
			}
		}
	}

	if b.empty() {
		return nil
	}
	b.sets = append(b.sets, "updated_at = CURRENT_TIMESTAMP")

	return b.exec(db, "tasks", id)
}

// DeleteTask deletes a task; its links and dependency edges in both
// directions go with it via the cascade constraints.
func (db *DB) DeleteTask(id int64) error {
	_, err := db.Exec("DELETE FROM tasks WHERE id = ?", id)
	return err
}

// ReorderTasks swaps the positions of two tasks in the same project.
func (db *DB) ReorderTasks(a, b int64) error {
	return db.swapPositions("tasks", a, b)
}
