package db

import (
	"database/sql"
	"fmt"
	"strings"

	"tracka/internal/models"
)

const linkCols = "id, project_id, task_id, label, target, kind, notes, position, created_at"

func scanLink(s scanner) (*models.Link, error) {
	l := &models.Link{}
	err := s.Scan(&l.ID, &l.ProjectID, &l.TaskID, &l.Label, &l.Target, &l.Kind,
		&l.Notes, &l.Position, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// CreateLink creates a new link. The position is always computed by the
// store: links in a project's unassigned bucket are appended to that order,
// links attached to a task carry no position at all.
func (db *DB) CreateLink(l models.NewLink) (*models.Link, error) {
	target := strings.TrimSpace(l.Target)
	if target == "" {
		return nil, fmt.Errorf("%w: link target is required", ErrInvalid)
	}

	kind := l.Kind
	switch kind {
	case "":
		kind = models.LinkURL
	case models.LinkFile, models.LinkFolder, models.LinkURL:
	default:
		return nil, fmt.Errorf("%w: unknown link kind %q", ErrInvalid, kind)
	}

	var position *int64
	if l.TaskID == nil {
		next, err := db.nextPosition("links", "project_id", l.ProjectID, "task_id IS NULL")
		if err != nil {
			return nil, err
		}
		position = &next
	}

	result, err := db.Exec(`
		INSERT INTO links (project_id, task_id, label, target, kind, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ProjectID, l.TaskID, l.Label, target, kind, l.Notes, position)
	if err != nil {
		return nil, fmt.Errorf("insert link: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetLink(id)
}

// GetLink retrieves a link by ID
func (db *DB) GetLink(id int64) (*models.Link, error) {
	link, err := scanLink(db.QueryRow("SELECT "+linkCols+" FROM links WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link: %w", err)
	}
	return link, nil
}

// ListProjectLinks returns a project's unassigned links in user order.
func (db *DB) ListProjectLinks(projectID int64, search string) ([]models.Link, error) {
	query := "SELECT " + linkCols + " FROM links WHERE project_id = ? AND task_id IS NULL"
	args := []any{projectID}
	if search != "" {
		query += " AND (label LIKE ? OR target LIKE ? OR notes LIKE ?)"
		pattern := "%" + search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY " + positionOrder
	return db.queryLinks(query, args...)
}

// ListTaskLinks returns the links attached to a task, oldest first.
func (db *DB) ListTaskLinks(taskID int64) ([]models.Link, error) {
	return db.queryLinks(
		"SELECT "+linkCols+" FROM links WHERE task_id = ? ORDER BY created_at, id", taskID)
}

func (db *DB) queryLinks(query string, args ...any) ([]models.Link, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var links []models.Link
	for rows.Next() {
		l, err := scanLink(rows)
		if err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		links = append(links, *l)
	}
	return links, rows.Err()
}

// UpdateLink applies a partial update. Fields absent from the patch are left
// untouched.
func (db *DB) UpdateLink(id int64, p models.LinkPatch) error {
	var b patchBuilder

	if p.Label.Set {
		b.set("label", p.Label.Value)
	}
	if p.Target.Set {
		target := strings.TrimSpace(p.Target.Value)
		if !p.Target.Valid || target == "" {
			return fmt.Errorf("%w: link target is required", ErrInvalid)
		}
		b.set("target", target)
	}
	if p.Kind.Set {
		switch p.Kind.Value {
		case models.LinkFile, models.LinkFolder, models.LinkURL:
		default:
			return fmt.Errorf("%w: unknown link kind %q", ErrInvalid, p.Kind.Value)
		}
		b.set("kind", p.Kind.Value)
	}
	if p.Notes.Set {
		b.set("notes", p.Notes.Value)
	}
	if p.TaskID.Set {
		link, err := db.GetLink(id)
		if err != nil {
			return err
		}
		if p.TaskID.Valid {
			task, err := db.GetTask(p.TaskID.Value)
			if err != nil {
				return err
			}
			if task.ProjectID != link.ProjectID {
				return fmt.Errorf("%w: task %d belongs to another project", ErrInvalid, task.ID)
			}
			b.set("task_id", p.TaskID.Value)
			// Leaving the unassigned bucket gives up the slot in its order
			if link.TaskID == nil {
				b.set("position", nil)
			}
		} else {
			b.set("task_id", nil)
			// Re-entering the bucket appends, never reuses a stale position
			if link.TaskID != nil {
				next, err := db.nextPosition("links", "project_id", link.ProjectID, "task_id IS NULL")
				if err != nil {
					return err
				}
				b.set("position", next)
			}
		}
	}

	return b.exec(db, "links", id)
}

// DeleteLink deletes a link
func (db *DB) DeleteLink(id int64) error {
	_, err := db.Exec("DELETE FROM links WHERE id = ?", id)
	return err
}

// ReorderLinks swaps the positions of two links in the same unassigned
// bucket.
func (db *DB) ReorderLinks(a, b int64) error {
	return db.swapPositions("links", a, b)
}
