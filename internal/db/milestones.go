package db

import (
	"database/sql"
	"fmt"
	"strings"

	"tracka/internal/models"
)

const milestoneCols = "id, project_id, title, due_date, status, notes, position, created_at"

func scanMilestone(s scanner) (*models.Milestone, error) {
	m := &models.Milestone{}
	err := s.Scan(&m.ID, &m.ProjectID, &m.Title, &m.DueDate, &m.Status, &m.Notes,
		&m.Position, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// CreateMilestone creates a new milestone at the end of its project's order.
func (db *DB) CreateMilestone(m models.NewMilestone) (*models.Milestone, error) {
	title := strings.TrimSpace(m.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: milestone title is required", ErrInvalid)
	}

	position := m.Position
	if position == nil {
		next, err := db.nextPosition("milestones", "project_id", m.ProjectID, "")
		if err != nil {
			return nil, err
		}
		position = &next
	}

	result, err := db.Exec(`
		INSERT INTO milestones (project_id, title, due_date, notes, position)
		VALUES (?, ?, ?, ?, ?)
	`, m.ProjectID, title, m.DueDate, m.Notes, position)
	if err != nil {
		return nil, fmt.Errorf("insert milestone: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetMilestone(id)
}

// GetMilestone retrieves a milestone by ID
func (db *DB) GetMilestone(id int64) (*models.Milestone, error) {
	milestone, err := scanMilestone(db.QueryRow(
		"SELECT "+milestoneCols+" FROM milestones WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get milestone: %w", err)
	}
	return milestone, nil
}

// ListMilestones returns a project's milestones in user order.
func (db *DB) ListMilestones(projectID int64) ([]models.Milestone, error) {
	rows, err := db.Query(
		"SELECT "+milestoneCols+" FROM milestones WHERE project_id = ? ORDER BY "+positionOrder,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		milestones = append(milestones, *m)
	}
	return milestones, rows.Err()
}

// UpdateMilestone applies a partial update. Fields absent from the patch are
// left untouched.
func (db *DB) UpdateMilestone(id int64, p models.MilestonePatch) error {
	var b patchBuilder

	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		if !p.Title.Valid || title == "" {
			return fmt.Errorf("%w: milestone title is required", ErrInvalid)
		}
		b.set("title", title)
	}
	if p.DueDate.Set {
		b.set("due_date", p.DueDate.Arg())
	}
	if p.Status.Set {
		switch p.Status.Value {
		case models.MilestonePending, models.MilestoneDone, models.MilestoneBlocked:
		default:
			return fmt.Errorf("%w: unknown milestone status %q", ErrInvalid, p.Status.Value)
		}
		b.set("status", p.Status.Value)
	}
	if p.Notes.Set {
		b.set("notes", p.Notes.Value)
	}

	return b.exec(db, "milestones", id)
}

// DeleteMilestone deletes a milestone
func (db *DB) DeleteMilestone(id int64) error {
	_, err := db.Exec("DELETE FROM milestones WHERE id = ?", id)
	return err
}

// ReorderMilestones swaps the positions of two milestones in the same
// project.
func (db *DB) ReorderMilestones(a, b int64) error {
	return db.swapPositions("milestones", a, b)
}
