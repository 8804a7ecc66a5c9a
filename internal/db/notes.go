package db

import (
	"database/sql"
	"fmt"

	"tracka/internal/models"
)

const noteCols = "id, project_id, content, created_at, updated_at"

func scanNote(s scanner) (*models.Note, error) {
	n := &models.Note{}
	err := s.Scan(&n.ID, &n.ProjectID, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// CreateNote creates a new note for a project.
func (db *DB) CreateNote(projectID int64, content string) (*models.Note, error) {
	result, err := db.Exec(
		"INSERT INTO notes (project_id, content) VALUES (?, ?)", projectID, content)
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetNote(id)
}

// GetNote retrieves a note by ID
func (db *DB) GetNote(id int64) (*models.Note, error) {
	note, err := scanNote(db.QueryRow("SELECT "+noteCols+" FROM notes WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return note, nil
}

// GetProjectNote returns the canonical note for a project: the most recently
// updated one. The model permits several rows; the convention is one.
// Returns ErrNotFound when the project has no note.
func (db *DB) GetProjectNote(projectID int64) (*models.Note, error) {
	note, err := scanNote(db.QueryRow(
		"SELECT "+noteCols+" FROM notes WHERE project_id = ? ORDER BY updated_at DESC, id DESC LIMIT 1",
		projectID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project note: %w", err)
	}
	return note, nil
}

// ListNotes returns every note of a project, most recently updated first.
func (db *DB) ListNotes(projectID int64) ([]models.Note, error) {
	rows, err := db.Query(
		"SELECT "+noteCols+" FROM notes WHERE project_id = ? ORDER BY updated_at DESC, id DESC",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

// UpdateNote replaces a note's content and touches its updated_at, which
// also makes it the project's canonical note.
func (db *DB) UpdateNote(id int64, content string) error {
	_, err := db.Exec(
		"UPDATE notes SET content = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", content, id)
	return err
}

// DeleteNote deletes a note
func (db *DB) DeleteNote(id int64) error {
	_, err := db.Exec("DELETE FROM notes WHERE id = ?", id)
	return err
}
