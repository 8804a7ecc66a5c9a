package db

import (
	"database/sql"
	"fmt"
	"strings"

	"tracka/internal/models"
)

const paperCols = "id, project_id, title, authors, year, external_id, url, status, notes, position, created_at"

func scanPaper(s scanner) (*models.Paper, error) {
	p := &models.Paper{}
	err := s.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Authors, &p.Year, &p.ExternalID,
		&p.URL, &p.Status, &p.Notes, &p.Position, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreatePaper adds a paper to a project's reading list, at the end of its
// order.
func (db *DB) CreatePaper(p models.NewPaper) (*models.Paper, error) {
	title := strings.TrimSpace(p.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: paper title is required", ErrInvalid)
	}

	position := p.Position
	if position == nil {
		next, err := db.nextPosition("papers", "project_id", p.ProjectID, "")
		if err != nil {
			return nil, err
		}
		position = &next
	}

	result, err := db.Exec(`
		INSERT INTO papers (project_id, title, authors, year, external_id, url, notes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ProjectID, title, p.Authors, p.Year, p.ExternalID, p.URL, p.Notes, position)
	if err != nil {
		return nil, fmt.Errorf("insert paper: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetPaper(id)
}

// GetPaper retrieves a paper by ID
func (db *DB) GetPaper(id int64) (*models.Paper, error) {
	paper, err := scanPaper(db.QueryRow("SELECT "+paperCols+" FROM papers WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get paper: %w", err)
	}
	return paper, nil
}

// ListPapers returns a project's papers in user order.
func (db *DB) ListPapers(projectID int64) ([]models.Paper, error) {
	rows, err := db.Query(
		"SELECT "+paperCols+" FROM papers WHERE project_id = ? ORDER BY "+positionOrder,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list papers: %w", err)
	}
	defer rows.Close()

	var papers []models.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// UpdatePaper applies a partial update. Fields absent from the patch are
// left untouched.
func (db *DB) UpdatePaper(id int64, p models.PaperPatch) error {
	var b patchBuilder

	if p.Title.Set {
		title := strings.TrimSpace(p.Title.Value)
		if !p.Title.Valid || title == "" {
			return fmt.Errorf("%w: paper title is required", ErrInvalid)
		}
		b.set("title", title)
	}
	if p.Authors.Set {
		b.set("authors", p.Authors.Value)
	}
	if p.Year.Set {
		b.set("year", p.Year.Arg())
	}
	if p.ExternalID.Set {
		b.set("external_id", p.ExternalID.Value)
	}
	if p.URL.Set {
		b.set("url", p.URL.Value)
	}
	if p.Status.Set {
		switch p.Status.Value {
		case models.PaperToRead, models.PaperReading, models.PaperRead:
		default:
			return fmt.Errorf("%w: unknown paper status %q", ErrInvalid, p.Status.Value)
		}
		b.set("status", p.Status.Value)
	}
	if p.Notes.Set {
		b.set("notes", p.Notes.Value)
	}

	return b.exec(db, "papers", id)
}

// DeletePaper deletes a paper
func (db *DB) DeletePaper(id int64) error {
	_, err := db.Exec("DELETE FROM papers WHERE id = ?", id)
	return err
}

// ReorderPapers swaps the positions of two papers in the same project.
func (db *DB) ReorderPapers(a, b int64) error {
	return db.swapPositions("papers", a, b)
}
