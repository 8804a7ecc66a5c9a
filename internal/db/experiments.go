package db

import (
	"database/sql"
	"fmt"
	"strings"

	"tracka/internal/models"
)

const experimentCols = "id, project_id, name, protocol, variables, outcomes, status, created_at, updated_at"

func scanExperiment(s scanner) (*models.Experiment, error) {
	e := &models.Experiment{}
	err := s.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Protocol, &e.Variables,
		&e.Outcomes, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// CreateExperiment records a new experiment for a project.
func (db *DB) CreateExperiment(e models.NewExperiment) (*models.Experiment, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: experiment name is required", ErrInvalid)
	}

	result, err := db.Exec(`
		INSERT INTO experiments (project_id, name, protocol, variables, outcomes)
		VALUES (?, ?, ?, ?, ?)
	`, e.ProjectID, name, e.Protocol, e.Variables, e.Outcomes)
	if err != nil {
		return nil, fmt.Errorf("insert experiment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetExperiment(id)
}

// GetExperiment retrieves an experiment by ID
func (db *DB) GetExperiment(id int64) (*models.Experiment, error) {
	experiment, err := scanExperiment(db.QueryRow(
		"SELECT "+experimentCols+" FROM experiments WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get experiment: %w", err)
	}
	return experiment, nil
}

// ListExperiments returns a project's experiments, oldest first.
func (db *DB) ListExperiments(projectID int64) ([]models.Experiment, error) {
	rows, err := db.Query(
		"SELECT "+experimentCols+" FROM experiments WHERE project_id = ? ORDER BY created_at, id",
		projectID)
	if err != nil {
		return nil, fmt.Errorf("list experiments: %w", err)
	}
	defer rows.Close()

	var experiments []models.Experiment
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan experiment: %w", err)
		}
		experiments = append(experiments, *e)
	}
	return experiments, rows.Err()
}

// UpdateExperiment applies a partial update. Fields absent from the patch
// are left untouched; any non-empty patch touches updated_at.
func (db *DB) UpdateExperiment(id int64, p models.ExperimentPatch) error {
	var b patchBuilder

	if p.Name.Set {
		name := strings.TrimSpace(p.Name.Value)
		if !p.Name.Valid || name == "" {
			return fmt.Errorf("%w: experiment name is required", ErrInvalid)
		}
		b.set("name", name)
	}
	if p.Protocol.Set {
		b.set("protocol", p.Protocol.Value)
	}
	if p.Variables.Set {
		b.set("variables", p.Variables.Value)
	}
	if p.Outcomes.Set {
		b.set("outcomes", p.Outcomes.Value)
	}
	if p.Status.Set {
		switch p.Status.Value {
		case models.ExperimentPlanned, models.ExperimentRunning, models.ExperimentDone, models.ExperimentBlocked:
		default:
			return fmt.Errorf("%w: unknown experiment status %q", ErrInvalid, p.Status.Value)
		}
		b.set("status", p.Status.Value)
	}

	if b.empty() {
		return nil
	}
	b.sets = append(b.sets, "updated_at = CURRENT_TIMESTAMP")

	return b.exec(db, "experiments", id)
}

// DeleteExperiment deletes an experiment
func (db *DB) DeleteExperiment(id int64) error {
	_, err := db.Exec("DELETE FROM experiments WHERE id = ?", id)
	return err
}
