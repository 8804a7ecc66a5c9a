package db

import (
	"fmt"
)

// SetDependencies replaces the full set of tasks blocking taskID. Self-edges
// are silently dropped and duplicates in the input collapse via
// INSERT OR IGNORE. The replace happens in one transaction so readers never
// see a half-rewritten edge set.
func (db *DB) SetDependencies(taskID int64, blockedBy []int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM task_dependencies WHERE task_id = ?", taskID); err != nil {
		return fmt.Errorf("clear dependencies: %w", err)
	}

	for _, blocker := range blockedBy {
		if blocker == taskID {
			continue
		}
		_, err := tx.Exec(
			"INSERT OR IGNORE INTO task_dependencies (task_id, blocked_by_id) VALUES (?, ?)",
			taskID, blocker)
		if err != nil {
			return fmt.Errorf("insert dependency: %w", err)
		}
	}

	return tx.Commit()
}

// Dependencies returns the IDs of the tasks blocking taskID.
func (db *DB) Dependencies(taskID int64) ([]int64, error) {
	return db.queryEdgeIDs(
		"SELECT blocked_by_id FROM task_dependencies WHERE task_id = ? ORDER BY blocked_by_id", taskID)
}

// Dependents returns the IDs of the tasks that taskID blocks.
func (db *DB) Dependents(taskID int64) ([]int64, error) {
	return db.queryEdgeIDs(
		"SELECT task_id FROM task_dependencies WHERE blocked_by_id = ? ORDER BY task_id", taskID)
}

func (db *DB) queryEdgeIDs(query string, taskID int64) ([]int64, error) {
	rows, err := db.Query(query, taskID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
