package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// patchBuilder accumulates SET clauses for a partial update. Only fields the
// caller actually mentioned end up here; an empty builder means no write.
type patchBuilder struct {
	sets []string
	args []any
}

func (b *patchBuilder) set(col string, v any) {
	b.sets = append(b.sets, col+" = ?")
	b.args = append(b.args, v)
}

func (b *patchBuilder) empty() bool { return len(b.sets) == 0 }

// exec applies the accumulated SET clauses to one row, touching nothing when
// the builder is empty.
func (b *patchBuilder) exec(db *DB, table string, id int64) error {
	if b.empty() {
		return nil
	}
	b.args = append(b.args, id)
	query := "UPDATE " + table + " SET " + strings.Join(b.sets, ", ") + " WHERE id = ?"
	if _, err := db.Exec(query, b.args...); err != nil {
		return fmt.Errorf("update %s: %w", table, err)
	}
	return nil
}

// nextPosition returns max(position)+1 within a scope, so 1 for an empty
// scope. scopeCol may be empty when the whole table is one scope; where
// narrows the scope further.
func (db *DB) nextPosition(table, scopeCol string, scope int64, where string) (int64, error) {
	query := "SELECT COALESCE(MAX(position), 0) FROM " + table
	var conds []string
	var args []any
	if scopeCol != "" {
		conds = append(conds, scopeCol+" = ?")
		args = append(args, scope)
	}
	if where != "" {
		conds = append(conds, where)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	var max int64
	if err := db.QueryRow(query, args...).Scan(&max); err != nil {
		return 0, fmt.Errorf("next position: %w", err)
	}
	return max + 1, nil
}

// swapPositions exchanges the position values of two rows. The caller is
// responsible for a and b being siblings in the same scope.
func (db *DB) swapPositions(table string, a, b int64) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var posA, posB sql.NullInt64
	if err := tx.QueryRow("SELECT position FROM "+table+" WHERE id = ?", a).Scan(&posA); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}
	if err := tx.QueryRow("SELECT position FROM "+table+" WHERE id = ?", b).Scan(&posB); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec("UPDATE "+table+" SET position = ? WHERE id = ?", posB, a); err != nil {
		return err
	}
	if _, err := tx.Exec("UPDATE "+table+" SET position = ? WHERE id = ?", posA, b); err != nil {
		return err
	}

	return tx.Commit()
}

// positionOrder sorts positioned rows first in increasing order, then rows
// without a position by age.
const positionOrder = "position IS NULL, position, created_at, id"
