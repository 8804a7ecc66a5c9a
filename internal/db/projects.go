package db

import (
	"database/sql"
	"fmt"
	"strings"

	"tracka/internal/models"
)

const projectCols = "id, name, description, path, tags, color, tint, archived, parent_id, position, created_at, updated_at"

// DefaultProjectColor is used when a project is created without a color.
const DefaultProjectColor = "#4f46e5"

// tintShades is the size of the sub-project shade palette; stored tint
// indexes stay inside 0..tintShades-1.
const tintShades = 5

func scanProject(s scanner) (*models.Project, error) {
	p := &models.Project{}
	err := s.Scan(&p.ID, &p.Name, &p.Description, &p.Path, &p.Tags, &p.Color,
		&p.Tint, &p.Archived, &p.ParentID, &p.Position, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProject creates a new project. A sub-project created without an
// explicit tint gets the next free shade among its siblings; a missing
// position is assigned at the end of the collection.
func (db *DB) CreateProject(p models.NewProject) (*models.Project, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: project name is required", ErrInvalid)
	}

	color := p.Color
	if color == "" {
		color = DefaultProjectColor
	}

	tint := p.Tint
	if tint != nil && (*tint < 0 || *tint >= tintShades) {
		return nil, fmt.Errorf("%w: tint %d outside shade range 0-%d", ErrInvalid, *tint, tintShades-1)
	}
	if p.ParentID != nil && tint == nil {
		t, err := db.nextTint(*p.ParentID)
		if err != nil {
			return nil, err
		}
		tint = &t
	}

	position := p.Position
	if position == nil {
		next, err := db.nextPosition("projects", "", 0, "")
		if err != nil {
			return nil, err
		}
		position = &next
	}

	result, err := db.Exec(`
		INSERT INTO projects (name, description, path, tags, color, tint, parent_id, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, name, p.Description, p.Path, p.Tags, color, tint, p.ParentID, position)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}

	return db.GetProject(id)
}

// GetProject retrieves a project by ID
func (db *DB) GetProject(id int64) (*models.Project, error) {
	project, err := scanProject(db.QueryRow(
		"SELECT "+projectCols+" FROM projects WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return project, nil
}

// ProjectFilter narrows ListProjects; zero values mean "no filter".
type ProjectFilter struct {
	Search          string
	ParentID        *int64
	RootsOnly       bool
	IncludeArchived bool
}

// ListProjects returns projects in user order: position ascending, rows
// without a position last by age.
func (db *DB) ListProjects(f ProjectFilter) ([]models.Project, error) {
	query := "SELECT " + projectCols + " FROM projects"
	var conds []string
	var args []any

	if !f.IncludeArchived {
		conds = append(conds, "archived = 0")
	}
	if f.RootsOnly {
		conds = append(conds, "parent_id IS NULL")
	} else if f.ParentID != nil {
		conds = append(conds, "parent_id = ?")
		args = append(args, *f.ParentID)
	}
	if f.Search != "" {
		conds = append(conds, "(name LIKE ? OR description LIKE ? OR tags LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + positionOrder

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListSubprojects returns the direct sub-projects of a parent, archived ones
// included, in user order.
func (db *DB) ListSubprojects(parentID int64) ([]models.Project, error) {
	return db.ListProjects(ProjectFilter{ParentID: &parentID, IncludeArchived: true})
}

// UpdateProject applies a partial update. Fields absent from the patch are
// left untouched. Changing the color reassigns sub-project tints; changing
// the parent is rejected if it would make the project its own ancestor.
func (db *DB) UpdateProject(id int64, p models.ProjectPatch) error {
	var b patchBuilder

	if p.Name.Set {
		name := strings.TrimSpace(p.Name.Value)
		if !p.Name.Valid || name == "" {
			return fmt.Errorf("%w: project name is required", ErrInvalid)
		}
		b.set("name", name)
	}
	if p.Description.Set {
		b.set("description", p.Description.Value)
	}
	if p.Path.Set {
		b.set("path", p.Path.Value)
	}
	if p.Tags.Set {
		b.set("tags", p.Tags.Value)
	}
	if p.Color.Set {
		if !p.Color.Valid {
			return fmt.Errorf("%w: color cannot be cleared", ErrInvalid)
		}
		b.set("color", p.Color.Value)
	}
	if p.Tint.Set {
		if p.Tint.Valid && (p.Tint.Value < 0 || p.Tint.Value >= tintShades) {
			return fmt.Errorf("%w: tint %d outside shade range 0-%d", ErrInvalid, p.Tint.Value, tintShades-1)
		}
		b.set("tint", p.Tint.Arg())
	}
	if p.Archived.Set {
		b.set("archived", p.Archived.Value)
	}
	if p.ParentID.Set {
		if p.ParentID.Valid {
			if err := db.checkAncestry(id, p.ParentID.Value); err != nil {
				return err
			}
		}
		b.set("parent_id", p.ParentID.Arg())
	}
	if p.Position.Set {
		b.set("position", p.Position.Arg())
	}

	if b.empty() {
		return nil
	}
	b.sets = append(b.sets, "updated_at = CURRENT_TIMESTAMP")

	if err := b.exec(db, "projects", id); err != nil {
		return err
	}

	if p.Color.Set {
		if err := db.retintChildren(id); err != nil {
			return err
		}
	}
	return nil
}

// checkAncestry rejects a reparent that would put id on its own ancestor
// chain. The chain walk terminates because existing rows already form a
// forest.
func (db *DB) checkAncestry(id, newParent int64) error {
	current := newParent
	for {
		if current == id {
			return ErrCycle
		}
		var parent *int64
		err := db.QueryRow("SELECT parent_id FROM projects WHERE id = ?", current).Scan(&parent)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("check ancestry: %w", err)
		}
		if parent == nil {
			return nil
		}
		current = *parent
	}
}

// DeleteProject deletes a project; sub-projects and all child rows go with
// it via the cascade constraints.
func (db *DB) DeleteProject(id int64) error {
	_, err := db.Exec("DELETE FROM projects WHERE id = ?", id)
	return err
}

// ReorderProjects swaps the positions of two projects.
func (db *DB) ReorderProjects(a, b int64) error {
	return db.swapPositions("projects", a, b)
}

// ProjectCount returns the number of projects
func (db *DB) ProjectCount() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM projects").Scan(&count)
	return count, err
}

// nextTint picks a shade index for a new sub-project: the first of 0..4 not
// used by a sibling. Five is a soft cap; once the palette is exhausted the
// probe wraps around and reuses shades rather than failing.
func (db *DB) nextTint(parentID int64) (int64, error) {
	rows, err := db.Query("SELECT tint FROM projects WHERE parent_id = ? AND tint IS NOT NULL", parentID)
	if err != nil {
		return 0, fmt.Errorf("sibling tints: %w", err)
	}
	defer rows.Close()

	used := make(map[int64]bool)
	for rows.Next() {
		var t int64
		if err := rows.Scan(&t); err != nil {
			return 0, err
		}
		used[t] = true
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for probe := 0; probe < 10; probe++ {
		tone := int64(probe % tintShades)
		if probe >= tintShades || !used[tone] {
			return tone, nil
		}
	}
	return 0, nil
}

// RetintChildren stores a new primary color on a parent project and deals
// its sub-projects tints 0..4 round-robin by creation order, keeping the
// derived palette stable no matter what tints they had before.
func (db *DB) RetintChildren(parentID int64, color string) error {
	_, err := db.Exec("UPDATE projects SET color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?", color, parentID)
	if err != nil {
		return fmt.Errorf("update color: %w", err)
	}
	return db.retintChildren(parentID)
}

func (db *DB) retintChildren(parentID int64) error {
	rows, err := db.Query("SELECT id FROM projects WHERE parent_id = ? ORDER BY created_at, id", parentID)
	if err != nil {
		return fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i, id := range ids {
		if _, err := db.Exec("UPDATE projects SET tint = ? WHERE id = ?", int64(i%tintShades), id); err != nil {
			return fmt.Errorf("retint child: %w", err)
		}
	}
	return nil
}
