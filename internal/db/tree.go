package db

import (
	"fmt"
	"time"

	"tracka/internal/models"
)

// subtreeCTE selects the IDs of a project and all its transitive
// sub-projects. Terminates because create/update never let a project become
// its own ancestor.
const subtreeCTE = `
	WITH RECURSIVE subtree(id) AS (
		SELECT id FROM projects WHERE id = ?
		UNION
		SELECT p.id FROM projects p JOIN subtree s ON p.parent_id = s.id
	)
`

// SubtreeIDs returns the ID of a project and of every transitive
// sub-project.
func (db *DB) SubtreeIDs(projectID int64) ([]int64, error) {
	rows, err := db.Query(subtreeCTE+"SELECT id FROM subtree ORDER BY id", projectID)
	if err != nil {
		return nil, fmt.Errorf("subtree: %w", err)
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

// SubtreeStats aggregates task counts over a project and all its
// descendants. Overdue and due-soon are judged against the caller's now, by
// calendar date: overdue means open with a due date before today, due-soon
// means open and due within the next 7 days (today included).
func (db *DB) SubtreeStats(projectID int64, now time.Time) (*models.TreeStats, error) {
	today := now.Format("2006-01-02")
	horizon := now.AddDate(0, 0, 7).Format("2006-01-02")

	stats := &models.TreeStats{}
	err := db.QueryRow(subtreeCTE+`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status != 'done' AND due_date IS NOT NULL AND due_date < ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status != 'done' AND due_date IS NOT NULL AND due_date >= ? AND due_date <= ? THEN 1 ELSE 0 END), 0)
		FROM tasks
		WHERE project_id IN (SELECT id FROM subtree)
	`, projectID, today, today, horizon).
		Scan(&stats.Total, &stats.Done, &stats.Overdue, &stats.DueSoon)
	if err != nil {
		return nil, fmt.Errorf("subtree stats: %w", err)
	}
	return stats, nil
}

// SubtreeTasks returns every task of a project and its descendants as one
// flat list, each annotated with its owning project's name. Grouped by
// project, then in each project's user order.
func (db *DB) SubtreeTasks(projectID int64) ([]models.ProjectTask, error) {
	rows, err := db.Query(subtreeCTE+`
		SELECT t.id, t.project_id, t.title, t.notes, t.priority, t.due_date, t.start_time, t.end_time,
			t.tone, t.status, t.completed_at, t.effort_min, t.kind, t.remind_at, t.recurrence,
			t.position, t.created_at, t.updated_at, p.name
		FROM tasks t
		JOIN projects p ON p.id = t.project_id
		WHERE t.project_id IN (SELECT id FROM subtree)
		ORDER BY t.project_id, t.position IS NULL, t.position, t.created_at, t.id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("subtree tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.ProjectTask
	for rows.Next() {
		var t models.ProjectTask
		err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Notes, &t.Priority, &t.DueDate,
			&t.StartTime, &t.EndTime, &t.Tone, &t.Status, &t.CompletedAt, &t.EffortMin,
			&t.Kind, &t.RemindAt, &t.Recurrence, &t.Position, &t.CreatedAt, &t.UpdatedAt,
			&t.ProjectName)
		if err != nil {
			return nil, fmt.Errorf("scan subtree task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
