package models

import "time"

// Field is a tri-state value used in partial updates. A zero Field means the
// caller did not mention the field at all; Set with Valid false means the
// caller wants the field cleared to null; Set with Valid true carries a new
// value. This keeps "omitted" distinct from "explicitly cleared".
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// Some returns a Field carrying v.
func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// Null returns a Field that clears the column.
func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}

// Arg returns the value in the form database/sql expects: nil for a cleared
// field, the value otherwise. Only meaningful when Set is true.
func (f Field[T]) Arg() any {
	if !f.Valid {
		return nil
	}
	return f.Value
}

// NewProject carries the fields accepted when creating a project.
type NewProject struct {
	Name        string
	Description string
	Path        string
	Tags        string
	Color       string
	Tint        *int64
	ParentID    *int64
	Position    *int64
}

// ProjectPatch is a partial update for a project.
type ProjectPatch struct {
	Name        Field[string]
	Description Field[string]
	Path        Field[string]
	Tags        Field[string]
	Color       Field[string]
	Tint        Field[int64]
	Archived    Field[bool]
	ParentID    Field[int64]
	Position    Field[int64]
}

// NewTask carries the fields accepted when creating a task.
type NewTask struct {
	ProjectID int64
	Title     string
	Notes     string
	Priority  *int
	DueDate   *string
	StartTime *string
	EndTime   *string
	Kind      *string
	EffortMin *int64
	Position  *int64
}

// TaskPatch is a partial update for a task. Setting Status to TaskDone or
// TaskOpen also sets or clears the completion timestamp as a side effect.
type TaskPatch struct {
	Title      Field[string]
	Notes      Field[string]
	Priority   Field[int]
	DueDate    Field[string]
	StartTime  Field[string]
	EndTime    Field[string]
	Tone       Field[int64]
	Status     Field[string]
	EffortMin  Field[int64]
	Kind       Field[string]
	RemindAt   Field[time.Time]
	Recurrence Field[string]
	Position   Field[int64]
}

// NewLink carries the fields accepted when creating a link. Position is
// always computed by the store, never supplied.
type NewLink struct {
	ProjectID int64
	TaskID    *int64
	Label     string
	Target    string
	Kind      string
	Notes     string
}

// LinkPatch is a partial update for a link.
type LinkPatch struct {
	Label  Field[string]
	Target Field[string]
	Kind   Field[string]
	Notes  Field[string]
	TaskID Field[int64]
}

// NewMilestone carries the fields accepted when creating a milestone.
type NewMilestone struct {
	ProjectID int64
	Title     string
	DueDate   *string
	Notes     string
	Position  *int64
}

// MilestonePatch is a partial update for a milestone.
type MilestonePatch struct {
	Title   Field[string]
	DueDate Field[string]
	Status  Field[string]
	Notes   Field[string]
}

// NewPaper carries the fields accepted when creating a paper.
type NewPaper struct {
	ProjectID  int64
	Title      string
	Authors    string
	Year       *int64
	ExternalID string
	URL        string
	Notes      string
	Position   *int64
}

// PaperPatch is a partial update for a paper.
type PaperPatch struct {
	Title      Field[string]
	Authors    Field[string]
	Year       Field[int64]
	ExternalID Field[string]
	URL        Field[string]
	Status     Field[string]
	Notes      Field[string]
}

// NewExperiment carries the fields accepted when creating an experiment.
type NewExperiment struct {
	ProjectID int64
	Name      string
	Protocol  string
	Variables string
	Outcomes  string
}

// ExperimentPatch is a partial update for an experiment.
type ExperimentPatch struct {
	Name      Field[string]
	Protocol  Field[string]
	Variables Field[string]
	Outcomes  Field[string]
	Status    Field[string]
}
