package models

import "time"

// Task statuses
const (
	TaskOpen = "open"
	TaskDone = "done"
)

// Milestone statuses
const (
	MilestonePending = "pending"
	MilestoneDone    = "done"
	MilestoneBlocked = "blocked"
)

// Paper reading statuses
const (
	PaperToRead  = "to_read"
	PaperReading = "reading"
	PaperRead    = "read"
)

// Experiment statuses
const (
	ExperimentPlanned = "planned"
	ExperimentRunning = "running"
	ExperimentDone    = "done"
	ExperimentBlocked = "blocked"
)

// Link kinds
const (
	LinkFile   = "file"
	LinkFolder = "folder"
	LinkURL    = "url"
)

// DefaultPriority is the mid-value assigned when a task is created without one.
const DefaultPriority = 2

// Project is a top-level or nested (one level in practice) container for work.
// Tint is only meaningful when ParentID is set: it indexes the shade ramp
// derived from the parent's color.
type Project struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Path        string    `json:"path"`
	Tags        string    `json:"tags"`
	Color       string    `json:"color"`
	Tint        *int64    `json:"tint"`
	Archived    bool      `json:"archived"`
	ParentID    *int64    `json:"parent_id"`
	Position    *int64    `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Task is a single item of work within a project.
type Task struct {
	ID          int64      `json:"id"`
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes"`
	Priority    int        `json:"priority"`
	DueDate     *string    `json:"due_date"`   // YYYY-MM-DD
	StartTime   *string    `json:"start_time"` // HH:MM
	EndTime     *string    `json:"end_time"`   // HH:MM
	Tone        *int64     `json:"tone"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	EffortMin   *int64     `json:"effort_min"`
	Kind        *string    `json:"kind"`
	RemindAt    *time.Time `json:"remind_at"`
	Recurrence  *string    `json:"recurrence"`
	Position    *int64     `json:"position"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Link is a file, folder or URL reference attached to a project, and
// optionally to one task within it. Only links not attached to a task
// carry a position.
type Link struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	TaskID    *int64    `json:"task_id"`
	Label     string    `json:"label"`
	Target    string    `json:"target"`
	Kind      string    `json:"kind"`
	Notes     string    `json:"notes"`
	Position  *int64    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Milestone is a dated checkpoint within a project.
type Milestone struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Title     string    `json:"title"`
	DueDate   *string   `json:"due_date"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	Position  *int64    `json:"position"`
	CreatedAt time.Time `json:"created_at"`
}

// Note is free-text content attached to a project. The UI treats the most
// recently updated note as the project's note; the model allows several.
type Note struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Paper is a reading-list entry attached to a project.
type Paper struct {
	ID         int64     `json:"id"`
	ProjectID  int64     `json:"project_id"`
	Title      string    `json:"title"`
	Authors    string    `json:"authors"`
	Year       *int64    `json:"year"`
	ExternalID string    `json:"external_id"`
	URL        string    `json:"url"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes"`
	Position   *int64    `json:"position"`
	CreatedAt  time.Time `json:"created_at"`
}

// Experiment records a planned or running experiment within a project.
type Experiment struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Name      string    `json:"name"`
	Protocol  string    `json:"protocol"`
	Variables string    `json:"variables"`
	Outcomes  string    `json:"outcomes"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dependency is a directed "task is blocked by blocking task" edge.
type Dependency struct {
	TaskID      int64     `json:"task_id"`
	BlockedByID int64     `json:"blocked_by_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TreeStats aggregates task counts over a project and all its descendants.
type TreeStats struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Overdue int `json:"overdue"`
	DueSoon int `json:"due_soon"`
}

// ProjectTask is a task annotated with the display name of the project that
// owns it, used for flattened subtree listings.
type ProjectTask struct {
	Task
	ProjectName string `json:"project_name"`
}
