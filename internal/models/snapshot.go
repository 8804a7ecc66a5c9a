package models

import "time"

// SnapshotVersion is the current snapshot format version.
const SnapshotVersion = 1

// Snapshot is a full, uninterpreted dump of every collection, identifiers
// included, suitable for round-tripping through export and import. The store
// only produces and consumes this value in memory; writing it anywhere is the
// caller's business.
type Snapshot struct {
	Version      int          `json:"version"`
	ID           string       `json:"id"`
	ExportedAt   time.Time    `json:"exported_at"`
	Projects     []Project    `json:"projects"`
	Tasks        []Task       `json:"tasks"`
	Links        []Link       `json:"links"`
	Milestones   []Milestone  `json:"milestones"`
	Notes        []Note       `json:"notes"`
	Papers       []Paper      `json:"papers"`
	Experiments  []Experiment `json:"experiments"`
	Dependencies []Dependency `json:"task_dependencies"`
}
