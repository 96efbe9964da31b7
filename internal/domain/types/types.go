// Package types contains the response shapes shared by the service and the
// HTTP API.
package types

import "time"

// JobState is the lifecycle state of a submitted game.
type JobState string

// Job states.
const (
	JobQueued JobState = "queued"
	JobDone   JobState = "done"
	JobFailed JobState = "failed"
)

// Terminal reports whether the job will not change state again.
func (s JobState) Terminal() bool { return s == JobDone || s == JobFailed }

// JobStatus describes one submitted game.
type JobStatus struct {
	JobID       string     `json:"job_id"`
	GameID      string     `json:"game_id"`
	State       JobState   `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Error       string     `json:"error,omitempty"`
	Possessions int        `json:"possessions,omitempty"`
	Unresolved  int        `json:"unresolved,omitempty"`
	SubmittedAt time.Time  `json:"submitted_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Stats is the service snapshot served on /stats.
type Stats struct {
	Started     bool  `json:"started"`
	Workers     int   `json:"workers"`
	QueueLength int   `json:"queue_length"`
	QueueSize   int   `json:"queue_capacity"`
	InFlight    int64 `json:"in_flight"`
	StoredGames int   `json:"stored_games"`
	JobsQueued  int   `json:"jobs_queued"`
	JobsDone    int   `json:"jobs_done"`
	JobsFailed  int   `json:"jobs_failed"`
}
