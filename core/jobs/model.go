package jobs

import "time"

// State is the lifecycle state of a job.
type State string

const (
	StatePending   State = "Pending"
	StateRunning   State = "Running"
	StateSucceeded State = "Succeeded"
	StateFailed    State = "Failed"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Progress describes how far a running job has advanced.
// Current never decreases over the life of a job.
type Progress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// Outcome aggregates the result of a completed job. Per-item failures do not
// fail the job; they are counted here and their messages collected in Errors.
type Outcome struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// SyncJob is the externally visible record of a submitted job.
type SyncJob struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	View        string    `json:"view"`
	State       State     `json:"state"`
	Progress    Progress  `json:"progress"`
	Outcome     Outcome   `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
	FinishedAt  time.Time `json:"finished_at,omitempty"`
}

// clone returns a copy safe to hand to callers while the manager keeps
// mutating the original.
func (j *SyncJob) clone() *SyncJob {
	copied := *j
	if j.Outcome.Errors != nil {
		copied.Outcome.Errors = append([]string(nil), j.Outcome.Errors...)
	}
	return &copied
}
