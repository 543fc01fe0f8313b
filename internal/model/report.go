package model

import "time"

// RuleReport is the stage-4 verdict. Passed is true iff Violations is empty;
// violation order is detection order.
type RuleReport struct {
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations"`
}

// RunStatus tracks a pipeline run in the history store.
type RunStatus string

const (
	RunStatusRunning     RunStatus = "running"
	RunStatusComplete    RunStatus = "complete"
	RunStatusRulesFailed RunStatus = "rules_failed"
	RunStatusFailed      RunStatus = "failed"
)

// Run is one recorded pipeline invocation.
type Run struct {
	ID          string    `json:"id"`
	InputRoot   string    `json:"input_root"`
	TargetStage Stage     `json:"target_stage"`
	Latest      int       `json:"latest"`
	Status      RunStatus `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StageRecord is one per-folder stage execution within a run.
type StageRecord struct {
	ID         string    `json:"id"`
	RunID      string    `json:"run_id"`
	Folder     string    `json:"folder"`
	Stage      string    `json:"stage"`
	Cached     bool      `json:"cached"`
	DurationMs int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}
