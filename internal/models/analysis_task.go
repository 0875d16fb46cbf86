package models

import "time"

// AnalysisTask tracks one background recompute over stored gaze data
type AnalysisTask struct {
	ID int64 `json:"id" db:"id"`

	// Task identification
	SkillName string `json:"skill_name" db:"skill_name"` // Which analyzer to run
	TaskType  string `json:"task_type" db:"task_type"`   // INCREMENTAL, FULL_RECOMPUTE

	// Status
	Status          string `json:"status" db:"status"` // pending, running, completed, failed
	ProgressPercent int    `json:"progress_percent" db:"progress_percent"`

	// Scope
	SessionID  string `json:"session_id,omitempty" db:"session_id"` // Empty = all sessions
	ParamsJSON string `json:"params_json,omitempty" db:"params_json"`

	// Execution info
	TotalPoints     int `json:"total_points,omitempty" db:"total_points"`
	ProcessedPoints int `json:"processed_points" db:"processed_points"`
	FailedPoints    int `json:"failed_points" db:"failed_points"`

	// Results
	ResultSummary string `json:"result_summary,omitempty" db:"result_summary"`
	ErrorMessage  string `json:"error_message,omitempty" db:"error_message"`

	// Metadata
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// TaskType constants
const (
	TaskTypeIncremental   = "INCREMENTAL"
	TaskTypeFullRecompute = "FULL_RECOMPUTE"
)

// TaskStatus constants
const (
	TaskStatusPending   = "pending"
	TaskStatusRunning   = "running"
	TaskStatusCompleted = "completed"
	TaskStatusFailed    = "failed"
)
