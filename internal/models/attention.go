package models

// AttentionRegion is a fixation: a contiguous run of spatially close gaze
// points collapsed to its centroid. Never mutated after creation.
//
// The JSON field names are a compatibility contract with existing
// consumers of the exported analysis document.
type AttentionRegion struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	DurationMS float64 `json:"duration_ms"`
	Intensity  float64 `json:"intensity"`
	VisitCount int     `json:"visit_count"`
}

// AttentionAnalysis is the aggregate summary of one gaze sequence
type AttentionAnalysis struct {
	TotalDurationMS           float64           `json:"total_duration_ms"`
	AverageFixationDurationMS float64           `json:"average_fixation_duration_ms"`
	SaccadeCount              int               `json:"saccade_count"`
	FixationCount             int               `json:"fixation_count"`
	Fixations                 []AttentionRegion `json:"fixations"`
}

// StoredAnalysis is an AttentionAnalysis persisted with its session context
type StoredAnalysis struct {
	ID        int64             `json:"id"`
	SessionID string            `json:"session_id,omitempty"`
	Analysis  AttentionAnalysis `json:"analysis"`
	CreatedAt string            `json:"created_at,omitempty"`
}
