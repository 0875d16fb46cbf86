package models

// SessionInfo describes a streaming gaze session
type SessionInfo struct {
	ID         string `json:"id"`
	Capacity   int    `json:"capacity"`
	PointCount int    `json:"point_count"`
	CreatedAt  string `json:"created_at,omitempty"`
	StoppedAt  string `json:"stopped_at,omitempty"`
}
