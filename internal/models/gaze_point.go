package models

// GazePoint is a normalized, confidence-scored estimate of the on-screen
// viewing location at a moment in time. Coordinates and confidence are
// always clamped to [0,1]. Immutable once produced.
type GazePoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
	Timestamp  float64 `json:"timestamp"` // Seconds, inherited from the source detection
}

// GazePointsRequest carries an ordered gaze point sequence for batch analysis
type GazePointsRequest struct {
	Points []GazePoint `json:"points"`
}

// DetectionsRequest carries raw per-frame detections for batch analysis
type DetectionsRequest struct {
	Detections []EyeDetectionResult `json:"detections"`
}
