package models

// EyeRegion represents a detected eye bounding box in frame pixel coordinates
type EyeRegion struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Confidence float64 `json:"confidence"`
}

// CenterX returns the horizontal center of the eye box
func (e EyeRegion) CenterX() float64 {
	return e.X + e.Width/2
}

// CenterY returns the vertical center of the eye box
func (e EyeRegion) CenterY() float64 {
	return e.Y + e.Height/2
}

// PupilData represents a detected pupil center and radius
type PupilData struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	Confidence float64 `json:"confidence"`
}

// EyeDetectionResult is the per-frame output of the upstream eye/pupil
// detector. It is owned by the caller for the duration of one estimation
// call and is not retained by the pipeline.
type EyeDetectionResult struct {
	LeftEye    EyeRegion `json:"left_eye"`
	RightEye   EyeRegion `json:"right_eye"`
	LeftPupil  PupilData `json:"left_pupil"`
	RightPupil PupilData `json:"right_pupil"`
	Valid      bool      `json:"valid"`
	Timestamp  float64   `json:"timestamp"` // Monotonic capture time in seconds
}
