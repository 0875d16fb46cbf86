// Package gaze maps per-frame eye detections to normalized, temporally
// smoothed gaze points.
package gaze

import (
	"math"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/spatial"
)

// Estimator converts one EyeDetectionResult into one GazePoint. It owns
// the smoothing anchor (the previous accepted point), so each session gets
// its own Estimator; callers must serialize access per §5 of the session
// contract, which Session does with its mutex.
type Estimator struct {
	cfg config.GazeConfig

	prev      models.GazePoint
	prevValid bool
}

// NewEstimator creates an estimator with the given configuration
func NewEstimator(cfg config.GazeConfig) *Estimator {
	return &Estimator{cfg: cfg}
}

// Reset clears the smoothing anchor. After Reset the estimator behaves
// identically to a freshly constructed one.
func (e *Estimator) Reset() {
	e.prev = models.GazePoint{}
	e.prevValid = false
}

// Anchor returns the current smoothing anchor and whether one exists
func (e *Estimator) Anchor() (models.GazePoint, bool) {
	return e.prev, e.prevValid
}

// Estimate maps one detection to one gaze point. It never fails: an
// invalid detection yields a zero-coordinate, zero-confidence sentinel
// stamped with the input timestamp.
func (e *Estimator) Estimate(det models.EyeDetectionResult) models.GazePoint {
	point := models.GazePoint{Timestamp: det.Timestamp}

	if !det.Valid {
		return point
	}

	avgPupilX := (det.LeftPupil.X + det.RightPupil.X) / 2
	avgPupilY := (det.LeftPupil.Y + det.RightPupil.Y) / 2

	avgEyeX := (det.LeftEye.CenterX() + det.RightEye.CenterX()) / 2
	avgEyeY := (det.LeftEye.CenterY() + det.RightEye.CenterY()) / 2

	// Pupil displacement from the eye center, scaled per axis
	dispX := (avgPupilX - avgEyeX) * e.cfg.PupilToGazeX * e.cfg.SensitivityX
	dispY := (avgPupilY - avgEyeY) * e.cfg.PupilToGazeY * e.cfg.SensitivityY

	// The /1000 divisor converts the pixel-scale displacement into
	// normalized screen space and must be preserved for compatibility
	point.X = spatial.Clamp01(e.cfg.GazeCenterX + dispX/1000 + e.cfg.OffsetX)
	point.Y = spatial.Clamp01(e.cfg.GazeCenterY + dispY/1000 + e.cfg.OffsetY)

	avgEyeConf := (det.LeftEye.Confidence + det.RightEye.Confidence) / 2
	avgPupilConf := (det.LeftPupil.Confidence + det.RightPupil.Confidence) / 2
	point.Confidence = spatial.Clamp01((avgEyeConf + avgPupilConf) / 2)

	// Extreme gaze angles are implausible; down-weight, not discard
	angle := spatial.GazeAngleDegrees(dispX, dispY)
	if math.Abs(angle) > e.cfg.MaxGazeAngleDeg {
		point.Confidence *= 0.5
	}

	if e.prevValid && point.Confidence >= e.cfg.MinConfidence {
		alpha := e.cfg.SmoothingFactor
		point.X = alpha*e.prev.X + (1-alpha)*point.X
		point.Y = alpha*e.prev.Y + (1-alpha)*point.Y
	}

	// Low-confidence points never become the anchor
	if point.Confidence >= e.cfg.MinConfidence {
		e.prev = point
		e.prevValid = true
	}

	return point
}
