package gaze

import (
	"math"
	"testing"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// detection builds a symmetric two-eye detection whose pupils sit at the
// given pixel offset from the eye centers
func detection(offsetX, offsetY, conf, ts float64) models.EyeDetectionResult {
	return models.EyeDetectionResult{
		LeftEye:    models.EyeRegion{X: 100, Y: 100, Width: 60, Height: 40, Confidence: conf},
		RightEye:   models.EyeRegion{X: 220, Y: 100, Width: 60, Height: 40, Confidence: conf},
		LeftPupil:  models.PupilData{X: 130 + offsetX, Y: 120 + offsetY, Radius: 8, Confidence: conf},
		RightPupil: models.PupilData{X: 250 + offsetX, Y: 120 + offsetY, Radius: 8, Confidence: conf},
		Valid:      true,
		Timestamp:  ts,
	}
}

func TestEstimateInvalidDetection(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())

	p := e.Estimate(models.EyeDetectionResult{Valid: false, Timestamp: 3.25})
	if p.X != 0 || p.Y != 0 || p.Confidence != 0 {
		t.Errorf("sentinel = %+v, want zero coordinates and confidence", p)
	}
	if p.Timestamp != 3.25 {
		t.Errorf("sentinel timestamp = %v, want 3.25", p.Timestamp)
	}
	if _, ok := e.Anchor(); ok {
		t.Error("invalid detection must not establish a smoothing anchor")
	}
}

func TestEstimateCenteredPupils(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())

	p := e.Estimate(detection(0, 0, 0.9, 1.0))
	if math.Abs(p.X-0.5) > 1e-9 || math.Abs(p.Y-0.5) > 1e-9 {
		t.Errorf("centered pupils = (%v, %v), want (0.5, 0.5)", p.X, p.Y)
	}
	if math.Abs(p.Confidence-0.9) > 1e-9 {
		t.Errorf("confidence = %v, want 0.9", p.Confidence)
	}
}

func TestEstimateDisplacementScaling(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())

	// 100px displacement * 0.8 ratio * 1.0 sensitivity / 1000 = 0.08
	p := e.Estimate(detection(100, 0, 1.0, 1.0))
	if math.Abs(p.X-0.58) > 1e-9 {
		t.Errorf("x = %v, want 0.58", p.X)
	}
	if math.Abs(p.Y-0.5) > 1e-9 {
		t.Errorf("y = %v, want 0.5", p.Y)
	}
}

func TestEstimateOutputAlwaysInRange(t *testing.T) {
	cfg := config.DefaultGazeConfig()
	cfg.OffsetX = 5.0
	cfg.OffsetY = -5.0
	e := NewEstimator(cfg)

	p := e.Estimate(detection(4000, -4000, 1.0, 1.0))
	if p.X < 0 || p.X > 1 || p.Y < 0 || p.Y > 1 {
		t.Errorf("coordinates out of range: (%v, %v)", p.X, p.Y)
	}
	if p.Confidence < 0 || p.Confidence > 1 {
		t.Errorf("confidence out of range: %v", p.Confidence)
	}
}

func TestEstimateExtremeAngleHalvesConfidence(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())

	// Pure vertical displacement is a 90 degree gaze angle, beyond the
	// 45 degree default
	p := e.Estimate(detection(0, 50, 0.8, 1.0))
	if math.Abs(p.Confidence-0.4) > 1e-9 {
		t.Errorf("confidence = %v, want 0.4 (halved)", p.Confidence)
	}
}

func TestEstimateSmoothing(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())

	first := e.Estimate(detection(0, 0, 1.0, 1.0))
	if anchor, ok := e.Anchor(); !ok || anchor != first {
		t.Fatal("high-confidence point must become the anchor")
	}

	// Raw second estimate would be x=0.58; smoothed with alpha=0.3:
	// 0.3*0.5 + 0.7*0.58 = 0.556
	second := e.Estimate(detection(100, 0, 1.0, 1.2))
	if math.Abs(second.X-0.556) > 1e-9 {
		t.Errorf("smoothed x = %v, want 0.556", second.X)
	}
}

func TestLowConfidenceDoesNotMoveAnchor(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())

	accepted := e.Estimate(detection(0, 0, 1.0, 1.0))

	low := e.Estimate(detection(100, 0, 0.2, 1.2))
	if math.Abs(low.X-0.58) > 1e-9 {
		t.Errorf("low-confidence point must not be smoothed, x = %v, want 0.58", low.X)
	}

	anchor, ok := e.Anchor()
	if !ok {
		t.Fatal("anchor lost")
	}
	if anchor != accepted {
		t.Errorf("anchor = %+v, want unchanged %+v", anchor, accepted)
	}
}

func TestReset(t *testing.T) {
	e := NewEstimator(config.DefaultGazeConfig())
	e.Estimate(detection(0, 0, 1.0, 1.0))
	e.Reset()

	if _, ok := e.Anchor(); ok {
		t.Error("anchor must be cleared by Reset")
	}

	// After reset the next estimate is unsmoothed
	p := e.Estimate(detection(100, 0, 1.0, 2.0))
	if math.Abs(p.X-0.58) > 1e-9 {
		t.Errorf("post-reset x = %v, want 0.58", p.X)
	}
}
