package spatial

import (
	"math"

	"github.com/golang/geo/r2"

	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// Point converts a gaze point to an r2 plane point
func Point(p models.GazePoint) r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Distance returns the Euclidean distance between two gaze points in
// normalized screen space
func Distance(a, b models.GazePoint) float64 {
	return Point(a).Sub(Point(b)).Norm()
}

// Centroid returns the arithmetic mean position of a gaze point sequence
func Centroid(points []models.GazePoint) r2.Point {
	if len(points) == 0 {
		return r2.Point{}
	}

	var sum r2.Point
	for _, p := range points {
		sum = sum.Add(Point(p))
	}
	return sum.Mul(1 / float64(len(points)))
}

// SegmentVelocity returns the speed of the transition a→b in normalized
// units per second. Non-positive elapsed time yields velocity 0 and ok=false
// so degenerate timestamps can be skipped rather than treated as fatal.
func SegmentVelocity(a, b models.GazePoint) (velocity float64, ok bool) {
	dt := b.Timestamp - a.Timestamp
	if dt <= 0 {
		return 0, false
	}
	return Distance(a, b) / dt, true
}

// GazeAngleDegrees returns the direction of a displacement vector in
// degrees, in (-180, 180]
func GazeAngleDegrees(dx, dy float64) float64 {
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// Clamp01 clamps v to the normalized range [0,1]
func Clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
