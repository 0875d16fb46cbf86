// Package events partitions ordered gaze sequences into fixation regions
// and saccade transitions.
package events

import (
	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/spatial"
)

// Classifier detects fixations and saccades in a gaze point sequence.
// It is stateless: classification is idempotent across calls.
type Classifier struct {
	fixation config.FixationConfig
	saccade  config.SaccadeConfig
}

// NewClassifier creates a classifier with the given detection tunables
func NewClassifier(fixation config.FixationConfig, saccade config.SaccadeConfig) *Classifier {
	return &Classifier{fixation: fixation, saccade: saccade}
}

// DetectFixations groups consecutive spatially-close points into
// attention regions using greedy run-length grouping. Runs are
// non-overlapping and consumed left to right; each run extends while the
// distance to the run's first point stays within the position threshold.
// Runs shorter than the minimum duration are discarded. Empty input
// yields an empty result.
func (c *Classifier) DetectFixations(points []models.GazePoint) []models.AttentionRegion {
	var fixations []models.AttentionRegion

	// Position threshold is configured in a millis-like unit; the /1000
	// conversion to normalized space must be preserved for compatibility
	threshold := c.fixation.PositionThreshold / 1000

	start := 0
	for start < len(points) {
		first := points[start]
		end := start

		for i := start + 1; i < len(points); i++ {
			if spatial.Distance(points[i], first) > threshold {
				break
			}
			end = i
		}

		if end > start {
			run := points[start : end+1]
			centroid := spatial.Centroid(run)

			duration := (points[end].Timestamp - points[start].Timestamp) * 1000

			// Stability: mean member distance to the centroid;
			// tighter runs score a higher intensity
			var stability float64
			for _, p := range run {
				stability += spatial.Point(p).Sub(centroid).Norm()
			}
			stability /= float64(len(run))

			if duration >= c.fixation.MinDurationMS {
				fixations = append(fixations, models.AttentionRegion{
					X:          centroid.X,
					Y:          centroid.Y,
					DurationMS: duration,
					Intensity:  duration / (1 + stability*1000),
					VisitCount: len(run),
				})
			}
		}

		start = end + 1
	}

	return fixations
}

// DetectSaccades flags interior indices where either adjacent segment
// velocity exceeds the velocity threshold or the acceleration exceeds the
// acceleration threshold. The criteria are independent: fast constant
// motion and abrupt speed change both qualify. Sequences shorter than 3
// points yield an empty result, and triples with non-positive elapsed
// time are skipped.
func (c *Classifier) DetectSaccades(points []models.GazePoint) []int {
	var indices []int

	if len(points) < 3 {
		return indices
	}

	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]

		v1, ok1 := spatial.SegmentVelocity(prev, curr)
		v2, ok2 := spatial.SegmentVelocity(curr, next)
		if !ok1 || !ok2 {
			continue
		}

		dt1 := curr.Timestamp - prev.Timestamp
		dt2 := next.Timestamp - curr.Timestamp
		accel := abs(v2-v1) / ((dt1 + dt2) / 2)

		if v1 > c.saccade.VelocityThreshold ||
			v2 > c.saccade.VelocityThreshold ||
			accel > c.saccade.AccelerationThreshold {
			indices = append(indices, i)
		}
	}

	return indices
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
