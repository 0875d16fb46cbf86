// Package attention aggregates classified gaze events into summary
// statistics.
package attention

import (
	"github.com/corlabs/gaze-analytics-go/internal/events"
	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/stats"
)

// Summarizer derives an AttentionAnalysis from a gaze point sequence
type Summarizer struct {
	classifier *events.Classifier

	// MinConfidence gates points before classification in the
	// analysis/export path. Zero admits everything.
	minConfidence float64
}

// NewSummarizer creates a summarizer backed by the given classifier
func NewSummarizer(classifier *events.Classifier, minConfidence float64) *Summarizer {
	return &Summarizer{classifier: classifier, minConfidence: minConfidence}
}

// Summarize computes fixation regions, saccade count, average fixation
// duration and the total session span. Every field is well-defined
// (zero, not undefined) for empty input.
func (s *Summarizer) Summarize(points []models.GazePoint) models.AttentionAnalysis {
	analysis := models.AttentionAnalysis{Fixations: []models.AttentionRegion{}}

	// Session span covers the whole sequence, gated or not
	if len(points) > 1 {
		first := points[0].Timestamp
		last := points[len(points)-1].Timestamp
		analysis.TotalDurationMS = (last - first) * 1000
	}

	// Classification only sees points passing the analysis gate
	filtered := s.filter(points)
	if len(filtered) == 0 {
		return analysis
	}

	// Keep the exported fixations array non-null for JSON consumers
	if regions := s.classifier.DetectFixations(filtered); regions != nil {
		analysis.Fixations = regions
	}
	analysis.FixationCount = len(analysis.Fixations)

	durations := make([]float64, len(analysis.Fixations))
	for i, f := range analysis.Fixations {
		durations[i] = f.DurationMS
	}
	analysis.AverageFixationDurationMS = stats.Mean(durations)

	analysis.SaccadeCount = len(s.classifier.DetectSaccades(filtered))

	return analysis
}

// filter applies the analysis confidence gate
func (s *Summarizer) filter(points []models.GazePoint) []models.GazePoint {
	if s.minConfidence <= 0 {
		return points
	}

	filtered := make([]models.GazePoint, 0, len(points))
	for _, p := range points {
		if p.Confidence >= s.minConfidence {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
