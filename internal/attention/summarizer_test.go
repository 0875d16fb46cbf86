package attention

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/events"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

func newSummarizer(minConfidence float64) *Summarizer {
	classifier := events.NewClassifier(config.DefaultFixationConfig(), config.DefaultSaccadeConfig())
	return NewSummarizer(classifier, minConfidence)
}

func TestSummarizeEmptyInput(t *testing.T) {
	s := newSummarizer(0.5)

	analysis := s.Summarize(nil)
	if analysis.TotalDurationMS != 0 || analysis.AverageFixationDurationMS != 0 {
		t.Errorf("empty input: durations = %v/%v, want 0/0",
			analysis.TotalDurationMS, analysis.AverageFixationDurationMS)
	}
	if analysis.SaccadeCount != 0 || analysis.FixationCount != 0 {
		t.Errorf("empty input: counts = %d/%d, want 0/0",
			analysis.SaccadeCount, analysis.FixationCount)
	}
	if analysis.Fixations == nil {
		t.Error("fixations must be an empty array, not null")
	}
}

func TestSummarizeSinglePoint(t *testing.T) {
	s := newSummarizer(0)

	analysis := s.Summarize([]models.GazePoint{{X: 0.5, Y: 0.5, Confidence: 1, Timestamp: 4}})
	if analysis.TotalDurationMS != 0 {
		t.Errorf("single point total duration = %v, want 0", analysis.TotalDurationMS)
	}
}

func TestSummarizeFixationsAndDurations(t *testing.T) {
	s := newSummarizer(0.5)

	var points []models.GazePoint
	for i := 0; i < 5; i++ {
		points = append(points, models.GazePoint{
			X: 0.3, Y: 0.3, Confidence: 1.0, Timestamp: float64(i) * 0.1,
		})
	}
	for i := 0; i < 5; i++ {
		points = append(points, models.GazePoint{
			X: 0.7, Y: 0.7, Confidence: 1.0, Timestamp: 1.0 + float64(i)*0.1,
		})
	}

	analysis := s.Summarize(points)
	if analysis.FixationCount != 2 {
		t.Fatalf("fixation count = %d, want 2", analysis.FixationCount)
	}
	// Each cluster spans 400ms
	if math.Abs(analysis.AverageFixationDurationMS-400) > 1e-9 {
		t.Errorf("average fixation duration = %v, want 400", analysis.AverageFixationDurationMS)
	}
	// Whole sequence spans 1.4s
	if math.Abs(analysis.TotalDurationMS-1400) > 1e-9 {
		t.Errorf("total duration = %v, want 1400", analysis.TotalDurationMS)
	}
}

func TestSummarizeAllPointsGated(t *testing.T) {
	s := newSummarizer(0.5)

	// 50 zero-confidence points: the gate removes everything before
	// classification, but the session span is still computed
	var points []models.GazePoint
	for i := 0; i < 50; i++ {
		points = append(points, models.GazePoint{
			X: 0.5, Y: 0.5, Confidence: 0, Timestamp: float64(i) * 0.1,
		})
	}

	analysis := s.Summarize(points)
	if math.Abs(analysis.TotalDurationMS-4900) > 1e-9 {
		t.Errorf("total duration = %v, want 4900", analysis.TotalDurationMS)
	}
	if analysis.AverageFixationDurationMS != 0 {
		t.Errorf("average fixation duration = %v, want 0", analysis.AverageFixationDurationMS)
	}
	if analysis.SaccadeCount != 0 || analysis.FixationCount != 0 {
		t.Errorf("counts = %d/%d, want 0/0", analysis.SaccadeCount, analysis.FixationCount)
	}
}

func TestExportFieldNames(t *testing.T) {
	s := newSummarizer(0)

	points := []models.GazePoint{
		{X: 0.5, Y: 0.5, Confidence: 1, Timestamp: 0},
		{X: 0.5, Y: 0.5, Confidence: 1, Timestamp: 0.2},
	}

	data, err := json.Marshal(s.Summarize(points))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	// Field names are a compatibility contract with existing consumers
	doc := string(data)
	for _, field := range []string{
		`"total_duration_ms"`,
		`"average_fixation_duration_ms"`,
		`"saccade_count"`,
		`"fixation_count"`,
		`"fixations"`,
		`"duration_ms"`,
		`"intensity"`,
		`"visit_count"`,
	} {
		if !strings.Contains(doc, field) {
			t.Errorf("export missing field %s in %s", field, doc)
		}
	}
}
