package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/corlabs/gaze-analytics-go/internal/attention"
	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/events"
	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/repository"
)

func init() {
	RegisterAnalyzer("attention_summary", func(db *sql.DB) Analyzer {
		return NewAttentionAnalyzer(db)
	})
}

// AttentionAnalyzer recomputes attention summaries over stored gaze points
type AttentionAnalyzer struct {
	*BaseAnalyzer
	sessionRepo  *repository.SessionRepository
	analysisRepo *repository.AnalysisRepository
	summarizer   *attention.Summarizer
}

// NewAttentionAnalyzer creates a new attention analyzer with default thresholds
func NewAttentionAnalyzer(db *sql.DB) *AttentionAnalyzer {
	cfg := config.Load()
	classifier := events.NewClassifier(cfg.Fixation, cfg.Saccade)

	return &AttentionAnalyzer{
		BaseAnalyzer: NewBaseAnalyzer(db, "attention_summary"),
		sessionRepo:  repository.NewSessionRepository(db),
		analysisRepo: repository.NewAnalysisRepository(db),
		summarizer:   attention.NewSummarizer(classifier, cfg.AnalysisMinConfidence),
	}
}

// Analyze runs the attention summary for the task's session
func (a *AttentionAnalyzer) Analyze(ctx context.Context, taskID int64, mode string) error {
	if err := a.MarkTaskAsRunning(taskID); err != nil {
		return fmt.Errorf("failed to mark task as running: %w", err)
	}

	info, err := a.GetTaskInfo(taskID)
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to get task info: %w", err)
	}

	var points []models.GazePoint
	if mode == models.TaskTypeIncremental {
		// Incremental runs re-summarize only the most recent window
		points, err = a.sessionRepo.GetRecentPoints(info.SessionID, incrementalWindowSize)
	} else {
		points, err = a.sessionRepo.GetPoints(info.SessionID, 0)
	}
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to load gaze points: %w", err)
	}

	if err := ctx.Err(); err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return err
	}

	analysis := a.summarizer.Summarize(points)

	analysisID, err := a.analysisRepo.Save(info.SessionID, analysis)
	if err != nil {
		a.MarkTaskAsFailed(taskID, err.Error())
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	if err := a.UpdateTaskProgress(taskID, len(points), len(points), 0); err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}

	summary, err := json.Marshal(map[string]interface{}{
		"analysis_id":    analysisID,
		"point_count":    len(points),
		"fixation_count": analysis.FixationCount,
		"saccade_count":  analysis.SaccadeCount,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal result summary: %w", err)
	}

	if err := a.MarkTaskAsCompleted(taskID, string(summary)); err != nil {
		return fmt.Errorf("failed to mark task as completed: %w", err)
	}

	log.Printf("[AttentionAnalyzer] task %d completed: %d points, %d fixations, %d saccades",
		taskID, len(points), analysis.FixationCount, analysis.SaccadeCount)

	return nil
}

// GetProgress returns the current progress of the analysis
func (a *AttentionAnalyzer) GetProgress(taskID int64) (*Progress, error) {
	info, err := a.GetTaskInfo(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task info: %w", err)
	}

	return &Progress{
		Processed: info.ProcessedPoints,
		Total:     info.TotalPoints,
		Failed:    info.FailedPoints,
		Percent:   info.ProgressPercent,
		Message:   info.Status,
	}, nil
}

// incrementalWindowSize bounds how many points an incremental run loads
const incrementalWindowSize = 1000
