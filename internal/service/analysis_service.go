package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"

	"github.com/corlabs/gaze-analytics-go/internal/analysis"
	"github.com/corlabs/gaze-analytics-go/internal/attention"
	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/gaze"
	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/repository"
)

// AnalysisService handles attention analysis business logic
type AnalysisService struct {
	summarizer   *attention.Summarizer
	sessions     *SessionService
	analysisRepo *repository.AnalysisRepository
	taskRepo     *repository.AnalysisTaskRepository
	db           *sql.DB

	gazeCfg    config.GazeConfig
	collectMin float64
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(
	summarizer *attention.Summarizer,
	sessions *SessionService,
	analysisRepo *repository.AnalysisRepository,
	taskRepo *repository.AnalysisTaskRepository,
	db *sql.DB,
	gazeCfg config.GazeConfig,
	collectMin float64,
) *AnalysisService {
	return &AnalysisService{
		summarizer:   summarizer,
		sessions:     sessions,
		analysisRepo: analysisRepo,
		taskRepo:     taskRepo,
		db:           db,
		gazeCfg:      gazeCfg,
		collectMin:   collectMin,
	}
}

// SummarizePoints computes an attention analysis over a caller-supplied
// point sequence without touching any session state
func (s *AnalysisService) SummarizePoints(points []models.GazePoint) models.AttentionAnalysis {
	return s.summarizer.Summarize(points)
}

// EstimateSequence runs a fresh estimator over a detection sequence and
// applies the collection gate, mirroring the batch export path
func (s *AnalysisService) EstimateSequence(detections []models.EyeDetectionResult) []models.GazePoint {
	estimator := gaze.NewEstimator(s.gazeCfg)

	points := make([]models.GazePoint, 0, len(detections))
	for _, det := range detections {
		point := estimator.Estimate(det)
		if point.Confidence >= s.collectMin {
			points = append(points, point)
		}
	}
	return points
}

// Summarize computes an attention analysis over the session's current buffer
func (s *AnalysisService) Summarize(sessionID string) (models.AttentionAnalysis, error) {
	points, err := s.sessions.Points(sessionID)
	if err != nil {
		return models.AttentionAnalysis{}, err
	}

	return s.summarizer.Summarize(points), nil
}

// SummarizeAndStore computes and persists an attention analysis
func (s *AnalysisService) SummarizeAndStore(sessionID string) (*models.StoredAnalysis, error) {
	points, err := s.sessions.Points(sessionID)
	if err != nil {
		return nil, err
	}

	summary := s.summarizer.Summarize(points)

	id, err := s.analysisRepo.Save(sessionID, summary)
	if err != nil {
		return nil, err
	}

	return s.analysisRepo.GetByID(id)
}

// GetStored retrieves a stored analysis by ID
func (s *AnalysisService) GetStored(id int64) (*models.StoredAnalysis, error) {
	return s.analysisRepo.GetByID(id)
}

// ListStored retrieves stored analyses for a session
func (s *AnalysisService) ListStored(sessionID string) ([]models.StoredAnalysis, error) {
	return s.analysisRepo.ListBySession(sessionID)
}

// CreateTask creates a background analysis task and starts its worker
func (s *AnalysisService) CreateTask(skillName, taskType, sessionID string, params map[string]interface{}) (*models.AnalysisTask, error) {
	if analysis.GetAnalyzer(skillName, s.db) == nil {
		return nil, fmt.Errorf("invalid skill name %q, registered: %v", skillName, analysis.RegisteredSkills())
	}

	if taskType != models.TaskTypeIncremental && taskType != models.TaskTypeFullRecompute {
		return nil, fmt.Errorf("invalid task type: %s", taskType)
	}

	totalPoints, err := s.sessions.CountStoredPoints(sessionID)
	if err != nil {
		return nil, err
	}

	var paramsJSON string
	if params != nil {
		paramsBytes, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize params: %w", err)
		}
		paramsJSON = string(paramsBytes)
	}

	task := &models.AnalysisTask{
		SkillName:       skillName,
		TaskType:        taskType,
		Status:          models.TaskStatusPending,
		ProgressPercent: 0,
		SessionID:       sessionID,
		ParamsJSON:      paramsJSON,
		TotalPoints:     totalPoints,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	// Run the analyzer asynchronously
	go s.runTask(task.ID, skillName, taskType)

	return task, nil
}

// GetTask retrieves an analysis task by ID
func (s *AnalysisService) GetTask(id int64) (*models.AnalysisTask, error) {
	return s.taskRepo.GetByID(id)
}

// ListTasks retrieves analysis tasks with optional filters
func (s *AnalysisService) ListTasks(sessionID, status string, limit int) ([]*models.AnalysisTask, error) {
	return s.taskRepo.List(sessionID, status, limit)
}

func (s *AnalysisService) runTask(taskID int64, skillName, taskType string) {
	log.Printf("[AnalysisService] starting worker for task %d (skill: %s, type: %s)", taskID, skillName, taskType)

	analyzer := analysis.GetAnalyzer(skillName, s.db)
	if analyzer == nil {
		log.Printf("[AnalysisService] failed to get analyzer for skill: %s", skillName)
		s.taskRepo.UpdateStatus(taskID, models.TaskStatusFailed, fmt.Sprintf("unknown skill: %s", skillName))
		return
	}

	if err := analyzer.Analyze(context.Background(), taskID, taskType); err != nil {
		log.Printf("[AnalysisService] task %d failed: %v", taskID, err)
		return
	}

	log.Printf("[AnalysisService] task %d completed", taskID)
}
