package repository

import (
	"database/sql"
	"fmt"

	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// AnalysisTaskRepository handles database operations for analysis tasks
type AnalysisTaskRepository struct {
	db *sql.DB
}

// NewAnalysisTaskRepository creates a new analysis task repository
func NewAnalysisTaskRepository(db *sql.DB) *AnalysisTaskRepository {
	return &AnalysisTaskRepository{db: db}
}

// Create creates a new analysis task
func (r *AnalysisTaskRepository) Create(task *models.AnalysisTask) error {
	query := `
		INSERT INTO analysis_tasks (
			skill_name, task_type, status, progress_percent, session_id,
			params_json, total_points, processed_points, failed_points,
			result_summary, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Exec(query,
		task.SkillName,
		task.TaskType,
		task.Status,
		task.ProgressPercent,
		task.SessionID,
		task.ParamsJSON,
		task.TotalPoints,
		task.ProcessedPoints,
		task.FailedPoints,
		task.ResultSummary,
		task.ErrorMessage,
	)

	if err != nil {
		return fmt.Errorf("failed to create analysis task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	task.ID = id
	return nil
}

// GetByID retrieves an analysis task by ID
func (r *AnalysisTaskRepository) GetByID(id int64) (*models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, task_type, status, progress_percent, session_id,
			   params_json, total_points, processed_points, failed_points,
			   result_summary, error_message, created_at, updated_at
		FROM analysis_tasks
		WHERE id = ?
	`

	task := &models.AnalysisTask{}
	err := r.db.QueryRow(query, id).Scan(
		&task.ID,
		&task.SkillName,
		&task.TaskType,
		&task.Status,
		&task.ProgressPercent,
		&task.SessionID,
		&task.ParamsJSON,
		&task.TotalPoints,
		&task.ProcessedPoints,
		&task.FailedPoints,
		&task.ResultSummary,
		&task.ErrorMessage,
		&task.CreatedAt,
		&task.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis task not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis task: %w", err)
	}

	return task, nil
}

// List retrieves analysis tasks with optional filters
func (r *AnalysisTaskRepository) List(sessionID string, status string, limit int) ([]*models.AnalysisTask, error) {
	query := `
		SELECT id, skill_name, task_type, status, progress_percent, session_id,
			   params_json, total_points, processed_points, failed_points,
			   result_summary, error_message, created_at, updated_at
		FROM analysis_tasks
		WHERE 1=1
	`

	var args []interface{}
	if sessionID != "" {
		query += " AND session_id = ?"
		args = append(args, sessionID)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list analysis tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.AnalysisTask
	for rows.Next() {
		task := &models.AnalysisTask{}
		if err := rows.Scan(
			&task.ID,
			&task.SkillName,
			&task.TaskType,
			&task.Status,
			&task.ProgressPercent,
			&task.SessionID,
			&task.ParamsJSON,
			&task.TotalPoints,
			&task.ProcessedPoints,
			&task.FailedPoints,
			&task.ResultSummary,
			&task.ErrorMessage,
			&task.CreatedAt,
			&task.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis task: %w", err)
		}
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

// UpdateStatus updates a task's status and error message. Progress and
// completion transitions belong to the analyzer's BaseAnalyzer helpers;
// this covers the service-side failure path before an analyzer runs.
func (r *AnalysisTaskRepository) UpdateStatus(id int64, status string, errorMessage string) error {
	_, err := r.db.Exec(`
		UPDATE analysis_tasks
		SET status = ?, error_message = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	return nil
}
