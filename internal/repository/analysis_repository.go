package repository

import (
	"database/sql"
	"fmt"

	"github.com/corlabs/gaze-analytics-go/internal/database"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// AnalysisRepository handles database operations for attention analyses
type AnalysisRepository struct {
	db *sql.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// Save persists an attention analysis along with its fixation regions
func (r *AnalysisRepository) Save(sessionID string, analysis models.AttentionAnalysis) (int64, error) {
	var analysisID int64

	err := database.Transaction(func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO attention_analyses (session_id, total_duration_ms, average_fixation_duration_ms, saccade_count, fixation_count)
			VALUES (?, ?, ?, ?, ?)`,
			sessionID,
			analysis.TotalDurationMS,
			analysis.AverageFixationDurationMS,
			analysis.SaccadeCount,
			analysis.FixationCount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert attention analysis: %w", err)
		}

		analysisID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}

		if len(analysis.Fixations) == 0 {
			return nil
		}

		stmt, err := tx.Prepare(`
			INSERT INTO fixations (session_id, analysis_id, x, y, duration_ms, intensity, visit_count)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare fixation insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range analysis.Fixations {
			if _, err := stmt.Exec(sessionID, analysisID, f.X, f.Y, f.DurationMS, f.Intensity, f.VisitCount); err != nil {
				return fmt.Errorf("failed to insert fixation: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return analysisID, nil
}

// GetByID retrieves a stored analysis with its fixations
func (r *AnalysisRepository) GetByID(id int64) (*models.StoredAnalysis, error) {
	stored := &models.StoredAnalysis{}
	err := r.db.QueryRow(`
		SELECT id, session_id, total_duration_ms, average_fixation_duration_ms, saccade_count, fixation_count, created_at
		FROM attention_analyses WHERE id = ?`, id).Scan(
		&stored.ID,
		&stored.SessionID,
		&stored.Analysis.TotalDurationMS,
		&stored.Analysis.AverageFixationDurationMS,
		&stored.Analysis.SaccadeCount,
		&stored.Analysis.FixationCount,
		&stored.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("analysis not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	fixations, err := r.getFixations(id)
	if err != nil {
		return nil, err
	}
	stored.Analysis.Fixations = fixations

	return stored, nil
}

// ListBySession retrieves all stored analyses for a session, newest first
func (r *AnalysisRepository) ListBySession(sessionID string) ([]models.StoredAnalysis, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, total_duration_ms, average_fixation_duration_ms, saccade_count, fixation_count, created_at
		FROM attention_analyses WHERE session_id = ? ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	var analyses []models.StoredAnalysis
	for rows.Next() {
		var stored models.StoredAnalysis
		if err := rows.Scan(
			&stored.ID,
			&stored.SessionID,
			&stored.Analysis.TotalDurationMS,
			&stored.Analysis.AverageFixationDurationMS,
			&stored.Analysis.SaccadeCount,
			&stored.Analysis.FixationCount,
			&stored.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		analyses = append(analyses, stored)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range analyses {
		fixations, err := r.getFixations(analyses[i].ID)
		if err != nil {
			return nil, err
		}
		analyses[i].Analysis.Fixations = fixations
	}

	return analyses, nil
}

func (r *AnalysisRepository) getFixations(analysisID int64) ([]models.AttentionRegion, error) {
	rows, err := r.db.Query(`
		SELECT x, y, duration_ms, intensity, visit_count
		FROM fixations WHERE analysis_id = ? ORDER BY id ASC`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("failed to query fixations: %w", err)
	}
	defer rows.Close()

	fixations := []models.AttentionRegion{}
	for rows.Next() {
		var f models.AttentionRegion
		if err := rows.Scan(&f.X, &f.Y, &f.DurationMS, &f.Intensity, &f.VisitCount); err != nil {
			return nil, fmt.Errorf("failed to scan fixation: %w", err)
		}
		fixations = append(fixations, f)
	}

	return fixations, rows.Err()
}
