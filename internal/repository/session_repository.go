package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/corlabs/gaze-analytics-go/internal/database"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// SessionRepository handles database operations for gaze sessions
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session record
func (r *SessionRepository) Create(info models.SessionInfo) error {
	query := `INSERT INTO sessions (id, capacity, point_count, created_at) VALUES (?, ?, ?, ?)`

	_, err := r.db.Exec(query, info.ID, info.Capacity, info.PointCount, info.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by ID
func (r *SessionRepository) GetByID(id string) (*models.SessionInfo, error) {
	query := `SELECT id, capacity, point_count, created_at, stopped_at FROM sessions WHERE id = ?`

	info := &models.SessionInfo{}
	var stoppedAt sql.NullString
	err := r.db.QueryRow(query, id).Scan(
		&info.ID,
		&info.Capacity,
		&info.PointCount,
		&info.CreatedAt,
		&stoppedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	info.StoppedAt = stoppedAt.String

	return info, nil
}

// List retrieves all sessions ordered by creation time
func (r *SessionRepository) List() ([]models.SessionInfo, error) {
	query := `SELECT id, capacity, point_count, created_at, stopped_at FROM sessions ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionInfo
	for rows.Next() {
		var info models.SessionInfo
		var stoppedAt sql.NullString
		if err := rows.Scan(&info.ID, &info.Capacity, &info.PointCount, &info.CreatedAt, &stoppedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.StoppedAt = stoppedAt.String
		sessions = append(sessions, info)
	}

	return sessions, rows.Err()
}

// MarkStopped records the stop time for a session
func (r *SessionRepository) MarkStopped(id string, at time.Time) error {
	result, err := r.db.Exec(`UPDATE sessions SET stopped_at = ? WHERE id = ?`, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to stop session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// Delete removes a session and its cascaded points
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// AppendPoints stores a batch of gaze points and bumps the session counter.
// The batch is written in one transaction so a partial insert never skews
// point_count.
func (r *SessionRepository) AppendPoints(sessionID string, points []models.GazePoint) error {
	if len(points) == 0 {
		return nil
	}

	return database.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO gaze_points (session_id, x, y, confidence, timestamp) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare point insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range points {
			if _, err := stmt.Exec(sessionID, p.X, p.Y, p.Confidence, p.Timestamp); err != nil {
				return fmt.Errorf("failed to insert gaze point: %w", err)
			}
		}

		if _, err := tx.Exec(`UPDATE sessions SET point_count = point_count + ? WHERE id = ?`, len(points), sessionID); err != nil {
			return fmt.Errorf("failed to update point count: %w", err)
		}

		return nil
	})
}

// GetPoints retrieves stored gaze points for a session in timestamp order
func (r *SessionRepository) GetPoints(sessionID string, limit int) ([]models.GazePoint, error) {
	query := `SELECT x, y, confidence, timestamp FROM gaze_points WHERE session_id = ? ORDER BY timestamp ASC`
	args := []interface{}{sessionID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query gaze points: %w", err)
	}
	defer rows.Close()

	var points []models.GazePoint
	for rows.Next() {
		var p models.GazePoint
		if err := rows.Scan(&p.X, &p.Y, &p.Confidence, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan gaze point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// GetRecentPoints retrieves the newest N points, returned in timestamp order
func (r *SessionRepository) GetRecentPoints(sessionID string, limit int) ([]models.GazePoint, error) {
	if limit <= 0 {
		return r.GetPoints(sessionID, 0)
	}

	rows, err := r.db.Query(`
		SELECT x, y, confidence, timestamp FROM (
			SELECT x, y, confidence, timestamp FROM gaze_points
			WHERE session_id = ? ORDER BY timestamp DESC LIMIT ?
		) ORDER BY timestamp ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent gaze points: %w", err)
	}
	defer rows.Close()

	var points []models.GazePoint
	for rows.Next() {
		var p models.GazePoint
		if err := rows.Scan(&p.X, &p.Y, &p.Confidence, &p.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan gaze point: %w", err)
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// CountPoints returns the stored point count for a session
func (r *SessionRepository) CountPoints(sessionID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM gaze_points WHERE session_id = ?`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count gaze points: %w", err)
	}
	return count, nil
}
