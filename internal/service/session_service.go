package service

import (
	"fmt"
	"log"
	"time"

	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/repository"
	"github.com/corlabs/gaze-analytics-go/internal/session"
)

// SessionService handles business logic for gaze sessions. Live state sits in
// the in-memory manager; every ingested point is also appended to storage so
// analyses can run over more history than the rolling buffer keeps.
type SessionService struct {
	manager    *session.Manager
	repo       *repository.SessionRepository
	collectMin float64
}

// NewSessionService creates a new session service. collectMin is the same
// collection gate the session buffer applies, so stored history and the
// rolling buffer always agree on which points exist.
func NewSessionService(manager *session.Manager, repo *repository.SessionRepository, collectMin float64) *SessionService {
	return &SessionService{manager: manager, repo: repo, collectMin: collectMin}
}

// Create starts a new live session and persists its record
func (s *SessionService) Create() (models.SessionInfo, error) {
	sess := s.manager.Create()
	info := sess.Info()
	info.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	if err := s.repo.Create(info); err != nil {
		s.manager.Remove(sess.ID())
		return models.SessionInfo{}, fmt.Errorf("failed to persist session: %w", err)
	}

	log.Printf("[SessionService] created session %s (capacity %d)", info.ID, info.Capacity)
	return info, nil
}

// Get returns the live session info, falling back to storage for stopped sessions
func (s *SessionService) Get(id string) (models.SessionInfo, error) {
	if sess, ok := s.manager.Get(id); ok {
		return sess.Info(), nil
	}

	stored, err := s.repo.GetByID(id)
	if err != nil {
		return models.SessionInfo{}, err
	}
	return *stored, nil
}

// List returns all known sessions from storage
func (s *SessionService) List() ([]models.SessionInfo, error) {
	return s.repo.List()
}

// IngestFrames runs gaze estimation over a batch of eye detections.
// Estimated points enter the session's rolling buffer and are appended to
// storage under the same collection gate, so the two views never diverge.
// All estimated points are returned in input order, gated or not.
func (s *SessionService) IngestFrames(id string, detections []models.EyeDetectionResult) ([]models.GazePoint, error) {
	sess, ok := s.manager.Get(id)
	if !ok {
		return nil, fmt.Errorf("session not found: %s", id)
	}

	points := make([]models.GazePoint, 0, len(detections))
	collected := make([]models.GazePoint, 0, len(detections))
	for _, det := range detections {
		point, err := sess.Ingest(det)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
		if point.Confidence >= s.collectMin {
			collected = append(collected, point)
		}
	}

	if err := s.repo.AppendPoints(id, collected); err != nil {
		return nil, err
	}

	return points, nil
}

// IngestFrame runs gaze estimation over a single detection
func (s *SessionService) IngestFrame(id string, det models.EyeDetectionResult) (models.GazePoint, error) {
	points, err := s.IngestFrames(id, []models.EyeDetectionResult{det})
	if err != nil {
		return models.GazePoint{}, err
	}
	return points[0], nil
}

// Points returns the session's rolling buffer when live, or stored points otherwise
func (s *SessionService) Points(id string) ([]models.GazePoint, error) {
	if sess, ok := s.manager.Get(id); ok {
		return sess.Snapshot(), nil
	}

	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}
	return s.repo.GetPoints(id, 0)
}

// CountStoredPoints returns the persisted point count for a session
func (s *SessionService) CountStoredPoints(id string) (int, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return 0, err
	}
	return s.repo.CountPoints(id)
}

// StoredPoints returns the full persisted history for a session
func (s *SessionService) StoredPoints(id string) ([]models.GazePoint, error) {
	if _, err := s.repo.GetByID(id); err != nil {
		return nil, err
	}
	return s.repo.GetPoints(id, 0)
}

// Stop halts collection for a session but keeps its stored data
func (s *SessionService) Stop(id string) error {
	sess, ok := s.manager.Get(id)
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}

	sess.Stop()
	if err := s.repo.MarkStopped(id, time.Now()); err != nil {
		return err
	}

	log.Printf("[SessionService] stopped session %s", id)
	return nil
}

// Delete removes a session from the live manager and storage
func (s *SessionService) Delete(id string) error {
	s.manager.Remove(id)

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	log.Printf("[SessionService] deleted session %s", id)
	return nil
}
