// Package session owns the streaming pipeline state: the rolling gaze
// history and the estimator's smoothing anchor.
package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/gaze"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// Session holds a bounded rolling buffer of recent gaze points plus the
// estimator whose anchor gives smoothing continuity across frames. All
// methods are serialized by an internal mutex so the HTTP and WebSocket
// ingest paths can share one session.
type Session struct {
	mu sync.Mutex

	id        string
	estimator *gaze.Estimator
	cfg       config.SessionConfig

	points  []models.GazePoint
	started bool
}

// New creates a stopped session; call Start before ingesting
func New(gazeCfg config.GazeConfig, cfg config.SessionConfig) *Session {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = config.DefaultSessionConfig().HistorySize
	}
	return &Session{
		id:        uuid.NewString(),
		estimator: gaze.NewEstimator(gazeCfg),
		cfg:       cfg,
	}
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Start resets the rolling buffer and the smoothing anchor. A session
// restarted after Stop behaves identically to a freshly constructed one.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = nil
	s.estimator.Reset()
	s.started = true
}

// Stop discards all state
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = nil
	s.estimator.Reset()
	s.started = false
}

// Active reports whether the session accepts frames
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Ingest runs the gaze estimator on one detection and appends the result
// to the rolling buffer, evicting the oldest entry once capacity is
// exceeded. It never blocks on frame availability; absence of a frame is
// the caller's concern. Points below the collect gate are estimated (so
// the anchor logic still runs) but not buffered.
func (s *Session) Ingest(det models.EyeDetectionResult) (models.GazePoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return models.GazePoint{}, fmt.Errorf("session %s is not started", s.id)
	}

	point := s.estimator.Estimate(det)

	if point.Confidence >= s.cfg.CollectMinConfidence {
		s.points = append(s.points, point)
		if len(s.points) > s.cfg.HistorySize {
			// FIFO eviction, strictly oldest first
			s.points = s.points[len(s.points)-s.cfg.HistorySize:]
		}
	}

	return point, nil
}

// Snapshot returns a copy of the rolling buffer in ingest order for
// on-demand classification or density aggregation
func (s *Session) Snapshot() []models.GazePoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.GazePoint, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the current buffer occupancy
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// Info describes the session for API responses
func (s *Session) Info() models.SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	return models.SessionInfo{
		ID:         s.id,
		Capacity:   s.cfg.HistorySize,
		PointCount: len(s.points),
	}
}

// Manager tracks live sessions by ID
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	gazeCfg config.GazeConfig
	sessCfg config.SessionConfig
}

// NewManager creates a session manager with shared pipeline configuration
func NewManager(gazeCfg config.GazeConfig, sessCfg config.SessionConfig) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		gazeCfg:  gazeCfg,
		sessCfg:  sessCfg,
	}
}

// Create starts and registers a new session
func (m *Manager) Create() *Session {
	s := New(m.gazeCfg, m.sessCfg)
	s.Start()

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	return s
}

// Get looks up a live session
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Remove stops and unregisters a session
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if ok {
		s.Stop()
	}
	return ok
}
