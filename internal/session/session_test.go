package session

import (
	"testing"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// detection yields a valid centered detection with the given confidence
func detection(conf, ts float64) models.EyeDetectionResult {
	return models.EyeDetectionResult{
		LeftEye:    models.EyeRegion{X: 100, Y: 100, Width: 60, Height: 40, Confidence: conf},
		RightEye:   models.EyeRegion{X: 220, Y: 100, Width: 60, Height: 40, Confidence: conf},
		LeftPupil:  models.PupilData{X: 130, Y: 120, Confidence: conf},
		RightPupil: models.PupilData{X: 250, Y: 120, Confidence: conf},
		Valid:      true,
		Timestamp:  ts,
	}
}

func newTestSession(capacity int) *Session {
	sessCfg := config.DefaultSessionConfig()
	sessCfg.HistorySize = capacity
	return New(config.DefaultGazeConfig(), sessCfg)
}

func TestIngestRequiresStart(t *testing.T) {
	s := newTestSession(10)

	if _, err := s.Ingest(detection(1.0, 0)); err == nil {
		t.Error("ingest on a stopped session must fail")
	}

	s.Start()
	if _, err := s.Ingest(detection(1.0, 0)); err != nil {
		t.Errorf("ingest after start: %v", err)
	}
}

func TestRollingBufferEviction(t *testing.T) {
	s := newTestSession(3)
	s.Start()

	// Capacity 3, ingest 5: snapshot holds exactly the last 3 in order
	for i := 0; i < 5; i++ {
		if _, err := s.Ingest(detection(1.0, float64(i))); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}

	snap := s.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("snapshot length = %d, want 3", len(snap))
	}
	for i, want := range []float64{2, 3, 4} {
		if snap[i].Timestamp != want {
			t.Errorf("snapshot[%d].Timestamp = %v, want %v", i, snap[i].Timestamp, want)
		}
	}
}

func TestCollectGateSkipsLowConfidence(t *testing.T) {
	s := newTestSession(10)
	s.Start()

	// 0.2 is below the default 0.3 collect gate
	point, err := s.Ingest(detection(0.2, 0))
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if point.Confidence != 0.2 {
		t.Errorf("returned confidence = %v, want 0.2", point.Confidence)
	}
	if s.Len() != 0 {
		t.Errorf("low-confidence point buffered; len = %d, want 0", s.Len())
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := newTestSession(10)
	s.Start()
	s.Ingest(detection(1.0, 0))

	snap := s.Snapshot()
	snap[0].X = 99

	if got := s.Snapshot()[0].X; got == 99 {
		t.Error("snapshot aliases the internal buffer")
	}
}

func TestRestartClearsSmoothingBias(t *testing.T) {
	s := newTestSession(10)
	s.Start()

	first, _ := s.Ingest(detection(1.0, 0))
	s.Ingest(detection(1.0, 0.1))

	s.Stop()
	if s.Len() != 0 {
		t.Fatal("stop must discard the buffer")
	}

	s.Start()
	if s.Len() != 0 {
		t.Fatal("restart must begin empty")
	}

	// No residual anchor: the first post-restart estimate matches a
	// fresh session's first estimate
	restarted, err := s.Ingest(detection(1.0, 5))
	if err != nil {
		t.Fatalf("ingest after restart: %v", err)
	}
	if restarted.X != first.X || restarted.Y != first.Y {
		t.Errorf("post-restart point = (%v, %v), want fresh (%v, %v)",
			restarted.X, restarted.Y, first.X, first.Y)
	}
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager(config.DefaultGazeConfig(), config.DefaultSessionConfig())

	s := m.Create()
	if !s.Active() {
		t.Fatal("created session must be active")
	}

	got, ok := m.Get(s.ID())
	if !ok || got != s {
		t.Fatal("manager lost the session")
	}

	if !m.Remove(s.ID()) {
		t.Fatal("remove failed")
	}
	if s.Active() {
		t.Error("removed session must be stopped")
	}
	if _, ok := m.Get(s.ID()); ok {
		t.Error("removed session still retrievable")
	}
}
