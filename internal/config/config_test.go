package config

import "testing"

func TestDefaults(t *testing.T) {
	gaze := DefaultGazeConfig()
	if gaze.SmoothingFactor != 0.3 {
		t.Errorf("SmoothingFactor = %v, want 0.3", gaze.SmoothingFactor)
	}
	if gaze.MinConfidence != 0.7 {
		t.Errorf("MinConfidence = %v, want 0.7", gaze.MinConfidence)
	}
	if gaze.PupilToGazeX != 0.8 || gaze.PupilToGazeY != 0.8 {
		t.Errorf("PupilToGaze = (%v, %v), want (0.8, 0.8)", gaze.PupilToGazeX, gaze.PupilToGazeY)
	}
	if gaze.MaxGazeAngleDeg != 45.0 {
		t.Errorf("MaxGazeAngleDeg = %v, want 45", gaze.MaxGazeAngleDeg)
	}

	fix := DefaultFixationConfig()
	if fix.PositionThreshold != 25.0 || fix.MinDurationMS != 100 {
		t.Errorf("fixation defaults = %+v", fix)
	}

	sac := DefaultSaccadeConfig()
	if sac.VelocityThreshold != 300.0 || sac.AccelerationThreshold != 500.0 {
		t.Errorf("saccade defaults = %+v", sac)
	}

	hm := DefaultHeatmapConfig()
	if hm.ColorScheme != "sequential_blue" {
		t.Errorf("ColorScheme = %q, want sequential_blue", hm.ColorScheme)
	}
	if hm.BlurRadius != 15 || hm.ResolutionFactor != 1.0 {
		t.Errorf("heatmap defaults = %+v", hm)
	}

	sess := DefaultSessionConfig()
	if sess.HistorySize != 100 {
		t.Errorf("HistorySize = %v, want 100", sess.HistorySize)
	}
	if sess.CollectMinConfidence != 0.3 {
		t.Errorf("CollectMinConfidence = %v, want 0.3", sess.CollectMinConfidence)
	}
}

func TestLoadAbsentKeysUseDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != ":8080" {
		t.Errorf("Port = %q, want :8080", cfg.Port)
	}
	if cfg.AnalysisMinConfidence != 0.5 {
		t.Errorf("AnalysisMinConfidence = %v, want 0.5", cfg.AnalysisMinConfidence)
	}
	if cfg.Gaze != DefaultGazeConfig() {
		t.Errorf("Gaze = %+v, want defaults", cfg.Gaze)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("GAZE_SMOOTHING_FACTOR", "0.5")
	t.Setenv("SESSION_HISTORY_SIZE", "10")
	t.Setenv("HEATMAP_COLOR_SCHEME", "rainbow")

	cfg := Load()
	if cfg.Gaze.SmoothingFactor != 0.5 {
		t.Errorf("SmoothingFactor = %v, want 0.5", cfg.Gaze.SmoothingFactor)
	}
	if cfg.Session.HistorySize != 10 {
		t.Errorf("HistorySize = %v, want 10", cfg.Session.HistorySize)
	}
	if cfg.Heatmap.ColorScheme != "rainbow" {
		t.Errorf("ColorScheme = %q, want rainbow", cfg.Heatmap.ColorScheme)
	}
}

func TestLoadMalformedValueFallsBack(t *testing.T) {
	t.Setenv("GAZE_MIN_CONFIDENCE", "not-a-number")

	cfg := Load()
	if cfg.Gaze.MinConfidence != 0.7 {
		t.Errorf("MinConfidence = %v, want default 0.7 on parse failure", cfg.Gaze.MinConfidence)
	}
}
