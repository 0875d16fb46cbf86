package config

import (
	"os"
	"strconv"
)

// GazeConfig holds the gaze estimator tunables
type GazeConfig struct {
	SensitivityX     float64
	SensitivityY     float64
	OffsetX          float64
	OffsetY          float64
	PupilToGazeX     float64
	PupilToGazeY     float64
	GazeCenterX      float64
	GazeCenterY      float64
	SmoothingFactor  float64 // Exponential smoothing alpha; higher = more inertia
	MinConfidence    float64 // Smoothing anchor gate
	MaxGazeAngleDeg  float64 // Confidence halved beyond this angle
}

// FixationConfig holds fixation detection tunables
type FixationConfig struct {
	PositionThreshold float64 // Divided by 1000 to convert to normalized distance
	MinDurationMS     float64
}

// SaccadeConfig holds saccade detection tunables
type SaccadeConfig struct {
	VelocityThreshold     float64 // Normalized units per second
	AccelerationThreshold float64
}

// HeatmapConfig holds density aggregation tunables
type HeatmapConfig struct {
	ColorScheme         string
	IntensityMultiplier float64
	BlurRadius          int
	ResolutionFactor    float64
	AlphaTransparency   float64 // Overlay blending weight
	MinConfidence       float64 // Deposit gate; lower-confidence points are skipped
}

// SessionConfig holds streaming session tunables
type SessionConfig struct {
	HistorySize          int     // Rolling buffer capacity
	CollectMinConfidence float64 // Gate for appending points to the buffer
}

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Confidence gate applied before event classification in the
	// analysis/export path
	AnalysisMinConfidence float64

	Gaze     GazeConfig
	Fixation FixationConfig
	Saccade  SaccadeConfig
	Heatmap  HeatmapConfig
	Session  SessionConfig
}

// DefaultGazeConfig returns the estimator defaults
func DefaultGazeConfig() GazeConfig {
	return GazeConfig{
		SensitivityX:    1.0,
		SensitivityY:    1.0,
		OffsetX:         0.0,
		OffsetY:         0.0,
		PupilToGazeX:    0.8,
		PupilToGazeY:    0.8,
		GazeCenterX:     0.5,
		GazeCenterY:     0.5,
		SmoothingFactor: 0.3,
		MinConfidence:   0.7,
		MaxGazeAngleDeg: 45.0,
	}
}

// DefaultFixationConfig returns the fixation detection defaults
func DefaultFixationConfig() FixationConfig {
	return FixationConfig{
		PositionThreshold: 25.0,
		MinDurationMS:     100,
	}
}

// DefaultSaccadeConfig returns the saccade detection defaults
func DefaultSaccadeConfig() SaccadeConfig {
	return SaccadeConfig{
		VelocityThreshold:     300.0,
		AccelerationThreshold: 500.0,
	}
}

// DefaultHeatmapConfig returns the heatmap defaults
func DefaultHeatmapConfig() HeatmapConfig {
	return HeatmapConfig{
		ColorScheme:         "sequential_blue",
		IntensityMultiplier: 1.0,
		BlurRadius:          15,
		ResolutionFactor:    1.0,
		AlphaTransparency:   0.6,
		MinConfidence:       0.5,
	}
}

// DefaultSessionConfig returns the streaming session defaults
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		HistorySize:          100,
		CollectMinConfidence: 0.3,
	}
}

// Load 加载配置
// Every key is optional; absent keys take the documented defaults.
func Load() *Config {
	cfg := &Config{
		Port:                  getEnv("PORT", ":8080"),
		DBPath:                getEnv("DB_PATH", "./data/gaze/gaze.db"),
		JWTSecret:             getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		AnalysisMinConfidence: getEnvFloat("ANALYSIS_MIN_CONFIDENCE", 0.5),
		Gaze:                  DefaultGazeConfig(),
		Fixation:              DefaultFixationConfig(),
		Saccade:               DefaultSaccadeConfig(),
		Heatmap:               DefaultHeatmapConfig(),
		Session:               DefaultSessionConfig(),
	}

	cfg.Gaze.SensitivityX = getEnvFloat("GAZE_SENSITIVITY_X", cfg.Gaze.SensitivityX)
	cfg.Gaze.SensitivityY = getEnvFloat("GAZE_SENSITIVITY_Y", cfg.Gaze.SensitivityY)
	cfg.Gaze.OffsetX = getEnvFloat("GAZE_OFFSET_X", cfg.Gaze.OffsetX)
	cfg.Gaze.OffsetY = getEnvFloat("GAZE_OFFSET_Y", cfg.Gaze.OffsetY)
	cfg.Gaze.PupilToGazeX = getEnvFloat("PUPIL_TO_GAZE_RATIO_X", cfg.Gaze.PupilToGazeX)
	cfg.Gaze.PupilToGazeY = getEnvFloat("PUPIL_TO_GAZE_RATIO_Y", cfg.Gaze.PupilToGazeY)
	cfg.Gaze.GazeCenterX = getEnvFloat("GAZE_CENTER_X", cfg.Gaze.GazeCenterX)
	cfg.Gaze.GazeCenterY = getEnvFloat("GAZE_CENTER_Y", cfg.Gaze.GazeCenterY)
	cfg.Gaze.SmoothingFactor = getEnvFloat("GAZE_SMOOTHING_FACTOR", cfg.Gaze.SmoothingFactor)
	cfg.Gaze.MinConfidence = getEnvFloat("GAZE_MIN_CONFIDENCE", cfg.Gaze.MinConfidence)
	cfg.Gaze.MaxGazeAngleDeg = getEnvFloat("MAX_GAZE_ANGLE", cfg.Gaze.MaxGazeAngleDeg)

	cfg.Fixation.PositionThreshold = getEnvFloat("FIXATION_POSITION_THRESHOLD", cfg.Fixation.PositionThreshold)
	cfg.Fixation.MinDurationMS = getEnvFloat("FIXATION_MIN_DURATION_MS", cfg.Fixation.MinDurationMS)

	cfg.Saccade.VelocityThreshold = getEnvFloat("SACCADE_VELOCITY_THRESHOLD", cfg.Saccade.VelocityThreshold)
	cfg.Saccade.AccelerationThreshold = getEnvFloat("SACCADE_ACCELERATION_THRESHOLD", cfg.Saccade.AccelerationThreshold)

	cfg.Heatmap.ColorScheme = getEnv("HEATMAP_COLOR_SCHEME", cfg.Heatmap.ColorScheme)
	cfg.Heatmap.IntensityMultiplier = getEnvFloat("HEATMAP_INTENSITY_MULTIPLIER", cfg.Heatmap.IntensityMultiplier)
	cfg.Heatmap.BlurRadius = getEnvInt("HEATMAP_BLUR_RADIUS", cfg.Heatmap.BlurRadius)
	cfg.Heatmap.ResolutionFactor = getEnvFloat("HEATMAP_RESOLUTION_FACTOR", cfg.Heatmap.ResolutionFactor)
	cfg.Heatmap.AlphaTransparency = getEnvFloat("HEATMAP_ALPHA_TRANSPARENCY", cfg.Heatmap.AlphaTransparency)
	cfg.Heatmap.MinConfidence = getEnvFloat("HEATMAP_MIN_CONFIDENCE", cfg.Heatmap.MinConfidence)

	cfg.Session.HistorySize = getEnvInt("SESSION_HISTORY_SIZE", cfg.Session.HistorySize)
	cfg.Session.CollectMinConfidence = getEnvFloat("COLLECT_MIN_CONFIDENCE", cfg.Session.CollectMinConfidence)

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
