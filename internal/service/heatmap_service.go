package service

import (
	"fmt"
	"image"

	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/events"
	"github.com/corlabs/gaze-analytics-go/internal/heatmap"
	"github.com/corlabs/gaze-analytics-go/internal/models"
)

// HeatmapService renders heatmaps over session gaze data
type HeatmapService struct {
	baseCfg    config.HeatmapConfig
	classifier *events.Classifier
	sessions   *SessionService
}

// NewHeatmapService creates a new heatmap service
func NewHeatmapService(baseCfg config.HeatmapConfig, classifier *events.Classifier, sessions *SessionService) *HeatmapService {
	return &HeatmapService{
		baseCfg:    baseCfg,
		classifier: classifier,
		sessions:   sessions,
	}
}

// Render produces a heatmap image for a session. Request fields override the
// configured defaults; zero values keep them.
func (s *HeatmapService) Render(sessionID string, req models.HeatmapRequest) (*image.RGBA, error) {
	points, err := s.sessions.Points(sessionID)
	if err != nil {
		return nil, err
	}

	return s.RenderPoints(points, req)
}

// RenderPoints produces a heatmap image over a caller-supplied point sequence
func (s *HeatmapService) RenderPoints(points []models.GazePoint, req models.HeatmapRequest) (*image.RGBA, error) {
	if req.Width <= 0 || req.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %dx%d", req.Width, req.Height)
	}

	cfg := s.baseCfg
	if req.ColorScheme != "" {
		cfg.ColorScheme = req.ColorScheme
	}
	if req.BlurRadius > 0 {
		cfg.BlurRadius = req.BlurRadius
	}
	if req.ResolutionFactor > 0 {
		cfg.ResolutionFactor = req.ResolutionFactor
	}
	if req.Intensity > 0 {
		cfg.IntensityMultiplier = req.Intensity
	}

	mode := req.Mode
	if mode == "" {
		mode = heatmap.ModeDensity
	}

	engine := heatmap.NewEngine(cfg, s.classifier)
	return engine.Render(points, req.Width, req.Height, mode)
}

// RenderOverlay renders a heatmap and blends it onto a background image
func (s *HeatmapService) RenderOverlay(sessionID string, req models.HeatmapRequest, background image.Image) (*image.RGBA, error) {
	bounds := background.Bounds()
	req.Width = bounds.Dx()
	req.Height = bounds.Dy()

	heat, err := s.Render(sessionID, req)
	if err != nil {
		return nil, err
	}

	cfg := s.baseCfg
	engine := heatmap.NewEngine(cfg, s.classifier)
	return engine.Overlay(background, heat), nil
}
