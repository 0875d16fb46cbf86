package models

// HeatmapRequest represents the heatmap API query parameters
type HeatmapRequest struct {
	Width            int     `form:"width"`
	Height           int     `form:"height"`
	Mode             string  `form:"mode"`   // "density", "fixation" or "saccade"
	ColorScheme      string  `form:"scheme"` // Named preset; unknown names fall back
	BlurRadius       int     `form:"blurRadius"`
	ResolutionFactor float64 `form:"resolutionFactor"`
	Intensity        float64 `form:"intensity"`
}
