package handler

import (
	"bytes"
	"image"
	_ "image/jpeg" // background frame decode
	"image/png"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/service"
	"github.com/corlabs/gaze-analytics-go/pkg/response"
)

// HeatmapHandler handles HTTP requests for heatmap rendering
type HeatmapHandler struct {
	service *service.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(service *service.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{service: service}
}

// Render produces a PNG heatmap for a session
// GET /api/v1/heatmaps?session_id=...&width=...&height=...&mode=...
func (h *HeatmapHandler) Render(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}

	var req models.HeatmapRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	if req.Width <= 0 {
		req.Width = 640
	}
	if req.Height <= 0 {
		req.Height = 480
	}

	img, err := h.service.Render(sessionID, req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.writePNG(c, img)
}

// RenderBatchRequest carries raw points plus rendering parameters
type RenderBatchRequest struct {
	Points           []models.GazePoint `json:"points" binding:"required"`
	Width            int                `json:"width"`
	Height           int                `json:"height"`
	Mode             string             `json:"mode"`
	ColorScheme      string             `json:"scheme"`
	BlurRadius       int                `json:"blurRadius"`
	ResolutionFactor float64            `json:"resolutionFactor"`
	Intensity        float64            `json:"intensity"`
}

// RenderBatch produces a PNG heatmap over a posted point sequence
// POST /api/v1/heatmaps
func (h *HeatmapHandler) RenderBatch(c *gin.Context) {
	var req RenderBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if req.Width <= 0 {
		req.Width = 640
	}
	if req.Height <= 0 {
		req.Height = 480
	}

	img, err := h.service.RenderPoints(req.Points, models.HeatmapRequest{
		Width:            req.Width,
		Height:           req.Height,
		Mode:             req.Mode,
		ColorScheme:      req.ColorScheme,
		BlurRadius:       req.BlurRadius,
		ResolutionFactor: req.ResolutionFactor,
		Intensity:        req.Intensity,
	})
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.writePNG(c, img)
}

// RenderOverlay blends a session heatmap over an uploaded background frame.
// The heatmap is rendered at the background's dimensions.
// POST /api/v1/heatmaps/overlay (multipart: background file + form params)
func (h *HeatmapHandler) RenderOverlay(c *gin.Context) {
	sessionID := c.PostForm("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}

	var req models.HeatmapRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, "Invalid form parameters")
		return
	}

	file, _, err := c.Request.FormFile("background")
	if err != nil {
		response.BadRequest(c, "background image file is required")
		return
	}
	defer file.Close()

	background, _, err := image.Decode(file)
	if err != nil {
		response.BadRequest(c, "failed to decode background image")
		return
	}

	img, err := h.service.RenderOverlay(sessionID, req, background)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.writePNG(c, img)
}

func (h *HeatmapHandler) writePNG(c *gin.Context, img image.Image) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		response.InternalError(c, err.Error())
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
