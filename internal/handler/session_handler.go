package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/service"
	"github.com/corlabs/gaze-analytics-go/pkg/response"
)

// SessionHandler handles HTTP requests for gaze sessions
type SessionHandler struct {
	service *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(service *service.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

// Create starts a new gaze session
// POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	info, err := h.service.Create()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Created(c, info)
}

// Get retrieves a session by ID
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	info, err := h.service.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, info)
}

// List retrieves all sessions
// GET /api/v1/sessions
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.List()
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	if sessions == nil {
		sessions = []models.SessionInfo{}
	}
	response.Success(c, sessions)
}

// IngestFrames runs gaze estimation over a batch of eye detections
// POST /api/v1/sessions/:id/frames
func (h *SessionHandler) IngestFrames(c *gin.Context) {
	var req models.DetectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if len(req.Detections) == 0 {
		response.BadRequest(c, "No detections provided")
		return
	}

	points, err := h.service.IngestFrames(c.Param("id"), req.Detections)
	if err != nil {
		response.Error(c, http.StatusNotFound, err.Error())
		return
	}

	response.Success(c, gin.H{"points": points})
}

// Points returns the session's current gaze point buffer
// GET /api/v1/sessions/:id/points
func (h *SessionHandler) Points(c *gin.Context) {
	points, err := h.service.Points(c.Param("id"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	if points == nil {
		points = []models.GazePoint{}
	}
	response.Success(c, gin.H{"points": points})
}

// Stop halts collection for a session
// POST /api/v1/sessions/:id/stop
func (h *SessionHandler) Stop(c *gin.Context) {
	if err := h.service.Stop(c.Param("id")); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, nil)
}

// Delete removes a session and its stored data
// DELETE /api/v1/sessions/:id
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Param("id")); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, nil)
}
