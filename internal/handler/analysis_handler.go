package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/service"
	"github.com/corlabs/gaze-analytics-go/pkg/response"
)

// AnalysisHandler handles HTTP requests for attention analyses
type AnalysisHandler struct {
	service *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(service *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{service: service}
}

// SessionAnalysis computes an attention summary over the session's buffer
// GET /api/v1/sessions/:id/analysis
func (h *AnalysisHandler) SessionAnalysis(c *gin.Context) {
	analysis, err := h.service.Summarize(c.Param("id"))
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, analysis)
}

// CreateAnalysisRequest represents the request body for an analysis.
// Exactly one input is used: a session (persisted result), a raw point
// sequence, or a raw detection sequence (both computed on the fly).
type CreateAnalysisRequest struct {
	SessionID  string                      `json:"session_id"`
	Points     []models.GazePoint          `json:"points"`
	Detections []models.EyeDetectionResult `json:"detections"`
}

// Create computes an attention analysis
// POST /api/v1/analyses
func (h *AnalysisHandler) Create(c *gin.Context) {
	var req CreateAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	switch {
	case req.SessionID != "":
		stored, err := h.service.SummarizeAndStore(req.SessionID)
		if err != nil {
			response.Error(c, http.StatusNotFound, err.Error())
			return
		}
		response.Created(c, stored)

	case len(req.Points) > 0:
		response.Success(c, h.service.SummarizePoints(req.Points))

	case len(req.Detections) > 0:
		points := h.service.EstimateSequence(req.Detections)
		response.Success(c, h.service.SummarizePoints(points))

	default:
		response.BadRequest(c, "session_id, points or detections is required")
	}
}

// Get retrieves a stored analysis by ID
// GET /api/v1/analyses/:id
func (h *AnalysisHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid analysis ID")
		return
	}

	stored, err := h.service.GetStored(id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, stored)
}

// List retrieves stored analyses for a session
// GET /api/v1/analyses?session_id=...
func (h *AnalysisHandler) List(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		response.BadRequest(c, "session_id is required")
		return
	}

	analyses, err := h.service.ListStored(sessionID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, analyses)
}

// CreateTaskRequest represents the request body for creating an analysis task
type CreateTaskRequest struct {
	SkillName string                 `json:"skill_name" binding:"required"`
	TaskType  string                 `json:"task_type" binding:"required"` // INCREMENTAL or FULL_RECOMPUTE
	SessionID string                 `json:"session_id" binding:"required"`
	Params    map[string]interface{} `json:"params"`
}

// CreateTask creates a new background analysis task
// POST /api/v1/analyses/tasks
func (h *AnalysisHandler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.service.CreateTask(req.SkillName, req.TaskType, req.SessionID, req.Params)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	response.Created(c, task)
}

// GetTask retrieves a task by ID
// GET /api/v1/analyses/tasks/:id
func (h *AnalysisHandler) GetTask(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid task ID")
		return
	}

	task, err := h.service.GetTask(id)
	if err != nil {
		response.NotFound(c, err.Error())
		return
	}

	response.Success(c, task)
}

// ListTasks retrieves analysis tasks
// GET /api/v1/analyses/tasks
func (h *AnalysisHandler) ListTasks(c *gin.Context) {
	sessionID := c.Query("session_id")
	status := c.Query("status")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 0 {
		response.BadRequest(c, "Invalid limit")
		return
	}

	tasks, err := h.service.ListTasks(sessionID, status, limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, tasks)
}
