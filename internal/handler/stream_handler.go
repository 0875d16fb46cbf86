package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/corlabs/gaze-analytics-go/internal/models"
	"github.com/corlabs/gaze-analytics-go/internal/service"
	"github.com/corlabs/gaze-analytics-go/pkg/response"
)

// StreamHandler handles live gaze streaming over websocket
type StreamHandler struct {
	service  *service.SessionService
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(service *service.SessionService) *StreamHandler {
	return &StreamHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Stream upgrades the connection and runs the frame-in, point-out loop.
// Each inbound message is one eye detection; the estimated gaze point is
// written back on the same connection.
// GET /ws/sessions/:id
func (h *StreamHandler) Stream(c *gin.Context) {
	sessionID := c.Param("id")
	if _, err := h.service.Get(sessionID); err != nil {
		response.NotFound(c, err.Error())
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[Stream] upgrade failed for session %s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[Stream] client connected to session %s", sessionID)

	for {
		var det models.EyeDetectionResult
		if err := conn.ReadJSON(&det); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[Stream] read error on session %s: %v", sessionID, err)
			}
			break
		}

		point, err := h.service.IngestFrame(sessionID, det)
		if err != nil {
			conn.WriteJSON(gin.H{"error": err.Error()})
			break
		}

		if err := conn.WriteJSON(point); err != nil {
			log.Printf("[Stream] write error on session %s: %v", sessionID, err)
			break
		}
	}

	log.Printf("[Stream] client disconnected from session %s", sessionID)
}
