package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/corlabs/gaze-analytics-go/internal/middleware"
	"github.com/corlabs/gaze-analytics-go/pkg/response"
)

// AuthHandler issues API tokens
type AuthHandler struct {
	secret string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(secret string) *AuthHandler {
	return &AuthHandler{secret: secret}
}

// TokenRequest represents the request body for issuing a token
type TokenRequest struct {
	ClientID string `json:"client_id" binding:"required"`
}

// Token issues a signed bearer token for the given client
// POST /api/v1/auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	if h.secret == "" {
		response.BadRequest(c, "Authentication is not configured")
		return
	}

	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	token, err := middleware.IssueToken(h.secret, req.ClientID)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"token": token, "expires_in": int(middleware.TokenTTL.Seconds())})
}
