package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/corlabs/gaze-analytics-go/internal/attention"
	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/database"
	"github.com/corlabs/gaze-analytics-go/internal/events"
	"github.com/corlabs/gaze-analytics-go/internal/handler"
	"github.com/corlabs/gaze-analytics-go/internal/middleware"
	"github.com/corlabs/gaze-analytics-go/internal/repository"
	"github.com/corlabs/gaze-analytics-go/internal/service"
	"github.com/corlabs/gaze-analytics-go/internal/session"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(300, time.Minute))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	db := database.GetDB()

	// Shared pipeline components
	classifier := events.NewClassifier(cfg.Fixation, cfg.Saccade)
	summarizer := attention.NewSummarizer(classifier, cfg.AnalysisMinConfidence)
	manager := session.NewManager(cfg.Gaze, cfg.Session)

	sessionRepo := repository.NewSessionRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)
	taskRepo := repository.NewAnalysisTaskRepository(db)

	sessionService := service.NewSessionService(manager, sessionRepo, cfg.Session.CollectMinConfidence)
	analysisService := service.NewAnalysisService(summarizer, sessionService, analysisRepo, taskRepo, db, cfg.Gaze, cfg.Session.CollectMinConfidence)
	heatmapService := service.NewHeatmapService(cfg.Heatmap, classifier, sessionService)

	sessionHandler := handler.NewSessionHandler(sessionService)
	analysisHandler := handler.NewAnalysisHandler(analysisService)
	heatmapHandler := handler.NewHeatmapHandler(heatmapService)
	authHandler := handler.NewAuthHandler(cfg.JWTSecret)
	streamHandler := handler.NewStreamHandler(sessionService)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Gaze Analytics API is running",
		})
	})

	r.POST("/api/v1/auth/token", authHandler.Token)

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionHandler.Create)
			sessions.GET("", sessionHandler.List)
			sessions.GET("/:id", sessionHandler.Get)
			sessions.POST("/:id/frames", sessionHandler.IngestFrames)
			sessions.GET("/:id/points", sessionHandler.Points)
			sessions.GET("/:id/analysis", analysisHandler.SessionAnalysis)
			sessions.POST("/:id/stop", sessionHandler.Stop)
			sessions.DELETE("/:id", sessionHandler.Delete)
		}

		analyses := api.Group("/analyses")
		{
			analyses.POST("/tasks", analysisHandler.CreateTask)
			analyses.GET("/tasks", analysisHandler.ListTasks)
			analyses.GET("/tasks/:id", analysisHandler.GetTask)
			analyses.POST("", analysisHandler.Create)
			analyses.GET("", analysisHandler.List)
			analyses.GET("/:id", analysisHandler.Get)
		}

		api.GET("/heatmaps", heatmapHandler.Render)
		api.POST("/heatmaps", heatmapHandler.RenderBatch)
		api.POST("/heatmaps/overlay", heatmapHandler.RenderOverlay)
	}

	// 实时数据流
	r.GET("/ws/sessions/:id", middleware.Auth(cfg.JWTSecret), streamHandler.Stream)

	return r
}
