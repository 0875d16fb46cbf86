package main

import (
	"log"

	"github.com/corlabs/gaze-analytics-go/internal/api"
	"github.com/corlabs/gaze-analytics-go/internal/config"
	"github.com/corlabs/gaze-analytics-go/internal/database"

	// Import analyzer packages to register them
	_ "github.com/corlabs/gaze-analytics-go/internal/analysis"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	dbConfig := database.Config{
		Path: cfg.DBPath,
	}
	if err := database.Init(dbConfig); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.Close()

	// 初始化路由
	router := api.SetupRouter(cfg)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
