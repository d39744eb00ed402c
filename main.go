package main

import (
	"log"

	"promptvault-backend/config"
	"promptvault-backend/internal/api"
	"promptvault-backend/internal/database"
	"promptvault-backend/internal/models"
	"promptvault-backend/pkg/logger"
)

// @title promptvault-backend API
// @version 1.0
// @description Prompt management service with variable templates, usage tracking and analytics.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	err = logger.InitLogger(&logger.Config{
		Level:      cfg.LogLevel,
		Filename:   cfg.LogFilename,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   cfg.LogCompress,
	})
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	router, err := api.NewRouter()
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	// Migrate the schema
	err = database.DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Tag{},
		&models.Prompt{},
		&models.PromptUsage{},
	)
	if err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	if err := router.Run(cfg.ServerAddr()); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
