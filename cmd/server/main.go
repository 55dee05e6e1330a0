package main

import (
	"context"

	"go.uber.org/zap"

	"hazardhunt/internal/config"
	"hazardhunt/internal/database"
	"hazardhunt/internal/engine"
	logger "hazardhunt/internal/logging"
	"hazardhunt/internal/models"
	"hazardhunt/internal/repository"
	"hazardhunt/internal/router"
)

func main() {
	// Config loads before the real logger exists, so it gets a bootstrap one.
	bootstrap := zap.Must(zap.NewProduction())
	if err := config.Init(".", bootstrap); err != nil {
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Logger
	logConf := config.Conf.Logging
	log, err := logger.Init(logger.Options{
		Directory:  logConf.Directory,
		MaxSize:    logConf.MaxSize,
		MaxBackups: logConf.MaxBackups,
		MaxAge:     logConf.MaxAge,
		Compress:   logConf.Compress,
	})
	if err != nil {
		bootstrap.Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	// Initialize Database
	database.Init(log)

	// Seed the games catalog on first boot
	if config.Conf.Games.Seed {
		catalog, err := models.LoadCatalog(config.Conf.Games.CatalogPath)
		if err != nil {
			log.Fatal("Failed to load games catalog", zap.Error(err))
		}
		seeded, err := repository.SeedCatalog(context.Background(), catalog)
		if err != nil {
			log.Fatal("Failed to seed games catalog", zap.Error(err))
		}
		if seeded > 0 {
			log.Info("Seeded games catalog", zap.Int("games", seeded))
		}
	}

	// Session manager persists every completed session as it finishes
	manager := engine.NewManager(log, nil, func(session models.GameSession, result models.GameResult) {
		if err := repository.SaveSession(context.Background(), &session); err != nil {
			log.Error("Failed to persist completed session",
				zap.String("session_id", session.ID), zap.Error(err))
		}
	})

	// Setup router, passing the logger to it
	r := router.Setup(log, manager)

	// Start the Gin server
	port := ":" + config.Conf.Server.Port
	log.Info("Server listening on http://localhost" + port)
	if err := r.Run(port); err != nil {
		log.Fatal("Failed to run Gin server", zap.Error(err))
	}
}
