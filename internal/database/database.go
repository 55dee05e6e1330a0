package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hazardhunt/internal/config"
	logging "hazardhunt/internal/logging"
	"hazardhunt/internal/models"
)

var DB *gorm.DB

// Init opens the Postgres connection and runs migrations.
func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port)

	gormLogger := logging.NewGormZapLogger(log)

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// AutoMigrate creates tables, columns and foreign keys. Custom indexes
	// are handled separately below.
	err := DB.AutoMigrate(
		&models.Game{},
		&models.GameImage{},
		&models.RiskZone{},
		&models.GameSession{},
		&models.Click{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	// Completed-session lookups back both the analytics aggregates and the
	// CSV export, so they get a covering index.
	sessionIndex := `CREATE INDEX IF NOT EXISTS idx_sessions_game_completed ON game_sessions (game_id, completed, start_time DESC);`
	if err := DB.Exec(sessionIndex).Error; err != nil {
		log.Fatal("Failed to create custom index on sessions table", zap.Error(err))
	}
	log.Info("Custom indexes ensured successfully.")
}
