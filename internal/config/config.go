package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Conf holds the application configuration, accessible globally after Init.
var Conf *Config

// Config is the top-level configuration structure.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Games    GamesConfig    `mapstructure:"games"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port          string `mapstructure:"port"`
	SessionSecret string `mapstructure:"session_secret"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// GamesConfig controls the seed catalog loaded on first boot.
type GamesConfig struct {
	CatalogPath string `mapstructure:"catalog_path"`
	Seed        bool   `mapstructure:"seed"`
}

// LimitsConfig holds rate-limit settings for abuse-prone endpoints
// (session starts, game creation).
type LimitsConfig struct {
	RequestsPerMinute uint `mapstructure:"requests_per_minute"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.session_secret", "change-me-in-production")

	v.SetDefault("database.host", "db")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "hazardhunt")
	v.SetDefault("database.password", "hazardhunt")
	v.SetDefault("database.dbname", "hazardhunt")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.max_size", 10) // MB
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7) // days
	v.SetDefault("logging.compress", true)

	v.SetDefault("games.catalog_path", "config/games.yaml")
	v.SetDefault("games.seed", true)

	v.SetDefault("limits.requests_per_minute", 10)
}

// Init initializes the configuration with Viper: defaults, then
// config/config.yaml, then HAZARDHUNT_* environment variables. The file is
// watched for hot reload.
func Init(projectRoot string, log *zap.Logger) error {
	v := viper.New()

	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("HAZARDHUNT") // e.g. HAZARDHUNT_SERVER_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing file is fine; defaults and env vars cover it.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(&Conf); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("Configuration file changed, reloading.", zap.String("file", e.Name))
		if err := v.Unmarshal(&Conf); err != nil {
			log.Error("Error reloading configuration", zap.Error(err))
		}
	})

	log.Info("Configuration loaded successfully")
	return nil
}
