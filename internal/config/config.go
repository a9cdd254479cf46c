package config

import (
	"fmt"
	"os"
	"time"

	"tournament-tracker/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	// PUBGAPIKey is the fallback key for tournaments that do not carry
	// their own; every engine call still takes the key explicitly.
	PUBGAPIKey string
	Shard      string
	DBPath     string
	ServerPort string
	LogLevel   string
	CacheTTL   time.Duration

	AdminUsername     string
	AdminPasswordHash string
	JWTSecret         string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		PUBGAPIKey:        getEnv("PUBG_API_KEY", ""),
		Shard:             getEnv("PUBG_SHARD", "steam"),
		DBPath:            getEnv("DB_PATH", "tournaments.db"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		CacheTTL:          constants.AggregateCacheTTL,
		AdminUsername:     getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	logger.Info().
		Str("shard", cfg.Shard).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("cache_ttl", cfg.CacheTTL).
		Bool("default_pubg_key", cfg.PUBGAPIKey != "").
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
