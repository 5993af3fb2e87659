package config

import (
	"os"
	"strconv"
)

// Config carries all environment-derived settings, loaded once at startup.
type Config struct {
	Port          string
	DBDriver      string
	DBName        string
	MigrationsDir string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ImageDir      string
	ImageBaseURL  string
}

func Load() Config {
	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDriver:      getenv("DB_DRIVER", "sqlite3"),
		DBName:        getenv("DB_NAME", "./marketplace.db"),
		MigrationsDir: getenv("MIGRATIONS_DIR", "./database/migrations"),
		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		ImageDir:      getenv("IMAGE_DIR", "./uploads"),
		ImageBaseURL:  getenv("IMAGE_BASE_URL", "http://localhost:8080/images"),
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = n
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
