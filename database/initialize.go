package database

import (
	"os"

	"marketplace-service/config"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

func InitializeDatabase(cfg config.Config) *sqlx.DB {
	dbConfig := db.DatabaseConfig{
		DRIVER: cfg.DBDriver,
		DB:     cfg.DBName,
	}

	dbConn := db.GetDBConnection(dbConfig)

	err := migrations.Migrate(dbConn, cfg.MigrationsDir)
	if err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Database initialized successfully")
	return dbConn
}
