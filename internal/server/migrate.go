package server

import (
	"errors"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"factnet/internal/util"
	"factnet/pkg/logger"
)

// runMigrations brings the schema up to date before the server accepts
// traffic. A dirty database is fatal and needs operator attention.
func runMigrations() {
	migrationsPath := util.GetEnvString("MIGRATIONS_PATH", "file://db/migrations")

	m, err := migrate.New(migrationsPath, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	logger.Info("Database schema up to date")
}
