// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package datastore

import (
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations_sqlite/*.sql
var embedMigrationsSQLite embed.FS

//go:embed migrations_postgres/*.sql
var embedMigrationsPostgres embed.FS

// goose keeps its configuration in package globals.
var migrationsMu sync.Mutex

func runMigrations(db *sql.DB, dialect string) error {
	var migrationsFS embed.FS
	var migrationsDir string

	switch dialect {
	case "sqlite3":
		migrationsFS = embedMigrationsSQLite
		migrationsDir = "migrations_sqlite"
	case "postgres":
		migrationsFS = embedMigrationsPostgres
		migrationsDir = "migrations_postgres"
	default:
		return fmt.Errorf("unsupported dialect: %s", dialect)
	}

	migrationsMu.Lock()
	defer migrationsMu.Unlock()

	goose.SetBaseFS(migrationsFS)
	goose.SetTableName("db_version")

	if err := goose.SetDialect(dialect); err != nil {
		slog.Error("Failed to set goose dialect", "dialect", dialect, "error", err)
		return err
	}

	currentVersion, err := goose.GetDBVersion(db)
	if err != nil {
		currentVersion = 0
	}

	migrations, err := goose.CollectMigrations(migrationsDir, 0, goose.MaxVersion)
	if err != nil {
		slog.Error("Failed to collect migrations", "error", err)
		return err
	}

	var targetVersion int64
	if len(migrations) > 0 {
		targetVersion = migrations[len(migrations)-1].Version
	}

	startTime := time.Now()
	if err := goose.Up(db, migrationsDir); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return err
	}

	if currentVersion < targetVersion {
		slog.Info("Database migrations completed",
			"previousVersion", currentVersion,
			"currentVersion", targetVersion,
			"duration", time.Since(startTime).Round(time.Millisecond).String())
	}

	return nil
}
