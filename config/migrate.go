package config

import (
	"errors"
	"fmt"
	"strings"

	migrate "github.com/golang-migrate/migrate/v4"
	// Register the postgres driver and the file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// DefaultMigrationsDir holds the versioned SQL migrations
const DefaultMigrationsDir = "migrations"

// Migration directions accepted by RunMigrations
const (
	MigrateUp   = "up"
	MigrateDown = "down"
)

// RunMigrations applies (up) or rolls back (down) the SQL migrations in dir against a PostgreSQL database.
// A database that is already current is not an error.
func RunMigrations(databaseURL, dir, direction string) error {
	if direction != MigrateUp && direction != MigrateDown {
		return fmt.Errorf("unknown migration direction %q", direction)
	}
	if databaseURL == "" {
		databaseURL = DefaultDatabaseURL
	}
	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		return fmt.Errorf("sql migrations require PostgreSQL, use AutoMigrate for sqlite")
	}
	if dir == "" {
		dir = DefaultMigrationsDir
	}

	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()

	if direction == MigrateUp {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s failed: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read migration version: %w", verr)
	}
	GetLogger().Sugar().Infow("Migrations finished", "direction", direction, "version", version, "dirty", dirty)
	return nil
}
