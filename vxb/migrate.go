package vxb

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/voxelbase/voxcache/internal/monitoring"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// schemaVersion is the container schema this library reads and writes.
// Open rejects containers at any other version.
const schemaVersion = 1

// migrateUp brings a freshly created container to the current schema.
func migrateUp(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}

	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite migrate driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	// Closing m would close the underlying connection; leave it to the GC.
	m.Log = &migrateLogger{}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// checkSchemaVersion verifies an opened database is a container this
// library understands. A missing schema_migrations table means the file is
// not a VXB container at all.
func checkSchemaVersion(db *sql.DB) error {
	var version uint
	var dirty bool
	err := db.QueryRow("SELECT version, dirty FROM schema_migrations LIMIT 1").Scan(&version, &dirty)
	if err != nil {
		return fmt.Errorf("not a vxb container: %w", err)
	}
	if dirty {
		return fmt.Errorf("container schema is dirty at version %d", version)
	}
	if version != schemaVersion {
		return fmt.Errorf("container schema version %d, this library supports %d", version, schemaVersion)
	}
	return nil
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	monitoring.Logf("[VXB migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
