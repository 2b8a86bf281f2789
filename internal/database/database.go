package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects to the database for the given driver ("postgres" or "sqlite"),
// verifies the connection, and applies any pending migrations.
func Open(driver, dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	switch driver {
	case "postgres":
		db, err = sql.Open("postgres", dsn)
	case "sqlite":
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		// In-memory SQLite databases exist per connection; the pool must not
		// open a second one.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := Migrate(db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// Migrate applies all pending schema migrations from the embedded filesystem.
func Migrate(db *sql.DB, driver string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	var target migratedb.Driver
	switch driver {
	case "postgres":
		target, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	case "sqlite":
		target, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, target)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

// sqliteDSN normalizes a SQLite path into a DSN with foreign keys enabled.
// Foreign key enforcement is load-bearing: deleting a category relies on
// ON DELETE SET NULL to uncategorize its items.
func sqliteDSN(path string) string {
	if path == ":memory:" {
		path = ":memory:?cache=shared&"
	} else {
		path += "?"
	}
	return "file:" + path + "_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}
