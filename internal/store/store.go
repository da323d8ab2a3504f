package store

import (
	"context"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store is the adapter over the managed relational datastore holding admin
// accounts and signup records. Production deployments open it against the
// hosted Postgres; development and tests use an embedded SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open connects to the datastore. Supported drivers are "postgres" (pgx) and
// "sqlite". Pass an empty DSN with the sqlite driver for an in-memory store.
func Open(driver, dsn string) (*Store, error) {
	switch driver {
	case "postgres":
		driver = "pgx"
	case "sqlite":
		if dsn == "" {
			dsn = ":memory:"
		}
	default:
		return nil, fmt.Errorf("unsupported datastore driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open datastore: %w", err)
	}

	if driver == "sqlite" {
		db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate datastore: %w", err)
	}
	return s, nil
}

// Ping verifies the datastore connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
