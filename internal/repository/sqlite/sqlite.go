package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"devicemap/internal/domain"
	"devicemap/internal/repository"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New opens (creating if needed) the database at dbPath and migrates it.
// ":memory:" gives a private in-memory database.
func New(dbPath string) (*Repository, error) {
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every pooled connection to ":memory:" would get its own empty database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	// AUTOINCREMENT keeps ids from being reused after a delete, so an
	// orphaned connection never re-attaches to a newer device.
	schema := `
	CREATE TABLE IF NOT EXISTS devices (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		device_type TEXT NOT NULL,
		image_ref TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS connection_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS connections (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source_id INTEGER NOT NULL,
		destination_id INTEGER NOT NULL,
		connection_type_id INTEGER REFERENCES connection_types(id) ON DELETE SET NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_connections_source ON connections(source_id);
	CREATE INDEX IF NOT EXISTS idx_connections_destination ON connections(destination_id);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Ping checks the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Snapshot reads devices, connection types and connections in one transaction
func (r *Repository) Snapshot(ctx context.Context) (*domain.Inventory, error) {
	inv := domain.NewInventory()

	err := r.withTx(ctx, func(tx *sql.Tx) error {
		devices, err := listDevices(ctx, tx)
		if err != nil {
			return err
		}
		types, err := listConnectionTypes(ctx, tx)
		if err != nil {
			return err
		}
		conns, err := listConnections(ctx, tx, repository.ConnectionFilter{})
		if err != nil {
			return err
		}
		inv.Devices = devices
		inv.ConnectionTypes = types
		inv.Connections = conns
		return nil
	})
	if err != nil {
		return nil, err
	}

	return inv, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// withTx runs fn in a transaction, committing when fn returns nil
func (r *Repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
