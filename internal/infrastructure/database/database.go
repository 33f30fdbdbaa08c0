package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const (
	// dirPermissions restricts the journal directory to owner and group.
	dirPermissions = 0750

	// filePermissions keeps the journal file owner-only; it may hold
	// property values from the whole bus.
	filePermissions = 0600

	// msPerSecond converts the configured busy timeout to milliseconds.
	msPerSecond = 1000

	// openPingTimeout bounds the connectivity probe during Open.
	openPingTimeout = 5 * time.Second

	// connMaxIdleTime recycles the idle connection after half an hour.
	connMaxIdleTime = 30 * time.Minute
)

// DB is the controller's handle on its SQLite file. It embeds sql.DB and
// adds schema migrations, a health probe and lifecycle helpers. History
// journal tables live behind this handle; the in-memory device model never
// touches it.
type DB struct {
	*sql.DB
	path string
}

// Config mirrors the history section of config.yaml.
type Config struct {
	// Path to the SQLite file. Missing parent directories are created.
	Path string

	// WALMode turns on write-ahead logging so history reads do not block
	// the journal writer.
	WALMode bool

	// BusyTimeout in seconds before a locked database gives up.
	BusyTimeout int
}

// Open opens (creating if needed) the SQLite file described by cfg and
// verifies it answers a ping before returning.
//
// The pool is pinned to one open connection. SQLite allows a single writer
// and the journal is the only writer in the process, so a wider pool buys
// nothing and invites lock contention.
//
// Returns the connected handle, or an error when the directory cannot be
// created or the file refuses the ping.
func Open(cfg Config) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// Pragmas go on the connection string so every pooled connection
	// inherits them. See github.com/mattn/go-sqlite3#connection-string.
	connStr := fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
		cfg.Path,
		cfg.BusyTimeout*msPerSecond,
	)
	if cfg.WALMode {
		connStr += "&_journal_mode=WAL&_synchronous=NORMAL"
	}

	sqlDB, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	db := &DB{
		DB:   sqlDB,
		path: cfg.Path,
	}

	ctx, cancel := context.WithTimeout(context.Background(), openPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		sqlDB.Close() //nolint:errcheck // Best effort cleanup on error path
		return nil, fmt.Errorf("verifying database connection: %w", err)
	}

	// On the very first run the file appears only after the first write, so
	// a chmod failure here is not an error.
	_ = os.Chmod(cfg.Path, filePermissions) //nolint:errcheck // File may not exist yet

	return db, nil
}

// Close releases the underlying pool. Safe to call on an already-nil
// handle, which keeps shutdown paths simple.
func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

// Path returns the filesystem location of the SQLite file.
func (db *DB) Path() string {
	return db.path
}

// HealthCheck runs a trivial query to prove the file is readable. The
// startup health pass and the journal's HealthCheck both route here.
func (db *DB) HealthCheck(ctx context.Context) error {
	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats exposes the pool statistics of the embedded sql.DB.
func (db *DB) Stats() sql.DBStats {
	return db.DB.Stats()
}

// ExecContext wraps sql.DB.ExecContext with error context.
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("executing query: %w", err)
	}
	return result, nil
}

// QueryRowContext wraps sql.DB.QueryRowContext for single-row lookups.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

// BeginTx starts a transaction. Multi-statement schema changes and the
// migration bookkeeping always run inside one.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	return tx, nil
}
