package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// DB owns the single SQLite connection shared by every read and write path.
// Construct it once with New (or Open) and pass it to the components that need it.
type DB struct {
	conn *sql.DB
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// Option configures a DB at construction time.
type Option func(*DB)

// WithClock overrides the clock used to evaluate date-relative catalog queries.
func WithClock(now func() time.Time) Option {
	return func(db *DB) {
		if now != nil {
			db.now = now
		}
	}
}

// New opens the database at path. The pool is pinned to one physical connection
// for the lifetime of the process.
func New(path string, opts ...Option) (*DB, error) {
	// Foreign keys stay off: deletes orphan dependents instead of failing.
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", ErrStoreUnavailable, err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: failed to ping database: %v", ErrStoreUnavailable, err)
	}

	log.Debug().Str("path", path).Msg("Database connection established")

	db := &DB{
		conn: conn,
		path: path,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Open creates the connection and brings the schema up to date.
func Open(path string, opts ...Option) (*DB, error) {
	db, err := New(path, opts...)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Close releases the underlying connection. Further calls fail with ErrStoreUnavailable.
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Acquire hands out the shared connection. The caller releases it with Close on the
// returned *sql.Conn, which returns it to the pool rather than closing it.
func (db *DB) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := db.conn.Conn(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return conn, nil
}

// today returns the evaluation date at midnight local time.
func (db *DB) today() time.Time {
	t := db.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// transaction wraps a function in a database transaction
func (db *DB) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", storeError(err))
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("Failed to rollback transaction")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", storeError(err))
	}

	return nil
}
