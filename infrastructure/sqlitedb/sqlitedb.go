// Package sqlitedb opens the embedded SQLite store used for single-node
// deployments and tests.
package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/jrazmi/yata/sdk/environment"
	"github.com/ncruces/go-sqlite3"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Set of error variables for CRUD operations.
var (
	ErrDBNotFound        = sql.ErrNoRows
	ErrDBDuplicatedEntry = errors.New("duplicated entry")
	ErrDBForeignKey      = errors.New("foreign key violation")
	ErrDBUnavailable     = errors.New("database unavailable")
)

// Options represents the exportable database configuration
type Options struct {
	Path        string        `env:"SQLITE_PATH" default:"yata.db"`
	BusyTimeout time.Duration `env:"SQLITE_BUSY_TIMEOUT" default:"5s"`
}

// DB is a single-connection SQLite handle with a monotonic clock for
// row timestamps.
type DB struct {
	*sql.DB
	path  string
	clock *Clock
}

type options struct {
	now func() time.Time
}

// Option is a function that configures the database options
type Option func(*options)

// WithNow replaces the wall clock used for row timestamps.
func WithNow(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewFromEnv opens the database described by the environment.
func NewFromEnv(ctx context.Context, prefix string, opts ...Option) (*DB, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sqlite config: %w", err)
	}
	return Open(ctx, cfg, opts...)
}

// Open creates the database file if needed and returns a ready handle.
// The pool is capped at one connection: SQLite serializes writers anyway,
// and a single connection makes every transaction see the latest commit.
func Open(ctx context.Context, cfg Options, opts ...Option) (*DB, error) {
	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	busy := cfg.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	params := url.Values{}
	params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	params.Add("_pragma", "foreign_keys(1)")
	params.Add("_pragma", "journal_mode(wal)")
	params.Set("_txlock", "immediate")

	conn, err := sql.Open("sqlite3", "file:"+cfg.Path+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &DB{
		DB:    conn,
		path:  cfg.Path,
		clock: NewClock(o.now),
	}, nil
}

// Path returns the database file location.
func (db *DB) Path() string {
	return db.path
}

// Now returns the next row timestamp. Successive calls strictly increase.
func (db *DB) Now() time.Time {
	return db.clock.Now()
}

// StatusCheck returns nil if it can successfully talk to the database
func StatusCheck(ctx context.Context, db *DB) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Second)
		defer cancel()
	}
	return db.PingContext(ctx)
}

// HandleError converts SQLite errors to application errors
func HandleError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrDBNotFound
	case errors.Is(err, sqlite3.CONSTRAINT_PRIMARYKEY), errors.Is(err, sqlite3.CONSTRAINT_UNIQUE):
		return fmt.Errorf("%w: %w", ErrDBDuplicatedEntry, err)
	case errors.Is(err, sqlite3.CONSTRAINT_FOREIGNKEY):
		return fmt.Errorf("%w: %w", ErrDBForeignKey, err)
	case errors.Is(err, sqlite3.BUSY), errors.Is(err, sqlite3.LOCKED),
		errors.Is(err, sqlite3.CANTOPEN), errors.Is(err, sql.ErrConnDone):
		return fmt.Errorf("%w: %w", ErrDBUnavailable, err)
	}
	return err
}
