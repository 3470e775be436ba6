// Package db opens the SQLite record store and defines its row models.
package db

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	maxRetries  = 5
	initialWait = 100 * time.Millisecond

	defaultMaxOpenConns = 1
	defaultMaxIdleConns = 1
	defaultBusyTimeout  = 5000 // milliseconds
)

// OpenOptions configures the connection pool. Zero values select defaults.
type OpenOptions struct {
	MaxOpenConns int
	MaxIdleConns int
	BusyTimeout  int // milliseconds
	Logger       zerolog.Logger
}

func (o OpenOptions) withDefaults() OpenOptions {
	if o.MaxOpenConns <= 0 {
		o.MaxOpenConns = defaultMaxOpenConns
	}
	if o.MaxIdleConns <= 0 {
		o.MaxIdleConns = defaultMaxIdleConns
	}
	if o.BusyTimeout <= 0 {
		o.BusyTimeout = defaultBusyTimeout
	}
	return o
}

// DB wraps a gorm connection with retry on open and schema migration.
type DB struct {
	gorm *gorm.DB
}

// Open connects to the SQLite database at path, creating the file and its
// parent directory when missing, and migrates the schema.
func Open(path string, opts OpenOptions) (*DB, error) {
	opts = opts.withDefaults()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=%d&_foreign_keys=on", path, opts.BusyTimeout)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         newGormLogger(opts.Logger),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(0) // Connections live forever

	db := &DB{gorm: conn}

	if err := db.pingWithRetry(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Conn returns a session bound to ctx.
func (db *DB) Conn(ctx context.Context) *gorm.DB {
	return db.gorm.WithContext(ctx)
}

// WithTx executes fn within a transaction.
// If fn returns an error, the transaction is rolled back.
func (db *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return db.gorm.WithContext(ctx).Transaction(fn)
}

// pingWithRetry attempts to ping the database with exponential backoff.
func (db *DB) pingWithRetry(ctx context.Context) error {
	sqlDB, err := db.gorm.DB()
	if err != nil {
		return err
	}

	wait := initialWait
	for i := 0; i < maxRetries; i++ {
		if err := sqlDB.PingContext(ctx); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			time.Sleep(wait)
			wait *= 2
		}
	}

	return fmt.Errorf("failed to ping database after %d retries", maxRetries)
}

// migrate creates or extends every table. Referenced tables come first.
func (db *DB) migrate() error {
	return db.gorm.AutoMigrate(
		&MemberRow{},
		&EventRow{},
		&CostCenterRow{},
		&InventoryItemRow{},
		&TaskRow{},
		&AttachmentRow{},
		&TaskEventRow{},
		&ReservationRow{},
		&AdjustmentRow{},
	)
}
