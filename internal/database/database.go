// Package database provides the library database connection and session
// management using GORM over SQLite.
package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ErrUnsupportedDriver indicates the database URL uses an unsupported driver.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Database wraps a GORM connection with lifecycle management.
type Database struct {
	db *gorm.DB
}

// Option configures a Database during creation.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger routes SQL tracing to l at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// NewDatabase opens a database from a connection URL.
// Supported URL formats:
// - sqlite:///path/to/library.db
// - sqlite:///:memory:
func NewDatabase(ctx context.Context, url string, opts ...Option) (Database, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	dialector, err := parseDialector(url)
	if err != nil {
		return Database{}, fmt.Errorf("parse database url: %w", err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newZapGormLogger(o.logger),
	})
	if err != nil {
		return Database{}, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return Database{}, fmt.Errorf("get underlying db: %w", err)
	}
	// One connection: an in-memory database lives and dies with it, and
	// SQLite serializes writers anyway.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		return Database{}, fmt.Errorf("ping database: %w", err)
	}

	return Database{db: db}, nil
}

// Session returns a GORM session with the given context.
func (d Database) Session(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// AutoMigrate creates or updates the tables of models.
func (d Database) AutoMigrate(ctx context.Context, models ...any) error {
	if err := d.Session(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (d Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("get underlying db: %w", err)
	}
	return sqlDB.Close()
}

// IsSQLite returns true if the underlying database is SQLite.
func (d Database) IsSQLite() bool {
	return d.db.Name() == "sqlite"
}

func parseDialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "sqlite:///"):
		path := strings.TrimPrefix(url, "sqlite:///")
		if path == "" {
			return nil, fmt.Errorf("%w: empty sqlite path", ErrUnsupportedDriver)
		}
		return sqlite.Open(path), nil
	default:
		return nil, ErrUnsupportedDriver
	}
}
