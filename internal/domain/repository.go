// Package domain defines the core interfaces and types for the validator.
package domain

import (
	"context"
	"time"
)

// Repository is the offline book catalog.
// It holds metadata fetched from the book lookup collaborator and never
// records which identifiers were validated.
type Repository interface {
	SaveBook(ctx context.Context, book *BookRecord) error
	GetBook(ctx context.Context, isbn string) (*BookRecord, error)
	ListBooks(ctx context.Context, limit int) ([]*BookRecord, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string

	// SQLite specific
	SQLitePath string

	// PostgreSQL specific
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}
