package domain

import (
	"context"
	"time"
)

// Cache defines the interface for caching operations.
// Supports two-phase caching: local LRU (Community) + Redis (Pro).
// Keys are grouped by namespace so book records, experiment results and
// lookup counters never collide.
type Cache interface {
	// Get retrieves a value from cache.
	// Returns nil, nil if key not found.
	Get(ctx context.Context, namespace string, key string) ([]byte, error)

	// Set stores a value in cache with expiration.
	Set(ctx context.Context, namespace string, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from cache.
	Delete(ctx context.Context, namespace string, key string) error

	// GetBook retrieves a cached book record.
	// Returns nil, nil if the ISBN has not been cached.
	GetBook(ctx context.Context, isbn string) (*BookRecord, error)

	// SetBook caches a book record returned by the lookup collaborator.
	SetBook(ctx context.Context, isbn string, book *BookRecord, ttl time.Duration) error

	// GetExperiment retrieves the state of an asynchronous experiment.
	GetExperiment(ctx context.Context, id string) (*Experiment, error)

	// SetExperiment stores the state of an asynchronous experiment.
	SetExperiment(ctx context.Context, id string, exp *Experiment, ttl time.Duration) error

	// IncrementCounter atomically increments a counter and returns new value.
	// Used to cap remote book lookups per time window.
	IncrementCounter(ctx context.Context, namespace string, key string, window time.Duration) (int64, error)

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// Cache namespaces.
const (
	NamespaceBooks       = "books"
	NamespaceExperiments = "experiments"
	NamespaceLookups     = "lookups"
)

// CacheConfig holds configuration for cache initialization.
type CacheConfig struct {
	// Type is the cache type: "memory" or "redis"
	Type string

	// Local LRU cache settings (Community tier)
	LocalMaxSize int
	LocalTTL     time.Duration

	// Redis settings (Pro tier)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Two-phase settings
	EnableTwoPhase bool // If true, check local first, then Redis
}
