package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

// ErrNamespaceRequired is returned when a key is used without a namespace.
var ErrNamespaceRequired = errors.New("cache namespace is required")

// rawStore is the byte-level half of domain.Cache that typed helpers build on.
type rawStore interface {
	Get(ctx context.Context, namespace string, key string) ([]byte, error)
	Set(ctx context.Context, namespace string, key string, value []byte, ttl time.Duration) error
}

func getJSON[T any](ctx context.Context, s rawStore, namespace, key string) (*T, error) {
	data, err := s.Get(ctx, namespace, key)
	if err != nil || data == nil {
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s/%s: %w", namespace, key, err)
	}
	return &v, nil
}

func setJSON(ctx context.Context, s rawStore, namespace, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", namespace, key, err)
	}
	return s.Set(ctx, namespace, key, data, ttl)
}

func getBook(ctx context.Context, s rawStore, isbn string) (*domain.BookRecord, error) {
	return getJSON[domain.BookRecord](ctx, s, domain.NamespaceBooks, isbn)
}

func setBook(ctx context.Context, s rawStore, isbn string, book *domain.BookRecord, ttl time.Duration) error {
	return setJSON(ctx, s, domain.NamespaceBooks, isbn, book, ttl)
}

func getExperiment(ctx context.Context, s rawStore, id string) (*domain.Experiment, error) {
	return getJSON[domain.Experiment](ctx, s, domain.NamespaceExperiments, id)
}

func setExperiment(ctx context.Context, s rawStore, id string, exp *domain.Experiment, ttl time.Duration) error {
	return setJSON(ctx, s, domain.NamespaceExperiments, id, exp, ttl)
}

func makeKey(namespace, key string) string {
	return namespace + ":" + key
}
