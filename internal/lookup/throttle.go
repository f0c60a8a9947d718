package lookup

import (
	"context"
	"fmt"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

const throttleKey = "remote"

// Throttle caps calls to Next at Max per Window, counted in the shared
// cache so every replica draws from one budget. Max <= 0 disables the cap.
type Throttle struct {
	Counter domain.Cache
	Next    Lookuper
	Max     int64
	Window  time.Duration
}

// Lookup implements Lookuper.
func (t *Throttle) Lookup(ctx context.Context, isbn string) (*domain.BookRecord, error) {
	if t.Max > 0 && t.Counter != nil {
		n, err := t.Counter.IncrementCounter(ctx, domain.NamespaceLookups, throttleKey, t.Window)
		if err != nil {
			return nil, fmt.Errorf("lookup counter: %w", err)
		}
		if n > t.Max {
			return nil, ErrRateLimited
		}
	}
	return t.Next.Lookup(ctx, isbn)
}

// New assembles the standard chain: cache and catalog in front of a
// throttled Google Books client.
func New(cfg domain.LookupConfig, cache domain.Cache, catalog domain.Repository) Lookuper {
	remote := NewGoogleBooks(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
	return &Cached{
		Cache:   cache,
		Catalog: catalog,
		Next: &Throttle{
			Counter: cache,
			Next:    remote,
			Max:     cfg.MaxPerWindow,
			Window:  cfg.Window,
		},
		TTL:         cfg.CacheTTL,
		NegativeTTL: cfg.NegativeTTL,
	}
}
