package lookup

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/repository"
)

// missMarker is stored under NamespaceLookups for ISBNs the remote service
// does not know.
var missMarker = []byte("1")

// Cached consults the cache, then the catalog, then next. Found records are
// written back to both; not found answers are cached for NegativeTTL.
// Transport failures are never cached.
type Cached struct {
	Cache       domain.Cache
	Catalog     domain.Repository
	Next        Lookuper
	TTL         time.Duration
	NegativeTTL time.Duration
}

// Lookup implements Lookuper.
func (c *Cached) Lookup(ctx context.Context, isbn string) (*domain.BookRecord, error) {
	if c.Cache != nil {
		if book, err := c.Cache.GetBook(ctx, isbn); err == nil && book != nil {
			return book, nil
		}
		if miss, err := c.Cache.Get(ctx, domain.NamespaceLookups, "miss:"+isbn); err == nil && miss != nil {
			return nil, ErrNotFound
		}
	}

	if c.Catalog != nil {
		book, err := c.Catalog.GetBook(ctx, isbn)
		switch {
		case err == nil:
			c.remember(ctx, book)
			return book, nil
		case !errors.Is(err, repository.ErrNotFound):
			slog.Warn("catalog read failed", "isbn", isbn, "error", err)
		}
	}

	if c.Next == nil {
		return nil, ErrNotFound
	}

	book, err := c.Next.Lookup(ctx, isbn)
	if errors.Is(err, ErrNotFound) {
		if c.Cache != nil && c.NegativeTTL > 0 {
			_ = c.Cache.Set(ctx, domain.NamespaceLookups, "miss:"+isbn, missMarker, c.NegativeTTL)
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	if c.Catalog != nil {
		if err := c.Catalog.SaveBook(ctx, book); err != nil {
			slog.Warn("catalog write failed", "isbn", isbn, "error", err)
		}
	}
	c.remember(ctx, book)
	return book, nil
}

func (c *Cached) remember(ctx context.Context, book *domain.BookRecord) {
	if c.Cache == nil || c.TTL <= 0 {
		return
	}
	if err := c.Cache.SetBook(ctx, book.ISBN, book, c.TTL); err != nil {
		slog.Debug("book cache write failed", "isbn", book.ISBN, "error", err)
	}
}
