// Package lookup resolves ISBNs to book metadata. Checksum verdicts never
// depend on it: callers consult it only after validation has finished.
package lookup

import (
	"context"
	"errors"
	"log/slog"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

// Lookuper fetches the record for a normalized ISBN.
type Lookuper interface {
	Lookup(ctx context.Context, isbn string) (*domain.BookRecord, error)
}

// Func adapts a function to Lookuper.
type Func func(ctx context.Context, isbn string) (*domain.BookRecord, error)

func (f Func) Lookup(ctx context.Context, isbn string) (*domain.BookRecord, error) {
	return f(ctx, isbn)
}

// Resolve returns the record for isbn or nil. Not found and every other
// failure both come back as nil; failures other than not found are logged.
func Resolve(ctx context.Context, l Lookuper, isbn string) *domain.BookRecord {
	if l == nil {
		return nil
	}
	book, err := l.Lookup(ctx, isbn)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("book lookup failed",
				"isbn", isbn,
				"category", CategoryOf(err),
				"error", err,
			)
		}
		return nil
	}
	return book
}

// Safe wraps l so that Lookup never returns an error.
func Safe(l Lookuper) Lookuper {
	return Func(func(ctx context.Context, isbn string) (*domain.BookRecord, error) {
		return Resolve(ctx, l, isbn), nil
	})
}
