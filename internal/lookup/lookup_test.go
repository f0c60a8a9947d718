package lookup_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khairate89/luhn-isbn-validator/internal/cache"
	"github.com/khairate89/luhn-isbn-validator/internal/domain"
	"github.com/khairate89/luhn-isbn-validator/internal/lookup"
	"github.com/khairate89/luhn-isbn-validator/internal/repository"
)

const volumeJSON = `{
  "totalItems": 1,
  "items": [{
    "volumeInfo": {
      "title": "Programming Pearls",
      "authors": ["Jon Bentley", "Brian Kernighan"],
      "publisher": "Addison-Wesley",
      "publishedDate": "1999"
    }
  }]
}`

// booksServer fakes the volumes endpoint. Known ISBNs return volumeJSON.
func booksServer(t *testing.T, known ...string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/volumes" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		for _, isbn := range known {
			if q == "isbn:"+isbn {
				fmt.Fprint(w, volumeJSON)
				return
			}
		}
		fmt.Fprint(w, `{"totalItems": 0}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestGoogleBooks(t *testing.T) {
	srv, _ := booksServer(t, "0306406152")
	client := lookup.NewGoogleBooks(srv.URL, "", time.Second)

	book, err := client.Lookup(context.Background(), "0306406152")
	require.NoError(t, err)
	assert.Equal(t, &domain.BookRecord{
		ISBN:          "0306406152",
		Title:         "Programming Pearls",
		Authors:       "Jon Bentley, Brian Kernighan",
		Publisher:     "Addison-Wesley",
		PublishedDate: "1999",
	}, book)

	_, err = client.Lookup(context.Background(), "9999999999")
	assert.ErrorIs(t, err, lookup.ErrNotFound)
}

func TestGoogleBooksMissingFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"volumeInfo":{"title":"Untitled Draft"}}]}`)
	}))
	defer srv.Close()

	book, err := lookup.NewGoogleBooks(srv.URL, "", time.Second).Lookup(context.Background(), "0306406152")
	require.NoError(t, err)
	assert.Equal(t, "Untitled Draft", book.Title)
	assert.Equal(t, "Unknown", book.Authors)
	assert.Equal(t, "Unknown", book.Publisher)
	assert.Equal(t, "Unknown", book.PublishedDate)
}

func TestGoogleBooksAPIKey(t *testing.T) {
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("key")
		fmt.Fprint(w, `{"totalItems":0}`)
	}))
	defer srv.Close()

	_, _ = lookup.NewGoogleBooks(srv.URL+"/", "secret", time.Second).Lookup(context.Background(), "0306406152")
	assert.Equal(t, "secret", gotKey)
}

func TestGoogleBooksFailures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category lookup.Category
	}{
		{"server error", http.StatusBadGateway, "", lookup.CategoryOutage},
		{"quota", http.StatusTooManyRequests, "", lookup.CategoryRateLimited},
		{"bad request", http.StatusBadRequest, "", lookup.CategoryBadData},
		{"garbage body", http.StatusOK, "<html>", lookup.CategoryBadData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			_, err := lookup.NewGoogleBooks(srv.URL, "", time.Second).Lookup(context.Background(), "0306406152")
			require.Error(t, err)
			assert.NotErrorIs(t, err, lookup.ErrNotFound)
			assert.Equal(t, tt.category, lookup.CategoryOf(err))
		})
	}
}

func TestGoogleBooksTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := lookup.NewGoogleBooks(srv.URL, "", 50*time.Millisecond).Lookup(context.Background(), "0306406152")
	require.Error(t, err)
	assert.Equal(t, lookup.CategoryTimeout, lookup.CategoryOf(err))
}

// memCatalog is an in-memory domain.Repository.
type memCatalog struct {
	mu    sync.Mutex
	books map[string]*domain.BookRecord
}

func newMemCatalog() *memCatalog {
	return &memCatalog{books: make(map[string]*domain.BookRecord)}
}

func (m *memCatalog) SaveBook(_ context.Context, b *domain.BookRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.books[b.ISBN] = &cp
	return nil
}

func (m *memCatalog) GetBook(_ context.Context, isbn string) (*domain.BookRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.books[isbn]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memCatalog) ListBooks(context.Context, int) ([]*domain.BookRecord, error) { return nil, nil }
func (m *memCatalog) Ping(context.Context) error                                   { return nil }
func (m *memCatalog) Close() error                                                 { return nil }

func TestCached(t *testing.T) {
	ctx := context.Background()
	srv, calls := booksServer(t, "0306406152")
	c := cache.NewLRUCache(100)
	catalog := newMemCatalog()

	l := &lookup.Cached{
		Cache:       c,
		Catalog:     catalog,
		Next:        lookup.NewGoogleBooks(srv.URL, "", time.Second),
		TTL:         time.Hour,
		NegativeTTL: time.Minute,
	}

	t.Run("remote hit is stored", func(t *testing.T) {
		book, err := l.Lookup(ctx, "0306406152")
		require.NoError(t, err)
		assert.Equal(t, "Programming Pearls", book.Title)
		assert.EqualValues(t, 1, calls.Load())

		stored, err := catalog.GetBook(ctx, "0306406152")
		require.NoError(t, err)
		assert.Equal(t, book.Title, stored.Title)

		cached, err := c.GetBook(ctx, "0306406152")
		require.NoError(t, err)
		require.NotNil(t, cached)
	})

	t.Run("second call served from cache", func(t *testing.T) {
		_, err := l.Lookup(ctx, "0306406152")
		require.NoError(t, err)
		assert.EqualValues(t, 1, calls.Load())
	})

	t.Run("catalog hit refills cache", func(t *testing.T) {
		require.NoError(t, catalog.SaveBook(ctx, &domain.BookRecord{ISBN: "0131103628", Title: "The C Programming Language"}))

		book, err := l.Lookup(ctx, "0131103628")
		require.NoError(t, err)
		assert.Equal(t, "The C Programming Language", book.Title)
		assert.EqualValues(t, 1, calls.Load())

		cached, _ := c.GetBook(ctx, "0131103628")
		require.NotNil(t, cached)
	})

	t.Run("miss is cached negatively", func(t *testing.T) {
		before := calls.Load()
		_, err := l.Lookup(ctx, "0000000000")
		assert.ErrorIs(t, err, lookup.ErrNotFound)
		_, err = l.Lookup(ctx, "0000000000")
		assert.ErrorIs(t, err, lookup.ErrNotFound)
		assert.Equal(t, before+1, calls.Load())
	})
}

func TestCachedDoesNotCacheFailures(t *testing.T) {
	ctx := context.Background()
	var calls int
	failing := lookup.Func(func(context.Context, string) (*domain.BookRecord, error) {
		calls++
		return nil, &lookup.Error{Category: lookup.CategoryOutage, ISBN: "0306406152", Underlying: errors.New("connection refused")}
	})

	l := &lookup.Cached{Cache: cache.NewLRUCache(10), Next: failing, TTL: time.Hour, NegativeTTL: time.Hour}
	for i := 0; i < 3; i++ {
		_, err := l.Lookup(ctx, "0306406152")
		require.Error(t, err)
	}
	assert.Equal(t, 3, calls)
}

func TestThrottle(t *testing.T) {
	ctx := context.Background()
	var calls int
	next := lookup.Func(func(_ context.Context, isbn string) (*domain.BookRecord, error) {
		calls++
		return &domain.BookRecord{ISBN: isbn}, nil
	})

	th := &lookup.Throttle{Counter: cache.NewLRUCache(10), Next: next, Max: 2, Window: time.Minute}

	for i := 0; i < 2; i++ {
		_, err := th.Lookup(ctx, "0306406152")
		require.NoError(t, err)
	}
	_, err := th.Lookup(ctx, "0306406152")
	assert.ErrorIs(t, err, lookup.ErrRateLimited)
	assert.Equal(t, lookup.CategoryRateLimited, lookup.CategoryOf(err))
	assert.Equal(t, 2, calls)

	unlimited := &lookup.Throttle{Counter: cache.NewLRUCache(10), Next: next}
	for i := 0; i < 5; i++ {
		_, err := unlimited.Lookup(ctx, "0306406152")
		require.NoError(t, err)
	}
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	found := lookup.Func(func(_ context.Context, isbn string) (*domain.BookRecord, error) {
		return &domain.BookRecord{ISBN: isbn}, nil
	})
	missing := lookup.Func(func(context.Context, string) (*domain.BookRecord, error) {
		return nil, lookup.ErrNotFound
	})
	broken := lookup.Func(func(context.Context, string) (*domain.BookRecord, error) {
		return nil, errors.New("dial tcp: connection refused")
	})

	assert.NotNil(t, lookup.Resolve(ctx, found, "0306406152"))
	assert.Nil(t, lookup.Resolve(ctx, missing, "0306406152"))
	assert.Nil(t, lookup.Resolve(ctx, broken, "0306406152"))
	assert.Nil(t, lookup.Resolve(ctx, nil, "0306406152"))

	book, err := lookup.Safe(broken).Lookup(ctx, "0306406152")
	assert.NoError(t, err)
	assert.Nil(t, book)
}

func TestNew(t *testing.T) {
	srv, calls := booksServer(t, "0306406152")
	cfg := domain.DefaultConfig().Lookup
	cfg.BaseURL = srv.URL

	l := lookup.New(cfg, cache.NewLRUCache(100), newMemCatalog())
	book := lookup.Resolve(context.Background(), l, "0306406152")
	require.NotNil(t, book)
	assert.Equal(t, "Jon Bentley, Brian Kernighan", book.Authors)
	assert.EqualValues(t, 1, calls.Load())
}
