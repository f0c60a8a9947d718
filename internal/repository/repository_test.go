package repository

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

func newTestRepo(t *testing.T) *SQLRepository {
	t.Helper()

	repo, err := New(domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "catalog", "test.db"),
	})
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetBook", func(t *testing.T) {
		book := &domain.BookRecord{
			ISBN:          "9780306406157",
			Title:         "Physics of Semiconductor Devices",
			Authors:       "S. M. Sze, Kwok K. Ng",
			Publisher:     "Wiley",
			PublishedDate: "2006",
		}

		if err := repo.SaveBook(ctx, book); err != nil {
			t.Fatalf("SaveBook failed: %v", err)
		}

		got, err := repo.GetBook(ctx, book.ISBN)
		if err != nil {
			t.Fatalf("GetBook failed: %v", err)
		}
		if *got != *book {
			t.Errorf("expected %+v, got %+v", book, got)
		}
	})

	t.Run("SaveBookUpserts", func(t *testing.T) {
		book := &domain.BookRecord{ISBN: "0306406152", Title: "Old", Authors: "Unknown", Publisher: "Unknown", PublishedDate: "Unknown"}
		_ = repo.SaveBook(ctx, book)

		book.Title = "New"
		if err := repo.SaveBook(ctx, book); err != nil {
			t.Fatalf("second SaveBook failed: %v", err)
		}

		got, _ := repo.GetBook(ctx, book.ISBN)
		if got.Title != "New" {
			t.Errorf("expected updated title, got %s", got.Title)
		}
	})

	t.Run("GetBookNotFound", func(t *testing.T) {
		_, err := repo.GetBook(ctx, "0000000000")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SaveBookRequiresISBN", func(t *testing.T) {
		err := repo.SaveBook(ctx, &domain.BookRecord{Title: "no isbn"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
		if err := repo.SaveBook(ctx, nil); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput for nil book, got %v", err)
		}
	})
}

func TestListBooks(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }

	for _, isbn := range []string{"0306406152", "080442957X", "9780306406157"} {
		if err := repo.SaveBook(ctx, &domain.BookRecord{ISBN: isbn, Title: isbn}); err != nil {
			t.Fatalf("SaveBook failed: %v", err)
		}
		clock = clock.Add(time.Minute)
	}

	books, err := repo.ListBooks(ctx, 2)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("expected 2 books, got %d", len(books))
	}
	if books[0].ISBN != "9780306406157" || books[1].ISBN != "080442957X" {
		t.Errorf("expected newest first, got %s, %s", books[0].ISBN, books[1].ISBN)
	}

	all, _ := repo.ListBooks(ctx, 0)
	if len(all) != 3 {
		t.Errorf("expected default limit to return all 3, got %d", len(all))
	}
}

func TestEmptyCatalog(t *testing.T) {
	repo := newTestRepo(t)

	books, err := repo.ListBooks(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListBooks failed: %v", err)
	}
	if books == nil || len(books) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", books)
	}
}

func TestInMemorySQLite(t *testing.T) {
	repo, err := New(domain.RepositoryConfig{Driver: "sqlite", SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open in-memory catalog: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if err := repo.SaveBook(ctx, &domain.BookRecord{ISBN: "0306406152"}); err != nil {
		t.Fatalf("SaveBook failed: %v", err)
	}
	if _, err := repo.GetBook(ctx, "0306406152"); err != nil {
		t.Errorf("GetBook failed: %v", err)
	}
}

func TestUnsupportedDriver(t *testing.T) {
	if _, err := New(domain.RepositoryConfig{Driver: "oracle"}); err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	pg := &SQLRepository{driver: "postgres"}
	got := pg.rebind("SELECT * FROM books WHERE isbn = ? AND title = ?")
	if got != "SELECT * FROM books WHERE isbn = $1 AND title = $2" {
		t.Errorf("unexpected rebind: %s", got)
	}

	lite := &SQLRepository{driver: "sqlite"}
	if q := "SELECT ?"; lite.rebind(q) != q {
		t.Error("sqlite queries must be left untouched")
	}
}

func TestDSN(t *testing.T) {
	dsn := sqliteDSN("/tmp/x.db")
	if !strings.HasPrefix(dsn, "file:/tmp/x.db?") || !strings.Contains(dsn, "_pragma=busy_timeout(5000)") {
		t.Errorf("unexpected sqlite dsn: %s", dsn)
	}

	pg := postgresDSN(domain.RepositoryConfig{PostgresUser: "u", PostgresPassword: "p"})
	want := "host=localhost port=5432 user=u password=p dbname=validator sslmode=disable"
	if pg != want {
		t.Errorf("expected %q, got %q", want, pg)
	}
}
