// Package repository provides the SQL book catalog.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/khairate89/luhn-isbn-validator/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// defaultListLimit caps ListBooks when the caller passes no limit.
const defaultListLimit = 100

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// New opens the configured database and runs migrations.
func New(cfg domain.RepositoryConfig) (*SQLRepository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
		now:    time.Now,
	}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveBook inserts or refreshes a catalog entry.
func (r *SQLRepository) SaveBook(ctx context.Context, book *domain.BookRecord) error {
	if book == nil || book.ISBN == "" {
		return fmt.Errorf("%w: isbn is required", ErrInvalidInput)
	}

	query := `
		INSERT INTO books (isbn, title, authors, publisher, published_date, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(isbn) DO UPDATE SET
			title = excluded.title,
			authors = excluded.authors,
			publisher = excluded.publisher,
			published_date = excluded.published_date,
			fetched_at = excluded.fetched_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		book.ISBN, book.Title, book.Authors, book.Publisher, book.PublishedDate,
		r.now().UTC(),
	)
	return err
}

// GetBook returns ErrNotFound when the ISBN is not in the catalog.
func (r *SQLRepository) GetBook(ctx context.Context, isbn string) (*domain.BookRecord, error) {
	query := `
		SELECT isbn, title, authors, publisher, published_date
		FROM books
		WHERE isbn = ?
	`

	var b domain.BookRecord
	err := r.db.QueryRowContext(ctx, r.rebind(query), isbn).Scan(
		&b.ISBN, &b.Title, &b.Authors, &b.Publisher, &b.PublishedDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBooks returns the most recently fetched entries first.
func (r *SQLRepository) ListBooks(ctx context.Context, limit int) ([]*domain.BookRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT isbn, title, authors, publisher, published_date
		FROM books
		ORDER BY fetched_at DESC, isbn
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []*domain.BookRecord{}
	for rows.Next() {
		var b domain.BookRecord
		if err := rows.Scan(&b.ISBN, &b.Title, &b.Authors, &b.Publisher, &b.PublishedDate); err != nil {
			return nil, err
		}
		books = append(books, &b)
	}
	return books, rows.Err()
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] != '?' {
			b.WriteByte(query[i])
			continue
		}
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
		n++
	}
	return b.String()
}
var _ domain.Repository = (*SQLRepository)(nil)
