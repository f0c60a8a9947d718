package repository

// schemaBooks holds metadata fetched from the book lookup service.
// Compatible with both SQLite and PostgreSQL.
const schemaBooks = `
CREATE TABLE IF NOT EXISTS books (
    isbn TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    authors TEXT NOT NULL,
    publisher TEXT NOT NULL,
    published_date TEXT NOT NULL,
    fetched_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_books_fetched_at ON books(fetched_at);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaBooks,
	}
}
