package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// timestamps are stored as fixed-width UTC text so they sort lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS book_sources (
	source_url   TEXT PRIMARY KEY,
	source_name  TEXT NOT NULL,
	source_group TEXT NOT NULL DEFAULT '',
	source_type  INTEGER NOT NULL DEFAULT 0,
	enabled      INTEGER NOT NULL DEFAULT 1,
	payload_json TEXT NOT NULL,
	created_at   TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_book_sources_group ON book_sources(source_group);
CREATE INDEX IF NOT EXISTS idx_book_sources_enabled ON book_sources(enabled);
CREATE INDEX IF NOT EXISTS idx_book_sources_updated ON book_sources(updated_at);
`

// SQLiteStore implements Store on modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at dsn. Use ":memory:"
// for a private in-memory database.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// one connection: in-memory databases are per connection and sqlite
	// serializes writers anyway
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db, now: time.Now}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Upsert writes rec, keeping created_at of an existing row.
func (s *SQLiteStore) Upsert(ctx context.Context, rec Record) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM book_sources WHERE source_url = ?`, rec.URL).Scan(&one)
	existed := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("lookup %s: %w", rec.URL, err)
	}

	now := s.now().UTC().Format(timeLayout)
	_, err = tx.ExecContext(ctx, `
INSERT INTO book_sources (source_url, source_name, source_group, source_type, enabled, payload_json, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(source_url) DO UPDATE SET
	source_name = excluded.source_name,
	source_group = excluded.source_group,
	source_type = excluded.source_type,
	enabled = excluded.enabled,
	payload_json = excluded.payload_json,
	updated_at = excluded.updated_at`,
		rec.URL, rec.Name, rec.Group, rec.Type, boolInt(rec.Enabled), string(rec.Payload), now, now)
	if err != nil {
		return false, fmt.Errorf("upsert %s: %w", rec.URL, err)
	}
	if err := tx.Commit(); err != nil {
		return false, err
	}
	return existed, nil
}

// Get returns ErrNotFound when url is unknown.
func (s *SQLiteStore) Get(ctx context.Context, url string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT source_url, source_name, source_group, source_type, enabled, payload_json, created_at, updated_at
FROM book_sources WHERE source_url = ?`, url)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}
	return rec, nil
}

// List returns matching records, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]Record, error) {
	var (
		where []string
		args  []any
	)
	if filter.Group != "" {
		where = append(where, "source_group = ?")
		args = append(args, filter.Group)
	}
	if filter.Enabled != nil {
		where = append(where, "enabled = ?")
		args = append(args, boolInt(*filter.Enabled))
	}
	if filter.Search != "" {
		like := "%" + escapeLike(filter.Search) + "%"
		where = append(where, `(source_name LIKE ? ESCAPE '\' OR source_url LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}

	query := `SELECT source_url, source_name, source_group, source_type, enabled, payload_json, created_at, updated_at FROM book_sources`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, source_url ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Delete removes one record and returns the number of rows removed.
func (s *SQLiteStore) Delete(ctx context.Context, url string) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM book_sources WHERE source_url = ?`, url)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", url, err)
	}
	n, err := res.RowsAffected()
	return int(n), err
}

// DeleteMany removes all urls in one transaction.
func (s *SQLiteStore) DeleteMany(ctx context.Context, urls []string) (int, error) {
	if len(urls) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `DELETE FROM book_sources WHERE source_url = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	total := 0
	for _, url := range urls {
		res, err := stmt.ExecContext(ctx, url)
		if err != nil {
			return 0, fmt.Errorf("delete %s: %w", url, err)
		}
		n, _ := res.RowsAffected()
		total += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec              Record
		enabled          int
		payload          string
		created, updated string
	)
	if err := row.Scan(&rec.URL, &rec.Name, &rec.Group, &rec.Type, &enabled, &payload, &created, &updated); err != nil {
		return nil, err
	}
	rec.Enabled = enabled != 0
	rec.Payload = []byte(payload)
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	rec.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return &rec, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
