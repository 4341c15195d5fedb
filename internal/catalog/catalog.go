package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"aniq/internal/models"
	"aniq/internal/services"
	"aniq/internal/shared"
)

const schema = `
	CREATE TABLE IF NOT EXISTS media (
		id INTEGER PRIMARY KEY,
		title TEXT NOT NULL,
		year INTEGER NOT NULL DEFAULT 0,
		popularity INTEGER NOT NULL DEFAULT 0,
		genres TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		episodes INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_media_popularity ON media(popularity);
`

// Store is a SQLite-backed catalog snapshot.
type Store struct {
	db *sql.DB
}

var _ services.Catalog = (*Store)(nil)

// Open opens (or creates) the snapshot database at path and applies the
// schema. The path can be ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadAll returns every record in the snapshot ordered by popularity
// percentile, then ID. Fails with [shared.ErrCatalogUnavailable] if the
// snapshot is empty.
func (s *Store) LoadAll(ctx context.Context) ([]models.MediaRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, year, popularity, genres, format, episodes
		FROM media
		ORDER BY popularity, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query media: %w", err)
	}
	defer rows.Close()

	var records []models.MediaRecord
	for rows.Next() {
		var m models.MediaRecord
		var genres string
		if err := rows.Scan(&m.ID, &m.Title, &m.Year, &m.Popularity, &genres, &m.Format, &m.Episodes); err != nil {
			return nil, fmt.Errorf("failed to scan media row: %w", err)
		}
		m.Genres = splitGenres(genres)
		records = append(records, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read media rows: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: run `aniq catalog sync` first", shared.ErrCatalogUnavailable)
	}

	return records, nil
}

// ReplaceAll atomically replaces the snapshot with the given records.
func (s *Store) ReplaceAll(ctx context.Context, records []models.MediaRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM media"); err != nil {
		return fmt.Errorf("failed to clear snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO media (id, title, year, popularity, genres, format, episodes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range records {
		_, err := stmt.ExecContext(ctx, m.ID, m.Title, m.Year, m.Popularity, joinGenres(m.Genres), m.Format, m.Episodes)
		if err != nil {
			return fmt.Errorf("failed to insert media %d: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	return nil
}

// Count returns the number of records in the snapshot.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM media").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return n, nil
}

func joinGenres(genres []string) string {
	return strings.Join(genres, ",")
}

func splitGenres(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
