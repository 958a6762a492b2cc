// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/gameasset-dl/pkg/types"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no recorded search matches an ID.
var ErrNotFound = errors.New("search not found")

// SearchRecord is one row of the search log.
type SearchRecord struct {
	ID        string    `json:"id" yaml:"id"`
	Source    string    `json:"source" yaml:"source"`
	Query     string    `json:"query" yaml:"query"`
	Total     int       `json:"total" yaml:"total"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// History is a SQLite log of remembered searches and their assets.
type History struct {
	db  *sql.DB
	now func() time.Time
}

// OpenHistory opens or creates the search log at path.
func OpenHistory(path string) (*History, error) {
	if dir := filepath.Dir(path); !fileutil.IsExist(dir) {
		if err := fileutil.CreateDir(dir); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	h := &History{db: db, now: time.Now}
	if err := h.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return h, nil
}

// Close releases the database connection.
func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			query TEXT NOT NULL,
			total INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS search_assets (
			search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			title TEXT NOT NULL,
			author TEXT,
			link TEXT NOT NULL,
			cover TEXT,
			file_type TEXT,
			source TEXT NOT NULL,
			PRIMARY KEY (search_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at)`,
	}
	for _, stmt := range statements {
		if _, err := h.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends result to the log and returns its new ID.
func (h *History) Record(ctx context.Context, result types.SearchResult) (string, error) {
	id := uuid.NewString()
	created := h.now().UTC().Format(timeLayout)

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO searches (id, source, query, total, created_at) VALUES (?, ?, ?, ?, ?)`,
		id, result.Source, result.Query, len(result.Assets), created,
	); err != nil {
		return "", fmt.Errorf("inserting search: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO search_assets (search_id, position, title, author, link, cover, file_type, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("preparing asset insert: %w", err)
	}
	defer stmt.Close()

	for i, a := range result.Assets {
		if _, err := stmt.ExecContext(ctx, id, i+1, a.Title, a.Author, a.Link, a.Cover, a.FileType, a.Source); err != nil {
			return "", fmt.Errorf("inserting asset %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing search: %w", err)
	}
	return id, nil
}

// Recent returns up to limit searches, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, source, query, total, created_at FROM searches
		 ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying searches: %w", err)
	}
	defer rows.Close()

	var records []SearchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Get returns the search whose ID starts with idPrefix and its assets in
// their original order. An ambiguous prefix is an error.
func (h *History) Get(ctx context.Context, idPrefix string) (SearchRecord, []types.Asset, error) {
	rows, err := h.db.QueryContext(ctx,
		`SELECT id, source, query, total, created_at FROM searches
		 WHERE id LIKE ? || '%' LIMIT 2`, idPrefix)
	if err != nil {
		return SearchRecord{}, nil, fmt.Errorf("querying search: %w", err)
	}
	var matches []SearchRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			rows.Close()
			return SearchRecord{}, nil, err
		}
		matches = append(matches, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return SearchRecord{}, nil, err
	}

	switch len(matches) {
	case 0:
		return SearchRecord{}, nil, fmt.Errorf("%w: %s", ErrNotFound, idPrefix)
	case 2:
		return SearchRecord{}, nil, fmt.Errorf("ambiguous search ID prefix %q", idPrefix)
	}
	rec := matches[0]

	assetRows, err := h.db.QueryContext(ctx,
		`SELECT title, author, link, cover, file_type, source FROM search_assets
		 WHERE search_id = ? ORDER BY position`, rec.ID)
	if err != nil {
		return SearchRecord{}, nil, fmt.Errorf("querying assets: %w", err)
	}
	defer assetRows.Close()

	var assets []types.Asset
	for assetRows.Next() {
		var a types.Asset
		var author, cover, fileType sql.NullString
		if err := assetRows.Scan(&a.Title, &author, &a.Link, &cover, &fileType, &a.Source); err != nil {
			return SearchRecord{}, nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.Author, a.Cover, a.FileType = author.String, cover.String, fileType.String
		assets = append(assets, a)
	}
	return rec, assets, assetRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (SearchRecord, error) {
	var rec SearchRecord
	var created string
	if err := row.Scan(&rec.ID, &rec.Source, &rec.Query, &rec.Total, &created); err != nil {
		return SearchRecord{}, fmt.Errorf("scanning search: %w", err)
	}
	t, err := time.Parse(timeLayout, created)
	if err != nil {
		return SearchRecord{}, fmt.Errorf("parsing timestamp %q: %w", created, err)
	}
	rec.CreatedAt = t
	return rec, nil
}
