// internal/output/sqlite.go
package output

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// SQLiteStore is both a report sink and the cross-run download index: the
// downloads table remembers which canonical URLs were already fetched so
// later runs reuse the files instead of re-downloading them.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS pages (
	page_id    TEXT PRIMARY KEY,
	source_url TEXT NOT NULL,
	extracted  DATETIME NOT NULL,
	images     INTEGER NOT NULL,
	videos     INTEGER NOT NULL,
	failed     INTEGER NOT NULL,
	bytes      INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS assets (
	page_id    TEXT NOT NULL,
	asset_id   TEXT NOT NULL,
	url        TEXT NOT NULL,
	kind       TEXT NOT NULL,
	descriptor TEXT,
	source     TEXT NOT NULL,
	local_path TEXT,
	file_size  INTEGER,
	status     TEXT NOT NULL,
	error      TEXT,
	PRIMARY KEY (page_id, asset_id)
);

CREATE TABLE IF NOT EXISTS downloads (
	canonical_url TEXT PRIMARY KEY,
	local_path    TEXT NOT NULL,
	file_size     INTEGER NOT NULL,
	fetched_at    DATETIME NOT NULL
);
`

// NewSQLiteStore opens or creates the store at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("SQLite database path is required")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Name identifies the sink
func (s *SQLiteStore) Name() string { return "sqlite" }

// WritePage persists one report as a pages row plus one assets row per
// asset. Re-processing a page replaces its previous rows.
func (s *SQLiteStore) WritePage(ctx context.Context, report *types.PageReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO pages (page_id, source_url, extracted, images, videos, failed, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.PageID, report.SourceURL, report.Timestamp,
		report.Summary.TotalImages, report.Summary.TotalVideos,
		report.Summary.FailedAssets, report.Summary.TotalBytes)
	if err != nil {
		return fmt.Errorf("failed to insert page row: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assets WHERE page_id = ?`, report.PageID); err != nil {
		return fmt.Errorf("failed to clear previous assets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (page_id, asset_id, url, kind, descriptor, source, local_path, file_size, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare asset insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range flattenReport(report) {
		_, err := stmt.ExecContext(ctx, report.PageID, row.AssetID, row.URL, row.Kind,
			row.Descriptor, row.Source, row.LocalPath, row.FileSize, row.Status, row.FailureNote)
		if err != nil {
			return fmt.Errorf("failed to insert asset %s: %w", row.AssetID, err)
		}
	}

	return tx.Commit()
}

// Lookup returns the path and size of a previously downloaded canonical URL
func (s *SQLiteStore) Lookup(canonicalURL string) (string, int64, bool) {
	var path string
	var size int64
	err := s.db.QueryRow(
		`SELECT local_path, file_size FROM downloads WHERE canonical_url = ?`,
		canonicalURL).Scan(&path, &size)
	if err != nil {
		return "", 0, false
	}
	return path, size, true
}

// Record remembers a completed download for later runs
func (s *SQLiteStore) Record(canonicalURL, localPath string, size int64) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO downloads (canonical_url, local_path, file_size, fetched_at)
		VALUES (?, ?, ?, ?)`,
		canonicalURL, localPath, size, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record download: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
