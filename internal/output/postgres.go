// internal/output/postgres.go
package output

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// PostgresSink writes page reports to a PostgreSQL database, typically a
// shared one that aggregates runs from several machines.
type PostgresSink struct {
	db    *sql.DB
	table string
}

// NewPostgresSink connects to PostgreSQL and prepares the report tables.
// table prefixes both the pages and assets tables; it defaults to "media".
func NewPostgresSink(dsn, table string) (*PostgresSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("PostgreSQL connection string is required")
	}
	if table == "" {
		table = "media"
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	sink := &PostgresSink{db: db, table: table}
	if err := sink.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *PostgresSink) createTables() error {
	schema := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s_pages (
			page_id    TEXT PRIMARY KEY,
			source_url TEXT NOT NULL,
			extracted  TIMESTAMPTZ NOT NULL,
			images     INTEGER NOT NULL,
			videos     INTEGER NOT NULL,
			failed     INTEGER NOT NULL,
			bytes      BIGINT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS %[1]s_assets (
			page_id    TEXT NOT NULL,
			asset_id   TEXT NOT NULL,
			url        TEXT NOT NULL,
			kind       TEXT NOT NULL,
			descriptor TEXT,
			source     TEXT NOT NULL,
			local_path TEXT,
			file_size  BIGINT,
			status     TEXT NOT NULL,
			error      TEXT,
			PRIMARY KEY (page_id, asset_id)
		)`, s.table)

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create report tables: %w", err)
	}
	return nil
}

// Name identifies the sink
func (s *PostgresSink) Name() string { return "postgres" }

// WritePage upserts one report
func (s *PostgresSink) WritePage(ctx context.Context, report *types.PageReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s_pages (page_id, source_url, extracted, images, videos, failed, bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (page_id) DO UPDATE SET
			source_url = EXCLUDED.source_url,
			extracted  = EXCLUDED.extracted,
			images     = EXCLUDED.images,
			videos     = EXCLUDED.videos,
			failed     = EXCLUDED.failed,
			bytes      = EXCLUDED.bytes`, s.table),
		report.PageID, report.SourceURL, report.Timestamp,
		report.Summary.TotalImages, report.Summary.TotalVideos,
		report.Summary.FailedAssets, report.Summary.TotalBytes)
	if err != nil {
		return fmt.Errorf("failed to upsert page row: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s_assets WHERE page_id = $1`, s.table), report.PageID)
	if err != nil {
		return fmt.Errorf("failed to clear previous assets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s_assets (page_id, asset_id, url, kind, descriptor, source, local_path, file_size, status, error)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, s.table))
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

// Close closes the connection pool
func (s *PostgresSink) Close() error {
	return s.db.Close()
}
