// internal/output/mysql.go
package output

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/valpere/MediaScrapexter/pkg/types"
)

// MySQLSink writes page reports to a MySQL database
type MySQLSink struct {
	db    *sql.DB
	table string
}

// NewMySQLSink connects to MySQL and prepares the report tables
func NewMySQLSink(dsn, table string) (*MySQLSink, error) {
	if dsn == "" {
		return nil, fmt.Errorf("MySQL connection string is required")
	}
	if table == "" {
		table = "media"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	sink := &MySQLSink{db: db, table: table}
	if err := sink.createTables(); err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *MySQLSink) createTables() error {
	// MySQL cannot run multiple statements per Exec by default
	statements := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_pages (
			page_id    VARCHAR(128) PRIMARY KEY,
			source_url TEXT NOT NULL,
			extracted  DATETIME NOT NULL,
			images     INT NOT NULL,
			videos     INT NOT NULL,
			failed     INT NOT NULL,
			bytes      BIGINT NOT NULL
		)`, s.table),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s_assets (
			page_id    VARCHAR(128) NOT NULL,
			asset_id   VARCHAR(16) NOT NULL,
			url        TEXT NOT NULL,
			kind       VARCHAR(8) NOT NULL,
			descriptor VARCHAR(32),
			source     VARCHAR(32) NOT NULL,
			local_path TEXT,
			file_size  BIGINT,
			status     VARCHAR(16) NOT NULL,
			error      TEXT,
			PRIMARY KEY (page_id, asset_id)
		)`, s.table),
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create report tables: %w", err)
		}
	}
	return nil
}

// Name identifies the sink
func (s *MySQLSink) Name() string { return "mysql" }

// WritePage upserts one report
func (s *MySQLSink) WritePage(ctx context.Context, report *types.PageReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s_pages (page_id, source_url, extracted, images, videos, failed, bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			source_url = VALUES(source_url),
			extracted  = VALUES(extracted),
			images     = VALUES(images),
			videos     = VALUES(videos),
			failed     = VALUES(failed),
			bytes      = VALUES(bytes)`, s.table),
		report.PageID, report.SourceURL, report.Timestamp,
		report.Summary.TotalImages, report.Summary.TotalVideos,
		report.Summary.FailedAssets, report.Summary.TotalBytes)
	if err != nil {
		return fmt.Errorf("failed to upsert page row: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s_assets WHERE page_id = ?`, s.table), report.PageID)
	if err != nil {
		return fmt.Errorf("failed to clear previous assets: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s_assets (page_id, asset_id, url, kind, descriptor, source, local_path, file_size, status, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table))
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
func (s *MySQLSink) Close() error {
	return s.db.Close()
}
