// internal/output/manager.go
package output

import (
	"context"
	"fmt"

	"github.com/valpere/MediaScrapexter/internal/config"
	"github.com/valpere/MediaScrapexter/internal/utils"
	"github.com/valpere/MediaScrapexter/pkg/types"
)

// Manager fans each page report out to every configured sink. The JSON
// writer is always present; the rest follow the outputs section of the
// configuration.
type Manager struct {
	sinks  []Sink
	sqlite *SQLiteStore
	logger utils.Logger
}

// NewManager builds the sink set. Opening any configured sink is required to
// succeed: a run that silently drops reports into a missing database is
// worse than one that refuses to start.
func NewManager(ctx context.Context, cfg *config.Config, logger utils.Logger) (*Manager, error) {
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	m := &Manager{logger: logger}

	jsonWriter, err := NewJSONWriter(cfg.OutputRoot)
	if err != nil {
		return nil, err
	}
	m.sinks = append(m.sinks, jsonWriter)

	outputs := cfg.Outputs
	if outputs.SQLite != nil {
		store, err := NewSQLiteStore(outputs.SQLite.Path)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to open SQLite store: %w", err)
		}
		m.sqlite = store
		m.sinks = append(m.sinks, store)
	}
	if outputs.Postgres != nil {
		sink, err := NewPostgresSink(outputs.Postgres.DSN, outputs.Postgres.Table)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to open PostgreSQL sink: %w", err)
		}
		m.sinks = append(m.sinks, sink)
	}
	if outputs.MySQL != nil {
		sink, err := NewMySQLSink(outputs.MySQL.DSN, outputs.MySQL.Table)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to open MySQL sink: %w", err)
		}
		m.sinks = append(m.sinks, sink)
	}
	if outputs.MongoDB != nil {
		sink, err := NewMongoSink(ctx, outputs.MongoDB.URI, outputs.MongoDB.Database, outputs.MongoDB.Collection)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to open MongoDB sink: %w", err)
		}
		m.sinks = append(m.sinks, sink)
	}
	if outputs.Excel != nil {
		sink, err := NewExcelSummary(outputs.Excel.Path)
		if err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to open Excel summary: %w", err)
		}
		m.sinks = append(m.sinks, sink)
	}

	return m, nil
}

// DownloadIndex returns the SQLite-backed download index, or nil when no
// SQLite output is configured.
func (m *Manager) DownloadIndex() *SQLiteStore {
	return m.sqlite
}

// WritePage sends the report to every sink. A failing secondary sink is
// logged and skipped so one broken database never loses the on-disk JSON
// report; only a JSON write failure is returned as an error.
func (m *Manager) WritePage(ctx context.Context, report *types.PageReport) error {
	var jsonErr error
	for _, sink := range m.sinks {
		if err := sink.WritePage(ctx, report); err != nil {
			if sink.Name() == "json" {
				jsonErr = err
				continue
			}
			m.logger.Errorf("%s sink failed for %s: %v", sink.Name(), report.PageID, err)
		}
	}
	return jsonErr
}

// Close closes every sink, keeping the first error
func (m *Manager) Close() error {
	var firstErr error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			m.logger.Errorf("failed to close %s sink: %v", sink.Name(), err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
