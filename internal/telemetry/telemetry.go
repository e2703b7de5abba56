// Package telemetry records one row per end-to-end fetch to an embedded
// SQLite-compatible database, for local debugging of extraction quality
// over time. It is entirely optional: the zero value of Sink is a no-op.
package telemetry

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/use-agent/lynxget/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL,
	success INTEGER NOT NULL,
	status_code INTEGER,
	latency_ms INTEGER,
	method TEXT,
	error TEXT,
	raw_html BLOB,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS antibot_detections (
	run_id INTEGER NOT NULL REFERENCES runs(id),
	provider TEXT NOT NULL,
	confidence INTEGER NOT NULL
);
`

// Sink records fetch/extract outcomes. The zero value (nil *Sink) is
// valid and every method becomes a no-op, so callers that don't enable
// RECORD_E2E_DB never pay for a database connection.
type Sink struct {
	db         *sql.DB
	recordHTML bool
}

// Open creates/opens the sqlite-compatible database at path (an
// RECORD_E2E_DB value) and ensures the schema exists. recordHTML mirrors
// RECORD_HTML: when true, each run's raw HTML is gzip-compressed and
// stored alongside its metadata.
func Open(ctx context.Context, path string, recordHTML bool) (*Sink, error) {
	db, err := sql.Open("libsql", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("telemetry: open: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("telemetry: migrate: %w", err)
	}
	return &Sink{db: db, recordHTML: recordHTML}, nil
}

// Run is one recorded fetch attempt.
type Run struct {
	URL        string
	Success    bool
	StatusCode int
	Latency    time.Duration
	Method     string
	Error      string
	RawHTML    []byte
	Detections []model.AntibotDetection
}

// Record inserts run and its antibot detections. A nil Sink is a no-op.
func (s *Sink) Record(ctx context.Context, run Run) error {
	if s == nil || s.db == nil {
		return nil
	}
	var rawHTML []byte
	if s.recordHTML && len(run.RawHTML) > 0 {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(run.RawHTML); err == nil {
			gw.Close()
			rawHTML = buf.Bytes()
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("telemetry: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (url, success, status_code, latency_ms, method, error, raw_html, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.URL, boolToInt(run.Success), run.StatusCode, run.Latency.Milliseconds(), run.Method, run.Error, rawHTML, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("telemetry: insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("telemetry: last insert id: %w", err)
	}
	for _, d := range run.Detections {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO antibot_detections (run_id, provider, confidence) VALUES (?, ?, ?)`,
			runID, d.Name, d.Confidence); err != nil {
			return fmt.Errorf("telemetry: insert detection: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the underlying database handle. A nil Sink is a no-op.
func (s *Sink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
