package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"foodclean/internal"
)

const metaLastSuccessfulRun = "last_successful_run"

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL UNIQUE,
  inputPath TEXT NOT NULL,
  outputPath TEXT NOT NULL,
  rowsIn INTEGER NOT NULL,
  rowsOut INTEGER NOT NULL,
  rowsDropped INTEGER NOT NULL,
  status TEXT NOT NULL,
  columnsJson TEXT NOT NULL,
  startedAt TEXT NOT NULL,
  finishedAt TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS log_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  runId TEXT NOT NULL,
  seq INTEGER NOT NULL,
  at TEXT NOT NULL,
  step TEXT NOT NULL,
  columnName TEXT,
  message TEXT NOT NULL,
  rowsAffected INTEGER NOT NULL,
  valuesChanged INTEGER NOT NULL,
  valuesNulled INTEGER NOT NULL,
  valuesImputed INTEGER NOT NULL,
  rowsDropped INTEGER NOT NULL,
  invalidValues INTEGER NOT NULL,
  UNIQUE(runId, seq),
  FOREIGN KEY(runId) REFERENCES runs(runId)
);
CREATE INDEX IF NOT EXISTS idx_log_entries_runId ON log_entries(runId);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// RecordRun stores the run and its log entries in one transaction.
func (d *DB) RecordRun(s internal.RunSummary, status string) error {
	columnsJSON, err := json.Marshal(s.Columns)
	if err != nil {
		return fmt.Errorf("encode column stats of run %s: %w", s.RunID, err)
	}

	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
INSERT INTO runs (runId, inputPath, outputPath, rowsIn, rowsOut, rowsDropped, status, columnsJson, startedAt, finishedAt)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, s.RunID, s.InputPath, s.OutputPath, s.RowsIn, s.RowsOut, s.RowsDropped, status, string(columnsJSON),
		formatTime(s.StartedAt), formatTime(s.FinishedAt)); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
INSERT INTO log_entries (runId, seq, at, step, columnName, message, rowsAffected, valuesChanged, valuesNulled, valuesImputed, rowsDropped, invalidValues)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range s.Entries {
		if _, err := stmt.Exec(
			s.RunID, i+1, formatTime(e.At), e.Step, e.Column, e.Message,
			e.RowsAffected, e.ValuesChanged, e.ValuesNulled, e.ValuesImputed, e.RowsDropped, e.InvalidValues,
		); err != nil {
			return err
		}
	}

	if status == internal.StatusSucceeded {
		if _, err := tx.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, metaLastSuccessfulRun, s.RunID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (d *DB) ListRuns(limit int) ([]internal.RunRecord, error) {
	rows, err := d.conn.Query(`
SELECT id, runId, inputPath, outputPath, rowsIn, rowsOut, rowsDropped, status, startedAt, finishedAt
FROM runs ORDER BY id DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.RunRecord
	for rows.Next() {
		var r internal.RunRecord
		if err := rows.Scan(&r.ID, &r.RunID, &r.InputPath, &r.OutputPath, &r.RowsIn, &r.RowsOut, &r.RowsDropped, &r.Status, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (d *DB) GetRunEntries(runID string) ([]internal.LogEntry, error) {
	rows, err := d.conn.Query(`
SELECT at, step, columnName, message, rowsAffected, valuesChanged, valuesNulled, valuesImputed, rowsDropped, invalidValues
FROM log_entries WHERE runId = ? ORDER BY seq ASC
`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.LogEntry
	for rows.Next() {
		var e internal.LogEntry
		var at string
		var column sql.NullString
		if err := rows.Scan(&at, &e.Step, &column, &e.Message, &e.RowsAffected, &e.ValuesChanged, &e.ValuesNulled, &e.ValuesImputed, &e.RowsDropped, &e.InvalidValues); err != nil {
			return nil, err
		}
		e.Column = column.String
		if e.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("log entry of run %s: bad timestamp %q: %w", runID, at, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastSuccessfulRun returns the ID of the newest succeeded run, or nil.
func (d *DB) LastSuccessfulRun() (*string, error) {
	return d.getMetadata(metaLastSuccessfulRun)
}

func (d *DB) getMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
