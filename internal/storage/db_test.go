package storage

import (
	"path/filepath"
	"testing"
	"time"

	"foodclean/internal"
)

func TestRecordAndListRuns(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "ledger", "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	first := internal.RunSummary{
		RunID: "run-1", InputPath: "in.csv", OutputPath: "out.csv",
		RowsIn: 5, RowsOut: 3, RowsDropped: 2,
		StartedAt: at, FinishedAt: at.Add(time.Second),
		Entries: []internal.LogEntry{
			{At: at, Step: "drop_junk_rows", Column: "product_name", Message: "dropped 1 rows with placeholder names", RowsAffected: 1, RowsDropped: 1},
			{At: at, Step: "drop_duplicates", Message: "dropped 1 duplicate rows", RowsAffected: 1, RowsDropped: 1},
		},
	}
	first.Column("product_name").Changed = 2
	if err := db.RecordRun(first, internal.StatusSucceeded); err != nil {
		t.Fatal(err)
	}
	failed := internal.RunSummary{RunID: "run-2", InputPath: "broken.csv", OutputPath: "out.csv", StartedAt: at, FinishedAt: at}
	if err := db.RecordRun(failed, internal.StatusFailed); err != nil {
		t.Fatal(err)
	}

	runs, err := db.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].RunID != "run-2" || runs[1].RunID != "run-1" {
		t.Fatalf("unexpected runs: %+v", runs)
	}
	if runs[1].RowsOut != 3 || runs[1].Status != internal.StatusSucceeded || runs[1].StartedAt != "2024-05-01T10:00:00Z" {
		t.Fatalf("unexpected record: %+v", runs[1])
	}

	entries, err := db.GetRunEntries("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Step != "drop_junk_rows" || entries[1].Column != "" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if !entries[0].At.Equal(at) || entries[1].RowsDropped != 1 {
		t.Fatalf("entry fields not restored: %+v", entries)
	}

	last, err := db.LastSuccessfulRun()
	if err != nil {
		t.Fatal(err)
	}
	if last == nil || *last != "run-1" {
		t.Fatalf("last successful run = %v", last)
	}
}

func TestRecordRunDuplicateID(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	s := internal.RunSummary{RunID: "run-1", Entries: []internal.LogEntry{{Step: "normalize_text", Message: "x"}}}
	if err := db.RecordRun(s, internal.StatusSucceeded); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordRun(s, internal.StatusSucceeded); err == nil {
		t.Fatal("expected unique constraint error")
	}
	entries, err := db.GetRunEntries("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("rolled back insert left %d entries", len(entries))
	}
}

func TestLastSuccessfulRunMissing(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	v, err := db.LastSuccessfulRun()
	if err != nil || v != nil {
		t.Fatalf("got %v, %v", v, err)
	}
}

func TestGetRunEntriesBadTimestamp(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.RecordRun(internal.RunSummary{RunID: "run-1", Entries: []internal.LogEntry{{Step: "normalize_text", Message: "x"}}}, internal.StatusFailed); err != nil {
		t.Fatal(err)
	}
	if _, err := db.conn.Exec(`UPDATE log_entries SET at = 'yesterday' WHERE runId = 'run-1'`); err != nil {
		t.Fatal(err)
	}
	if _, err := db.GetRunEntries("run-1"); err == nil {
		t.Fatal("expected timestamp error")
	}

	last, err := db.LastSuccessfulRun()
	if err != nil || last != nil {
		t.Fatalf("failed run must not become the last successful run: %v, %v", last, err)
	}
}
