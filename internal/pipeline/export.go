package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"

	"foodclean/internal"
)

// WriteTable writes the table as a delimited file. The file is written to a
// temporary sibling and renamed into place so a failed run never leaves a
// truncated output behind.
func WriteTable(t internal.Table, outputPath string, delim rune) error {
	if delim == 0 {
		delim = ','
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".foodclean-*.tmp")
	if err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	w.Comma = delim
	if err := w.Write(t.Columns); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: outputPath, Err: err}
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			record[i] = row[c].Text()
		}
		if err := w.Write(record); err != nil {
			_ = tmp.Close()
			return &WriteError{Path: outputPath, Err: err}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = tmp.Close()
		return &WriteError{Path: outputPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}
	if err := os.Rename(tmp.Name(), outputPath); err != nil {
		return &WriteError{Path: outputPath, Err: err}
	}
	return nil
}
