package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"foodclean/internal"
	"foodclean/internal/config"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// LoadTable reads a delimited file, or the first non-empty sheet of an .xlsx
// workbook, into a Table. It also returns the delimiter that was used so the
// output can mirror it.
func LoadTable(path string, profile config.Profile) (internal.Table, rune, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return internal.Table{}, 0, &LoadError{Path: path, Reason: "unreadable input", Err: err}
	}

	var (
		header  []string
		records [][]string
		delim   = firstRune(profile.Delimiter, 0)
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		header, records, err = readXLSX(blob)
		if delim == 0 {
			delim = ','
		}
	default:
		blob = bytes.TrimPrefix(blob, utf8BOM)
		if delim == 0 {
			delim = DetectDelimiter(firstLine(blob))
		}
		header, records, err = readDelimited(blob, delim)
	}
	if err != nil {
		return internal.Table{}, 0, &LoadError{Path: path, Reason: "corrupt input", Err: err}
	}

	table, err := buildTable(header, records, profile.RequiredColumns)
	if err != nil {
		return internal.Table{}, 0, &LoadError{Path: path, Reason: err.Error()}
	}
	return table, delim, nil
}

func readDelimited(blob []byte, delim rune) ([]string, [][]string, error) {
	r := csv.NewReader(bytes.NewReader(blob))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	var records [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		records = append(records, rec)
	}
	return header, records, nil
}

func readXLSX(content []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			continue
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			continue
		}
		return rows[0], rows[1:], nil
	}
	return nil, nil, nil
}

func buildTable(header []string, records [][]string, required []string) (internal.Table, error) {
	if len(header) == 0 {
		return internal.Table{}, errors.New("no header row")
	}

	columns := make([]string, len(header))
	seen := map[string]struct{}{}
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			return internal.Table{}, fmt.Errorf("empty column name at position %d", i+1)
		}
		if _, dup := seen[name]; dup {
			return internal.Table{}, fmt.Errorf("duplicate column %q", name)
		}
		seen[name] = struct{}{}
		columns[i] = name
	}
	for _, name := range required {
		if _, ok := seen[name]; !ok {
			return internal.Table{}, fmt.Errorf("missing column %q", name)
		}
	}

	table := internal.Table{Columns: columns, Rows: make([]internal.Row, 0, len(records))}
	for i, rec := range records {
		if len(rec) > len(columns) {
			return internal.Table{}, fmt.Errorf("line %d has %d fields, header has %d", i+2, len(rec), len(columns))
		}
		row := make(internal.Row, len(columns))
		for j, name := range columns {
			if j < len(rec) && rec[j] != "" {
				row[name] = internal.String(rec[j])
			} else {
				row[name] = internal.Null()
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func firstLine(blob []byte) string {
	if i := bytes.IndexByte(blob, '\n'); i >= 0 {
		blob = blob[:i]
	}
	return strings.TrimRight(string(blob), "\r")
}

func firstRune(s string, fallback rune) rune {
	for _, r := range s {
		return r
	}
	return fallback
}
