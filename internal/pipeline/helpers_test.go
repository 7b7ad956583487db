package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"foodclean/internal"
)

// mkTable builds a table; nil cells are null.
func mkTable(columns []string, rows ...[]*string) internal.Table {
	t := internal.Table{Columns: columns}
	for _, cells := range rows {
		row := internal.Row{}
		for i, c := range columns {
			if i < len(cells) && cells[i] != nil {
				row[c] = internal.String(*cells[i])
			} else {
				row[c] = internal.Null()
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func s(v string) *string { return &v }

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
