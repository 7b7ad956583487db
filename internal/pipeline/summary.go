package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"foodclean/internal"
)

// EmitSummary writes the run report: totals, one line per log entry and a
// per-column table of changed, nulled and imputed values.
func EmitSummary(w io.Writer, s internal.RunSummary) error {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "CLEANING SUMMARY  run=%s\n", s.RunID)
	b.WriteString(strings.Repeat("=", 40) + "\n")
	fmt.Fprintf(&b, "input        : %s\n", s.InputPath)
	fmt.Fprintf(&b, "output       : %s\n", s.OutputPath)
	fmt.Fprintf(&b, "rows in      : %d\n", s.RowsIn)
	fmt.Fprintf(&b, "rows dropped : %d\n", s.RowsDropped)
	fmt.Fprintf(&b, "rows out     : %d\n", s.RowsOut)
	if !s.StartedAt.IsZero() && !s.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "duration     : %s\n", s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
	}

	b.WriteString("\nACTIONS\n")
	for _, e := range s.Entries {
		b.WriteString(FormatEntry(e))
		b.WriteByte('\n')
	}
	b.WriteString("\nCOLUMNS\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	names := make([]string, 0, len(s.Columns))
	for name := range s.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"column", "changed", "nulled", "imputed"})
	for _, name := range names {
		cs := s.Columns[name]
		table.Append([]string{name, strconv.Itoa(cs.Changed), strconv.Itoa(cs.Nulled), strconv.Itoa(cs.Imputed)})
	}
	table.Render()
	return nil
}

// FormatEntry renders one log entry as a single line.
func FormatEntry(e internal.LogEntry) string {
	column := e.Column
	if column == "" {
		column = "*"
	}
	return fmt.Sprintf("%s [%s] %s: %s (rows=%d changed=%d nulled=%d imputed=%d dropped=%d invalid=%d)",
		e.At.UTC().Format(time.RFC3339), e.Step, column, e.Message,
		e.RowsAffected, e.ValuesChanged, e.ValuesNulled, e.ValuesImputed, e.RowsDropped, e.InvalidValues)
}

func WriteSummaryFile(path string, s internal.RunSummary) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := EmitSummary(f, s); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
