package pipeline

import (
	"fmt"

	"foodclean/internal"
	"foodclean/internal/util"
)

// DropJunkRows removes rows whose product name normalizes to a known
// placeholder such as "xxx".
func DropJunkRows(column string, names []string) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		if column == "" || len(names) == 0 {
			return t, nil
		}
		if !t.Has(column) {
			return t, []internal.LogEntry{skipped(StepDropJunkRows, column)}
		}
		junk := foldSet(names)
		kept := t.Rows[:0]
		dropped := 0
		for _, row := range t.Rows {
			v := row[column]
			if !v.IsNull() && isJunk(util.NormalizeText(v.Text(), util.CaseKeep), junk) {
				dropped++
				continue
			}
			kept = append(kept, row)
		}
		t.Rows = kept
		return t, []internal.LogEntry{{
			Step:         StepDropJunkRows,
			Column:       column,
			Message:      fmt.Sprintf("dropped %d rows with placeholder names", dropped),
			RowsAffected: dropped,
			RowsDropped:  dropped,
		}}
	}
}

// DropDuplicates keeps the first of each group of identical rows.
func DropDuplicates() StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		seen := map[string]struct{}{}
		kept := t.Rows[:0]
		dropped := 0
		for _, row := range t.Rows {
			key := t.Key(row)
			if _, exists := seen[key]; exists {
				dropped++
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, row)
		}
		t.Rows = kept
		return t, []internal.LogEntry{{
			Step:         StepDropDuplicateRows,
			Message:      fmt.Sprintf("dropped %d duplicate rows", dropped),
			RowsAffected: dropped,
			RowsDropped:  dropped,
		}}
	}
}
