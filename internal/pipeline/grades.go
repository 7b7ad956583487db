package pipeline

import (
	"fmt"
	"math"
	"strconv"

	"foodclean/internal"
	"foodclean/internal/util"
)

var nutriscoreGrades = map[string]struct{}{"a": {}, "b": {}, "c": {}, "d": {}, "e": {}}

var nutriscorePlaceholders = map[string]struct{}{"not-applicable": {}, "unknown": {}, "not-applicable-grade": {}}

// NormalizeGrades lower-cases Nutri-Score grades (a-e) and keeps NOVA groups
// only as integers 1-4. Everything else becomes null.
func NormalizeGrades(nutriscoreColumn, novaColumn string) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		var entries []internal.LogEntry
		if nutriscoreColumn != "" {
			entries = append(entries, applyGrade(t, nutriscoreColumn, nutriscoreGrade))
		}
		if novaColumn != "" {
			entries = append(entries, applyGrade(t, novaColumn, novaGroup))
		}
		return t, entries
	}
}

// gradeFunc returns the cleaned value, or ok=false when the value must be
// nulled; invalid distinguishes garbage from known placeholders.
type gradeFunc func(raw string) (cleaned string, ok bool, invalid bool)

func applyGrade(t internal.Table, column string, fn gradeFunc) internal.LogEntry {
	if !t.Has(column) {
		return skipped(StepNormalizeGrades, column)
	}
	entry := internal.LogEntry{Step: StepNormalizeGrades, Column: column}
	for _, row := range t.Rows {
		v := row[column]
		if v.IsNull() {
			continue
		}
		raw := v.Text()
		cleaned, ok, invalid := fn(raw)
		if invalid {
			entry.InvalidValues++
		}
		switch {
		case !ok:
			row[column] = internal.Null()
			entry.ValuesNulled++
			entry.RowsAffected++
		case cleaned != raw || v.Kind != internal.KindString:
			row[column] = internal.String(cleaned)
			entry.ValuesChanged++
			entry.RowsAffected++
		}
	}
	entry.Message = fmt.Sprintf("normalized %d values, nulled %d (%d invalid)", entry.ValuesChanged, entry.ValuesNulled, entry.InvalidValues)
	return entry
}

func nutriscoreGrade(raw string) (string, bool, bool) {
	s := util.FoldKey(util.NormalizeText(raw, util.CaseLower))
	if _, ok := nutriscoreGrades[s]; ok {
		return s, true, false
	}
	if _, ok := nutriscorePlaceholders[s]; ok || s == "" {
		return "", false, false
	}
	return "", false, true
}

func novaGroup(raw string) (string, bool, bool) {
	f, err := util.ParseNumber(raw)
	if err != nil {
		if util.FoldKey(raw) == "unknown" {
			return "", false, false
		}
		return "", false, true
	}
	if f != math.Trunc(f) || f < 1 || f > 4 {
		return "", false, true
	}
	return strconv.Itoa(int(f)), true, false
}
