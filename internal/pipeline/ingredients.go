package pipeline

import (
	"fmt"
	"strings"

	"foodclean/internal"
	"foodclean/internal/util"
)

// CleanIngredients normalizes each ingredient list as a whole, splits it on
// delim (outside parentheses), lower-cases and trims every token, drops empty
// ones and re-joins them. Lists without the delimiter are kept as a single
// token.
func CleanIngredients(column, delim string) StepFunc {
	if delim == "" {
		delim = listSeparator
	}
	joiner := delim + " "
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		if !t.Has(column) {
			return t, []internal.LogEntry{skipped(StepCleanIngredients, column)}
		}
		entry := internal.LogEntry{Step: StepCleanIngredients, Column: column}
		missing, single := 0, 0
		for _, row := range t.Rows {
			v := row[column]
			if v.IsNull() {
				missing++
				continue
			}
			raw := v.Text()
			tokens := util.SplitList(util.NormalizeText(raw, util.CaseKeep), delim)
			if len(tokens) == 1 {
				single++
			}
			out := make([]string, 0, len(tokens))
			for _, tok := range tokens {
				if s := cleanIngredient(tok); s != "" {
					out = append(out, s)
				}
			}
			if len(out) == 0 {
				row[column] = internal.Null()
				missing++
				entry.ValuesNulled++
				entry.RowsAffected++
				continue
			}
			if joined := strings.Join(out, joiner); joined != raw || v.Kind != internal.KindString {
				row[column] = internal.String(joined)
				entry.ValuesChanged++
				entry.RowsAffected++
			}
		}
		entry.Message = fmt.Sprintf("cleaned %d ingredient lists, %d missing, %d without delimiter", entry.ValuesChanged, missing, single)
		return t, []internal.LogEntry{entry}
	}
}

func cleanIngredient(tok string) string {
	s := util.NormalizeText(tok, util.CaseLower)
	s = strings.ReplaceAll(s, "_", "")
	s = strings.TrimRight(s, ". ")
	return util.CollapseSpaces(s)
}
