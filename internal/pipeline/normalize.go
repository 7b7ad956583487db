package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"foodclean/internal"
	"foodclean/internal/config"
	"foodclean/internal/util"
)

const listSeparator = ","

// NormalizeTextColumns trims, re-cases and de-junks the configured text
// columns. List columns are split on commas, cleaned token by token,
// de-duplicated and re-joined with ", ". Values left empty become null.
func NormalizeTextColumns(columns []config.TextColumn) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		var entries []internal.LogEntry
		for _, tc := range columns {
			if !t.Has(tc.Name) {
				entries = append(entries, skipped(StepNormalizeText, tc.Name))
				continue
			}
			junk := foldSet(tc.Junk)
			repl := replacerFor(tc.Replace)
			entry := internal.LogEntry{Step: StepNormalizeText, Column: tc.Name}
			for _, row := range t.Rows {
				v := row[tc.Name]
				if v.IsNull() {
					continue
				}
				raw := v.Text()
				cleaned, ok := normalizeTextValue(raw, tc, junk, repl)
				switch {
				case !ok:
					row[tc.Name] = internal.Null()
					entry.ValuesNulled++
					entry.RowsAffected++
				case cleaned != raw || v.Kind != internal.KindString:
					row[tc.Name] = internal.String(cleaned)
					entry.ValuesChanged++
					entry.RowsAffected++
				}
			}
			entry.Message = fmt.Sprintf("normalized %d values, nulled %d (case=%s)", entry.ValuesChanged, entry.ValuesNulled, caseName(tc.Case))
			entries = append(entries, entry)
		}
		return t, entries
	}
}

func normalizeTextValue(raw string, tc config.TextColumn, junk map[string]struct{}, repl *strings.Replacer) (string, bool) {
	if !tc.List {
		s := cleanToken(raw, tc, repl)
		if s == "" || isJunk(s, junk) {
			return "", false
		}
		return s, true
	}

	tokens := util.SplitList(util.NormalizeText(raw, util.CaseKeep), listSeparator)
	out := make([]string, 0, len(tokens))
	seen := map[string]struct{}{}
	for _, tok := range tokens {
		s := cleanToken(tok, tc, repl)
		if s == "" || isJunk(s, junk) {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return "", false
	}
	return util.JoinList(out), true
}

func cleanToken(raw string, tc config.TextColumn, repl *strings.Replacer) string {
	s := util.NormalizeText(raw, util.CaseKeep)
	if repl != nil {
		s = repl.Replace(s)
	}
	if tc.StripLangPrefix {
		s = util.StripLangPrefix(s)
	}
	return util.ApplyCase(util.CollapseSpaces(s), tc.Case)
}

// replacerFor tries longer keys first.
func replacerFor(m map[string]string) *strings.Replacer {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return strings.NewReplacer(pairs...)
}

func foldSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[util.FoldKey(v)] = struct{}{}
	}
	return out
}

func isJunk(s string, junk map[string]struct{}) bool {
	_, ok := junk[util.FoldKey(s)]
	return ok
}

func caseName(c util.Casing) string {
	if c == "" {
		return string(util.CaseKeep)
	}
	return string(c)
}
