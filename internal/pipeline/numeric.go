package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"foodclean/internal"
	"foodclean/internal/config"
	"foodclean/internal/util"
)

// CoerceNumeric parses every configured nutritional cell into a number in
// the column's unit. Cells that cannot be parsed, or carry a unit of another
// dimension, become null and are reported as value errors.
func CoerceNumeric(columns []config.NumericColumn) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		var entries []internal.LogEntry
		for _, nc := range columns {
			if !t.Has(nc.Name) {
				entries = append(entries, skipped(StepCoerceNumeric, nc.Name))
				continue
			}
			entry := internal.LogEntry{Step: StepCoerceNumeric, Column: nc.Name}
			var first *ValueError
			converted := 0
			for i, row := range t.Rows {
				v := row[nc.Name]
				if v.Kind != internal.KindString {
					continue
				}
				raw := strings.TrimSpace(v.Str)
				if raw == "" {
					row[nc.Name] = internal.Null()
					entry.ValuesNulled++
					entry.RowsAffected++
					continue
				}
				q, err := util.ParseQuantity(raw)
				var f float64
				if err == nil {
					f, err = q.Convert(nc.Unit)
				}
				if err != nil {
					if first == nil {
						first = &ValueError{Column: nc.Name, Row: i + 1, Raw: v.Str, Err: err}
					}
					row[nc.Name] = internal.Null()
					entry.InvalidValues++
					entry.ValuesNulled++
					entry.RowsAffected++
					continue
				}
				if q.Unit != util.UnitNone && q.Unit != nc.Unit {
					converted++
				}
				num := internal.Number(f)
				row[nc.Name] = num
				if num.Text() != v.Str {
					entry.ValuesChanged++
					entry.RowsAffected++
				}
			}
			entry.Message = fmt.Sprintf("rewrote %d values (%d unit conversions), %d invalid set to null", entry.ValuesChanged, converted, entry.InvalidValues)
			if first != nil {
				entry.Message += fmt.Sprintf(" (first: %v)", first)
			}
			entries = append(entries, entry)
		}
		return t, entries
	}
}

// HandleMissing applies each column's missing-value policy: drop the row or
// impute a median, mean or constant. Statistics only use in-bounds values so
// outliers do not skew the fill.
func HandleMissing(columns []config.NumericColumn) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		var entries []internal.LogEntry
		for _, nc := range columns {
			if !t.Has(nc.Name) {
				entries = append(entries, skipped(StepHandleMissing, nc.Name))
				continue
			}
			entry := internal.LogEntry{Step: StepHandleMissing, Column: nc.Name}
			missing := 0
			for _, row := range t.Rows {
				if row[nc.Name].Kind != internal.KindNumber {
					missing++
				}
			}

			switch nc.Missing {
			case config.MissingDrop:
				kept := t.Rows[:0]
				for _, row := range t.Rows {
					if row[nc.Name].Kind != internal.KindNumber {
						continue
					}
					kept = append(kept, row)
				}
				t.Rows = kept
				entry.RowsDropped = missing
				entry.RowsAffected = missing
				entry.Message = fmt.Sprintf("%d missing, dropped %d rows", missing, missing)
			default:
				fill, ok := imputeValue(t, nc)
				if !ok {
					entry.Message = fmt.Sprintf("%d missing, no in-bounds values to impute %s from", missing, nc.Missing)
					break
				}
				for _, row := range t.Rows {
					if row[nc.Name].Kind != internal.KindNumber {
						row[nc.Name] = internal.Number(fill)
					}
				}
				entry.ValuesImputed = missing
				entry.RowsAffected = missing
				entry.Message = fmt.Sprintf("%d missing, imputed %s=%s", missing, nc.Missing, internal.Number(fill).Text())
			}
			entries = append(entries, entry)
		}
		return t, entries
	}
}

func imputeValue(t internal.Table, nc config.NumericColumn) (float64, bool) {
	if nc.Missing == config.MissingConstant {
		return nc.Fill, true
	}
	values := make([]float64, 0, len(t.Rows))
	for _, row := range t.Rows {
		v := row[nc.Name]
		if v.Kind == internal.KindNumber && v.Num >= nc.Min && v.Num <= nc.Max {
			values = append(values, v.Num)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	switch nc.Missing {
	case config.MissingMean:
		sum := 0.0
		for _, f := range values {
			sum += f
		}
		return sum / float64(len(values)), true
	default:
		return median(values), true
	}
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// HandleOutliers nulls or clips values outside each column's bounds.
func HandleOutliers(columns []config.NumericColumn) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		var entries []internal.LogEntry
		for _, nc := range columns {
			if !t.Has(nc.Name) {
				entries = append(entries, skipped(StepHandleOutliers, nc.Name))
				continue
			}
			entry := internal.LogEntry{Step: StepHandleOutliers, Column: nc.Name}
			for _, row := range t.Rows {
				v := row[nc.Name]
				if v.Kind != internal.KindNumber || (v.Num >= nc.Min && v.Num <= nc.Max) {
					continue
				}
				entry.RowsAffected++
				if nc.Outlier == config.OutlierClip {
					row[nc.Name] = internal.Number(clamp(v.Num, nc.Min, nc.Max))
					entry.ValuesChanged++
					continue
				}
				row[nc.Name] = internal.Null()
				entry.ValuesNulled++
			}
			verb := "removed"
			if nc.Outlier == config.OutlierClip {
				verb = "clipped"
			}
			entry.Message = fmt.Sprintf("%s %d outliers outside [%s, %s]", verb, entry.RowsAffected,
				internal.Number(nc.Min).Text(), internal.Number(nc.Max).Text())
			entries = append(entries, entry)
		}
		return t, entries
	}
}

func clamp(f, lo, hi float64) float64 {
	if f < lo {
		return lo
	}
	if f > hi {
		return hi
	}
	return f
}
