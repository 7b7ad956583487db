package internal

import (
	"strconv"
	"strings"
	"time"
)

type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
)

// Value is a single cell: null, a string or a number.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
}

func Null() Value { return Value{Kind: KindNull} }

func String(s string) Value { return Value{Kind: KindString, Str: s} }

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Text renders the value the way it is written to the output file.
// Null renders as the empty string.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	default:
		return ""
	}
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	default:
		return true
	}
}

type Row map[string]Value

// Table is the in-memory record table. Columns is fixed for a run; Rows may
// only shrink.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t Table) Has(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

func (t Table) Len() int { return len(t.Rows) }

// Clone returns a deep copy so that a step can modify rows without touching
// the caller's table.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Key joins the rendered cells of a row in column order.
func (t Table) Key(row Row) string {
	parts := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		v := row[c]
		switch v.Kind {
		case KindNull:
			parts[i] = "\x00"
		default:
			parts[i] = v.Text()
		}
	}
	return strings.Join(parts, "\x1f")
}

// LogEntry records the effect of one cleaning decision.
type LogEntry struct {
	At            time.Time
	Step          string
	Column        string
	Message       string
	RowsAffected  int
	ValuesChanged int
	ValuesNulled  int
	ValuesImputed int
	RowsDropped   int
	InvalidValues int
}

type ColumnStats struct {
	Changed int
	Nulled  int
	Imputed int
}

type RunSummary struct {
	RunID       string
	InputPath   string
	OutputPath  string
	RowsIn      int
	RowsOut     int
	RowsDropped int
	Columns     map[string]*ColumnStats
	Entries     []LogEntry
	StartedAt   time.Time
	FinishedAt  time.Time
}

func (s *RunSummary) Column(name string) *ColumnStats {
	if s.Columns == nil {
		s.Columns = map[string]*ColumnStats{}
	}
	cs, ok := s.Columns[name]
	if !ok {
		cs = &ColumnStats{}
		s.Columns[name] = cs
	}
	return cs
}

// Run outcomes as stored in the ledger and reported to observers.
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// RunRecord is a past run as stored in the ledger.
type RunRecord struct {
	ID          int
	RunID       string
	InputPath   string
	OutputPath  string
	RowsIn      int
	RowsOut     int
	RowsDropped int
	Status      string
	StartedAt   string
	FinishedAt  string
}
