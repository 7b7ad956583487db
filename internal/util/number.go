package util

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

const (
	UnitNone = ""
	UnitG    = "g"
	UnitMg   = "mg"
	UnitKcal = "kcal"
	UnitKJ   = "kj"
)

var (
	reUnitSuffix     = regexp.MustCompile(`(?i)\s*(kcal|kj|mg|g)$`)
	reThousandsComma = regexp.MustCompile(`^[1-9]\d{0,2}(?:,\d{3})+(?:\.\d+)?$`)
	reNumeric        = regexp.MustCompile(`^[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?$`)
)

var (
	ErrNotNumeric   = errors.New("not a number")
	ErrUnitMismatch = errors.New("unit mismatch")
)

// unitScale maps a unit to its dimension and its size in the dimension's
// base unit (g for mass, kcal for energy).
var unitScale = map[string]struct {
	dimension string
	factor    float64
}{
	UnitG:    {dimension: "mass", factor: 1},
	UnitMg:   {dimension: "mass", factor: 0.001},
	UnitKcal: {dimension: "energy", factor: 1},
	UnitKJ:   {dimension: "energy", factor: 1 / 4.184},
}

// Quantity is a parsed cell: the number and the unit suffix it carried, if
// any, lower-cased.
type Quantity struct {
	Value float64
	Unit  string
}

// IsUnit reports whether u is a known unit or UnitNone.
func IsUnit(u string) bool {
	if u == UnitNone {
		return true
	}
	_, ok := unitScale[u]
	return ok
}

// ParseQuantity reads a nutritional cell: "1,5", "1,234.5", "12 g", "418 kJ"
// and "  7 " are all accepted. A plain dot is always a decimal point.
func ParseQuantity(input string) (Quantity, error) {
	token := strings.ReplaceAll(input, "\u00A0", " ")
	token = strings.TrimSpace(token)

	unit := UnitNone
	if m := reUnitSuffix.FindStringSubmatchIndex(token); m != nil {
		unit = strings.ToLower(token[m[2]:m[3]])
		token = token[:m[0]]
	}

	token = normalizeNumericToken(token)
	if !reNumeric.MatchString(token) {
		return Quantity{}, fmt.Errorf("%w: %q", ErrNotNumeric, input)
	}
	f, err := cast.ToFloat64E(token)
	if err != nil {
		return Quantity{}, fmt.Errorf("%w: %q", ErrNotNumeric, input)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Quantity{}, fmt.Errorf("%w: %q", ErrNotNumeric, input)
	}
	return Quantity{Value: f, Unit: unit}, nil
}

// ParseNumber parses a bare number; a unit suffix is an error.
func ParseNumber(input string) (float64, error) {
	q, err := ParseQuantity(input)
	if err != nil {
		return 0, err
	}
	if q.Unit != UnitNone {
		return 0, fmt.Errorf("%w: %q", ErrNotNumeric, input)
	}
	return q.Value, nil
}

// Convert expresses q in unit to. A quantity without a unit is taken to be
// in to already. Converted values are rounded to three decimals.
func (q Quantity) Convert(to string) (float64, error) {
	if q.Unit == UnitNone || q.Unit == to {
		return q.Value, nil
	}
	from, okFrom := unitScale[q.Unit]
	target, okTo := unitScale[to]
	if !okFrom || !okTo || from.dimension != target.dimension {
		want := to
		if want == UnitNone {
			want = "no unit"
		}
		return 0, fmt.Errorf("%w: got %s, want %s", ErrUnitMismatch, q.Unit, want)
	}
	v := q.Value * from.factor / target.factor
	return math.Round(v*1000) / 1000, nil
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	if reThousandsComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") && strings.Count(compact, ",") == 1 {
		return strings.ReplaceAll(compact, ",", ".")
	}
	return compact
}
