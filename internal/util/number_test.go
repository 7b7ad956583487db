package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  Quantity
	}{
		{name: "integer", input: "7", want: Quantity{Value: 7}},
		{name: "decimal dot", input: "1.5", want: Quantity{Value: 1.5}},
		{name: "decimal comma", input: "1,5", want: Quantity{Value: 1.5}},
		{name: "leading zero comma", input: "0,125", want: Quantity{Value: 0.125}},
		{name: "thousand comma", input: "1,234.5", want: Quantity{Value: 1234.5}},
		{name: "dot is decimal", input: "1.125", want: Quantity{Value: 1.125}},
		{name: "gram suffix", input: "12 g", want: Quantity{Value: 12, Unit: UnitG}},
		{name: "milligram suffix", input: "350 mg", want: Quantity{Value: 350, Unit: UnitMg}},
		{name: "kcal suffix", input: "250kcal", want: Quantity{Value: 250, Unit: UnitKcal}},
		{name: "kj suffix", input: "418 kJ", want: Quantity{Value: 418, Unit: UnitKJ}},
		{name: "padding", input: "  3 ", want: Quantity{Value: 3}},
		{name: "negative", input: "-2", want: Quantity{Value: -2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseQuantity(tc.input)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestParseQuantityRejects(t *testing.T) {
	for _, input := range []string{"abc", "", "1,2,3", "NaN", "Inf", "12 oz", "--1", "kcal"} {
		_, err := ParseQuantity(input)
		require.ErrorIs(t, err, ErrNotNumeric, input)
	}
}

func TestParseNumberRejectsUnits(t *testing.T) {
	f, err := ParseNumber("3,0")
	require.NoError(t, err)
	require.Equal(t, 3.0, f)

	_, err = ParseNumber("418 kJ")
	require.ErrorIs(t, err, ErrNotNumeric)
}

func TestQuantityConvert(t *testing.T) {
	cases := []struct {
		name string
		q    Quantity
		to   string
		want float64
	}{
		{name: "kj to kcal", q: Quantity{Value: 418, Unit: UnitKJ}, to: UnitKcal, want: 99.904},
		{name: "kcal to kj", q: Quantity{Value: 100, Unit: UnitKcal}, to: UnitKJ, want: 418.4},
		{name: "mg to g", q: Quantity{Value: 350, Unit: UnitMg}, to: UnitG, want: 0.35},
		{name: "same unit", q: Quantity{Value: 12, Unit: UnitG}, to: UnitG, want: 12},
		{name: "bare number", q: Quantity{Value: 5}, to: UnitKcal, want: 5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.q.Convert(tc.to)
			require.NoError(t, err)
			require.InDelta(t, tc.want, got, 1e-9)
		})
	}

	for _, bad := range []struct {
		q  Quantity
		to string
	}{
		{q: Quantity{Value: 12, Unit: UnitG}, to: UnitKcal},
		{q: Quantity{Value: 418, Unit: UnitKJ}, to: UnitG},
		{q: Quantity{Value: 12, Unit: UnitG}, to: UnitNone},
	} {
		_, err := bad.q.Convert(bad.to)
		require.ErrorIs(t, err, ErrUnitMismatch)
	}
}
