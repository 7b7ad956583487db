package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		casing Casing
		want   string
	}{
		{name: "trim and title", input: " Coca Cola  ", casing: CaseTitle, want: "Coca Cola"},
		{name: "mixed case title", input: "cOCA   cOLA", casing: CaseTitle, want: "Coca Cola"},
		{name: "lower", input: "Organic\tFAIR Trade", casing: CaseLower, want: "organic fair trade"},
		{name: "entity", input: "Ben &amp; Jerry&#39;s", casing: CaseKeep, want: "Ben & Jerry's"},
		{name: "double escaped", input: "M&amp;amp;M", casing: CaseKeep, want: "M&M"},
		{name: "tags", input: "<b>Nutella</b> spread", casing: CaseKeep, want: "Nutella spread"},
		{name: "control runes", input: "Mi\u0000lk\u200b", casing: CaseKeep, want: "Milk"},
		{name: "nbsp", input: "Oat\u00a0drink", casing: CaseLower, want: "oat drink"},
		{name: "fullwidth", input: "ＡＢＣ", casing: CaseKeep, want: "ABC"},
		{name: "empty", input: "   ", casing: CaseTitle, want: ""},
		{name: "bare less-than", input: "Sugar<Fat", casing: CaseKeep, want: "Sugar<Fat"},
		{name: "tag then bare less-than", input: "<b>Sugar</b><Fat", casing: CaseKeep, want: "Sugar<Fat"},
		{name: "comparison with entity", input: "1 < 2 &amp; 3", casing: CaseKeep, want: "1 < 2 & 3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NormalizeText(tc.input, tc.casing)
			require.Equal(t, tc.want, got)
			require.Equal(t, got, NormalizeText(got, tc.casing), "not a fixed point")
		})
	}
}

func TestUnescapeMarkupKeepsStrayAngles(t *testing.T) {
	for input, want := range map[string]string{
		"a<b":                    "a<b",
		"Sugar<Fat":              "Sugar<Fat",
		"<i>x</i> < 5":           "x < 5",
		"fat <5%, salt":          "fat <5%, salt",
		"<!-- note -->Cocoa":     "Cocoa",
		"<p class=\"x\">Oil</p>": "Oil",
	} {
		got := UnescapeMarkup(input)
		require.Equal(t, want, got, input)
		require.Equal(t, got, UnescapeMarkup(got), input)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("sugar, cocoa (cocoa butter, cocoa mass), milk", ",")
	require.Equal(t, []string{"sugar", " cocoa (cocoa butter, cocoa mass)", " milk"}, got)

	require.Equal(t, []string{"water"}, SplitList("water", ","))
	require.Equal(t, []string{"a", "", "b"}, SplitList("a,,b", ","))
}

func TestStripLangPrefix(t *testing.T) {
	require.Equal(t, "snacks", StripLangPrefix("en:snacks"))
	require.Equal(t, "bio", StripLangPrefix("fr: de:bio"))
	require.Equal(t, "100% natural", StripLangPrefix("100% natural"))
}

func TestFoldKey(t *testing.T) {
	require.Equal(t, "espana", FoldKey("  España "))
	require.Equal(t, "cote d'ivoire", FoldKey("Côte d'Ivoire"))
}

func TestDiceCoefficient(t *testing.T) {
	require.Equal(t, 1.0, DiceCoefficient("france", "france"))
	require.Greater(t, DiceCoefficient("frence", "france"), 0.55)
	require.Less(t, DiceCoefficient("germany", "france"), 0.3)
}
