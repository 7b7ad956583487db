package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"foodclean/internal/util"
)

func TestLoadProfileDefaults(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	require.Equal(t, SupportedSchema, p.SchemaVersion)
	require.Len(t, p.Numeric, 8)

	var sugar, energy NumericColumn
	for _, nc := range p.Numeric {
		switch nc.Name {
		case "sugars_100g":
			sugar = nc
		case "energy-kcal_100g":
			energy = nc
		}
	}
	require.Equal(t, util.UnitG, sugar.Unit)
	require.Equal(t, util.UnitKcal, energy.Unit)
	require.Equal(t, 0.0, sugar.Min)
	require.Equal(t, 100.0, sugar.Max)
	require.Equal(t, OutlierClip, sugar.Outlier)
	require.Equal(t, MissingMedian, sugar.Missing)

	for _, tc := range p.Text {
		if tc.Name == "brands" {
			require.Equal(t, map[string]string{"’": "'"}, tc.Replace)
		}
	}
}

func TestLoadProfileFileReplacesLists(t *testing.T) {
	dir := t.TempDir()
	raw := []byte(`schema_version: v1
delimiter: "\t"
drop_duplicates: false
text:
  - name: product_name
    case: lower
numeric:
  - name: sugars_100g
    min: 0
    max: 100
    outlier: "null"
    missing: drop
`)
	path := filepath.Join(dir, "profile.yml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	require.Equal(t, "\t", p.Delimiter)
	require.False(t, p.DropDuplicates)
	require.Equal(t, []TextColumn{{Name: "product_name", Case: util.CaseLower}}, p.Text)
	require.Equal(t, []NumericColumn{{Name: "sugars_100g", Min: 0, Max: 100, Outlier: OutlierNull, Missing: MissingDrop}}, p.Numeric)
	// untouched keys keep their defaults
	require.Equal(t, "ingredients_text", p.IngredientsColumn)
	require.Equal(t, []string{"product_name"}, p.RequiredColumns)
}

func TestLoadProfileEnvOverride(t *testing.T) {
	t.Setenv("FOODCLEAN_PROFILE__INGREDIENT_DELIMITER", ";")
	p, err := LoadProfile("")
	require.NoError(t, err)
	require.Equal(t, ";", p.IngredientDelimiter)
}

func TestLoadProfileInvalid(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "schema", raw: "schema_version: v9\n"},
		{name: "bounds", raw: "numeric:\n  - {name: fat_100g, min: 10, max: 1, outlier: clip, missing: median}\n"},
		{name: "outlier action", raw: "numeric:\n  - {name: fat_100g, min: 0, max: 1, outlier: cap, missing: median}\n"},
		{name: "case", raw: "text:\n  - {name: brands, case: shout}\n"},
		{name: "delimiter", raw: "delimiter: \"::\"\n"},
		{name: "unit", raw: "numeric:\n  - {name: fat_100g, unit: oz, min: 0, max: 1, outlier: clip, missing: median}\n"},
		{name: "whitespace ingredient delimiter", raw: "ingredient_delimiter: \" \"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "profile.yml")
			require.NoError(t, os.WriteFile(path, []byte(tc.raw), 0o644))
			_, err := LoadProfile(path)
			require.Error(t, err)
		})
	}
}

func TestLoadProfileMissingFile(t *testing.T) {
	_, err := LoadProfile(filepath.Join(t.TempDir(), "nope.yml"))
	require.Error(t, err)
}
