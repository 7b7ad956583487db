package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"foodclean/internal/util"
)

const (
	SupportedSchema  = "v1"
	profileEnvPrefix = "FOODCLEAN_PROFILE__"
)

type OutlierAction string

type MissingAction string

const (
	OutlierNull OutlierAction = "null"
	OutlierClip OutlierAction = "clip"

	MissingDrop     MissingAction = "drop"
	MissingMedian   MissingAction = "median"
	MissingMean     MissingAction = "mean"
	MissingConstant MissingAction = "constant"
)

// TextColumn configures normalization of one free-text or list column.
type TextColumn struct {
	Name            string      `koanf:"name" yaml:"name"`
	Case            util.Casing `koanf:"case" yaml:"case"`
	List            bool        `koanf:"list" yaml:"list"`
	StripLangPrefix bool        `koanf:"strip_lang_prefix" yaml:"strip_lang_prefix"`
	Junk            []string    `koanf:"junk" yaml:"junk,omitempty"`
	// Replace maps substrings to their replacement before casing is applied.
	Replace map[string]string `koanf:"replace" yaml:"replace,omitempty"`
}

// NumericColumn carries the unit, outlier bounds and missing-value policy of
// one nutritional column. Cells with another unit of the same dimension are
// converted; cells with an incompatible unit are invalid.
type NumericColumn struct {
	Name    string        `koanf:"name" yaml:"name"`
	Unit    string        `koanf:"unit" yaml:"unit"`
	Min     float64       `koanf:"min" yaml:"min"`
	Max     float64       `koanf:"max" yaml:"max"`
	Outlier OutlierAction `koanf:"outlier" yaml:"outlier"`
	Missing MissingAction `koanf:"missing" yaml:"missing"`
	Fill    float64       `koanf:"fill" yaml:"fill,omitempty"`
}

type Profile struct {
	SchemaVersion   string   `koanf:"schema_version" yaml:"schema_version"`
	Delimiter       string   `koanf:"delimiter" yaml:"delimiter"`
	OutputDelimiter string   `koanf:"output_delimiter" yaml:"output_delimiter"`
	RequiredColumns []string `koanf:"required_columns" yaml:"required_columns"`

	DropDuplicates    bool     `koanf:"drop_duplicates" yaml:"drop_duplicates"`
	ProductNameColumn string   `koanf:"product_name_column" yaml:"product_name_column"`
	JunkProductNames  []string `koanf:"junk_product_names" yaml:"junk_product_names"`

	Text []TextColumn `koanf:"text" yaml:"text"`

	IngredientsColumn   string `koanf:"ingredients_column" yaml:"ingredients_column"`
	IngredientDelimiter string `koanf:"ingredient_delimiter" yaml:"ingredient_delimiter"`

	CountriesColumn       string  `koanf:"countries_column" yaml:"countries_column"`
	CountryMatchThreshold float64 `koanf:"country_match_threshold" yaml:"country_match_threshold"`

	NutriscoreColumn string `koanf:"nutriscore_column" yaml:"nutriscore_column"`
	NovaColumn       string `koanf:"nova_column" yaml:"nova_column"`

	Numeric []NumericColumn `koanf:"numeric" yaml:"numeric"`
}

// DefaultProfile describes an Open Food Facts export.
func DefaultProfile() Profile {
	nutrient := func(name, unit string, max float64) NumericColumn {
		return NumericColumn{Name: name, Unit: unit, Min: 0, Max: max, Outlier: OutlierClip, Missing: MissingMedian}
	}
	return Profile{
		SchemaVersion:   SupportedSchema,
		RequiredColumns: []string{"product_name"},

		DropDuplicates:    true,
		ProductNameColumn: "product_name",
		JunkProductNames:  []string{"xxx"},

		Text: []TextColumn{
			{Name: "product_name", Case: util.CaseTitle},
			{Name: "brands", Case: util.CaseTitle, List: true, Junk: []string{"xylimgxyling"}, Replace: map[string]string{"’": "'"}},
			{Name: "categories", Case: util.CaseLower, List: true, StripLangPrefix: true, Junk: []string{"undefined", "za"}},
			{Name: "countries", Case: util.CaseTitle, List: true, StripLangPrefix: true},
			{Name: "labels", Case: util.CaseLower, List: true, StripLangPrefix: true},
			{Name: "packaging", Case: util.CaseTitle, List: true, StripLangPrefix: true, Junk: []string{"40g", "packaging", "plaza vea", "za"}},
		},

		IngredientsColumn:   "ingredients_text",
		IngredientDelimiter: ",",

		CountriesColumn:       "countries",
		CountryMatchThreshold: 0.8,

		NutriscoreColumn: "nutriscore_grade",
		NovaColumn:       "nova_group",

		Numeric: []NumericColumn{
			nutrient("energy-kcal_100g", util.UnitKcal, 1000),
			nutrient("fat_100g", util.UnitG, 100),
			nutrient("saturated-fat_100g", util.UnitG, 100),
			nutrient("sugars_100g", util.UnitG, 100),
			nutrient("salt_100g", util.UnitG, 100),
			nutrient("proteins_100g", util.UnitG, 100),
			nutrient("fiber_100g", util.UnitG, 100),
			nutrient("carbohydrates_100g", util.UnitG, 100),
		},
	}
}

// LoadProfile merges the YAML profile at path (if any) over DefaultProfile,
// then applies FOODCLEAN_PROFILE__* overrides for scalar keys.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Profile{}, fmt.Errorf("load profile %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(profileEnvPrefix, "__", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, profileEnvPrefix))
	}), nil); err != nil {
		return Profile{}, fmt.Errorf("load profile env overrides: %w", err)
	}

	// lists in the file replace the defaults rather than merging element-wise
	for key, reset := range map[string]func(){
		"required_columns":   func() { p.RequiredColumns = nil },
		"junk_product_names": func() { p.JunkProductNames = nil },
		"text":               func() { p.Text = nil },
		"numeric":            func() { p.Numeric = nil },
	} {
		if k.Exists(key) {
			reset()
		}
	}

	if err := k.Unmarshal("", &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	if p.SchemaVersion != SupportedSchema {
		return Profile{}, fmt.Errorf("profile schema_version %q not supported (want %q)", p.SchemaVersion, SupportedSchema)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (p Profile) Validate() error {
	for _, d := range []string{p.Delimiter, p.OutputDelimiter} {
		if utf8.RuneCountInString(d) > 1 {
			return fmt.Errorf("delimiter %q must be a single character", d)
		}
	}
	for _, tc := range p.Text {
		if strings.TrimSpace(tc.Name) == "" {
			return fmt.Errorf("text column without name")
		}
		switch tc.Case {
		case "", util.CaseKeep, util.CaseLower, util.CaseUpper, util.CaseTitle:
		default:
			return fmt.Errorf("text column %s: unknown case %q", tc.Name, tc.Case)
		}
		for from := range tc.Replace {
			if from == "" {
				return fmt.Errorf("text column %s: empty replace key", tc.Name)
			}
		}
	}
	if strings.TrimSpace(p.IngredientDelimiter) == "" && p.IngredientDelimiter != "" {
		return fmt.Errorf("ingredient_delimiter %q must not be whitespace", p.IngredientDelimiter)
	}
	for _, nc := range p.Numeric {
		if strings.TrimSpace(nc.Name) == "" {
			return fmt.Errorf("numeric column without name")
		}
		if !util.IsUnit(nc.Unit) {
			return fmt.Errorf("numeric column %s: unknown unit %q", nc.Name, nc.Unit)
		}
		if nc.Min > nc.Max {
			return fmt.Errorf("numeric column %s: min %v > max %v", nc.Name, nc.Min, nc.Max)
		}
		switch nc.Outlier {
		case OutlierNull, OutlierClip:
		default:
			return fmt.Errorf("numeric column %s: unknown outlier action %q", nc.Name, nc.Outlier)
		}
		switch nc.Missing {
		case MissingDrop, MissingMedian, MissingMean, MissingConstant:
		default:
			return fmt.Errorf("numeric column %s: unknown missing action %q", nc.Name, nc.Missing)
		}
	}
	if p.CountryMatchThreshold < 0 || p.CountryMatchThreshold > 1 {
		return fmt.Errorf("country_match_threshold must be within [0,1]")
	}
	return nil
}
