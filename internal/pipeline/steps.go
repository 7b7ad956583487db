package pipeline

import (
	"foodclean/internal"
	"foodclean/internal/config"
)

// StepFunc is a pure transform: it receives a table it owns and returns the
// next table plus the log entries describing what it did. Entries are
// timestamped by the runner.
type StepFunc func(t internal.Table) (internal.Table, []internal.LogEntry)

type Step struct {
	Name  string
	Apply StepFunc
}

const (
	StepDropJunkRows      = "drop_junk_rows"
	StepNormalizeText     = "normalize_text"
	StepNormalizeCountry  = "normalize_countries"
	StepCleanIngredients  = "clean_ingredients"
	StepNormalizeGrades   = "normalize_grades"
	StepCoerceNumeric     = "coerce_numeric"
	StepHandleMissing     = "handle_missing"
	StepHandleOutliers    = "handle_outliers"
	StepDropDuplicateRows = "drop_duplicates"
)

// BuildSteps returns the ordered cleaning sequence for a profile. Duplicate
// removal runs last so rows that only differed before normalization collapse
// in the same pass.
func BuildSteps(p config.Profile) []Step {
	steps := []Step{
		{Name: StepDropJunkRows, Apply: DropJunkRows(p.ProductNameColumn, p.JunkProductNames)},
		{Name: StepNormalizeText, Apply: NormalizeTextColumns(p.Text)},
	}
	if p.CountriesColumn != "" {
		steps = append(steps, Step{Name: StepNormalizeCountry, Apply: NormalizeCountries(p.CountriesColumn, NewCountryMatcher(p.CountryMatchThreshold))})
	}
	if p.IngredientsColumn != "" {
		steps = append(steps, Step{Name: StepCleanIngredients, Apply: CleanIngredients(p.IngredientsColumn, p.IngredientDelimiter)})
	}
	if p.NutriscoreColumn != "" || p.NovaColumn != "" {
		steps = append(steps, Step{Name: StepNormalizeGrades, Apply: NormalizeGrades(p.NutriscoreColumn, p.NovaColumn)})
	}
	steps = append(steps,
		Step{Name: StepCoerceNumeric, Apply: CoerceNumeric(p.Numeric)},
		Step{Name: StepHandleMissing, Apply: HandleMissing(p.Numeric)},
		Step{Name: StepHandleOutliers, Apply: HandleOutliers(p.Numeric)},
	)
	if p.DropDuplicates {
		steps = append(steps, Step{Name: StepDropDuplicateRows, Apply: DropDuplicates()})
	}
	return steps
}

func skipped(step, column string) internal.LogEntry {
	return internal.LogEntry{Step: step, Column: column, Message: "column not present, skipped"}
}
