package pipeline

import (
	"fmt"
	"sort"

	"foodclean/internal"
	"foodclean/internal/util"
)

var canonicalCountries = []string{
	"Argentina", "Australia", "Austria", "Belgium", "Brazil", "Bulgaria", "Canada", "Chile", "China",
	"Colombia", "Croatia", "Czech Republic", "Denmark", "Finland", "France", "Germany", "Greece",
	"Hungary", "India", "Ireland", "Italy", "Japan", "Luxembourg", "Mexico", "Morocco", "Netherlands",
	"New Zealand", "Norway", "Peru", "Poland", "Portugal", "Romania", "Russia", "Serbia", "Slovakia",
	"Slovenia", "South Africa", "Spain", "Sweden", "Switzerland", "Thailand", "Tunisia", "Turkey",
	"United Kingdom", "United States", "European Union", "World",
}

var countryAliases = map[string]string{
	"fr": "France", "francia": "France", "frankreich": "France",
	"de": "Germany", "alemania": "Germany", "deutschland": "Germany", "allemagne": "Germany",
	"gb": "United Kingdom", "uk": "United Kingdom", "royaume-uni": "United Kingdom",
	"us": "United States", "usa": "United States", "etats-unis": "United States",
	"vereinigte staaten von amerika": "United States", "united states of america": "United States",
	"es": "Spain", "espana": "Spain", "espagne": "Spain",
	"it": "Italy", "italia": "Italy", "italie": "Italy",
	"br": "Brazil", "brasil": "Brazil", "brasilien": "Brazil",
	"ch": "Switzerland", "suisse": "Switzerland", "schweiz": "Switzerland",
	"be": "Belgium", "belgien": "Belgium", "belgique": "Belgium",
	"nl": "Netherlands", "pays-bas": "Netherlands", "nederland": "Netherlands",
	"griechenland": "Greece", "irland": "Ireland",
	"ca": "Canada", "au": "Australia", "mx": "Mexico",
}

// countryUnknown holds tokens that are known not to be countries.
var countryUnknown = map[string]struct{}{"selestosina": {}, "unknown": {}}

type countryIndex struct {
	byKey  map[string]string
	keys   []string
	tokens map[string][]string
}

func buildCountryIndex() *countryIndex {
	idx := &countryIndex{byKey: map[string]string{}, tokens: map[string][]string{}}
	for _, name := range canonicalCountries {
		key := util.FoldKey(name)
		idx.byKey[key] = name
		idx.keys = append(idx.keys, key)
		for _, tok := range util.Tokenize(name) {
			idx.tokens[tok] = append(idx.tokens[tok], key)
		}
	}
	for alias, name := range countryAliases {
		idx.byKey[util.FoldKey(alias)] = name
	}
	sort.Strings(idx.keys)
	return idx
}

// CountryMatcher maps free-form country tokens onto canonical English names:
// alias lookup first, then fuzzy bigram similarity above a threshold.
type CountryMatcher struct {
	threshold float64
	index     *countryIndex
}

func NewCountryMatcher(threshold float64) *CountryMatcher {
	return &CountryMatcher{threshold: threshold, index: buildCountryIndex()}
}

type CountryMatch struct {
	Name   string
	Known  bool
	Fuzzy  bool
	Score  float64
	Reject bool
}

func (m *CountryMatcher) Match(token string) CountryMatch {
	key := util.FoldKey(token)
	if key == "" {
		return CountryMatch{Reject: true}
	}
	if _, bad := countryUnknown[key]; bad {
		return CountryMatch{Reject: true}
	}
	if name, ok := m.index.byKey[key]; ok {
		return CountryMatch{Name: name, Known: true, Score: 1}
	}
	if len([]rune(key)) >= 4 {
		best, score := m.rank(key)
		if best != "" && score >= m.threshold {
			return CountryMatch{Name: m.index.byKey[best], Known: true, Fuzzy: true, Score: score}
		}
	}
	return CountryMatch{Name: util.ApplyCase(util.CollapseSpaces(token), util.CaseTitle)}
}

func (m *CountryMatcher) rank(query string) (string, float64) {
	queryTokens := util.Tokenize(query)
	candidates := map[string]struct{}{}
	for _, tok := range queryTokens {
		for _, key := range m.index.tokens[tok] {
			candidates[key] = struct{}{}
		}
	}
	if len(candidates) == 0 {
		for _, key := range m.index.keys {
			candidates[key] = struct{}{}
		}
	}

	best, bestScore := "", 0.0
	for _, key := range m.index.keys {
		if _, ok := candidates[key]; !ok {
			continue
		}
		score := scoreName(query, key, queryTokens, util.Tokenize(key))
		if score > bestScore {
			best, bestScore = key, score
		}
	}
	return best, bestScore
}

func scoreName(query, candidate string, queryTokens, candidateTokens []string) float64 {
	dice := util.DiceCoefficient(query, candidate)
	if len(queryTokens) < 2 || len(candidateTokens) < 2 {
		return dice
	}

	set := map[string]struct{}{}
	for _, t := range candidateTokens {
		set[t] = struct{}{}
	}
	overlap := 0
	for _, t := range queryTokens {
		if _, ok := set[t]; ok {
			overlap++
		}
	}
	tokenScore := float64(overlap) / float64(len(queryTokens))
	return 0.65*dice + 0.35*tokenScore
}

// NormalizeCountries rewrites each country token to its canonical name.
func NormalizeCountries(column string, m *CountryMatcher) StepFunc {
	return func(t internal.Table) (internal.Table, []internal.LogEntry) {
		if !t.Has(column) {
			return t, []internal.LogEntry{skipped(StepNormalizeCountry, column)}
		}
		entry := internal.LogEntry{Step: StepNormalizeCountry, Column: column}
		fuzzy, unmatched := 0, 0
		for _, row := range t.Rows {
			v := row[column]
			if v.IsNull() {
				continue
			}
			raw := v.Text()
			out := []string{}
			seen := map[string]struct{}{}
			for _, tok := range util.SplitList(util.NormalizeText(raw, util.CaseKeep), listSeparator) {
				res := m.Match(util.StripLangPrefix(util.CollapseSpaces(tok)))
				if res.Reject {
					continue
				}
				if res.Fuzzy {
					fuzzy++
				}
				if !res.Known {
					unmatched++
				}
				if _, dup := seen[res.Name]; dup {
					continue
				}
				seen[res.Name] = struct{}{}
				out = append(out, res.Name)
			}

			if len(out) == 0 {
				row[column] = internal.Null()
				entry.ValuesNulled++
				entry.RowsAffected++
				continue
			}
			if joined := util.JoinList(out); joined != raw {
				row[column] = internal.String(joined)
				entry.ValuesChanged++
				entry.RowsAffected++
			}
		}
		entry.Message = fmt.Sprintf("canonicalized %d values (%d fuzzy tokens, %d unmatched tokens), nulled %d", entry.ValuesChanged, fuzzy, unmatched, entry.ValuesNulled)
		return t, []internal.LogEntry{entry}
	}
}
