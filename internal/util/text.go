package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

type Casing string

const (
	CaseKeep  Casing = "keep"
	CaseLower Casing = "lower"
	CaseUpper Casing = "upper"
	CaseTitle Casing = "title"
)

var (
	reSpaces     = regexp.MustCompile(`\s+`)
	reLangPrefix = regexp.MustCompile(`^(?i)[a-z]{2,3}:\s*`)
	reMarkup     = regexp.MustCompile(`[<&]`)
	reTag        = regexp.MustCompile(`<(?:/?[a-zA-Z][a-zA-Z0-9]*(?:\s[^<>]*)?/?|!--.*?--)>`)
)

// NormalizeText unescapes markup, applies NFKC, drops non-printable runes,
// collapses whitespace and applies casing. The result is a fixed point:
// NormalizeText(NormalizeText(s, c), c) == NormalizeText(s, c).
func NormalizeText(input string, casing Casing) string {
	s := UnescapeMarkup(input)
	s = norm.NFKC.String(s)
	s = StripNonPrintable(s)
	s = CollapseSpaces(s)
	return ApplyCase(s, casing)
}

// UnescapeMarkup resolves HTML entities and strips tags. A '<' that does not
// open a tag is kept as text. Values without '<' or '&' are returned
// unchanged.
func UnescapeMarkup(input string) string {
	s := input
	for i := 0; i < 3 && reMarkup.MatchString(s); i++ {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(escapeStrayAngles(s)))
		if err != nil {
			return s
		}
		next := doc.Text()
		if next == s {
			break
		}
		s = next
	}
	return s
}

// escapeStrayAngles rewrites every '<' outside a tag match as "&lt;" so the
// HTML parser reads it as text.
func escapeStrayAngles(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	tags := reTag.FindAllStringIndex(s, -1)
	var b strings.Builder
	next := 0
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			b.WriteByte(s[i])
			continue
		}
		if next < len(tags) && tags[next][0] == i {
			b.WriteString(s[i:tags[next][1]])
			i = tags[next][1] - 1
			next++
			continue
		}
		b.WriteString("&lt;")
	}
	return b.String()
}

// StripNonPrintable removes control and format runes; any kind of space
// becomes a plain space.
func StripNonPrintable(input string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return ' '
		}
		if !unicode.IsPrint(r) {
			return -1
		}
		return r
	}, input)
}

func CollapseSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

func ApplyCase(s string, casing Casing) string {
	switch casing {
	case CaseLower:
		return strings.ToLower(s)
	case CaseUpper:
		return strings.ToUpper(s)
	case CaseTitle:
		return cases.Title(language.Und).String(s)
	default:
		return s
	}
}

// StripLangPrefix removes taxonomy language tags such as "en:" or "fr:".
func StripLangPrefix(token string) string {
	for reLangPrefix.MatchString(token) {
		token = reLangPrefix.ReplaceAllString(token, "")
	}
	return token
}

// SplitList splits on sep outside of parentheses and brackets, so
// "cocoa (butter, mass), sugar" yields two tokens.
func SplitList(input, sep string) []string {
	if sep == "" {
		return []string{input}
	}
	out := []string{}
	depth := 0
	start := 0
	for i := 0; i < len(input); {
		switch input[i] {
		case '(', '[':
			depth++
		case ')', ']':
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && strings.HasPrefix(input[i:], sep) {
			out = append(out, input[start:i])
			i += len(sep)
			start = i
			continue
		}
		i++
	}
	return append(out, input[start:])
}

func JoinList(tokens []string) string {
	return strings.Join(tokens, ", ")
}

// FoldKey lower-cases and strips diacritics, used for dictionary lookups.
func FoldKey(input string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	s, _, err := transform.String(t, input)
	if err != nil {
		s = input
	}
	return CollapseSpaces(strings.ToLower(s))
}

func Tokenize(input string) []string {
	parts := strings.Split(FoldKey(input), " ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if len([]rune(p)) >= 2 {
			out = append(out, p)
		}
	}
	return out
}

func DiceCoefficient(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	pairs := func(s string) []string {
		r := []rune(s)
		if len(r) < 2 {
			return nil
		}
		out := make([]string, 0, len(r)-1)
		for i := 0; i < len(r)-1; i++ {
			out = append(out, string(r[i:i+2]))
		}
		return out
	}

	aPairs := pairs(a)
	bPairs := pairs(b)
	if len(aPairs) == 0 || len(bPairs) == 0 {
		return 0
	}

	bCount := map[string]int{}
	for _, p := range bPairs {
		bCount[p]++
	}
	inter := 0
	for _, p := range aPairs {
		if bCount[p] > 0 {
			inter++
			bCount[p]--
		}
	}

	return float64(2*inter) / float64(len(aPairs)+len(bPairs))
}
