package pipeline

var delimiterCandidates = []rune{',', '\t', ';', '|'}

// DetectDelimiter picks the candidate that splits the header line into the
// most fields. Quoted sections are ignored. Falls back to a comma.
func DetectDelimiter(headerLine string) rune {
	best := ','
	bestScore := 0
	for _, d := range delimiterCandidates {
		score := countOutsideQuotes(headerLine, d)
		if score > bestScore {
			best = d
			bestScore = score
		}
	}
	return best
}

func countOutsideQuotes(line string, d rune) int {
	count := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == d && !quoted:
			count++
		}
	}
	return count
}
