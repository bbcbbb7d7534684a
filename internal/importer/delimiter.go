package importer

import (
	"strings"
	"unicode/utf8"
)

// Delimiter is a CSV field separator.
type Delimiter rune

const (
	DelimiterComma     Delimiter = ','
	DelimiterSemicolon Delimiter = ';'
	DelimiterTab       Delimiter = '\t'
	DelimiterPipe      Delimiter = '|'
)

// DetectDelimiter picks the delimiter whose count is highest and most
// consistent across the first five non-empty lines.
func DetectDelimiter(content string) Delimiter {
	sample := make([]string, 0, 5)
	for _, line := range strings.Split(content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			sample = append(sample, trimmed)
			if len(sample) == 5 {
				break
			}
		}
	}
	if len(sample) == 0 {
		return DelimiterComma
	}

	best := DelimiterComma
	bestScore := 0.0
	for _, d := range []Delimiter{DelimiterComma, DelimiterSemicolon, DelimiterTab, DelimiterPipe} {
		counts := make([]float64, len(sample))
		var sum float64
		for i, line := range sample {
			counts[i] = float64(strings.Count(line, string(rune(d))))
			sum += counts[i]
		}
		avg := sum / float64(len(sample))
		if avg == 0 {
			continue
		}
		var variance float64
		for _, c := range counts {
			variance += (c - avg) * (c - avg)
		}
		variance /= float64(len(sample))

		if score := avg / (1 + variance); score > bestScore {
			bestScore = score
			best = d
		}
	}
	return best
}

// SplitLine splits one CSV line, honouring double-quoted fields and "" escapes.
func SplitLine(line string, delim Delimiter) []string {
	const quote = '"'
	fields := make([]string, 0, 12)
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); {
		r, width := utf8.DecodeRuneInString(line[i:])
		i += width

		switch {
		case inQuotes && r == quote:
			if next, w := utf8.DecodeRuneInString(line[i:]); i < len(line) && next == quote {
				cur.WriteRune(quote)
				i += w
				continue
			}
			inQuotes = false
		case inQuotes:
			cur.WriteRune(r)
		case r == quote:
			inQuotes = true
		case r == rune(delim):
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(fields, cur.String())
}
