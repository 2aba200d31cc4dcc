package openai

import "strings"

// compactWhitespace collapses runs of spaces and tabs into single spaces,
// one line at a time, keeping the line structure intact. Punctuation is left
// alone: decimal points and thousands separators carry the numeric readings
// the extractor is after.
func compactWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// isLetter returns true if the rune is an ASCII letter.
func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
