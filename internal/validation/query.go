package validation

import "strings"

// MaxQueryLength caps the number of runes sent to the backend.
const MaxQueryLength = 256

// SanitizeQuery trims, flattens control whitespace, collapses runs of spaces
// and limits the length of a query typed outside the TUI input.
func SanitizeQuery(input string) string {
	input = strings.Join(strings.Fields(input), " ")

	if r := []rune(input); len(r) > MaxQueryLength {
		input = strings.TrimSpace(string(r[:MaxQueryLength]))
	}

	return input
}

// IsBlank reports whether a query has nothing but whitespace.
func IsBlank(input string) bool {
	return strings.TrimSpace(input) == ""
}
