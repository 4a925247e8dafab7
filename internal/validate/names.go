package validate

import (
	"strings"

	"github.com/agext/levenshtein"
)

var honorifics = []string{"mr.", "mrs.", "ms.", "miss", "dr.", "mr", "mrs", "ms", "dr"}

// normalizeName lowercases, strips honorific prefixes and collapses
// whitespace so "Mrs. Nandi Rawat" and "NANDI RAWAT" compare equal.
func normalizeName(name string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(name)))
	for len(fields) > 0 && isHonorific(fields[0]) {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

func isHonorific(word string) bool {
	for _, h := range honorifics {
		if word == h {
			return true
		}
	}
	return false
}

// nameDistance is the edit distance between two normalized names.
func nameDistance(a, b string) int {
	return levenshtein.Distance(normalizeName(a), normalizeName(b), nil)
}
