package services

import (
	"strconv"
	"strings"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Lower-cased LIKE patterns with wildcards in the search term escaped.
// Use them with "LOWER(col) LIKE ? ESCAPE '\'".
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func prefixPattern(term string) string {
	return likeEscaper.Replace(strings.ToLower(term)) + "%"
}

// numericTerm returns the search term as an id when it consists of digits only
func numericTerm(term string) (uint64, bool) {
	if term == "" {
		return 0, false
	}
	for _, r := range term {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseUint(term, 10, 32)
	if err != nil {
		return 0, false
	}
	return n, true
}
