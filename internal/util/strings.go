// Package util provides string helpers for identifier analysis: word
// splitting, snake_case conversion and validation, naive singular/plural
// handling, and SQL reserved-word lookup.
package util

import (
	"regexp"
	"strings"
	"unicode"
)

// SplitWords splits an identifier into lowercase words.
// It understands camelCase, PascalCase, snake_case, and mixed forms.
//
// Example:
//
//	"orderExpirationDays" -> ["order", "expiration", "days"]
//	"country_id"          -> ["country", "id"]
//	"HTTPStatus"          -> ["http", "status"]
func SplitWords(name string) []string {
	var words []string
	var current []rune

	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(name)
	for i, r := range runes {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			// Boundary before an upper rune, except inside an acronym run.
			prevUpper := i > 0 && unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !prevUpper || nextLower {
				flush()
			}
			current = append(current, r)
		default:
			current = append(current, r)
		}
	}
	flush()
	return words
}

// ToSnakeCase converts an identifier to snake_case.
func ToSnakeCase(name string) string {
	return strings.Join(SplitWords(name), "_")
}

var snakeCaseRe = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// IsSnakeCase reports whether the identifier is already valid snake_case.
func IsSnakeCase(name string) bool {
	return snakeCaseRe.MatchString(name)
}

// HasSpecialCharacters reports whether the identifier contains characters
// outside letters, digits, and underscores.
func HasSpecialCharacters(name string) bool {
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return true
		}
	}
	return false
}

// irregularPlurals maps plural forms that the suffix rules get wrong.
var irregularPlurals = map[string]string{
	"people":   "person",
	"children": "child",
	"men":      "man",
	"women":    "woman",
	"statuses": "status",
	"data":     "data",
	"media":    "media",
}

// IsPlural reports whether the last word of the identifier looks plural.
// This is a naive English heuristic, sufficient for table-name conventions.
func IsPlural(name string) bool {
	return ToSingular(name) != strings.ToLower(name)
}

// ToSingular converts the last word of a lowercase identifier to its
// singular form using suffix rules plus a short irregular table.
//
// Example:
//
//	"categories" -> "category"
//	"orders"     -> "order"
//	"address"    -> "address"
func ToSingular(name string) string {
	name = strings.ToLower(name)
	if singular, ok := irregularPlurals[name]; ok {
		return singular
	}
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "sses"), strings.HasSuffix(name, "shes"),
		strings.HasSuffix(name, "ches"), strings.HasSuffix(name, "xes"):
		return name[:len(name)-2]
	case strings.HasSuffix(name, "ss"), strings.HasSuffix(name, "us"), strings.HasSuffix(name, "is"):
		return name
	case strings.HasSuffix(name, "s") && len(name) > 1:
		return name[:len(name)-1]
	}
	return name
}

// reservedWords holds SQL keywords commonly reserved across MySQL, MariaDB,
// and PostgreSQL. Identifiers matching these still work because platforms
// auto-quote them, so matches are a readability concern rather than breakage.
var reservedWords = map[string]bool{
	"all": true, "alter": true, "and": true, "any": true, "as": true,
	"asc": true, "between": true, "by": true, "case": true, "check": true,
	"column": true, "constraint": true, "create": true, "cross": true,
	"current_date": true, "current_time": true, "default": true,
	"delete": true, "desc": true, "distinct": true, "drop": true,
	"else": true, "end": true, "exists": true, "foreign": true, "from": true,
	"full": true, "group": true, "having": true, "in": true, "index": true,
	"inner": true, "insert": true, "into": true, "is": true, "join": true,
	"key": true, "left": true, "like": true, "limit": true, "not": true,
	"null": true, "on": true, "or": true, "order": true, "outer": true,
	"primary": true, "references": true, "right": true, "select": true,
	"set": true, "table": true, "then": true, "to": true, "union": true,
	"unique": true, "update": true, "user": true, "using": true,
	"values": true, "when": true, "where": true,
}

// IsReservedWord reports whether the identifier is a reserved SQL keyword.
func IsReservedWord(name string) bool {
	return reservedWords[strings.ToLower(name)]
}

// MatchesWord reports whether pattern occurs as a whole word inside the
// identifier. A match must align with word boundaries produced by
// SplitWords, which prevents "count" from matching inside "countryId".
// Multi-word patterns ("unit_price") match consecutive word runs.
func MatchesWord(name, pattern string) bool {
	words := SplitWords(name)
	patternWords := SplitWords(pattern)
	if len(patternWords) == 0 || len(words) < len(patternWords) {
		return false
	}
	for i := 0; i+len(patternWords) <= len(words); i++ {
		matched := true
		for j, pw := range patternWords {
			if words[i+j] != pw {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
