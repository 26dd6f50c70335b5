package query

import (
	"regexp"
	"strings"
)

var (
	lineCommentRe  = regexp.MustCompile(`--[^\n]*|#[^\n]*`)
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)

	singleQuoteRe = regexp.MustCompile(`'(?:[^'\\]|\\.)*'`)
	doubleQuoteRe = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	numberRe      = regexp.MustCompile(`\b\d+(?:\.\d+)?\b`)
	inListRe      = regexp.MustCompile(`\bin\s*\(\s*\?(?:\s*,\s*\?)*\s*\)`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// StripComments removes SQL comments from a query.
// It handles "--" and "#" line comments and "/* */" block comments.
// Pattern scanners run on comment-free text so that commented-out
// fragments never trigger findings.
func StripComments(sql string) string {
	sql = blockCommentRe.ReplaceAllString(sql, " ")
	sql = lineCommentRe.ReplaceAllString(sql, " ")
	return sql
}

// Fingerprint reduces a query to a canonical shape for deduplication:
// comments stripped, literals collapsed to "?", IN lists collapsed to a
// single placeholder, case and whitespace normalized.
//
// Example:
//
//	"SELECT * FROM users WHERE id = 42"   -> "select * from users where id = ?"
//	"SELECT * FROM users WHERE id = 1337" -> "select * from users where id = ?"
//
// Structurally identical queries that differ only in literal values share
// one fingerprint, which is how N+1 repetition is counted and how
// pattern findings are reported once instead of once per literal variant.
func Fingerprint(sql string) string {
	sql = StripComments(sql)
	sql = singleQuoteRe.ReplaceAllString(sql, "?")
	sql = doubleQuoteRe.ReplaceAllString(sql, "?")
	sql = numberRe.ReplaceAllString(sql, "?")
	sql = strings.ToLower(sql)
	sql = inListRe.ReplaceAllString(sql, "in (?)")
	sql = whitespaceRe.ReplaceAllString(sql, " ")
	return strings.TrimSpace(sql)
}

var tableRefRe = regexp.MustCompile(`\b(?:from|join|into|update)\s+` + "`?" + `([a-z_][a-z0-9_]*)` + "`?")

// TableNames extracts referenced table names from a query.
// It recognizes FROM, JOIN, INSERT INTO, and UPDATE targets. Subqueries and
// quoted multi-part identifiers are handled on a best-effort basis only.
func TableNames(sql string) []string {
	sql = strings.ToLower(StripComments(sql))

	seen := make(map[string]bool)
	var tables []string
	for _, match := range tableRefRe.FindAllStringSubmatch(sql, -1) {
		name := match[1]
		if name == "select" || seen[name] {
			continue
		}
		seen[name] = true
		tables = append(tables, name)
	}
	return tables
}
