package logger

import (
	"fmt"
	"regexp"
	"strings"
)

// Sanitizer masks sensitive bound parameters before query records reach
// logs or issue payloads. Detection is name-based: when a statement
// references a sensitive column, the recorded parameters are replaced by a
// mask value instead of the real secret.
type Sanitizer struct {
	fields    []string
	maskValue string
	patterns  []*regexp.Regexp
}

// NewSanitizer creates a sanitizer for the given sensitive column names.
// With no names, a default set of common secret-bearing columns is used.
func NewSanitizer(fields []string) *Sanitizer {
	if len(fields) == 0 {
		fields = []string{
			"password", "passwd", "pwd",
			"token", "api_key", "apikey", "api_token",
			"secret", "auth", "authorization",
			"credit_card", "card_number", "cvv", "cvc",
			"ssn", "social_security",
			"private_key", "priv_key",
		}
	}

	patterns := make([]*regexp.Regexp, 0, len(fields))
	for _, field := range fields {
		patterns = append(patterns, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(field)+`\b`))
	}

	return &Sanitizer{
		fields:    fields,
		maskValue: "***REDACTED***",
		patterns:  patterns,
	}
}

// MaskParams returns a copy of params safe for retention.
// If the statement references no sensitive column, the original slice is
// returned unchanged. Matching is positional only to the extent the SQL
// allows; when in doubt every parameter of a sensitive statement is masked.
func (s *Sanitizer) MaskParams(sql string, params []any) []any {
	if len(params) == 0 || !s.referencesSensitiveColumn(sql) {
		return params
	}

	masked := make([]any, len(params))
	for i := range params {
		masked[i] = s.maskValue
	}
	return masked
}

func (s *Sanitizer) referencesSensitiveColumn(sql string) bool {
	for _, pattern := range s.patterns {
		if pattern.MatchString(sql) {
			return true
		}
	}
	return false
}

// FormatParams renders parameters as a bracketed list for diagnostics.
// Long values are truncated; nil renders as NULL.
func (s *Sanitizer) FormatParams(params []any) string {
	if len(params) == 0 {
		return "[]"
	}

	const maxLen = 100
	parts := make([]string, len(params))
	for i, p := range params {
		if p == nil {
			parts[i] = "NULL"
			continue
		}
		str := fmt.Sprintf("%v", p)
		if len(str) > maxLen {
			str = str[:maxLen] + "..."
		}
		parts[i] = str
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
