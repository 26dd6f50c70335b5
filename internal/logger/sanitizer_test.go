package logger

import (
	"strings"
	"testing"
)

func TestSanitizer_MaskParams(t *testing.T) {
	s := NewSanitizer(nil)

	tests := []struct {
		name   string
		sql    string
		params []any
		masked bool
	}{
		{
			name:   "password_update",
			sql:    "UPDATE users SET password = ? WHERE id = ?",
			params: []any{"hunter2", 1},
			masked: true,
		},
		{
			name:   "token_lookup",
			sql:    "SELECT * FROM sessions WHERE api_token = ?",
			params: []any{"abc123"},
			masked: true,
		},
		{
			name:   "plain_select",
			sql:    "SELECT * FROM users WHERE email = ?",
			params: []any{"a@example.com"},
			masked: false,
		},
		{
			name:   "no_substring_match",
			sql:    "SELECT * FROM users WHERE authored_by = ?",
			params: []any{7},
			masked: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.MaskParams(tt.sql, tt.params)
			if tt.masked {
				for i, p := range got {
					if p != "***REDACTED***" {
						t.Errorf("param %d = %v, want masked", i, p)
					}
				}
			} else {
				for i, p := range got {
					if p != tt.params[i] {
						t.Errorf("param %d = %v, want %v unchanged", i, p, tt.params[i])
					}
				}
			}
		})
	}
}

func TestSanitizer_MaskParams_Empty(t *testing.T) {
	s := NewSanitizer(nil)
	if got := s.MaskParams("UPDATE users SET password = 'x'", nil); got != nil {
		t.Errorf("nil params must pass through, got %v", got)
	}
}

func TestSanitizer_CustomFields(t *testing.T) {
	s := NewSanitizer([]string{"pin_code"})

	masked := s.MaskParams("UPDATE cards SET pin_code = ?", []any{"0000"})
	if masked[0] != "***REDACTED***" {
		t.Errorf("custom field not masked: %v", masked[0])
	}

	// The default list is replaced, not extended.
	passthrough := s.MaskParams("UPDATE users SET password = ?", []any{"hunter2"})
	if passthrough[0] != "hunter2" {
		t.Errorf("default field unexpectedly masked: %v", passthrough[0])
	}
}

func TestSanitizer_FormatParams(t *testing.T) {
	s := NewSanitizer(nil)

	if got := s.FormatParams(nil); got != "[]" {
		t.Errorf("FormatParams(nil) = %q", got)
	}

	got := s.FormatParams([]any{1, "two", nil})
	if got != "[1, two, NULL]" {
		t.Errorf("FormatParams = %q", got)
	}

	long := strings.Repeat("x", 150)
	formatted := s.FormatParams([]any{long})
	if len(formatted) >= len(long) {
		t.Errorf("long value not truncated: %d chars", len(formatted))
	}
	if !strings.Contains(formatted, "...") {
		t.Errorf("truncated value missing ellipsis: %q", formatted)
	}
}
