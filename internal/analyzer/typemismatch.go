package analyzer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
	"github.com/coregx/ormdoctor/internal/query"
)

// compatibleProperties maps a declared column type to the language-level
// property types that store it without loss. Decimal is special-cased in
// the analyzer: mapping it to a float property is always critical, never a
// generic mismatch.
var compatibleProperties = map[metadata.FieldType][]string{
	metadata.TypeInteger:    {"int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32"},
	metadata.TypeSmallint:   {"int", "int8", "int16", "int32", "uint8", "uint16"},
	metadata.TypeBigint:     {"int64", "uint64", "int"},
	metadata.TypeDecimal:    {"string", "decimal.Decimal", "big.Rat"},
	metadata.TypeFloat:      {"float32", "float64"},
	metadata.TypeDouble:     {"float64"},
	metadata.TypeString:     {"string"},
	metadata.TypeText:       {"string"},
	metadata.TypeBoolean:    {"bool"},
	metadata.TypeDatetime:   {"time.Time", "sql.NullTime"},
	metadata.TypeDatetimeTz: {"time.Time", "sql.NullTime"},
	metadata.TypeDate:       {"time.Time", "sql.NullTime"},
	metadata.TypeTime:       {"time.Time", "sql.NullTime"},
	metadata.TypeBinary:     {"[]byte"},
	metadata.TypeJSON:       {"json.RawMessage", "[]byte", "map[string]any", "any"},
	metadata.TypeGUID:       {"string", "uuid.UUID"},
}

// TypeMismatchAnalyzer compares each field's declared column type with the
// language-level property type it is mapped to.
//
// Severity rule table:
//   - decimal column mapped to a float property: always critical (silent
//     precision loss on every hydration).
//   - any other incompatible pairing: warning.
//
// Decimal mapped to a string property is correct and never reported.
type TypeMismatchAnalyzer struct {
	provider metadata.Provider
}

// NewTypeMismatchAnalyzer creates the analyzer. The provider must not be nil.
func NewTypeMismatchAnalyzer(provider metadata.Provider) *TypeMismatchAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &TypeMismatchAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *TypeMismatchAnalyzer) Name() string { return "type_mismatch" }

// Analyze yields one issue per mismatched field. Fields whose property type
// the provider could not resolve are skipped.
func (a *TypeMismatchAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for t := range a.provider.AllTypes() {
			for _, f := range t.Fields {
				found, ok := a.check(t, f)
				if !ok {
					continue
				}
				if !yield(found) {
					return
				}
			}
		}
	}
}

func (a *TypeMismatchAnalyzer) check(t metadata.TypeMetadata, f metadata.FieldMapping) (issue.Issue, bool) {
	property := strings.TrimPrefix(f.PropertyType, "*")
	if property == "" {
		return issue.Issue{}, false
	}

	allowed, known := compatibleProperties[f.Type]
	if !known {
		return issue.Issue{}, false
	}
	for _, p := range allowed {
		if p == property {
			return issue.Issue{}, false
		}
	}

	if f.Type == metadata.TypeDecimal && (property == "float64" || property == "float32") {
		return issue.Issue{
			Type:     issue.TypeMismatch,
			Title:    "Type Mismatch",
			Severity: issue.SeverityCritical,
			Description: fmt.Sprintf(
				"%s.%s maps a decimal column to %s. Hydrating decimals through floating point loses precision; map to a string or decimal property instead.",
				t.ShortName, f.Name, property),
			Suggestion: &issue.Suggestion{
				Template: "decimal_float_mismatch",
				Context: map[string]any{
					"type":     t.ShortName,
					"field":    f.Name,
					"property": property,
				},
				Meta: issue.SuggestionMeta{
					Type:     issue.TypeMismatch,
					Severity: issue.SeverityCritical,
					Title:    "Map decimal columns to exact types",
					Tags:     []string{"correctness", "types"},
				},
			},
		}, true
	}

	return issue.Issue{
		Type:     issue.TypeMismatch,
		Title:    "Type Mismatch",
		Severity: issue.SeverityWarning,
		Description: fmt.Sprintf(
			"%s.%s declares a %s column but maps it to %s.",
			t.ShortName, f.Name, f.Type, property),
		Suggestion: &issue.Suggestion{
			Template: "type_mismatch",
			Context: map[string]any{
				"type":     t.ShortName,
				"field":    f.Name,
				"column":   string(f.Type),
				"property": property,
			},
			Meta: issue.SuggestionMeta{
				Type:     issue.TypeMismatch,
				Severity: issue.SeverityWarning,
				Title:    "Align property and column types",
				Tags:     []string{"types"},
			},
		},
	}, true
}
