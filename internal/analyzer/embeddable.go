package analyzer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
	"github.com/coregx/ormdoctor/internal/query"
)

// embeddablePattern describes a value-object shape scattered across plain
// fields. A type matches when every required field name exists among its
// fields (case-insensitive); optional names are included in the report when
// present.
type embeddablePattern struct {
	name     string
	required []string
	optional []string
}

var embeddablePatterns = []embeddablePattern{
	{
		name:     "Money",
		required: []string{"amount", "currency"},
	},
	{
		name:     "Address",
		required: []string{"street", "city"},
		optional: []string{"state", "country", "zipCode", "postalCode", "region"},
	},
	{
		name:     "PersonName",
		required: []string{"firstName", "lastName"},
		optional: []string{"middleName", "title"},
	},
	{
		name:     "Coordinates",
		required: []string{"latitude", "longitude"},
		optional: []string{"altitude"},
	},
	{
		name:     "DateRange",
		required: []string{"startDate", "endDate"},
	},
	{
		name:     "Email",
		required: []string{"email", "emailVerified"},
		optional: []string{"emailVerifiedAt"},
	},
	{
		name:     "Phone",
		required: []string{"phoneNumber", "phoneCountryCode"},
		optional: []string{"phoneExtension"},
	},
	{
		name:     "Dimensions",
		required: []string{"width", "height"},
		optional: []string{"depth", "weight"},
	},
}

// EmbeddableAnalyzer detects groups of fields that form a known value
// object and suggests extracting them into an embeddable type. Embeddables
// and abstract bases are themselves skipped.
type EmbeddableAnalyzer struct {
	provider metadata.Provider
}

// NewEmbeddableAnalyzer creates the analyzer. The provider must not be nil.
func NewEmbeddableAnalyzer(provider metadata.Provider) *EmbeddableAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &EmbeddableAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *EmbeddableAnalyzer) Name() string { return "embeddable" }

// Analyze yields one info issue per matching pattern per type.
func (a *EmbeddableAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for t := range a.provider.AllTypes() {
			if t.IsEmbeddable || t.IsAbstractBase {
				continue
			}
			for _, p := range embeddablePatterns {
				fields, ok := p.match(t)
				if !ok {
					continue
				}
				if !yield(issue.Issue{
					Type:     issue.TypeMissingEmbeddable,
					Title:    fmt.Sprintf("Fields Forming A %s Value Object", p.name),
					Severity: issue.SeverityInfo,
					Description: fmt.Sprintf(
						"%s declares %s as separate fields. Extracting a %s embeddable groups the data with its validation and keeps it reusable.",
						t.ShortName, strings.Join(fields, ", "), p.name),
					Suggestion: &issue.Suggestion{
						Template: "extract_embeddable",
						Context: map[string]any{
							"type":       t.ShortName,
							"embeddable": p.name,
							"fields":     fields,
						},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeMissingEmbeddable,
							Severity: issue.SeverityInfo,
							Title:    fmt.Sprintf("Extract %s embeddable", p.name),
							Tags:     []string{"design", "value-object"},
						},
					},
				}) {
					return
				}
			}
		}
	}
}

// match returns the matched field names (required plus any optional ones
// present) when the type satisfies the pattern.
func (p embeddablePattern) match(t metadata.TypeMetadata) ([]string, bool) {
	fields := make([]string, 0, len(p.required)+len(p.optional))
	for _, name := range p.required {
		if !t.HasFieldNamed(name) {
			return nil, false
		}
		fields = append(fields, name)
	}
	for _, name := range p.optional {
		if t.HasFieldNamed(name) {
			fields = append(fields, name)
		}
	}
	return fields, true
}
