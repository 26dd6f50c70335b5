package analyzer

import (
	"testing"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
)

func fieldsNamed(names ...string) []metadata.FieldMapping {
	fields := make([]metadata.FieldMapping, len(names))
	for i, n := range names {
		fields[i] = metadata.FieldMapping{Name: n, ColumnName: n, Type: metadata.TypeString}
	}
	return fields
}

func TestEmbeddableAnalyzer(t *testing.T) {
	tests := []struct {
		name       string
		fields     []string
		wantTitles []string
	}{
		{
			name:       "address_with_optionals",
			fields:     []string{"street", "city", "country", "zipCode"},
			wantTitles: []string{"Fields Forming A Address Value Object"},
		},
		{
			name:       "money_pair",
			fields:     []string{"amount", "currency"},
			wantTitles: []string{"Fields Forming A Money Value Object"},
		},
		{
			name:       "person_name",
			fields:     []string{"firstName", "lastName", "middleName"},
			wantTitles: []string{"Fields Forming A PersonName Value Object"},
		},
		{
			name:       "required_field_missing",
			fields:     []string{"street", "zipCode"}, // city absent
			wantTitles: nil,
		},
		{
			name:   "multiple_patterns",
			fields: []string{"amount", "currency", "latitude", "longitude"},
			wantTitles: []string{
				"Fields Forming A Money Value Object",
				"Fields Forming A Coordinates Value Object",
			},
		},
		{
			name:       "case_insensitive_match",
			fields:     []string{"Email", "EmailVerified"},
			wantTitles: []string{"Fields Forming A Email Value Object"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := metadata.NewRegistry(metadata.TypeMetadata{
				Name: "app.Entity", ShortName: "Entity", TableName: "entity",
				Fields: fieldsNamed(tt.fields...),
			})

			issues := collectIssues(t, NewEmbeddableAnalyzer(registry))
			if len(issues) != len(tt.wantTitles) {
				t.Fatalf("got %d issues, want %d: %+v", len(issues), len(tt.wantTitles), issues)
			}
			for i, want := range tt.wantTitles {
				if issues[i].Title != want {
					t.Errorf("issues[%d].Title = %q, want %q", i, issues[i].Title, want)
				}
				if issues[i].Severity != issue.SeverityInfo {
					t.Errorf("Severity = %v, want info", issues[i].Severity)
				}
			}
		})
	}
}

func TestEmbeddableAnalyzer_SkipsEmbeddablesAndBases(t *testing.T) {
	registry := metadata.NewRegistry(
		metadata.TypeMetadata{
			Name: "app.MoneyVO", ShortName: "MoneyVO", IsEmbeddable: true,
			Fields: fieldsNamed("amount", "currency"),
		},
		metadata.TypeMetadata{
			Name: "app.BaseEntity", ShortName: "BaseEntity", IsAbstractBase: true,
			Fields: fieldsNamed("amount", "currency"),
		},
	)

	if issues := collectIssues(t, NewEmbeddableAnalyzer(registry)); len(issues) != 0 {
		t.Errorf("embeddables and abstract bases must be skipped, got %+v", issues)
	}
}
