package analyzer

import (
	"testing"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
)

func namingIssues(t *testing.T, types ...metadata.TypeMetadata) []issue.Issue {
	t.Helper()
	return collectIssues(t, NewNamingConventionAnalyzer(metadata.NewRegistry(types...)))
}

func TestNamingConventionAnalyzer_Table(t *testing.T) {
	tests := []struct {
		name     string
		table    string
		wantType string
		wantSev  issue.Severity
	}{
		{"camel_case_table", "OrderItems", issue.TypeNamingTable, issue.SeverityWarning},
		{"plural_table", "orders", issue.TypeNamingTable, issue.SeverityWarning},
		{"reserved_word_table", "order", issue.TypeNamingReservedWord, issue.SeverityInfo},
		{"clean_table", "order_item", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := namingIssues(t, metadata.TypeMetadata{
				Name: "app.T", ShortName: "T", TableName: tt.table,
			})

			if tt.wantType == "" {
				if len(issues) != 0 {
					t.Fatalf("got %d issues, want 0: %+v", len(issues), issues)
				}
				return
			}
			if len(issues) != 1 {
				t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
			}
			if issues[0].Type != tt.wantType {
				t.Errorf("Type = %q, want %q", issues[0].Type, tt.wantType)
			}
			if issues[0].Severity != tt.wantSev {
				t.Errorf("Severity = %v, want %v", issues[0].Severity, tt.wantSev)
			}
		})
	}
}

func TestNamingConventionAnalyzer_Columns(t *testing.T) {
	issues := namingIssues(t, metadata.TypeMetadata{
		Name: "app.Customer", ShortName: "Customer", TableName: "customer",
		Fields: []metadata.FieldMapping{
			{Name: "createdAt", ColumnName: "createdAt", Type: metadata.TypeDatetime}, // not snake_case
			{Name: "name", ColumnName: "name", Type: metadata.TypeString},             // clean
			{Name: "group", ColumnName: "group", Type: metadata.TypeString},           // reserved word
		},
	})

	if got := len(issues); got != 2 {
		t.Fatalf("got %d issues, want 2: %+v", got, issues)
	}
	if issues[0].Type != issue.TypeNamingColumn {
		t.Errorf("issues[0].Type = %q", issues[0].Type)
	}
	if issues[1].Type != issue.TypeNamingReservedWord || issues[1].Severity != issue.SeverityInfo {
		t.Errorf("issues[1] = %+v", issues[1])
	}
}

func TestNamingConventionAnalyzer_ForeignKeySuffix(t *testing.T) {
	issues := namingIssues(t, metadata.TypeMetadata{
		Name: "app.Order", ShortName: "Order", TableName: "order_record",
		Associations: []metadata.AssociationMapping{
			{
				FieldName: "customer", Cardinality: metadata.ManyToOne, TargetType: "Customer",
				JoinColumns: []metadata.JoinColumn{{Name: "customer_ref"}}, // missing _id
			},
			{
				FieldName: "supplier", Cardinality: metadata.ManyToOne, TargetType: "Supplier",
				JoinColumns: []metadata.JoinColumn{{Name: "supplier_id"}}, // conventional
			},
		},
	})

	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Type != issue.TypeNamingForeignKey {
		t.Errorf("Type = %q", issues[0].Type)
	}
	if got := issues[0].Suggestion.Context["suggested"]; got != "customer_id" {
		t.Errorf("suggested = %v, want customer_id", got)
	}
}

func TestNamingConventionAnalyzer_IndexPrefixes(t *testing.T) {
	issues := namingIssues(t, metadata.TypeMetadata{
		Name: "app.User", ShortName: "User", TableName: "user_account",
		Indexes: []metadata.Index{
			{Name: "idx_user_email", Columns: []string{"email"}},               // conventional
			{Name: "uniq_user_handle", Columns: []string{"handle"}, Unique: true}, // conventional
			{Name: "email_index", Columns: []string{"email"}},                  // missing idx_
			{Name: "idx_user_handle", Columns: []string{"handle"}, Unique: true}, // unique must use uniq_
		},
	})

	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2: %+v", len(issues), issues)
	}
	for _, found := range issues {
		if found.Type != issue.TypeNamingIndex {
			t.Errorf("Type = %q", found.Type)
		}
	}
}

func TestNamingConventionAnalyzer_SkipsEmbeddables(t *testing.T) {
	issues := namingIssues(t, metadata.TypeMetadata{
		Name: "app.MoneyVO", ShortName: "MoneyVO", IsEmbeddable: true, TableName: "BadName",
	})
	if len(issues) != 0 {
		t.Errorf("embeddables must be skipped, got %+v", issues)
	}
}
