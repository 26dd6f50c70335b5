package analyzer

import (
	"testing"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
)

func TestIsForeignKeyName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"userId", true},
		{"customer_id", true},
		{"countryId", true}, // id suffix is a signal even without an entity keyword
		{"owner", true},
		{"parentCategory", true},
		{"userCount", false},     // negative word wins over the entity keyword
		{"quantity", false},
		{"score", false},
		{"expirationDaysId", false}, // negative word wins over the id suffix
		{"name", false},
		{"id", false}, // bare id is the primary key, not a reference
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isForeignKeyName(tt.name); got != tt.want {
				t.Errorf("isForeignKeyName(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestGuessTargetName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"user", "User"},
		{"billing_address", "BillingAddress"},
		{"parent_category", "ParentCategory"},
	}
	for _, tt := range tests {
		if got := guessTargetName(tt.base); got != tt.want {
			t.Errorf("guessTargetName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestForeignKeyAnalyzer(t *testing.T) {
	registry := metadata.NewRegistry(
		metadata.TypeMetadata{
			Name: "app.Order", ShortName: "Order", TableName: "order_record",
			Fields: []metadata.FieldMapping{
				{Name: "id", ColumnName: "id", Type: metadata.TypeInteger},
				// Flagged: integer, fk-looking, Customer type exists, no association.
				{Name: "customerId", ColumnName: "customer_id", Type: metadata.TypeInteger},
				// Not flagged: Vendor type does not exist in the model.
				{Name: "vendorId", ColumnName: "vendor_id", Type: metadata.TypeInteger},
				// Not flagged: an association already covers the base name.
				{Name: "supplierId", ColumnName: "supplier_id", Type: metadata.TypeInteger},
				// Not flagged: negative word.
				{Name: "userCount", ColumnName: "user_count", Type: metadata.TypeInteger},
				// Not flagged: not integer family.
				{Name: "companyId", ColumnName: "company_id", Type: metadata.TypeString},
			},
			Associations: []metadata.AssociationMapping{
				{FieldName: "supplier", Cardinality: metadata.ManyToOne, TargetType: "Supplier"},
			},
		},
		metadata.TypeMetadata{Name: "app.Customer", ShortName: "Customer", TableName: "customer"},
		metadata.TypeMetadata{Name: "app.Supplier", ShortName: "Supplier", TableName: "supplier"},
	)

	issues := collectIssues(t, NewForeignKeyAnalyzer(registry))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}

	found := issues[0]
	if found.Type != issue.TypeForeignKeyPrimitive {
		t.Errorf("Type = %q", found.Type)
	}
	if found.Title != "Primitive Foreign Key Detected" {
		t.Errorf("Title = %q", found.Title)
	}
	if found.Severity != issue.SeverityWarning {
		t.Errorf("Severity = %v", found.Severity)
	}
	if found.Suggestion == nil || found.Suggestion.Template != "fk_association" {
		t.Errorf("Suggestion = %+v", found.Suggestion)
	}
	if found.Suggestion.Context["target"] != "Customer" {
		t.Errorf("target = %v", found.Suggestion.Context["target"])
	}
}

func TestMoneyFieldAnalyzer(t *testing.T) {
	registry := metadata.NewRegistry(
		metadata.TypeMetadata{
			Name: "app.Product", ShortName: "Product", TableName: "product",
			Fields: []metadata.FieldMapping{
				// Flagged: money name, float type.
				{Name: "unitPrice", ColumnName: "unit_price", Type: metadata.TypeFloat},
				// Not flagged: money name on a decimal column is correct.
				{Name: "totalCost", ColumnName: "total_cost", Type: metadata.TypeDecimal},
				// Not flagged: float but not money.
				{Name: "weightRatio", ColumnName: "weight_ratio", Type: metadata.TypeDouble},
				// Not flagged: negative word wins.
				{Name: "scoreTotal", ColumnName: "score_total", Type: metadata.TypeFloat},
			},
		},
	)

	issues := collectIssues(t, NewMoneyFieldAnalyzer(registry))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}

	found := issues[0]
	if found.Title != "Monetary Value Stored As Float" {
		t.Errorf("Title = %q", found.Title)
	}
	if found.Severity != issue.SeverityCritical {
		t.Errorf("Severity = %v, money-as-float is always critical", found.Severity)
	}
	if found.Suggestion.Template != "money_decimal" {
		t.Errorf("Template = %q", found.Suggestion.Template)
	}
}

func TestMutableIdentifierAnalyzer(t *testing.T) {
	registry := metadata.NewRegistry(
		metadata.TypeMetadata{
			Name: "app.Invoice", ShortName: "Invoice", TableName: "invoice",
			Fields: []metadata.FieldMapping{{Name: "id", ColumnName: "id", Type: metadata.TypeInteger}},
		},
		metadata.TypeMetadata{
			Name: "app.Receipt", ShortName: "Receipt", TableName: "receipt",
			Fields: []metadata.FieldMapping{{Name: "id", ColumnName: "id", Type: metadata.TypeInteger}},
		},
	)

	inspector := metadata.NewReflectInspector()
	inspector.Register("Invoice", &mutableEntity{})
	inspector.Register("Receipt", immutableEntity{})

	issues := collectIssues(t, NewMutableIdentifierAnalyzer(registry, inspector, nil))
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}
	if issues[0].Title != "Identifier Has Public Setter" {
		t.Errorf("Title = %q", issues[0].Title)
	}
}

func TestMutableIdentifierAnalyzer_UnknownTypesSilent(t *testing.T) {
	registry := metadata.NewRegistry(
		metadata.TypeMetadata{
			Name: "app.Invoice", ShortName: "Invoice", TableName: "invoice",
			Fields: []metadata.FieldMapping{{Name: "id", ColumnName: "id", Type: metadata.TypeInteger}},
		},
	)

	issues := collectIssues(t, NewMutableIdentifierAnalyzer(registry, metadata.NewReflectInspector(), nil))
	if len(issues) != 0 {
		t.Errorf("unregistered types must produce no findings, got %+v", issues)
	}
}

type mutableEntity struct{ ID int }

func (m *mutableEntity) SetId(id int) { m.ID = id }

type immutableEntity struct{ ID int }
