package analyzer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/logger"
	"github.com/coregx/ormdoctor/internal/metadata"
	"github.com/coregx/ormdoctor/internal/query"
	"github.com/coregx/ormdoctor/internal/util"
)

// classifier tests a field name against a positive pattern list and a
// negative exclusion list. Patterns match whole words only (see
// util.MatchesWord), and a negative match short-circuits to "no match"
// even when a positive pattern is also present, which suppresses
// compound-name false positives such as "userCount".
type classifier struct {
	positive []string
	negative []string
}

func (c classifier) matches(name string) bool {
	for _, p := range c.negative {
		if util.MatchesWord(name, p) {
			return false
		}
	}
	for _, p := range c.positive {
		if util.MatchesWord(name, p) {
			return true
		}
	}
	return false
}

// entityKeywords are field-name words that usually reference another
// persisted type.
var entityKeywords = []string{
	"user", "customer", "account", "company", "organization", "product",
	"category", "order", "invoice", "supplier", "vendor", "employee",
	"owner", "author", "creator", "parent", "manager", "address",
}

// fkClassifier recognizes likely foreign-key fields by name.
var fkClassifier = classifier{
	positive: entityKeywords,
	negative: []string{
		"count", "quantity", "number", "total", "amount", "score",
		"ratio", "rate", "percent", "percentage", "days", "hours",
		"minutes", "seconds", "size", "length", "level", "position",
		"rank", "expiration", "age", "year", "month", "week",
	},
}

// isForeignKeyName reports whether the field name alone looks like a
// foreign key: either an "_id"/"Id" suffixed name or a whole-word entity
// keyword, with the exclusion list applied first.
func isForeignKeyName(name string) bool {
	words := util.SplitWords(name)
	if len(words) >= 2 && words[len(words)-1] == "id" {
		// An id suffix is a strong signal on its own; the target-type
		// existence check filters the rest. Exclusions still win, so
		// "expirationDaysId" stays unflagged.
		base := strings.Join(words[:len(words)-1], "_")
		for _, p := range fkClassifier.negative {
			if util.MatchesWord(base, p) {
				return false
			}
		}
		return true
	}
	return fkClassifier.matches(name)
}

// fkBaseName strips a trailing id word: "userId" -> "user".
func fkBaseName(name string) string {
	words := util.SplitWords(name)
	if len(words) >= 2 && words[len(words)-1] == "id" {
		words = words[:len(words)-1]
	}
	return strings.Join(words, "_")
}

// guessTargetName converts a foreign-key base name to the PascalCase type
// name it presumably references: "billing_address" -> "BillingAddress".
func guessTargetName(base string) string {
	var b strings.Builder
	for _, w := range util.SplitWords(base) {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	return b.String()
}

// ForeignKeyAnalyzer flags integer fields that look like foreign keys but
// are not mapped as associations. Without an association mapping the ORM
// cannot lazy-load, join, or enforce referential integrity through the
// relation.
type ForeignKeyAnalyzer struct {
	provider metadata.Provider
}

// NewForeignKeyAnalyzer creates the analyzer. The provider must not be nil.
func NewForeignKeyAnalyzer(provider metadata.Provider) *ForeignKeyAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &ForeignKeyAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *ForeignKeyAnalyzer) Name() string { return "foreign_key" }

// Analyze yields one warning per primitive-typed foreign-key field.
// A field is only flagged when its type is integer-family, no association
// already exists under the stripped base name, and the guessed target type
// actually exists in the metadata set; integers like "vendorId" with no
// Vendor type in the model stay unflagged.
func (a *ForeignKeyAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		shortNames := make(map[string]bool)
		for t := range a.provider.AllTypes() {
			shortNames[t.ShortName] = true
		}

		for t := range a.provider.AllTypes() {
			if t.IsEmbeddable {
				continue
			}
			for _, f := range t.Fields {
				if !f.Type.IsIntegerFamily() || !isForeignKeyName(f.Name) {
					continue
				}

				base := fkBaseName(f.Name)
				if _, exists := t.Association(base); exists {
					continue
				}
				if _, exists := t.Association(f.Name); exists {
					continue
				}

				target := guessTargetName(base)
				if !shortNames[target] {
					continue
				}

				if !yield(issue.Issue{
					Type:     issue.TypeForeignKeyPrimitive,
					Title:    "Primitive Foreign Key Detected",
					Severity: issue.SeverityWarning,
					Description: fmt.Sprintf(
						"%s.%s is a plain %s column that appears to reference %s. Map it as a ManyToOne association so the ORM can manage the relation.",
						t.ShortName, f.Name, f.Type, target),
					Suggestion: &issue.Suggestion{
						Template: "fk_association",
						Context: map[string]any{
							"type":   t.ShortName,
							"field":  f.Name,
							"target": target,
						},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeForeignKeyPrimitive,
							Severity: issue.SeverityWarning,
							Title:    "Replace primitive key with association",
							Tags:     []string{"integrity", "mapping"},
						},
					},
				}) {
					return
				}
			}
		}
	}
}

// moneyClassifier recognizes monetary fields by name.
var moneyClassifier = classifier{
	positive: []string{
		"price", "amount", "cost", "total", "balance", "fee", "salary",
		"revenue", "budget", "payment", "tax", "discount", "subtotal",
		"earnings", "wage", "income", "profit", "refund",
	},
	negative: []string{
		"hours", "quantity", "ratio", "score", "count", "percent",
		"percentage", "points", "units",
	},
}

// isMoneyName reports whether a field name designates a monetary value.
func isMoneyName(name string) bool {
	return moneyClassifier.matches(name)
}

// MoneyFieldAnalyzer flags monetary fields stored in approximate float
// types. Binary floating point cannot represent most decimal fractions
// exactly, so sums of money drift; such fields must use decimal columns.
type MoneyFieldAnalyzer struct {
	provider metadata.Provider
}

// NewMoneyFieldAnalyzer creates the analyzer. The provider must not be nil.
func NewMoneyFieldAnalyzer(provider metadata.Provider) *MoneyFieldAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &MoneyFieldAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *MoneyFieldAnalyzer) Name() string { return "money_field" }

// Analyze yields one critical issue per float-typed money field.
// The severity is always critical: this is a correctness defect, not a
// style preference.
func (a *MoneyFieldAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for t := range a.provider.AllTypes() {
			for _, f := range t.Fields {
				if !f.Type.IsFloatFamily() || !isMoneyName(f.Name) {
					continue
				}

				if !yield(issue.Issue{
					Type:     issue.TypeMoneyFloat,
					Title:    "Monetary Value Stored As Float",
					Severity: issue.SeverityCritical,
					Description: fmt.Sprintf(
						"%s.%s holds money in a %s column. Floating point accumulates rounding errors; use a decimal column with explicit precision and scale.",
						t.ShortName, f.Name, f.Type),
					Suggestion: &issue.Suggestion{
						Template: "money_decimal",
						Context: map[string]any{
							"type":      t.ShortName,
							"field":     f.Name,
							"precision": 10,
							"scale":     2,
						},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeMoneyFloat,
							Severity: issue.SeverityCritical,
							Title:    "Store money as decimal",
							Tags:     []string{"correctness", "types"},
						},
					},
				}) {
					return
				}
			}
		}
	}
}

// MutableIdentifierAnalyzer flags identifier fields exposed through public
// setters. It relies on runtime introspection, so it degrades to zero
// findings when the structural inspector cannot resolve a type or faults.
type MutableIdentifierAnalyzer struct {
	provider  metadata.Provider
	inspector metadata.StructuralInspector
	log       logger.Logger
}

// NewMutableIdentifierAnalyzer creates the analyzer. Provider and inspector
// must not be nil; log may be nil.
func NewMutableIdentifierAnalyzer(provider metadata.Provider, inspector metadata.StructuralInspector, log logger.Logger) *MutableIdentifierAnalyzer {
	if provider == nil || inspector == nil {
		panic("analyzer: nil collaborator")
	}
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &MutableIdentifierAnalyzer{provider: provider, inspector: inspector, log: log}
}

// Name identifies the analyzer in diagnostics output.
func (a *MutableIdentifierAnalyzer) Name() string { return "mutable_identifier" }

// Analyze yields a warning for every entity whose id field has a public
// mutator. Introspection faults are logged and swallowed.
func (a *MutableIdentifierAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		defer func() {
			if p := recover(); p != nil {
				a.log.Warn("identifier introspection failed", "panic", p)
			}
		}()

		for t := range a.provider.AllTypes() {
			if t.IsEmbeddable || t.IsAbstractBase {
				continue
			}
			f, ok := t.Field("id")
			if !ok {
				continue
			}

			has, known := a.inspector.HasPublicMutator(t, f.Name)
			if !known || !has {
				continue
			}

			if !yield(issue.Issue{
				Type:     issue.TypeMutableIdentifier,
				Title:    "Identifier Has Public Setter",
				Severity: issue.SeverityWarning,
				Description: fmt.Sprintf(
					"%s exposes a public setter for its identifier. Identifiers should be assigned once by the persistence layer and never mutated.",
					t.ShortName),
				Suggestion: &issue.Suggestion{
					Template: "immutable_identifier",
					Context:  map[string]any{"type": t.ShortName, "field": f.Name},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypeMutableIdentifier,
						Severity: issue.SeverityWarning,
						Title:    "Remove identifier setter",
						Tags:     []string{"design", "identity"},
					},
				},
			}) {
				return
			}
		}
	}
}
