package analyzer

import (
	"fmt"
	"iter"
	"strings"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
	"github.com/coregx/ormdoctor/internal/query"
	"github.com/coregx/ormdoctor/internal/util"
)

// NamingConventionAnalyzer checks table, column, foreign-key, and index
// names against the project conventions: snake_case identifiers, singular
// table names, _id-suffixed foreign keys, and idx_/uniq_ index prefixes.
//
// Reserved SQL keywords are reported as info rather than warning: the
// platform auto-quotes identifiers, so they work, but they hurt
// portability and readability.
type NamingConventionAnalyzer struct {
	provider metadata.Provider
}

// NewNamingConventionAnalyzer creates the analyzer.
// The provider must not be nil.
func NewNamingConventionAnalyzer(provider metadata.Provider) *NamingConventionAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &NamingConventionAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *NamingConventionAnalyzer) Name() string { return "naming" }

// Analyze walks all types and yields one issue per convention violation.
func (a *NamingConventionAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for t := range a.provider.AllTypes() {
			if t.IsEmbeddable || t.TableName == "" {
				continue
			}
			for _, found := range a.checkType(t) {
				if !yield(found) {
					return
				}
			}
		}
	}
}

func (a *NamingConventionAnalyzer) checkType(t metadata.TypeMetadata) []issue.Issue {
	var issues []issue.Issue

	issues = append(issues, a.checkTable(t)...)

	for _, f := range t.Fields {
		issues = append(issues, a.checkColumn(t, f.ColumnName)...)
	}

	for _, assoc := range t.Associations {
		for _, jc := range assoc.JoinColumns {
			if jc.Name == "" || strings.HasSuffix(jc.Name, "_id") {
				continue
			}
			issues = append(issues, namingIssue(
				issue.TypeNamingForeignKey,
				"Foreign Key Column Missing _id Suffix",
				issue.SeverityWarning,
				fmt.Sprintf("%s.%s references %s but is not suffixed with _id; the convention makes join columns recognizable at a glance.",
					t.TableName, jc.Name, assoc.TargetType),
				"rename_identifier",
				map[string]any{"table": t.TableName, "column": jc.Name, "suggested": util.ToSnakeCase(assoc.FieldName) + "_id"},
			))
		}
	}

	for _, idx := range t.Indexes {
		wantPrefix := "idx_"
		if idx.Unique {
			wantPrefix = "uniq_"
		}
		if idx.Name == "" || strings.HasPrefix(idx.Name, wantPrefix) {
			continue
		}
		issues = append(issues, namingIssue(
			issue.TypeNamingIndex,
			"Index Name Missing Conventional Prefix",
			issue.SeverityWarning,
			fmt.Sprintf("Index %s on %s should be prefixed with %q.", idx.Name, t.TableName, wantPrefix),
			"rename_identifier",
			map[string]any{"table": t.TableName, "index": idx.Name, "suggested": wantPrefix + strings.TrimPrefix(strings.TrimPrefix(idx.Name, "idx_"), "uniq_")},
		))
	}

	return issues
}

func (a *NamingConventionAnalyzer) checkTable(t metadata.TypeMetadata) []issue.Issue {
	var issues []issue.Issue
	table := t.TableName

	if !util.IsSnakeCase(table) {
		issues = append(issues, namingIssue(
			issue.TypeNamingTable,
			"Table Name Is Not snake_case",
			issue.SeverityWarning,
			fmt.Sprintf("Table %s should be named %s.", table, util.ToSnakeCase(table)),
			"rename_identifier",
			map[string]any{"table": table, "suggested": util.ToSnakeCase(table)},
		))
	} else if util.IsPlural(table) {
		issues = append(issues, namingIssue(
			issue.TypeNamingTable,
			"Table Name Is Plural",
			issue.SeverityWarning,
			fmt.Sprintf("Table %s should use the singular form %s; each row holds one %s.",
				table, util.ToSingular(table), util.ToSingular(table)),
			"rename_identifier",
			map[string]any{"table": table, "suggested": util.ToSingular(table)},
		))
	}

	if util.IsReservedWord(table) {
		issues = append(issues, namingIssue(
			issue.TypeNamingReservedWord,
			"Table Named After A Reserved Keyword",
			issue.SeverityInfo,
			fmt.Sprintf("%s is a reserved SQL keyword. The platform quotes it automatically, but every raw query must remember to.", table),
			"rename_identifier",
			map[string]any{"table": table},
		))
	}

	return issues
}

func (a *NamingConventionAnalyzer) checkColumn(t metadata.TypeMetadata, column string) []issue.Issue {
	if column == "" {
		return nil
	}

	var issues []issue.Issue
	if !util.IsSnakeCase(column) {
		issues = append(issues, namingIssue(
			issue.TypeNamingColumn,
			"Column Name Is Not snake_case",
			issue.SeverityWarning,
			fmt.Sprintf("Column %s.%s should be named %s.", t.TableName, column, util.ToSnakeCase(column)),
			"rename_identifier",
			map[string]any{"table": t.TableName, "column": column, "suggested": util.ToSnakeCase(column)},
		))
	}

	if util.IsReservedWord(column) {
		issues = append(issues, namingIssue(
			issue.TypeNamingReservedWord,
			"Column Named After A Reserved Keyword",
			issue.SeverityInfo,
			fmt.Sprintf("%s.%s is a reserved SQL keyword. The platform quotes it automatically, but raw queries must remember to.", t.TableName, column),
			"rename_identifier",
			map[string]any{"table": t.TableName, "column": column},
		))
	}

	return issues
}

func namingIssue(tag, title string, severity issue.Severity, description, template string, ctx map[string]any) issue.Issue {
	return issue.Issue{
		Type:        tag,
		Title:       title,
		Severity:    severity,
		Description: description,
		Suggestion: &issue.Suggestion{
			Template: template,
			Context:  ctx,
			Meta: issue.SuggestionMeta{
				Type:     tag,
				Severity: severity,
				Title:    title,
				Tags:     []string{"naming"},
			},
		},
	}
}
