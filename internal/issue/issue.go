// Package issue defines the reporting data model shared by all analyzers:
// severity levels, issues, and remediation suggestions.
package issue

import (
	"github.com/coregx/ormdoctor/internal/query"
)

// Severity indicates the importance of a finding.
// Severities are totally ordered: SeverityCritical > SeverityWarning > SeverityInfo.
type Severity int

const (
	// SeverityInfo is for informational findings with low priority
	SeverityInfo Severity = iota

	// SeverityWarning is for moderate issues that should be addressed
	SeverityWarning

	// SeverityCritical is for issues requiring immediate attention
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityCritical:
		return "critical"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Stable type tags carried by issues. Reporting layers key presentation and
// suppression rules off these strings, so they must not change between
// releases.
const (
	TypeForeignKeyPrimitive     = "fk_primitive_type"
	TypeMoneyFloat              = "money_float"
	TypeMismatch                = "type_mismatch"
	TypeMissingEmbeddable       = "missing_embeddable"
	TypeCascadeDangerous        = "cascade_dangerous"
	TypeOrphanRemovalIncomplete = "orphan_removal_incomplete"
	TypeCascadeDBMismatch       = "cascade_db_mismatch"
	TypeMutableIdentifier       = "mutable_identifier"
	TypeDivisionByZero          = "division_by_zero"
	TypeNullComparison          = "null_comparison"
	TypeJoinLeftFiltered        = "join_left_filtered"
	TypeJoinAggregateFanout     = "join_aggregate_fanout"
	TypeLikeLeadingWildcard     = "like_leading_wildcard"
	TypeOrderByWithoutLimit     = "order_by_without_limit"
	TypeDateFunctionOnColumn    = "date_function_on_column"
	TypeFrequentQuery           = "frequent_query"
	TypeStaticTableQuery        = "static_table_query"
	TypeTxMultipleFlush         = "tx_multiple_flush"
	TypeTxNested                = "tx_nested"
	TypeTxLongRunning           = "tx_long_running"
	TypeTxUnclosed              = "tx_unclosed"
	TypeNamingTable             = "naming_table"
	TypeNamingColumn            = "naming_column"
	TypeNamingForeignKey        = "naming_foreign_key"
	TypeNamingIndex             = "naming_index"
	TypeNamingReservedWord      = "naming_reserved_word"
	TypeCharsetMismatch         = "charset_mismatch"
	TypeCollationMix            = "collation_mix"
	TypeTimezoneDefault         = "timezone_default"
	TypePoolMisconfigured       = "pool_misconfigured"
)

// SuggestionMeta describes a suggestion independently of the issue carrying
// it, so rendering layers can group and filter suggestions on their own.
type SuggestionMeta struct {
	Type     string
	Severity Severity
	Title    string
	Tags     []string
}

// Suggestion is a remediation recommendation. The human-readable text is
// produced by an external renderer from Template and Context; the analyzer
// core only assembles the triple.
type Suggestion struct {
	Template string
	Context  map[string]any
	Meta     SuggestionMeta
}

// Renderer turns a suggestion template plus context into display text.
// The template catalog and rendering engine live outside this module.
type Renderer interface {
	Render(template string, context map[string]any) (string, error)
}

// Issue is one reported finding. Issues are created by an analyzer, are
// immutable after emission, and carry everything a reporting layer needs:
// a stable type tag, display strings, severity, an optional suggestion,
// an optional call-site backtrace, and the query records that contributed
// to the finding.
type Issue struct {
	Type        string
	Title       string
	Description string
	Severity    Severity
	Suggestion  *Suggestion
	Backtrace   []query.Frame
	Queries     []query.Record
}
