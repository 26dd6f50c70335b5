package analyzer

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/query"
)

// The analyzers in this file are stateless pattern scans over raw query
// text. Each deduplicates its findings across the whole collection with a
// normalized signature, so one structural problem repeated with different
// literal values reports once.

var (
	divisionRe   = regexp.MustCompile(`([a-zA-Z_][\w.]*|\d+(?:\.\d+)?)\s*/\s*([a-zA-Z_][\w.]*|\d+(?:\.\d+)?)`)
	divGuardRe   = regexp.MustCompile(`(?i)\b(nullif|coalesce)\s*\(|\bcase\s+when\b`)
	numericLitRe = regexp.MustCompile(`^\d+(?:\.\d+)?$`)
)

// DivisionByZeroAnalyzer detects divisions with an unguarded divisor.
type DivisionByZeroAnalyzer struct{}

// NewDivisionByZeroAnalyzer creates the analyzer.
func NewDivisionByZeroAnalyzer() *DivisionByZeroAnalyzer {
	return &DivisionByZeroAnalyzer{}
}

// Name identifies the analyzer in diagnostics output.
func (a *DivisionByZeroAnalyzer) Name() string { return "division_by_zero" }

// Analyze yields one critical issue per distinct dividend/divisor pair.
// Queries already guarded with NULLIF, COALESCE, or CASE WHEN anywhere in
// the text are skipped, as are divisions by a non-zero numeric literal.
func (a *DivisionByZeroAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			sql := query.StripComments(r.SQL)
			if divGuardRe.MatchString(sql) {
				continue
			}

			for _, m := range divisionRe.FindAllStringSubmatch(sql, -1) {
				dividend, divisor := m[1], m[2]
				if numericLitRe.MatchString(divisor) && divisor != "0" {
					continue
				}

				key := dividend + "/" + divisor
				if seen[key] {
					continue
				}
				seen[key] = true

				if !yield(issue.Issue{
					Type:     issue.TypeDivisionByZero,
					Title:    "Potential Division By Zero Error",
					Severity: issue.SeverityCritical,
					Description: fmt.Sprintf(
						"The expression %s / %s fails when %s is zero. Guard the divisor with NULLIF(%s, 0) so the division yields NULL instead of an error.",
						dividend, divisor, divisor, divisor),
					Suggestion: &issue.Suggestion{
						Template: "nullif_guard",
						Context:  map[string]any{"dividend": dividend, "divisor": divisor},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeDivisionByZero,
							Severity: issue.SeverityCritical,
							Title:    "Guard divisions with NULLIF",
							Tags:     []string{"sql", "correctness"},
						},
					},
					Queries: []query.Record{r},
				}) {
					return
				}
			}
		}
	}
}

var nullCompareRe = regexp.MustCompile(`(?i)([a-zA-Z_][\w.]*)\s*(=|!=|<>)\s*NULL\b`)

// NullComparisonAnalyzer detects comparisons against NULL with = or <>.
// In SQL those predicates evaluate to UNKNOWN for every row, so the query
// silently returns wrong results; this is always critical.
type NullComparisonAnalyzer struct{}

// NewNullComparisonAnalyzer creates the analyzer.
func NewNullComparisonAnalyzer() *NullComparisonAnalyzer {
	return &NullComparisonAnalyzer{}
}

// Name identifies the analyzer in diagnostics output.
func (a *NullComparisonAnalyzer) Name() string { return "null_comparison" }

// Analyze yields one critical issue per distinct field/operator pair.
func (a *NullComparisonAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			sql := query.StripComments(r.SQL)

			for _, m := range nullCompareRe.FindAllStringSubmatch(sql, -1) {
				field, op := m[1], m[2]
				key := field + op
				if seen[key] {
					continue
				}
				seen[key] = true

				replacement := field + " IS NULL"
				if op != "=" {
					replacement = field + " IS NOT NULL"
				}

				if !yield(issue.Issue{
					Type:     issue.TypeNullComparison,
					Title:    "Comparison With NULL Always Fails",
					Severity: issue.SeverityCritical,
					Description: fmt.Sprintf(
						"%s %s NULL is never true in SQL; the predicate evaluates to UNKNOWN for every row. Use %s instead.",
						field, op, replacement),
					Suggestion: &issue.Suggestion{
						Template: "is_null_comparison",
						Context:  map[string]any{"field": field, "operator": op, "replacement": replacement},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeNullComparison,
							Severity: issue.SeverityCritical,
							Title:    "Use IS NULL / IS NOT NULL",
							Tags:     []string{"sql", "correctness"},
						},
					},
					Queries: []query.Record{r},
				}) {
					return
				}
			}
		}
	}
}

var (
	leftJoinRe    = regexp.MustCompile(`(?i)\bleft\s+(?:outer\s+)?join\s+([a-z_][a-z0-9_]*)(?:\s+(?:as\s+)?([a-z_][a-z0-9_]*))?\s+on\b`)
	innerJoinRe   = regexp.MustCompile(`(?i)\b(?:inner\s+)?join\b`)
	aggregateRe   = regexp.MustCompile(`(?i)\b(count|sum|avg)\s*\(`)
	aggDistinctRe = regexp.MustCompile(`(?i)\b(?:count|sum|avg)\(distinct\b`)
)

// JoinAnalyzer checks join usage for two anti-patterns:
//
//  1. A LEFT JOIN whose WHERE clause applies IS NOT NULL to a column of
//     the joined table. The filter discards the NULL-extended rows, so the
//     join silently behaves as an INNER JOIN (info).
//  2. An aggregate (COUNT/SUM/AVG) combined with an INNER JOIN that can
//     multiply rows, inflating the aggregate (warning). DISTINCT inside
//     an aggregate suppresses the finding for the whole query, even when
//     another aggregate in the same query lacks it — a known limitation
//     of the text match, kept on purpose.
type JoinAnalyzer struct{}

// NewJoinAnalyzer creates the analyzer.
func NewJoinAnalyzer() *JoinAnalyzer {
	return &JoinAnalyzer{}
}

// Name identifies the analyzer in diagnostics output.
func (a *JoinAnalyzer) Name() string { return "join" }

// Analyze yields findings deduplicated by query fingerprint.
func (a *JoinAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			sql := query.StripComments(r.SQL)
			fp := query.Fingerprint(sql)

			if found, ok := a.checkLeftJoinFilter(sql, r); ok && !seen["left:"+fp] {
				seen["left:"+fp] = true
				if !yield(found) {
					return
				}
			}

			if found, ok := a.checkAggregateFanout(sql, r); ok && !seen["agg:"+fp] {
				seen["agg:"+fp] = true
				if !yield(found) {
					return
				}
			}
		}
	}
}

func (a *JoinAnalyzer) checkLeftJoinFilter(sql string, r query.Record) (issue.Issue, bool) {
	lower := strings.ToLower(sql)
	whereIdx := strings.Index(lower, " where ")
	if whereIdx == -1 {
		return issue.Issue{}, false
	}
	where := lower[whereIdx+7:]

	for _, m := range leftJoinRe.FindAllStringSubmatch(sql, -1) {
		table, alias := m[1], m[2]
		refs := []string{table}
		if alias != "" && alias != "on" {
			refs = append(refs, alias)
		}
		for _, ref := range refs {
			notNullRe := regexp.MustCompile(`\b` + regexp.QuoteMeta(ref) + `\.\w+\s+is\s+not\s+null\b`)
			if !notNullRe.MatchString(where) {
				continue
			}
			return issue.Issue{
				Type:     issue.TypeJoinLeftFiltered,
				Title:    "LEFT JOIN Filtered Into An INNER JOIN",
				Severity: issue.SeverityInfo,
				Description: fmt.Sprintf(
					"The WHERE clause requires %s columns to be NOT NULL, which discards the rows the LEFT JOIN preserves. Write an INNER JOIN to state the intent, or move the condition into the ON clause.",
					table),
				Suggestion: &issue.Suggestion{
					Template: "join_intent",
					Context:  map[string]any{"table": table},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypeJoinLeftFiltered,
						Severity: issue.SeverityInfo,
						Title:    "Make the join type explicit",
						Tags:     []string{"sql", "readability"},
					},
				},
				Queries: []query.Record{r},
			}, true
		}
	}
	return issue.Issue{}, false
}

func (a *JoinAnalyzer) checkAggregateFanout(sql string, r query.Record) (issue.Issue, bool) {
	lower := strings.ToLower(sql)
	if leftJoinRe.MatchString(sql) || !innerJoinRe.MatchString(sql) {
		return issue.Issue{}, false
	}

	aggs := aggregateRe.FindAllStringSubmatch(sql, -1)
	if len(aggs) == 0 {
		return issue.Issue{}, false
	}
	collapsed := strings.ReplaceAll(lower, " ", "")
	if aggDistinctRe.MatchString(collapsed) {
		return issue.Issue{}, false
	}

	agg := strings.ToUpper(aggs[0][1])
	return issue.Issue{
		Type:     issue.TypeJoinAggregateFanout,
		Title:    "Aggregate Over A Row-Multiplying JOIN",
		Severity: issue.SeverityWarning,
		Description: fmt.Sprintf(
			"%s combined with an INNER JOIN counts each left-side row once per matching right-side row, inflating the result. Aggregate in a subquery or use %s(DISTINCT ...).",
			agg, agg),
		Suggestion: &issue.Suggestion{
			Template: "aggregate_fanout",
			Context:  map[string]any{"aggregate": agg},
			Meta: issue.SuggestionMeta{
				Type:     issue.TypeJoinAggregateFanout,
				Severity: issue.SeverityWarning,
				Title:    "Aggregate before joining",
				Tags:     []string{"sql", "correctness"},
			},
		},
		Queries: []query.Record{r},
	}, true
}

var likeRe = regexp.MustCompile(`(?i)([a-zA-Z_][\w.]*)\s+like\s+'(%[^']*)'`)

// LikeAnalyzer flags LIKE patterns with a leading wildcard, which defeat
// standard b-tree indexes. Trailing-only wildcards ('x%') are fine and not
// reported. Severity scales with the query's measured execution time.
type LikeAnalyzer struct {
	cfg *config.Config
}

// NewLikeAnalyzer creates the analyzer. cfg must not be nil.
func NewLikeAnalyzer(cfg *config.Config) *LikeAnalyzer {
	if cfg == nil {
		panic("analyzer: nil config")
	}
	return &LikeAnalyzer{cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *LikeAnalyzer) Name() string { return "like_pattern" }

// Analyze yields one issue per distinct field with a leading-wildcard LIKE.
func (a *LikeAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			sql := query.StripComments(r.SQL)

			for _, m := range likeRe.FindAllStringSubmatch(sql, -1) {
				field, pattern := m[1], m[2]
				if seen[field] {
					continue
				}
				seen[field] = true

				if !yield(issue.Issue{
					Type:     issue.TypeLikeLeadingWildcard,
					Title:    "Leading Wildcard Defeats Index",
					Severity: severityForDuration(a.cfg.Thresholds, r.Duration),
					Description: fmt.Sprintf(
						"LIKE '%s' on %s cannot use a standard index because the pattern starts with a wildcard. Consider a trailing-wildcard search or a full-text index.",
						pattern, field),
					Suggestion: &issue.Suggestion{
						Template: "like_index",
						Context:  map[string]any{"field": field, "pattern": pattern},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeLikeLeadingWildcard,
							Severity: severityForDuration(a.cfg.Thresholds, r.Duration),
							Title:    "Avoid leading wildcards",
							Tags:     []string{"sql", "performance", "index"},
						},
					},
					Queries: []query.Record{r},
				}) {
					return
				}
			}
		}
	}
}

var (
	orderByRe = regexp.MustCompile(`(?i)\border\s+by\b`)
	limitRe   = regexp.MustCompile(`(?i)\blimit\s+\d+|\bfetch\s+first\b`)
)

// OrderByAnalyzer flags ORDER BY without LIMIT: the server sorts and ships
// the entire result set even when the caller needs a page. Severity scales
// with execution time.
type OrderByAnalyzer struct {
	cfg *config.Config
}

// NewOrderByAnalyzer creates the analyzer. cfg must not be nil.
func NewOrderByAnalyzer(cfg *config.Config) *OrderByAnalyzer {
	if cfg == nil {
		panic("analyzer: nil config")
	}
	return &OrderByAnalyzer{cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *OrderByAnalyzer) Name() string { return "order_by_limit" }

// Analyze yields one issue per distinct query fingerprint.
func (a *OrderByAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			sql := query.StripComments(r.SQL)
			if !orderByRe.MatchString(sql) || limitRe.MatchString(sql) {
				continue
			}

			fp := query.Fingerprint(sql)
			if seen[fp] {
				continue
			}
			seen[fp] = true

			if !yield(issue.Issue{
				Type:     issue.TypeOrderByWithoutLimit,
				Title:    "ORDER BY Without LIMIT",
				Severity: severityForDuration(a.cfg.Thresholds, r.Duration),
				Description: "The query sorts its full result set without a LIMIT. " +
					"If only the first rows matter, add a LIMIT so the server can stop sorting early.",
				Suggestion: &issue.Suggestion{
					Template: "order_by_limit",
					Context:  map[string]any{"sql": r.SQL},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypeOrderByWithoutLimit,
						Severity: severityForDuration(a.cfg.Thresholds, r.Duration),
						Title:    "Bound sorted result sets",
						Tags:     []string{"sql", "performance"},
					},
				},
				Queries: []query.Record{r},
			}) {
				return
			}
		}
	}
}

var dateFuncRe = regexp.MustCompile(`(?i)\b(year|month|day|hour|minute|date)\s*\(\s*([a-zA-Z_][\w.]*)\s*\)\s*(=|!=|<>|<=|>=|<|>|between|in)`)

// DateFunctionAnalyzer flags predicates that wrap a column in a date
// function (YEAR, MONTH, DATE, ...). The wrapped column cannot use its
// index; an equivalent range comparison or BETWEEN can. Severity scales
// with execution time.
type DateFunctionAnalyzer struct {
	cfg *config.Config
}

// NewDateFunctionAnalyzer creates the analyzer. cfg must not be nil.
func NewDateFunctionAnalyzer(cfg *config.Config) *DateFunctionAnalyzer {
	if cfg == nil {
		panic("analyzer: nil config")
	}
	return &DateFunctionAnalyzer{cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *DateFunctionAnalyzer) Name() string { return "date_function" }

// Analyze yields one issue per distinct function/column pair.
func (a *DateFunctionAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			sql := query.StripComments(r.SQL)

			for _, m := range dateFuncRe.FindAllStringSubmatch(sql, -1) {
				fn, column := strings.ToUpper(m[1]), m[2]
				key := fn + "(" + column + ")"
				if seen[key] {
					continue
				}
				seen[key] = true

				if !yield(issue.Issue{
					Type:     issue.TypeDateFunctionOnColumn,
					Title:    "Date Function Disables Index",
					Severity: severityForDuration(a.cfg.Thresholds, r.Duration),
					Description: fmt.Sprintf(
						"%s(%s) in a predicate prevents index usage on %s. Rewrite the condition as a range comparison or BETWEEN over the raw column.",
						fn, column, column),
					Suggestion: &issue.Suggestion{
						Template: "date_range_predicate",
						Context:  map[string]any{"function": fn, "column": column},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeDateFunctionOnColumn,
							Severity: severityForDuration(a.cfg.Thresholds, r.Duration),
							Title:    "Compare date columns by range",
							Tags:     []string{"sql", "performance", "index"},
						},
					},
					Queries: []query.Record{r},
				}) {
					return
				}
			}
		}
	}
}
