package analyzer

import (
	"fmt"
	"iter"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/query"
	"github.com/coregx/ormdoctor/internal/util"
)

// FrequentQueryAnalyzer counts occurrences of each query fingerprint and
// flags shapes executed repeatedly within one request. Three or more
// repetitions usually indicate a per-row query issued in a loop (the N+1
// pattern); at the critical threshold the loop dominates the workload.
type FrequentQueryAnalyzer struct {
	cfg *config.Config
}

// NewFrequentQueryAnalyzer creates the analyzer. cfg must not be nil.
func NewFrequentQueryAnalyzer(cfg *config.Config) *FrequentQueryAnalyzer {
	if cfg == nil {
		panic("analyzer: nil config")
	}
	return &FrequentQueryAnalyzer{cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *FrequentQueryAnalyzer) Name() string { return "frequent_query" }

// Analyze yields one issue per repeated fingerprint, in first-seen order,
// carrying every contributing record.
func (a *FrequentQueryAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		counts := make(map[string][]query.Record)
		var order []string

		for r := range records.All() {
			fp := query.Fingerprint(r.SQL)
			if _, ok := counts[fp]; !ok {
				order = append(order, fp)
			}
			counts[fp] = append(counts[fp], r)
		}

		for _, fp := range order {
			group := counts[fp]
			if len(group) < a.cfg.Thresholds.FrequentQuery {
				continue
			}

			severity := issue.SeverityWarning
			if len(group) >= a.cfg.Thresholds.FrequentQueryCritical {
				severity = issue.SeverityCritical
			}

			if !yield(issue.Issue{
				Type:     issue.TypeFrequentQuery,
				Title:    "Frequently Repeated Query",
				Severity: severity,
				Description: fmt.Sprintf(
					"The same query shape ran %d times with different values: %s. This is the N+1 pattern; fetch the rows in one query with a JOIN or an IN list, or enable eager loading.",
					len(group), fp),
				Suggestion: &issue.Suggestion{
					Template: "batch_query",
					Context:  map[string]any{"fingerprint": fp, "count": len(group)},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypeFrequentQuery,
						Severity: severity,
						Title:    "Batch the repeated query",
						Tags:     []string{"performance", "n+1"},
					},
				},
				Queries: group,
			}) {
				return
			}
		}
	}
}

// StaticTableAnalyzer flags queries against reference tables (countries,
// currencies, roles, ...) whose contents rarely change. Such lookups are
// caching candidates regardless of how often they ran.
type StaticTableAnalyzer struct {
	cfg *config.Config
}

// NewStaticTableAnalyzer creates the analyzer. cfg must not be nil.
func NewStaticTableAnalyzer(cfg *config.Config) *StaticTableAnalyzer {
	if cfg == nil {
		panic("analyzer: nil config")
	}
	return &StaticTableAnalyzer{cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *StaticTableAnalyzer) Name() string { return "static_table" }

// Analyze yields one info issue per static table queried, deduplicated by
// table name regardless of query count.
func (a *StaticTableAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		seen := make(map[string]bool)

		for r := range records.All() {
			for _, table := range query.TableNames(r.SQL) {
				if seen[table] || !a.isStaticTable(table) {
					continue
				}
				seen[table] = true

				if !yield(issue.Issue{
					Type:     issue.TypeStaticTableQuery,
					Title:    "Query Against A Static Reference Table",
					Severity: issue.SeverityInfo,
					Description: fmt.Sprintf(
						"The %s table holds reference data that rarely changes. Caching it in the application avoids a round trip on every lookup.",
						table),
					Suggestion: &issue.Suggestion{
						Template: "cache_static_table",
						Context:  map[string]any{"table": table},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeStaticTableQuery,
							Severity: issue.SeverityInfo,
							Title:    "Cache reference data",
							Tags:     []string{"performance", "cache"},
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

func (a *StaticTableAnalyzer) isStaticTable(table string) bool {
	for _, keyword := range a.cfg.StaticTables {
		if util.MatchesWord(table, keyword) {
			return true
		}
	}
	return false
}
