package analyzer

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
	"time"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/query"
)

var (
	beginRe    = regexp.MustCompile(`(?i)^\s*(?:begin|start\s+transaction)\b`)
	commitRe   = regexp.MustCompile(`(?i)^\s*commit\b`)
	rollbackRe = regexp.MustCompile(`(?i)^\s*rollback\b`)
	flushRe    = regexp.MustCompile(`(?i)^\s*(?:insert|update|delete)\b`)
)

// openTransaction tracks one transaction while it is on the stack.
type openTransaction struct {
	id          int
	elapsed     time.Duration
	flushes     int
	flushWarned bool
}

// TransactionAnalyzer scans the ordered record collection with an explicit
// transaction stack and reports boundary problems:
//
//   - multiple flushes: more than one INSERT/UPDATE/DELETE inside one
//     transaction (warning, once per transaction);
//   - nested BEGIN while a transaction is already open (critical);
//   - committed transactions whose accumulated statement time exceeds the
//     configured threshold (warning);
//   - transactions never committed or rolled back by the end of the
//     recording (critical, with the outstanding flush count as a
//     data-loss signal).
//
// ROLLBACK closes a transaction without any finding.
type TransactionAnalyzer struct {
	cfg *config.Config
}

// NewTransactionAnalyzer creates the analyzer. cfg must not be nil.
func NewTransactionAnalyzer(cfg *config.Config) *TransactionAnalyzer {
	if cfg == nil {
		panic("analyzer: nil config")
	}
	return &TransactionAnalyzer{cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *TransactionAnalyzer) Name() string { return "transaction" }

// Analyze runs the state machine over the records in execution order.
func (a *TransactionAnalyzer) Analyze(records *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		var stack []*openTransaction
		nextID := 1

		for r := range records.All() {
			sql := strings.TrimSpace(query.StripComments(r.SQL))

			// Statement time counts against every transaction still open.
			for _, tx := range stack {
				tx.elapsed += r.Duration
			}

			switch {
			case beginRe.MatchString(sql):
				if len(stack) > 0 {
					if !yield(a.nestedIssue(r)) {
						return
					}
				}
				stack = append(stack, &openTransaction{id: nextID})
				nextID++

			case commitRe.MatchString(sql):
				if len(stack) == 0 {
					continue
				}
				tx := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if tx.elapsed > a.cfg.Thresholds.LongTransaction() {
					if !yield(a.longRunningIssue(tx, r)) {
						return
					}
				}

			case rollbackRe.MatchString(sql):
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}

			case flushRe.MatchString(sql):
				if len(stack) == 0 {
					continue
				}
				tx := stack[len(stack)-1]
				tx.flushes++
				if tx.flushes > 1 && !tx.flushWarned {
					tx.flushWarned = true
					if !yield(a.multipleFlushIssue(tx, r)) {
						return
					}
				}
			}
		}

		for i := len(stack) - 1; i >= 0; i-- {
			if !yield(a.unclosedIssue(stack[i])) {
				return
			}
		}
	}
}

func (a *TransactionAnalyzer) nestedIssue(r query.Record) issue.Issue {
	return issue.Issue{
		Type:     issue.TypeTxNested,
		Title:    "Nested Transaction Detected",
		Severity: issue.SeverityCritical,
		Description: "BEGIN was issued while a transaction is already open. " +
			"Most platforms silently ignore the inner BEGIN, so the inner COMMIT does not actually commit and error handling around it is wrong.",
		Suggestion: &issue.Suggestion{
			Template: "flatten_transactions",
			Context:  map[string]any{},
			Meta: issue.SuggestionMeta{
				Type:     issue.TypeTxNested,
				Severity: issue.SeverityCritical,
				Title:    "Flatten nested transactions",
				Tags:     []string{"transaction"},
			},
		},
		Queries: []query.Record{r},
	}
}

func (a *TransactionAnalyzer) multipleFlushIssue(tx *openTransaction, r query.Record) issue.Issue {
	return issue.Issue{
		Type:     issue.TypeTxMultipleFlush,
		Title:    "Multiple Flushes In One Transaction",
		Severity: issue.SeverityWarning,
		Description: fmt.Sprintf(
			"Transaction #%d issued %d write statements. Batching the writes into one flush shortens lock time and round trips.",
			tx.id, tx.flushes),
		Suggestion: &issue.Suggestion{
			Template: "single_flush",
			Context:  map[string]any{"transaction": tx.id, "flushes": tx.flushes},
			Meta: issue.SuggestionMeta{
				Type:     issue.TypeTxMultipleFlush,
				Severity: issue.SeverityWarning,
				Title:    "Batch writes into one flush",
				Tags:     []string{"transaction", "performance"},
			},
		},
		Queries: []query.Record{r},
	}
}

func (a *TransactionAnalyzer) longRunningIssue(tx *openTransaction, r query.Record) issue.Issue {
	return issue.Issue{
		Type:     issue.TypeTxLongRunning,
		Title:    "Long Running Transaction",
		Severity: issue.SeverityWarning,
		Description: fmt.Sprintf(
			"Transaction #%d held its locks for %v of statement time before committing (threshold %v). Long transactions block vacuuming and other writers.",
			tx.id, tx.elapsed, a.cfg.Thresholds.LongTransaction()),
		Suggestion: &issue.Suggestion{
			Template: "shorten_transaction",
			Context:  map[string]any{"transaction": tx.id, "elapsed": tx.elapsed.String()},
			Meta: issue.SuggestionMeta{
				Type:     issue.TypeTxLongRunning,
				Severity: issue.SeverityWarning,
				Title:    "Shorten the transaction",
				Tags:     []string{"transaction", "performance"},
			},
		},
		Queries: []query.Record{r},
	}
}

func (a *TransactionAnalyzer) unclosedIssue(tx *openTransaction) issue.Issue {
	return issue.Issue{
		Type:     issue.TypeTxUnclosed,
		Title:    "Transaction Never Closed",
		Severity: issue.SeverityCritical,
		Description: fmt.Sprintf(
			"Transaction #%d was neither committed nor rolled back; %d pending write(s) will be lost when the connection drops.",
			tx.id, tx.flushes),
		Suggestion: &issue.Suggestion{
			Template: "close_transaction",
			Context:  map[string]any{"transaction": tx.id, "pendingFlushes": tx.flushes},
			Meta: issue.SuggestionMeta{
				Type:     issue.TypeTxUnclosed,
				Severity: issue.SeverityCritical,
				Title:    "Commit or roll back every transaction",
				Tags:     []string{"transaction", "correctness"},
			},
		},
	}
}
