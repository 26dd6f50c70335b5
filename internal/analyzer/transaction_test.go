package analyzer

import (
	"strings"
	"testing"
	"time"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/query"
)

func countByType(issues []issue.Issue, tag string) int {
	n := 0
	for _, found := range issues {
		if found.Type == tag {
			n++
		}
	}
	return n
}

func TestTransactionAnalyzer_MultipleFlushes(t *testing.T) {
	records := sqlRecords(
		"BEGIN",
		"INSERT INTO audit_log (msg) VALUES ('a')",
		"INSERT INTO audit_log (msg) VALUES ('b')",
		"COMMIT",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if got := countByType(issues, issue.TypeTxMultipleFlush); got != 1 {
		t.Errorf("multiple-flush issues = %d, want 1", got)
	}
	if got := countByType(issues, issue.TypeTxUnclosed); got != 0 {
		t.Errorf("unclosed issues = %d, want 0", got)
	}
}

func TestTransactionAnalyzer_SingleFlushClean(t *testing.T) {
	records := sqlRecords(
		"BEGIN",
		"INSERT INTO audit_log (msg) VALUES ('a')",
		"COMMIT",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if len(issues) != 0 {
		t.Errorf("got %d issues, want 0: %+v", len(issues), issues)
	}
}

func TestTransactionAnalyzer_Unclosed(t *testing.T) {
	records := sqlRecords(
		"BEGIN",
		"INSERT INTO audit_log (msg) VALUES ('a')",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1: %+v", len(issues), issues)
	}

	found := issues[0]
	if found.Type != issue.TypeTxUnclosed {
		t.Errorf("Type = %q", found.Type)
	}
	if found.Severity != issue.SeverityCritical {
		t.Errorf("Severity = %v, want critical", found.Severity)
	}
	if !strings.Contains(found.Description, "1 pending write") {
		t.Errorf("Description should mention the pending flush: %q", found.Description)
	}
}

func TestTransactionAnalyzer_Nested(t *testing.T) {
	records := sqlRecords(
		"BEGIN",
		"BEGIN",
		"COMMIT",
		"COMMIT",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if got := countByType(issues, issue.TypeTxNested); got != 1 {
		t.Errorf("nested issues = %d, want exactly 1", got)
	}
	if got := countByType(issues, issue.TypeTxUnclosed); got != 0 {
		t.Errorf("unclosed issues = %d, want 0 (both committed)", got)
	}
}

func TestTransactionAnalyzer_RollbackClosesSilently(t *testing.T) {
	records := sqlRecords(
		"BEGIN",
		"INSERT INTO audit_log (msg) VALUES ('a')",
		"ROLLBACK",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if len(issues) != 0 {
		t.Errorf("rollback must close without findings, got %+v", issues)
	}
}

func TestTransactionAnalyzer_LongRunning(t *testing.T) {
	records := []query.Record{
		{SQL: "BEGIN"},
		{SQL: "UPDATE inventory SET qty = qty - 1", Duration: 700 * time.Millisecond},
		{SQL: "SELECT * FROM inventory", Duration: 600 * time.Millisecond},
		{SQL: "COMMIT"},
	}

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if got := countByType(issues, issue.TypeTxLongRunning); got != 1 {
		t.Fatalf("long-running issues = %d, want 1: %+v", got, issues)
	}
}

func TestTransactionAnalyzer_FastCommitNotFlagged(t *testing.T) {
	records := []query.Record{
		{SQL: "BEGIN"},
		{SQL: "UPDATE inventory SET qty = qty - 1", Duration: 10 * time.Millisecond},
		{SQL: "COMMIT"},
	}

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if got := countByType(issues, issue.TypeTxLongRunning); got != 0 {
		t.Errorf("long-running issues = %d, want 0", got)
	}
}

func TestTransactionAnalyzer_StatementsOutsideTransaction(t *testing.T) {
	records := sqlRecords(
		"INSERT INTO audit_log (msg) VALUES ('a')",
		"COMMIT",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if len(issues) != 0 {
		t.Errorf("statements outside any transaction must not report, got %+v", issues)
	}
}

func TestTransactionAnalyzer_StartTransactionSpelling(t *testing.T) {
	records := sqlRecords(
		"START TRANSACTION",
		"DELETE FROM sessions WHERE expired = 1",
	)

	issues := collectIssues(t, NewTransactionAnalyzer(config.Default()), records...)
	if got := countByType(issues, issue.TypeTxUnclosed); got != 1 {
		t.Errorf("unclosed issues = %d, want 1", got)
	}
}
