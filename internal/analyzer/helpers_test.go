package analyzer

import (
	"testing"

	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/query"
)

// collectIssues drains an analyzer's sequence over the given records.
func collectIssues(t *testing.T, a Analyzer, records ...query.Record) []issue.Issue {
	t.Helper()

	var issues []issue.Issue
	for found := range a.Analyze(query.NewRecordCollection(records...)) {
		issues = append(issues, found)
	}
	return issues
}

// sqlRecords builds one record per statement with zero duration.
func sqlRecords(statements ...string) []query.Record {
	records := make([]query.Record, len(statements))
	for i, s := range statements {
		records[i] = query.Record{SQL: s}
	}
	return records
}
