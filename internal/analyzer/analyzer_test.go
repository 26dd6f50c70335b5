package analyzer

import (
	"iter"
	"testing"
	"time"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/query"
)

// stubAnalyzer yields a fixed set of issues, optionally panicking first.
type stubAnalyzer struct {
	name   string
	issues []issue.Issue
	panics bool
}

func (s *stubAnalyzer) Name() string { return s.name }

func (s *stubAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		if s.panics {
			panic("stub failure")
		}
		for _, found := range s.issues {
			if !yield(found) {
				return
			}
		}
	}
}

func TestRunner_AggregatesInOrder(t *testing.T) {
	runner := NewRunner([]Analyzer{
		&stubAnalyzer{name: "first", issues: []issue.Issue{{Title: "a"}, {Title: "b"}}},
		&stubAnalyzer{name: "second", issues: []issue.Issue{{Title: "c"}}},
	}, nil)

	issues := runner.Run(query.NewRecordCollection())
	if len(issues) != 3 {
		t.Fatalf("got %d issues, want 3", len(issues))
	}
	for i, want := range []string{"a", "b", "c"} {
		if issues[i].Title != want {
			t.Errorf("issues[%d].Title = %q, want %q", i, issues[i].Title, want)
		}
	}
}

func TestRunner_IsolatesPanics(t *testing.T) {
	runner := NewRunner([]Analyzer{
		&stubAnalyzer{name: "healthy_before", issues: []issue.Issue{{Title: "before"}}},
		&stubAnalyzer{name: "broken", panics: true},
		&stubAnalyzer{name: "healthy_after", issues: []issue.Issue{{Title: "after"}}},
	}, nil)

	issues := runner.Run(query.NewRecordCollection())
	if len(issues) != 2 {
		t.Fatalf("got %d issues, want 2 (broken analyzer contributes zero)", len(issues))
	}
	if issues[0].Title != "before" || issues[1].Title != "after" {
		t.Errorf("siblings affected by panic: %+v", issues)
	}
}

func TestRunner_NilRecords(t *testing.T) {
	runner := NewRunner([]Analyzer{
		&stubAnalyzer{name: "stub", issues: []issue.Issue{{Title: "a"}}},
	}, nil)

	if got := runner.Run(nil); len(got) != 1 {
		t.Errorf("nil records: got %d issues, want 1", len(got))
	}
}

func TestRunner_Idempotent(t *testing.T) {
	runner := NewRunner([]Analyzer{
		&stubAnalyzer{name: "stub", issues: []issue.Issue{{Title: "a"}}},
	}, nil)
	records := query.NewRecordCollection(query.Record{SQL: "SELECT 1"})

	first := runner.Run(records)
	second := runner.Run(records)
	if len(first) != len(second) {
		t.Errorf("runs differ: %d vs %d issues", len(first), len(second))
	}
}

func TestSeverityForDuration(t *testing.T) {
	th := config.Default().Thresholds

	tests := []struct {
		d    time.Duration
		want issue.Severity
	}{
		{5 * time.Millisecond, issue.SeverityInfo},
		{20 * time.Millisecond, issue.SeverityWarning},
		{99 * time.Millisecond, issue.SeverityWarning},
		{100 * time.Millisecond, issue.SeverityCritical},
		{time.Second, issue.SeverityCritical},
	}

	for _, tt := range tests {
		if got := severityForDuration(th, tt.d); got != tt.want {
			t.Errorf("severityForDuration(%v) = %v, want %v", tt.d, got, tt.want)
		}
	}
}
