// Package analyzer implements the diagnostic engine core: the Analyzer
// contract every detection unit implements, the Runner that executes a
// configured set of analyzers, and the concrete analyzers covering mapping
// metadata, SQL query patterns, transaction boundaries, and naming
// conventions.
package analyzer

import (
	"iter"
	"time"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/logger"
	"github.com/coregx/ormdoctor/internal/query"
)

// Analyzer is the uniform extension point. Analyze inspects the supplied
// query records (and whatever collaborators the analyzer was constructed
// with) and lazily yields findings.
//
// The returned sequence is finite, recomputed on every call, and safe to
// abandon early; analyzers hold no resources across yield points and no
// state across runs. Metadata-only analyzers ignore the record collection
// entirely; query-only analyzers ignore their metadata collaborators.
type Analyzer interface {
	// Name identifies the analyzer in diagnostics output.
	Name() string

	// Analyze yields zero or more issues for the given records.
	Analyze(records *query.RecordCollection) iter.Seq[issue.Issue]
}

// Runner executes a configured list of analyzers over one shared record
// collection and aggregates their findings. A fault inside one analyzer is
// caught at its boundary, logged, and degrades that analyzer's contribution
// to zero issues; sibling analyzers always run.
type Runner struct {
	analyzers []Analyzer
	log       logger.Logger
}

// NewRunner creates a runner for the given analyzers.
// A nil log disables diagnostics without affecting results.
func NewRunner(analyzers []Analyzer, log logger.Logger) *Runner {
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Runner{analyzers: analyzers, log: log}
}

// Analyzers returns the configured analyzers in execution order.
func (r *Runner) Analyzers() []Analyzer {
	return r.analyzers
}

// Run executes every analyzer against records and returns all findings in
// analyzer registration order.
func (r *Runner) Run(records *query.RecordCollection) []issue.Issue {
	if records == nil {
		records = query.NewRecordCollection()
	}

	var issues []issue.Issue
	for _, a := range r.analyzers {
		issues = append(issues, r.collect(a, records)...)
	}
	return issues
}

// collect drains one analyzer's sequence behind a recover boundary.
func (r *Runner) collect(a Analyzer, records *query.RecordCollection) (out []issue.Issue) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("analyzer failed, skipping its findings",
				"analyzer", a.Name(), "panic", p)
			out = nil
		}
	}()

	for found := range a.Analyze(records) {
		out = append(out, found)
	}
	return out
}

// emptySeq is the sequence returned when an analyzer has nothing to report
// or short-circuits on an unsupported platform.
func emptySeq(yield func(issue.Issue) bool) {}

var _ iter.Seq[issue.Issue] = emptySeq

// severityForDuration scales a finding's severity with the measured
// execution time of the offending query.
func severityForDuration(t config.Thresholds, d time.Duration) issue.Severity {
	switch {
	case d >= t.SlowQueryCritical():
		return issue.SeverityCritical
	case d >= t.SlowQueryWarning():
		return issue.SeverityWarning
	default:
		return issue.SeverityInfo
	}
}
