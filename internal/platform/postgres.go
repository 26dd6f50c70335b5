package platform

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/coregx/ormdoctor/internal/analyzer"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/logger"
	"github.com/coregx/ormdoctor/internal/query"
)

// postgresStrategy carries the PostgreSQL configuration analyzers.
// Charset problems are rare on PostgreSQL (UTF8 is the norm), so the
// strategy focuses on timezone and pool sizing.
type postgresStrategy struct {
	analyzers []analyzer.Analyzer
}

func newPostgresStrategy(db *sql.DB, log logger.Logger) *postgresStrategy {
	vars := &postgresVariables{db: db}
	return &postgresStrategy{
		analyzers: []analyzer.Analyzer{
			&PostgresTimezoneAnalyzer{vars: vars, log: log},
			&PoolAnalyzer{vars: vars, db: db, log: log},
		},
	}
}

// Platform returns "postgresql".
func (s *postgresStrategy) Platform() string { return PostgreSQL }

// Analyzers returns the PostgreSQL configuration analyzers.
func (s *postgresStrategy) Analyzers() []analyzer.Analyzer { return s.analyzers }

type postgresVariables struct {
	db *sql.DB
}

func (v *postgresVariables) lookup(ctx context.Context, name string) (string, error) {
	var value string
	err := v.db.QueryRowContext(ctx, "SELECT current_setting($1)", name).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("read setting %s: %w", name, err)
	}
	return value, nil
}

// PostgresTimezoneAnalyzer flags a server whose TimeZone follows the host
// ("localtime"), making timestamp semantics environment-dependent.
type PostgresTimezoneAnalyzer struct {
	vars serverVariables
	log  logger.Logger
}

// Name identifies the analyzer in diagnostics output.
func (a *PostgresTimezoneAnalyzer) Name() string { return "postgres_timezone" }

// Analyze inspects the TimeZone setting.
func (a *PostgresTimezoneAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
		defer cancel()

		value, err := a.vars.lookup(ctx, "TimeZone")
		if err != nil {
			a.log.Warn("timezone inspection skipped", "error", err)
			return
		}
		if value != "localtime" && value != "" {
			return
		}

		yield(issue.Issue{
			Type:     issue.TypeTimezoneDefault,
			Title:    "Server Timezone Follows The Host",
			Severity: issue.SeverityInfo,
			Description: "TimeZone resolves to the host machine's zone. " +
				"Set an explicit zone (UTC recommended) so timestamptz rendering does not change between environments.",
			Suggestion: &issue.Suggestion{
				Template: "explicit_timezone",
				Context:  map[string]any{"value": value},
				Meta: issue.SuggestionMeta{
					Type:     issue.TypeTimezoneDefault,
					Severity: issue.SeverityInfo,
					Title:    "Pin the server timezone",
					Tags:     []string{"configuration", "timezone"},
				},
			},
		})
	}
}

var _ serverVariables = (*postgresVariables)(nil)
