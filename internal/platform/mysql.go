package platform

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"

	"github.com/coregx/ormdoctor/internal/analyzer"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/logger"
	"github.com/coregx/ormdoctor/internal/query"
)

// mysqlStrategy carries the MySQL-family configuration analyzers.
// MariaDB shares the implementation but reports its own platform name.
type mysqlStrategy struct {
	platform  string
	analyzers []analyzer.Analyzer
}

func newMySQLStrategy(platform string, db *sql.DB, log logger.Logger) *mysqlStrategy {
	vars := &mysqlVariables{db: db}
	return &mysqlStrategy{
		platform: platform,
		analyzers: []analyzer.Analyzer{
			&CharsetAnalyzer{vars: vars, log: log},
			&CollationAnalyzer{vars: vars, log: log},
			&TimezoneAnalyzer{vars: vars, log: log},
			&PoolAnalyzer{vars: vars, db: db, log: log},
		},
	}
}

// Platform returns "mysql" or "mariadb".
func (s *mysqlStrategy) Platform() string { return s.platform }

// Analyzers returns the MySQL-family configuration analyzers.
func (s *mysqlStrategy) Analyzers() []analyzer.Analyzer { return s.analyzers }

// serverVariables resolves named server configuration values.
// Implementations are vendor-specific; analyzers stay cross-platform.
type serverVariables interface {
	lookup(ctx context.Context, name string) (string, error)
}

type mysqlVariables struct {
	db *sql.DB
}

func (v *mysqlVariables) lookup(ctx context.Context, name string) (string, error) {
	var ignored, value string
	err := v.db.QueryRowContext(ctx, "SHOW VARIABLES LIKE ?", name).Scan(&ignored, &value)
	if err != nil {
		return "", fmt.Errorf("read server variable %s: %w", name, err)
	}
	return value, nil
}

// CharsetAnalyzer flags server or connection character sets other than
// utf8mb4. MySQL's legacy utf8 is a 3-byte subset that rejects emoji and
// some CJK characters with a data error at insert time.
type CharsetAnalyzer struct {
	vars serverVariables
	log  logger.Logger
}

// Name identifies the analyzer in diagnostics output.
func (a *CharsetAnalyzer) Name() string { return "mysql_charset" }

// Analyze inspects character_set_server and character_set_connection.
// Lookup failures are logged and produce no findings.
func (a *CharsetAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
		defer cancel()

		for _, name := range []string{"character_set_server", "character_set_connection"} {
			value, err := a.vars.lookup(ctx, name)
			if err != nil {
				a.log.Warn("charset inspection skipped", "variable", name, "error", err)
				return
			}
			if value == "utf8mb4" {
				continue
			}

			if !yield(issue.Issue{
				Type:     issue.TypeCharsetMismatch,
				Title:    "Character Set Is Not utf8mb4",
				Severity: issue.SeverityWarning,
				Description: fmt.Sprintf(
					"%s is %q. Anything outside the basic multilingual plane (emoji included) fails to store; switch to utf8mb4.",
					name, value),
				Suggestion: &issue.Suggestion{
					Template: "utf8mb4_charset",
					Context:  map[string]any{"variable": name, "value": value},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypeCharsetMismatch,
						Severity: issue.SeverityWarning,
						Title:    "Use utf8mb4 everywhere",
						Tags:     []string{"configuration", "charset"},
					},
				},
			}) {
				return
			}
		}
	}
}

// CollationAnalyzer flags a server/connection collation mismatch, which
// forces per-comparison collation coercion and can bypass indexes on
// joined text columns.
type CollationAnalyzer struct {
	vars serverVariables
	log  logger.Logger
}

// Name identifies the analyzer in diagnostics output.
func (a *CollationAnalyzer) Name() string { return "mysql_collation" }

// Analyze compares collation_server with collation_connection.
func (a *CollationAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
		defer cancel()

		server, err := a.vars.lookup(ctx, "collation_server")
		if err != nil {
			a.log.Warn("collation inspection skipped", "error", err)
			return
		}
		connection, err := a.vars.lookup(ctx, "collation_connection")
		if err != nil {
			a.log.Warn("collation inspection skipped", "error", err)
			return
		}
		if server == connection {
			return
		}

		yield(issue.Issue{
			Type:     issue.TypeCollationMix,
			Title:    "Server And Connection Collations Differ",
			Severity: issue.SeverityWarning,
			Description: fmt.Sprintf(
				"collation_server is %q but collation_connection is %q. Mixed collations force coercion on every comparison and can disable index usage.",
				server, connection),
			Suggestion: &issue.Suggestion{
				Template: "align_collations",
				Context:  map[string]any{"server": server, "connection": connection},
				Meta: issue.SuggestionMeta{
					Type:     issue.TypeCollationMix,
					Severity: issue.SeverityWarning,
					Title:    "Align collations",
					Tags:     []string{"configuration", "collation"},
				},
			},
		})
	}
}

// TimezoneAnalyzer flags a server left on the SYSTEM timezone: datetime
// semantics then depend on the host the server happens to run on.
type TimezoneAnalyzer struct {
	vars serverVariables
	log  logger.Logger
}

// Name identifies the analyzer in diagnostics output.
func (a *TimezoneAnalyzer) Name() string { return "mysql_timezone" }

// Analyze inspects the time_zone variable.
func (a *TimezoneAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
		defer cancel()

		value, err := a.vars.lookup(ctx, "time_zone")
		if err != nil {
			a.log.Warn("timezone inspection skipped", "error", err)
			return
		}
		if !strings.EqualFold(value, "SYSTEM") {
			return
		}

		yield(issue.Issue{
			Type:     issue.TypeTimezoneDefault,
			Title:    "Server Timezone Follows The Host",
			Severity: issue.SeverityInfo,
			Description: "time_zone is SYSTEM, so datetime conversion depends on the host machine's zone. " +
				"Set an explicit zone (UTC recommended) to make stored times portable.",
			Suggestion: &issue.Suggestion{
				Template: "explicit_timezone",
				Context:  map[string]any{"value": "SYSTEM"},
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

// PoolAnalyzer compares the client pool limit with the server connection
// limit. An unbounded client pool can exhaust the server under load; a
// pool larger than max_connections guarantees connection errors.
type PoolAnalyzer struct {
	vars serverVariables
	db   *sql.DB
	log  logger.Logger
}

// Name identifies the analyzer in diagnostics output.
func (a *PoolAnalyzer) Name() string { return "mysql_pool" }

// Analyze inspects max_connections against the pool configuration.
func (a *PoolAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		ctx, cancel := context.WithTimeout(context.Background(), inspectTimeout)
		defer cancel()

		raw, err := a.vars.lookup(ctx, "max_connections")
		if err != nil {
			a.log.Warn("pool inspection skipped", "error", err)
			return
		}
		var serverMax int
		if _, err := fmt.Sscanf(raw, "%d", &serverMax); err != nil {
			a.log.Warn("pool inspection skipped", "max_connections", raw, "error", err)
			return
		}

		poolMax := a.db.Stats().MaxOpenConnections
		switch {
		case poolMax == 0:
			yield(issue.Issue{
				Type:     issue.TypePoolMisconfigured,
				Title:    "Connection Pool Is Unbounded",
				Severity: issue.SeverityWarning,
				Description: fmt.Sprintf(
					"The client pool has no MaxOpenConns limit while the server allows %d connections. Under load the application can exhaust the server; set a pool limit below max_connections.",
					serverMax),
				Suggestion: &issue.Suggestion{
					Template: "bound_pool",
					Context:  map[string]any{"serverMax": serverMax},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypePoolMisconfigured,
						Severity: issue.SeverityWarning,
						Title:    "Bound the connection pool",
						Tags:     []string{"configuration", "pool"},
					},
				},
			})
		case poolMax > serverMax:
			yield(issue.Issue{
				Type:     issue.TypePoolMisconfigured,
				Title:    "Connection Pool Exceeds Server Limit",
				Severity: issue.SeverityWarning,
				Description: fmt.Sprintf(
					"The client pool allows %d connections but the server caps at %d; the surplus connections can only fail.",
					poolMax, serverMax),
				Suggestion: &issue.Suggestion{
					Template: "bound_pool",
					Context:  map[string]any{"poolMax": poolMax, "serverMax": serverMax},
					Meta: issue.SuggestionMeta{
						Type:     issue.TypePoolMisconfigured,
						Severity: issue.SeverityWarning,
						Title:    "Bound the connection pool",
						Tags:     []string{"configuration", "pool"},
					},
				},
			})
		}
	}
}
