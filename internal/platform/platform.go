// Package platform selects platform-specific analysis strategies based on
// the detected database dialect. Supported platforms (MySQL, MariaDB,
// PostgreSQL) contribute vendor configuration analyzers; unsupported ones
// (SQLite, unknown) short-circuit to an empty analyzer set, never an error.
package platform

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/coregx/ormdoctor/internal/analyzer"
	"github.com/coregx/ormdoctor/internal/logger"
)

// Platform names returned by detectors.
const (
	MySQL      = "mysql"
	MariaDB    = "mariadb"
	PostgreSQL = "postgresql"
	SQLite     = "sqlite"
	Unknown    = "unknown"
)

// inspectTimeout bounds every configuration lookup so a stalled server
// cannot hang an analysis run.
const inspectTimeout = 5 * time.Second

// Detector identifies the database platform behind a connection.
type Detector interface {
	// PlatformName returns one of the platform name constants.
	PlatformName(ctx context.Context) (string, error)
}

// SQLDetector detects the platform from the driver name, refined by a
// version query where one driver serves several platforms (MySQL/MariaDB).
type SQLDetector struct {
	db         *sql.DB
	driverName string
}

// NewSQLDetector creates a detector. The db must not be nil.
func NewSQLDetector(db *sql.DB, driverName string) *SQLDetector {
	if db == nil {
		panic("platform: nil db")
	}
	return &SQLDetector{db: db, driverName: driverName}
}

// PlatformName implements Detector.
func (d *SQLDetector) PlatformName(ctx context.Context) (string, error) {
	switch d.driverName {
	case "mysql":
		var version string
		if err := d.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
			return Unknown, err
		}
		if strings.Contains(strings.ToLower(version), "mariadb") {
			return MariaDB, nil
		}
		return MySQL, nil
	case "postgres", "pgx":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Unknown, nil
	}
}

// Strategy bundles the analyzers appropriate for one platform.
type Strategy interface {
	// Platform returns the platform name the strategy was built for.
	Platform() string

	// Analyzers returns the platform's configuration analyzers.
	Analyzers() []analyzer.Analyzer
}

// UnsupportedStrategy is the graceful short-circuit for platforms without
// vendor analyzers. It contributes nothing and never fails.
type UnsupportedStrategy struct {
	platform string
}

// Platform returns the detected platform name.
func (s *UnsupportedStrategy) Platform() string { return s.platform }

// Analyzers returns nil.
func (s *UnsupportedStrategy) Analyzers() []analyzer.Analyzer { return nil }

// Factory builds the strategy for the detected platform. Detector faults
// degrade to the unsupported strategy: a platform that cannot be inspected
// loses vendor findings but must never abort the run.
type Factory struct {
	detector Detector
	db       *sql.DB
	log      logger.Logger
}

// NewFactory creates a strategy factory. Detector and db must not be nil;
// log may be nil.
func NewFactory(detector Detector, db *sql.DB, log logger.Logger) *Factory {
	if detector == nil || db == nil {
		panic("platform: nil collaborator")
	}
	if log == nil {
		log = &logger.NoopLogger{}
	}
	return &Factory{detector: detector, db: db, log: log}
}

// Strategy detects the platform and returns its strategy.
func (f *Factory) Strategy(ctx context.Context) Strategy {
	name, err := f.detector.PlatformName(ctx)
	if err != nil {
		f.log.Warn("platform detection failed, skipping vendor analyzers", "error", err)
		return &UnsupportedStrategy{platform: Unknown}
	}

	switch name {
	case MySQL, MariaDB:
		return newMySQLStrategy(name, f.db, f.log)
	case PostgreSQL:
		return newPostgresStrategy(f.db, f.log)
	default:
		return &UnsupportedStrategy{platform: name}
	}
}
