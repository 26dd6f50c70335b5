// Package config holds the tunable knobs of the analysis engine: severity
// thresholds, repetition counts, and the keyword lists that drive name-based
// heuristics. Values ship with empirically tuned defaults and can be
// overlaid from a YAML file.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds groups numeric tuning values. Durations are configured in
// milliseconds in YAML overlays.
type Thresholds struct {
	// SlowQueryCriticalMs/SlowQueryWarningMs scale the severity of
	// execution-time-sensitive findings (LIKE patterns, unbounded ORDER BY,
	// date functions on columns).
	SlowQueryCriticalMs int `yaml:"slow_query_critical_ms"`
	SlowQueryWarningMs  int `yaml:"slow_query_warning_ms"`

	// LongTransactionMs is the accumulated statement time after which a
	// committed transaction is reported as long-running.
	LongTransactionMs int `yaml:"long_transaction_ms"`

	// FrequentQuery and FrequentQueryCritical are repetition counts of one
	// query fingerprint that trigger warning and critical findings.
	FrequentQuery         int `yaml:"frequent_query"`
	FrequentQueryCritical int `yaml:"frequent_query_critical"`

	// IndependentEntityRefs is the inbound-association count at which a
	// target type counts as an independent entity regardless of its name.
	IndependentEntityRefs int `yaml:"independent_entity_refs"`
}

// SlowQueryCritical returns the critical execution-time threshold.
func (t Thresholds) SlowQueryCritical() time.Duration {
	return time.Duration(t.SlowQueryCriticalMs) * time.Millisecond
}

// SlowQueryWarning returns the warning execution-time threshold.
func (t Thresholds) SlowQueryWarning() time.Duration {
	return time.Duration(t.SlowQueryWarningMs) * time.Millisecond
}

// LongTransaction returns the long-transaction duration threshold.
func (t Thresholds) LongTransaction() time.Duration {
	return time.Duration(t.LongTransactionMs) * time.Millisecond
}

// Config is the full tunable configuration. The keyword lists are matched
// case-insensitively against whole words of identifiers.
type Config struct {
	Thresholds Thresholds `yaml:"thresholds"`

	// IndependentEntities are type names that must never be deleted as a
	// side effect of another entity's lifecycle.
	IndependentEntities []string `yaml:"independent_entities"`

	// StaticTables are reference tables whose contents rarely change and
	// which are caching candidates.
	StaticTables []string `yaml:"static_tables"`
}

// Default returns the tuned default configuration.
func Default() *Config {
	return &Config{
		Thresholds: Thresholds{
			SlowQueryCriticalMs:   100,
			SlowQueryWarningMs:    20,
			LongTransactionMs:     1000,
			FrequentQuery:         3,
			FrequentQueryCritical: 10,
			IndependentEntityRefs: 3,
		},
		IndependentEntities: []string{
			"user", "customer", "account", "company", "organization",
			"product", "category", "order", "invoice", "supplier",
			"vendor", "employee",
		},
		StaticTables: []string{
			"countries", "currencies", "languages", "locales", "timezones",
			"settings", "configurations", "roles", "permissions",
			"statuses", "types", "units",
		},
	}
}

// Load reads a YAML overlay from path on top of the defaults.
// A missing or malformed file yields the defaults unchanged; configuration
// problems must degrade analysis tuning, never abort it.
func Load(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	overlay := *cfg
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg
	}
	return &overlay
}
