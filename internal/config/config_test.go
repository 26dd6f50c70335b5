package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Thresholds.SlowQueryCriticalMs != 100 {
		t.Errorf("SlowQueryCriticalMs = %d, want 100", cfg.Thresholds.SlowQueryCriticalMs)
	}
	if cfg.Thresholds.SlowQueryWarningMs != 20 {
		t.Errorf("SlowQueryWarningMs = %d, want 20", cfg.Thresholds.SlowQueryWarningMs)
	}
	if cfg.Thresholds.FrequentQuery != 3 || cfg.Thresholds.FrequentQueryCritical != 10 {
		t.Errorf("frequency thresholds = %d/%d, want 3/10",
			cfg.Thresholds.FrequentQuery, cfg.Thresholds.FrequentQueryCritical)
	}
	if len(cfg.IndependentEntities) == 0 || len(cfg.StaticTables) == 0 {
		t.Error("default keyword lists must not be empty")
	}
}

func TestThresholds_Durations(t *testing.T) {
	th := Thresholds{SlowQueryCriticalMs: 100, SlowQueryWarningMs: 20, LongTransactionMs: 1000}

	if th.SlowQueryCritical() != 100*time.Millisecond {
		t.Errorf("SlowQueryCritical() = %v", th.SlowQueryCritical())
	}
	if th.SlowQueryWarning() != 20*time.Millisecond {
		t.Errorf("SlowQueryWarning() = %v", th.SlowQueryWarning())
	}
	if th.LongTransaction() != time.Second {
		t.Errorf("LongTransaction() = %v", th.LongTransaction())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if cfg.Thresholds.SlowQueryCriticalMs != 100 {
		t.Errorf("missing file must yield defaults, got %+v", cfg.Thresholds)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("thresholds: [not a map"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.Thresholds.SlowQueryCriticalMs != 100 || cfg.Thresholds.FrequentQuery != 3 {
		t.Errorf("malformed file must yield defaults, got %+v", cfg.Thresholds)
	}
}

func TestLoad_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	content := `
thresholds:
  slow_query_critical_ms: 250
  frequent_query: 5
independent_entities:
  - tenant
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := Load(path)
	if cfg.Thresholds.SlowQueryCriticalMs != 250 {
		t.Errorf("SlowQueryCriticalMs = %d, want 250", cfg.Thresholds.SlowQueryCriticalMs)
	}
	if cfg.Thresholds.FrequentQuery != 5 {
		t.Errorf("FrequentQuery = %d, want 5", cfg.Thresholds.FrequentQuery)
	}
	// Untouched values keep their defaults.
	if cfg.Thresholds.SlowQueryWarningMs != 20 {
		t.Errorf("SlowQueryWarningMs = %d, want default 20", cfg.Thresholds.SlowQueryWarningMs)
	}
	if len(cfg.IndependentEntities) != 1 || cfg.IndependentEntities[0] != "tenant" {
		t.Errorf("IndependentEntities = %v, want [tenant]", cfg.IndependentEntities)
	}
}
