package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	adapter.Debug("debug msg", "k", 1)
	adapter.Info("info msg", "k", 2)
	adapter.Warn("warn msg", "k", 3)
	adapter.Error("error msg", "k", 4)

	out := buf.String()
	for _, want := range []string{"debug msg", "info msg", "warn msg", "error msg", "k=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNoopLogger(t *testing.T) {
	var l Logger = &NoopLogger{}
	// Must be callable without side effects or panics.
	l.Debug("a")
	l.Info("b", "k", 1)
	l.Warn("c")
	l.Error("d")
}
