// Package recorder captures executed SQL statements into the record
// collection the analyzers consume. Each observation keeps the statement,
// its sanitized parameters, the execution time, and the application call
// site, and optionally emits an OpenTelemetry span.
package recorder

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/coregx/ormdoctor/internal/logger"
	"github.com/coregx/ormdoctor/internal/query"
)

// maxBacktraceDepth bounds the captured call stack per observation.
const maxBacktraceDepth = 32

// Tracer starts spans for observed statements.
// Implementations can bridge to OpenTelemetry or stay inert.
type Tracer interface {
	// StartSpan starts a span with the given name.
	StartSpan(ctx context.Context, name string) (context.Context, Span)
}

// Span receives the attributes of one observed statement.
type Span interface {
	// SetAttributes sets key-value attributes on the span.
	SetAttributes(attrs ...attribute.KeyValue)
	// RecordError records an execution error.
	RecordError(err error)
	// SetStatus sets the span status.
	SetStatus(code codes.Code, description string)
	// End completes the span.
	End()
}

// NoopTracer is the default tracer; it has zero overhead.
type NoopTracer struct{}

// StartSpan returns the context unchanged with a no-op span.
func (n *NoopTracer) StartSpan(ctx context.Context, _ string) (context.Context, Span) {
	return ctx, &NoopSpan{}
}

// NoopSpan is a span that does nothing.
type NoopSpan struct{}

// SetAttributes does nothing.
func (n *NoopSpan) SetAttributes(_ ...attribute.KeyValue) {}

// RecordError does nothing.
func (n *NoopSpan) RecordError(_ error) {}

// SetStatus does nothing.
func (n *NoopSpan) SetStatus(_ codes.Code, _ string) {}

// End does nothing.
func (n *NoopSpan) End() {}

// OtelTracer adapts an OpenTelemetry tracer to the Tracer interface.
type OtelTracer struct {
	tracer trace.Tracer
}

// NewOtelTracer creates the adapter. The tracer must not be nil.
func NewOtelTracer(tracer trace.Tracer) *OtelTracer {
	return &OtelTracer{tracer: tracer}
}

// StartSpan starts an OpenTelemetry span.
func (t *OtelTracer) StartSpan(ctx context.Context, name string) (context.Context, Span) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, &otelSpan{span: span}
}

type otelSpan struct {
	span trace.Span
}

func (s *otelSpan) SetAttributes(attrs ...attribute.KeyValue) { s.span.SetAttributes(attrs...) }
func (s *otelSpan) RecordError(err error)                     { s.span.RecordError(err) }
func (s *otelSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}
func (s *otelSpan) End() { s.span.End() }

// Recorder accumulates observed statements. It is safe for concurrent use:
// observations from multiple goroutines are appended in arrival order.
type Recorder struct {
	mu      sync.Mutex
	records []query.Record

	sanitizer *logger.Sanitizer
	tracer    Tracer
	log       logger.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithSanitizer replaces the default parameter sanitizer.
func WithSanitizer(s *logger.Sanitizer) Option {
	return func(r *Recorder) {
		if s != nil {
			r.sanitizer = s
		}
	}
}

// WithTracer emits one span per observed statement.
func WithTracer(t Tracer) Option {
	return func(r *Recorder) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Recorder) {
		if l != nil {
			r.log = l
		}
	}
}

// New creates a recorder. Without options it sanitizes with the default
// sensitive-column set, traces nowhere, and logs nowhere.
func New(opts ...Option) *Recorder {
	r := &Recorder{
		sanitizer: logger.NewSanitizer(nil),
		tracer:    &NoopTracer{},
		log:       &logger.NoopLogger{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Observe records one executed statement. Parameters referencing sensitive
// columns are masked before retention. execErr, when non-nil, is reflected
// on the emitted span but the statement is recorded either way: failed
// queries are still evidence for the analyzers.
func (r *Recorder) Observe(ctx context.Context, sql string, params []any, duration time.Duration, execErr error) {
	masked := r.sanitizer.MaskParams(sql, params)
	operation := detectOperation(sql)

	_, span := r.tracer.StartSpan(ctx, "ormdoctor.query "+operation)
	span.SetAttributes(
		attribute.String("db.statement", sql),
		attribute.String("db.operation", operation),
		attribute.String("db.params", r.sanitizer.FormatParams(masked)),
		attribute.Float64("db.duration_ms", float64(duration.Microseconds())/1000.0),
	)
	if execErr != nil {
		span.RecordError(execErr)
		span.SetStatus(codes.Error, execErr.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	record := query.Record{
		SQL:       sql,
		Duration:  duration,
		Params:    masked,
		Backtrace: captureBacktrace(),
	}

	r.mu.Lock()
	r.records = append(r.records, record)
	r.mu.Unlock()

	r.log.Debug("statement observed", "operation", operation, "duration", duration)
}

// Len returns the number of observed statements.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Snapshot returns the observations so far as an immutable collection.
// Later observations do not affect an already-taken snapshot.
func (r *Recorder) Snapshot() *query.RecordCollection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return query.NewRecordCollection(r.records...)
}

// Reset discards all observations.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.records = nil
	r.mu.Unlock()
}

// captureBacktrace walks the caller stack, skipping runtime internals and
// this package's own frames so the first frame is the application call site.
func captureBacktrace() []query.Frame {
	pcs := make([]uintptr, maxBacktraceDepth)
	// Skip runtime.Callers, this function, and Observe.
	n := runtime.Callers(3, pcs)
	if n == 0 {
		return nil
	}

	frames := runtime.CallersFrames(pcs[:n])
	trace := make([]query.Frame, 0, n)
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			trace = append(trace, query.Frame{
				Function: frame.Function,
				File:     frame.File,
				Line:     frame.Line,
			})
		}
		if !more {
			break
		}
	}
	return trace
}

// detectOperation classifies the statement for the span name.
func detectOperation(sql string) string {
	sql = strings.TrimSpace(strings.ToUpper(sql))
	switch {
	case strings.HasPrefix(sql, "SELECT"), strings.HasPrefix(sql, "WITH"):
		return "SELECT"
	case strings.HasPrefix(sql, "INSERT"):
		return "INSERT"
	case strings.HasPrefix(sql, "UPDATE"):
		return "UPDATE"
	case strings.HasPrefix(sql, "DELETE"):
		return "DELETE"
	case strings.HasPrefix(sql, "BEGIN"), strings.HasPrefix(sql, "START"):
		return "BEGIN"
	case strings.HasPrefix(sql, "COMMIT"):
		return "COMMIT"
	case strings.HasPrefix(sql, "ROLLBACK"):
		return "ROLLBACK"
	default:
		return "OTHER"
	}
}
