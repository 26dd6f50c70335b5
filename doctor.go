// Package ormdoctor is a rule-based diagnostic engine for ORM-mapped
// applications. It inspects mapping metadata and recorded SQL traffic,
// detects schema, query, transaction, and configuration problems, and
// reports them as severity-tagged issues with actionable suggestions.
package ormdoctor

import (
	"github.com/coregx/ormdoctor/internal/analyzer"
	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/logger"
	"github.com/coregx/ormdoctor/internal/metadata"
	"github.com/coregx/ormdoctor/internal/platform"
	"github.com/coregx/ormdoctor/internal/query"
	"github.com/coregx/ormdoctor/internal/recorder"
)

type (
	// Issue is a single diagnostic finding.
	Issue = issue.Issue
	// Severity ranks findings from informational to critical.
	Severity = issue.Severity
	// Suggestion carries the remediation attached to an issue.
	Suggestion = issue.Suggestion
	// SuggestionMeta classifies a suggestion for downstream renderers.
	SuggestionMeta = issue.SuggestionMeta

	// Record is one observed SQL statement.
	Record = query.Record
	// RecordCollection is an ordered, re-iterable set of records.
	RecordCollection = query.RecordCollection
	// Frame is one call site in a record's backtrace.
	Frame = query.Frame

	// TypeMetadata describes one mapped type.
	TypeMetadata = metadata.TypeMetadata
	// FieldMapping describes one mapped scalar field.
	FieldMapping = metadata.FieldMapping
	// FieldType is the declared column type vocabulary.
	FieldType = metadata.FieldType
	// AssociationMapping describes one mapped relation.
	AssociationMapping = metadata.AssociationMapping
	// Cardinality of an association.
	Cardinality = metadata.Cardinality
	// CascadeOp is an ORM-level propagation rule.
	CascadeOp = metadata.CascadeOp
	// OnDeleteAction is a database-level foreign-key action.
	OnDeleteAction = metadata.OnDeleteAction
	// JoinColumn describes one foreign-key column.
	JoinColumn = metadata.JoinColumn
	// Index describes a declared table index.
	Index = metadata.Index
	// Provider supplies mapping metadata to the analyzers.
	Provider = metadata.Provider
	// Registry is the in-memory Provider implementation.
	Registry = metadata.Registry

	// Analyzer is the extension point for custom detection rules.
	Analyzer = analyzer.Analyzer
	// Config carries thresholds and tunable word lists.
	Config = config.Config
	// Thresholds holds the numeric tuning knobs.
	Thresholds = config.Thresholds
	// Logger receives engine diagnostics.
	Logger = logger.Logger
	// Recorder captures executed statements for later analysis.
	Recorder = recorder.Recorder
)

// Severity levels.
const (
	SeverityInfo     = issue.SeverityInfo
	SeverityWarning  = issue.SeverityWarning
	SeverityCritical = issue.SeverityCritical
)

// Declared column types.
const (
	TypeInteger    = metadata.TypeInteger
	TypeBigint     = metadata.TypeBigint
	TypeSmallint   = metadata.TypeSmallint
	TypeDecimal    = metadata.TypeDecimal
	TypeFloat      = metadata.TypeFloat
	TypeDouble     = metadata.TypeDouble
	TypeString     = metadata.TypeString
	TypeText       = metadata.TypeText
	TypeBoolean    = metadata.TypeBoolean
	TypeDatetime   = metadata.TypeDatetime
	TypeDatetimeTz = metadata.TypeDatetimeTz
	TypeDate       = metadata.TypeDate
	TypeTime       = metadata.TypeTime
	TypeBinary     = metadata.TypeBinary
	TypeArray      = metadata.TypeArray
	TypeJSON       = metadata.TypeJSON
	TypeGUID       = metadata.TypeGUID
)

// Association cardinalities.
const (
	ManyToOne  = metadata.ManyToOne
	OneToMany  = metadata.OneToMany
	ManyToMany = metadata.ManyToMany
	OneToOne   = metadata.OneToOne
)

// Cascade operations.
const (
	CascadePersist = metadata.CascadePersist
	CascadeRemove  = metadata.CascadeRemove
	CascadeMerge   = metadata.CascadeMerge
	CascadeDetach  = metadata.CascadeDetach
	CascadeRefresh = metadata.CascadeRefresh
	CascadeAll     = metadata.CascadeAll
)

// Database onDelete actions.
const (
	OnDeleteNone     = metadata.OnDeleteNone
	OnDeleteCascade  = metadata.OnDeleteCascade
	OnDeleteSetNull  = metadata.OnDeleteSetNull
	OnDeleteRestrict = metadata.OnDeleteRestrict
)

// Re-export constructors.
var (
	NewRegistry         = metadata.NewRegistry
	NewReflectInspector = metadata.NewReflectInspector
	NewRecordCollection = query.NewRecordCollection
	NewRecorder         = recorder.New
	NewSlogAdapter      = logger.NewSlogAdapter
	DefaultConfig       = config.Default
	LoadConfig          = config.Load
	NewSQLDetector      = platform.NewSQLDetector
	NewPlatformFactory  = platform.NewFactory
)

// Doctor bundles the full default rule set behind one entry point.
// Construct it once per metadata source and reuse it across analysis runs;
// runs are independent and produce no shared state.
type Doctor struct {
	cfg    *config.Config
	runner *analyzer.Runner
}

type doctorOptions struct {
	cfg       *config.Config
	log       logger.Logger
	inspector metadata.StructuralInspector
	strategy  platform.Strategy
	extra     []analyzer.Analyzer
}

// DoctorOption configures a Doctor.
type DoctorOption func(*doctorOptions)

// WithConfig replaces the default thresholds and word lists.
func WithConfig(cfg *config.Config) DoctorOption {
	return func(o *doctorOptions) {
		if cfg != nil {
			o.cfg = cfg
		}
	}
}

// WithLogger sets the diagnostics logger. Findings are unaffected.
func WithLogger(log logger.Logger) DoctorOption {
	return func(o *doctorOptions) {
		if log != nil {
			o.log = log
		}
	}
}

// WithInspector supplies the structural inspector used to detect public
// setters on identifier fields. Without it, setter checks are skipped.
func WithInspector(inspector metadata.StructuralInspector) DoctorOption {
	return func(o *doctorOptions) {
		if inspector != nil {
			o.inspector = inspector
		}
	}
}

// WithPlatformStrategy appends the platform's configuration analyzers,
// typically obtained from a platform Factory.
func WithPlatformStrategy(s platform.Strategy) DoctorOption {
	return func(o *doctorOptions) {
		if s != nil {
			o.strategy = s
		}
	}
}

// WithAnalyzers appends custom analyzers after the built-in rule set.
func WithAnalyzers(analyzers ...analyzer.Analyzer) DoctorOption {
	return func(o *doctorOptions) {
		o.extra = append(o.extra, analyzers...)
	}
}

// New creates a Doctor with the full built-in rule set over the given
// metadata provider. The provider must not be nil.
func New(provider metadata.Provider, opts ...DoctorOption) *Doctor {
	if provider == nil {
		panic("ormdoctor: nil metadata provider")
	}

	o := doctorOptions{
		cfg:       config.Default(),
		log:       &logger.NoopLogger{},
		inspector: metadata.NewReflectInspector(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	analyzers := []analyzer.Analyzer{
		analyzer.NewForeignKeyAnalyzer(provider),
		analyzer.NewMoneyFieldAnalyzer(provider),
		analyzer.NewTypeMismatchAnalyzer(provider),
		analyzer.NewMutableIdentifierAnalyzer(provider, o.inspector, o.log),
		analyzer.NewEmbeddableAnalyzer(provider),
		analyzer.NewDangerousCascadeAnalyzer(provider, o.cfg),
		analyzer.NewOrphanRemovalAnalyzer(provider),
		analyzer.NewCascadeDBMismatchAnalyzer(provider),
		analyzer.NewNamingConventionAnalyzer(provider),
		analyzer.NewDivisionByZeroAnalyzer(),
		analyzer.NewNullComparisonAnalyzer(),
		analyzer.NewJoinAnalyzer(),
		analyzer.NewLikeAnalyzer(o.cfg),
		analyzer.NewOrderByAnalyzer(o.cfg),
		analyzer.NewDateFunctionAnalyzer(o.cfg),
		analyzer.NewFrequentQueryAnalyzer(o.cfg),
		analyzer.NewStaticTableAnalyzer(o.cfg),
		analyzer.NewTransactionAnalyzer(o.cfg),
	}
	if o.strategy != nil {
		analyzers = append(analyzers, o.strategy.Analyzers()...)
	}
	analyzers = append(analyzers, o.extra...)

	return &Doctor{
		cfg:    o.cfg,
		runner: analyzer.NewRunner(analyzers, o.log),
	}
}

// Config returns the active configuration.
func (d *Doctor) Config() *config.Config {
	return d.cfg
}

// Analyzers returns the assembled analyzers in execution order.
func (d *Doctor) Analyzers() []analyzer.Analyzer {
	return d.runner.Analyzers()
}

// Analyze runs every analyzer against the records and returns all findings
// in rule order. A nil collection analyzes metadata only.
func (d *Doctor) Analyze(records *query.RecordCollection) []issue.Issue {
	return d.runner.Run(records)
}
