// Package metadata provides the normalized view of object-relational
// mapping metadata consumed by analyzers: field-to-column mappings,
// association mappings with cascade rules, and type-level facts. Providers
// normalize whatever representation the host ORM uses at this boundary so
// the analyzer core never branches on representation versions.
package metadata

import (
	"iter"
	"strings"
)

// FieldType is the declared column type vocabulary.
type FieldType string

// Declared column types.
const (
	TypeInteger    FieldType = "integer"
	TypeBigint     FieldType = "bigint"
	TypeSmallint   FieldType = "smallint"
	TypeDecimal    FieldType = "decimal"
	TypeFloat      FieldType = "float"
	TypeDouble     FieldType = "double"
	TypeString     FieldType = "string"
	TypeText       FieldType = "text"
	TypeBoolean    FieldType = "boolean"
	TypeDatetime   FieldType = "datetime"
	TypeDatetimeTz FieldType = "datetimetz"
	TypeDate       FieldType = "date"
	TypeTime       FieldType = "time"
	TypeBinary     FieldType = "binary"
	TypeArray      FieldType = "array"
	TypeJSON       FieldType = "json"
	TypeGUID       FieldType = "guid"
)

// IsIntegerFamily reports whether the type stores whole numbers.
func (t FieldType) IsIntegerFamily() bool {
	return t == TypeInteger || t == TypeBigint || t == TypeSmallint
}

// IsFloatFamily reports whether the type stores approximate numerics.
func (t FieldType) IsFloatFamily() bool {
	return t == TypeFloat || t == TypeDouble
}

// IsDatetimeFamily reports whether the type stores a point in time.
func (t FieldType) IsDatetimeFamily() bool {
	return t == TypeDatetime || t == TypeDatetimeTz || t == TypeDate || t == TypeTime
}

// FieldMapping describes one persisted scalar field.
type FieldMapping struct {
	Name       string
	ColumnName string
	Type       FieldType
	Precision  int
	Scale      int
	Nullable   bool

	// PropertyType is the language-level type of the mapped property
	// (e.g. "float64", "string", "time.Time"). Empty when the provider
	// cannot resolve it.
	PropertyType string
}

// Cardinality of an association.
type Cardinality string

// Association cardinalities.
const (
	ManyToOne  Cardinality = "ManyToOne"
	OneToMany  Cardinality = "OneToMany"
	ManyToMany Cardinality = "ManyToMany"
	OneToOne   Cardinality = "OneToOne"
)

// CascadeOp is an ORM-level propagation rule applied across an association.
type CascadeOp string

// Cascade operations. CascadeAll is the literal "all" token; some ORM
// versions expand it into the individual operations instead.
const (
	CascadePersist CascadeOp = "persist"
	CascadeRemove  CascadeOp = "remove"
	CascadeMerge   CascadeOp = "merge"
	CascadeDetach  CascadeOp = "detach"
	CascadeRefresh CascadeOp = "refresh"
	CascadeAll     CascadeOp = "all"
)

// OnDeleteAction is a database-level foreign-key action, independent of any
// ORM-level cascade configuration.
type OnDeleteAction string

// Database onDelete actions. OnDeleteNone means no constraint action is set.
const (
	OnDeleteNone     OnDeleteAction = ""
	OnDeleteCascade  OnDeleteAction = "CASCADE"
	OnDeleteSetNull  OnDeleteAction = "SET NULL"
	OnDeleteRestrict OnDeleteAction = "RESTRICT"
)

// JoinColumn describes one foreign-key column of an owning association.
type JoinColumn struct {
	Name     string
	Nullable bool
	OnDelete OnDeleteAction
}

// AssociationMapping describes one association between persisted types.
type AssociationMapping struct {
	FieldName     string
	Cardinality   Cardinality
	TargetType    string
	Cascade       []CascadeOp
	OrphanRemoval bool
	MappedBy      string
	JoinColumns   []JoinColumn
}

// HasCascade reports whether the association's cascade set contains op.
func (a AssociationMapping) HasCascade(op CascadeOp) bool {
	for _, c := range a.Cascade {
		if c == op {
			return true
		}
	}
	return false
}

// Index describes a declared table index.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// TypeMetadata is the normalized view of one persisted type. Field and
// association order follows declaration order so analysis output is
// deterministic for a fixed input.
type TypeMetadata struct {
	Name           string // fully qualified type name
	ShortName      string // declared simple name
	TableName      string
	IsAbstractBase bool
	IsEmbeddable   bool
	Fields         []FieldMapping
	Associations   []AssociationMapping
	Indexes        []Index
}

// Field returns the field mapping with the given name.
func (t TypeMetadata) Field(name string) (FieldMapping, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldMapping{}, false
}

// Association returns the association mapping with the given name.
func (t TypeMetadata) Association(name string) (AssociationMapping, bool) {
	for _, a := range t.Associations {
		if a.FieldName == name {
			return a, true
		}
	}
	return AssociationMapping{}, false
}

// HasFieldNamed reports whether a field with the given name exists,
// compared case-insensitively.
func (t TypeMetadata) HasFieldNamed(name string) bool {
	for _, f := range t.Fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Provider supplies normalized metadata to analyzers. Implementations must
// return types in a stable order and expose the canonical mapping shapes
// regardless of the underlying ORM's representation version.
type Provider interface {
	// AllTypes iterates all known persisted types in declaration order.
	AllTypes() iter.Seq[TypeMetadata]

	// TypeByName returns the metadata for a fully qualified or short name.
	TypeByName(name string) (TypeMetadata, bool)
}

// Registry is an in-memory Provider, used directly by tests and as the
// normalization target for host-ORM adapters.
type Registry struct {
	types []TypeMetadata
}

// NewRegistry creates a registry holding the given types in order.
func NewRegistry(types ...TypeMetadata) *Registry {
	owned := make([]TypeMetadata, len(types))
	copy(owned, types)
	return &Registry{types: owned}
}

// Add appends a type to the registry.
func (r *Registry) Add(t TypeMetadata) {
	r.types = append(r.types, t)
}

// AllTypes iterates the registered types in insertion order.
func (r *Registry) AllTypes() iter.Seq[TypeMetadata] {
	return func(yield func(TypeMetadata) bool) {
		for _, t := range r.types {
			if !yield(t) {
				return
			}
		}
	}
}

// TypeByName looks a type up by full name or short name.
func (r *Registry) TypeByName(name string) (TypeMetadata, bool) {
	for _, t := range r.types {
		if t.Name == name || t.ShortName == name {
			return t, true
		}
	}
	return TypeMetadata{}, false
}
