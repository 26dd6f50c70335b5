package metadata

import (
	"reflect"
	"strings"
)

// StructuralInspector answers structural questions about the runtime types
// behind persisted metadata, such as whether a field has a public mutator.
// Analyzers treat an unresolvable answer as "no issue for this item".
type StructuralInspector interface {
	// HasPublicMutator reports whether the runtime type behind t exposes a
	// public setter for the named field. The second result is false when
	// the runtime type is unknown to the inspector.
	HasPublicMutator(t TypeMetadata, fieldName string) (has, known bool)

	// UsesAuditingConvention reports whether the runtime type follows a
	// recognized created-at/updated-at auditing convention.
	UsesAuditingConvention(t TypeMetadata) bool
}

// ReflectInspector implements StructuralInspector over registered Go types
// using the reflect package. Types the host never registers are simply
// unknown, which analyzers must treat as "cannot tell".
type ReflectInspector struct {
	types map[string]reflect.Type
}

// NewReflectInspector creates an empty inspector.
func NewReflectInspector() *ReflectInspector {
	return &ReflectInspector{types: make(map[string]reflect.Type)}
}

// Register associates a metadata type name with a runtime value's type.
// A pointer value registers its element type.
func (ri *ReflectInspector) Register(name string, v any) {
	t := reflect.TypeOf(v)
	if t == nil {
		return
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	ri.types[name] = t
}

// HasPublicMutator looks for an exported SetX method on the registered
// runtime type (pointer receiver methods included).
func (ri *ReflectInspector) HasPublicMutator(t TypeMetadata, fieldName string) (bool, bool) {
	rt, ok := ri.lookup(t)
	if !ok {
		return false, false
	}

	setter := "Set" + exportedName(fieldName)
	if _, found := reflect.PointerTo(rt).MethodByName(setter); found {
		return true, true
	}
	return false, true
}

// UsesAuditingConvention reports whether the runtime type declares both
// CreatedAt and UpdatedAt fields, the convention auditing listeners hook.
func (ri *ReflectInspector) UsesAuditingConvention(t TypeMetadata) bool {
	rt, ok := ri.lookup(t)
	if !ok {
		return false
	}
	_, hasCreated := rt.FieldByName("CreatedAt")
	_, hasUpdated := rt.FieldByName("UpdatedAt")
	return hasCreated && hasUpdated
}

func (ri *ReflectInspector) lookup(t TypeMetadata) (reflect.Type, bool) {
	if rt, ok := ri.types[t.Name]; ok {
		return rt, true
	}
	rt, ok := ri.types[t.ShortName]
	return rt, ok
}

func exportedName(field string) string {
	if field == "" {
		return ""
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
