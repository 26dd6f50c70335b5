package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// Host ORMs expose mapping metadata in two representations: an older
// array-keyed shape (string-keyed maps, as produced by legacy metadata
// dumps) and a newer attribute shape (typed descriptors). Both are
// normalized here, at the provider boundary, into the canonical
// FieldMapping/AssociationMapping structs; the analyzer core never sees
// the raw representations.

// ErrUnknownRepresentation is returned when raw metadata is neither the
// legacy map shape nor a descriptor.
var ErrUnknownRepresentation = errors.New("unknown metadata representation")

// FieldDescriptor is the newer attribute-based raw field shape.
type FieldDescriptor struct {
	Name         string
	Column       string
	Type         string
	Precision    int
	Scale        int
	Nullable     bool
	PropertyType string
}

// AssociationDescriptor is the newer attribute-based raw association shape.
type AssociationDescriptor struct {
	Field         string
	Cardinality   string
	Target        string
	Cascade       []string
	OrphanRemoval bool
	MappedBy      string
	JoinColumns   []JoinColumnDescriptor
}

// JoinColumnDescriptor is the raw join-column shape.
type JoinColumnDescriptor struct {
	Name     string
	Nullable bool
	OnDelete string
}

// NormalizeField converts raw field metadata in either representation to
// the canonical FieldMapping.
func NormalizeField(raw any) (FieldMapping, error) {
	switch v := raw.(type) {
	case FieldDescriptor:
		return fieldFromDescriptor(v), nil
	case *FieldDescriptor:
		return fieldFromDescriptor(*v), nil
	case map[string]any:
		return fieldFromLegacy(v)
	default:
		return FieldMapping{}, fmt.Errorf("field metadata: %w (%T)", ErrUnknownRepresentation, raw)
	}
}

func fieldFromDescriptor(d FieldDescriptor) FieldMapping {
	column := d.Column
	if column == "" {
		column = d.Name
	}
	return FieldMapping{
		Name:         d.Name,
		ColumnName:   column,
		Type:         FieldType(strings.ToLower(d.Type)),
		Precision:    d.Precision,
		Scale:        d.Scale,
		Nullable:     d.Nullable,
		PropertyType: d.PropertyType,
	}
}

// fieldFromLegacy normalizes the array-keyed shape. Legacy dumps key the
// field name as "fieldName" and the column as "columnName"; both fall back
// to "name"/"column" spellings seen in older exports.
func fieldFromLegacy(m map[string]any) (FieldMapping, error) {
	name := legacyString(m, "fieldName", "name")
	if name == "" {
		return FieldMapping{}, fmt.Errorf("legacy field metadata without fieldName: %w", ErrUnknownRepresentation)
	}

	column := legacyString(m, "columnName", "column")
	if column == "" {
		column = name
	}

	return FieldMapping{
		Name:         name,
		ColumnName:   column,
		Type:         FieldType(strings.ToLower(legacyString(m, "type"))),
		Precision:    legacyInt(m, "precision"),
		Scale:        legacyInt(m, "scale"),
		Nullable:     legacyBool(m, "nullable"),
		PropertyType: legacyString(m, "propertyType", "declared"),
	}, nil
}

// NormalizeAssociation converts raw association metadata in either
// representation to the canonical AssociationMapping.
func NormalizeAssociation(raw any) (AssociationMapping, error) {
	switch v := raw.(type) {
	case AssociationDescriptor:
		return associationFromDescriptor(v), nil
	case *AssociationDescriptor:
		return associationFromDescriptor(*v), nil
	case map[string]any:
		return associationFromLegacy(v)
	default:
		return AssociationMapping{}, fmt.Errorf("association metadata: %w (%T)", ErrUnknownRepresentation, raw)
	}
}

func associationFromDescriptor(d AssociationDescriptor) AssociationMapping {
	cascade := make([]CascadeOp, 0, len(d.Cascade))
	for _, c := range d.Cascade {
		cascade = append(cascade, CascadeOp(strings.ToLower(c)))
	}

	joins := make([]JoinColumn, 0, len(d.JoinColumns))
	for _, jc := range d.JoinColumns {
		joins = append(joins, JoinColumn{
			Name:     jc.Name,
			Nullable: jc.Nullable,
			OnDelete: normalizeOnDelete(jc.OnDelete),
		})
	}

	return AssociationMapping{
		FieldName:     d.Field,
		Cardinality:   normalizeCardinality(d.Cardinality),
		TargetType:    d.Target,
		Cascade:       cascade,
		OrphanRemoval: d.OrphanRemoval,
		MappedBy:      d.MappedBy,
		JoinColumns:   joins,
	}
}

func associationFromLegacy(m map[string]any) (AssociationMapping, error) {
	name := legacyString(m, "fieldName", "field")
	if name == "" {
		return AssociationMapping{}, fmt.Errorf("legacy association metadata without fieldName: %w", ErrUnknownRepresentation)
	}

	var cascade []CascadeOp
	if raw, ok := m["cascade"].([]any); ok {
		for _, c := range raw {
			if s, ok := c.(string); ok {
				cascade = append(cascade, CascadeOp(strings.ToLower(s)))
			}
		}
	}

	var joins []JoinColumn
	if raw, ok := m["joinColumns"].([]any); ok {
		for _, j := range raw {
			jm, ok := j.(map[string]any)
			if !ok {
				continue
			}
			joins = append(joins, JoinColumn{
				Name:     legacyString(jm, "name"),
				Nullable: legacyBool(jm, "nullable"),
				OnDelete: normalizeOnDelete(legacyString(jm, "onDelete")),
			})
		}
	}

	return AssociationMapping{
		FieldName:     name,
		Cardinality:   normalizeCardinality(legacyString(m, "type", "cardinality")),
		TargetType:    legacyString(m, "targetEntity", "target"),
		Cascade:       cascade,
		OrphanRemoval: legacyBool(m, "orphanRemoval"),
		MappedBy:      legacyString(m, "mappedBy"),
		JoinColumns:   joins,
	}, nil
}

func normalizeCardinality(raw string) Cardinality {
	switch strings.ToLower(strings.ReplaceAll(raw, "_", "")) {
	case "manytoone", "2": // legacy dumps encode cardinality numerically
		return ManyToOne
	case "onetomany", "4":
		return OneToMany
	case "manytomany", "8":
		return ManyToMany
	case "onetoone", "1":
		return OneToOne
	default:
		return Cardinality(raw)
	}
}

func normalizeOnDelete(raw string) OnDeleteAction {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "CASCADE":
		return OnDeleteCascade
	case "SET NULL", "SETNULL", "SET_NULL":
		return OnDeleteSetNull
	case "RESTRICT", "NO ACTION":
		return OnDeleteRestrict
	default:
		return OnDeleteNone
	}
}

func legacyString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func legacyInt(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func legacyBool(m map[string]any, key string) bool {
	b, _ := m[key].(bool)
	return b
}
