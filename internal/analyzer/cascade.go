package analyzer

import (
	"fmt"
	"iter"

	"github.com/coregx/ormdoctor/internal/config"
	"github.com/coregx/ormdoctor/internal/issue"
	"github.com/coregx/ormdoctor/internal/metadata"
	"github.com/coregx/ormdoctor/internal/query"
	"github.com/coregx/ormdoctor/internal/util"
)

// canonicalCascades are the five operations "all" expands to.
var canonicalCascades = map[metadata.CascadeOp]bool{
	metadata.CascadePersist: true,
	metadata.CascadeRemove:  true,
	metadata.CascadeMerge:   true,
	metadata.CascadeDetach:  true,
	metadata.CascadeRefresh: true,
}

// hasCascadeAll reports whether the cascade set is effectively "all":
// either the literal token, or at least 4 of the 5 canonical operations
// with nothing extraneous. The 4-of-5 tolerance covers platform versions
// whose expansion of "all" omits "merge".
func hasCascadeAll(ops []metadata.CascadeOp) bool {
	matched := make(map[metadata.CascadeOp]bool)
	for _, op := range ops {
		if op == metadata.CascadeAll {
			return true
		}
		if !canonicalCascades[op] {
			return false
		}
		matched[op] = true
	}
	return len(matched) >= 4
}

// hasCascadeRemove reports whether deletion propagates across the
// association, through either cascade=remove or an effective cascade-all.
func hasCascadeRemove(ops []metadata.CascadeOp) bool {
	for _, op := range ops {
		if op == metadata.CascadeRemove || op == metadata.CascadeAll {
			return true
		}
	}
	return hasCascadeAll(ops)
}

// DangerousCascadeAnalyzer flags cascade="all" or cascade="remove" on
// ManyToOne and ManyToMany associations: deleting one owner then deletes a
// target that other records may still reference.
//
// Severity rule: critical when the target is an independent entity (its
// name matches the configured keyword list, or it is referenced by at
// least the configured number of other types); warning otherwise.
type DangerousCascadeAnalyzer struct {
	provider metadata.Provider
	cfg      *config.Config
}

// NewDangerousCascadeAnalyzer creates the analyzer.
// Provider and cfg must not be nil.
func NewDangerousCascadeAnalyzer(provider metadata.Provider, cfg *config.Config) *DangerousCascadeAnalyzer {
	if provider == nil || cfg == nil {
		panic("analyzer: nil collaborator")
	}
	return &DangerousCascadeAnalyzer{provider: provider, cfg: cfg}
}

// Name identifies the analyzer in diagnostics output.
func (a *DangerousCascadeAnalyzer) Name() string { return "dangerous_cascade" }

// Analyze yields one issue per dangerous association. The inbound-reference
// graph is rebuilt on every call; nothing is cached across runs.
func (a *DangerousCascadeAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		inbound := a.inboundCounts()

		for t := range a.provider.AllTypes() {
			for _, assoc := range t.Associations {
				if assoc.Cardinality != metadata.ManyToOne && assoc.Cardinality != metadata.ManyToMany {
					continue
				}

				var token string
				switch {
				case hasCascadeAll(assoc.Cascade):
					token = "all"
				case assoc.HasCascade(metadata.CascadeRemove):
					token = "remove"
				default:
					continue
				}

				severity := issue.SeverityWarning
				if a.isIndependent(assoc.TargetType, inbound) {
					severity = issue.SeverityCritical
				}

				if !yield(issue.Issue{
					Type:     issue.TypeCascadeDangerous,
					Title:    fmt.Sprintf("Dangerous cascade=%q Detected", token),
					Severity: severity,
					Description: fmt.Sprintf(
						"%s.%s cascades %s across a %s association to %s. Deleting one %s would delete the referenced %s even though other records may still point at it.",
						t.ShortName, assoc.FieldName, token, assoc.Cardinality, assoc.TargetType, t.ShortName, assoc.TargetType),
					Suggestion: &issue.Suggestion{
						Template: "remove_cascade",
						Context: map[string]any{
							"type":    t.ShortName,
							"field":   assoc.FieldName,
							"target":  assoc.TargetType,
							"cascade": token,
						},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeCascadeDangerous,
							Severity: severity,
							Title:    "Drop the delete cascade",
							Tags:     []string{"integrity", "cascade"},
						},
					},
				}) {
					return
				}
			}
		}
	}
}

// inboundCounts maps target type name to the number of associations across
// the whole metadata graph pointing at it.
func (a *DangerousCascadeAnalyzer) inboundCounts() map[string]int {
	counts := make(map[string]int)
	for t := range a.provider.AllTypes() {
		for _, assoc := range t.Associations {
			if assoc.TargetType != "" {
				counts[assoc.TargetType]++
			}
		}
	}
	return counts
}

func (a *DangerousCascadeAnalyzer) isIndependent(target string, inbound map[string]int) bool {
	for _, keyword := range a.cfg.IndependentEntities {
		if util.MatchesWord(target, keyword) {
			return true
		}
	}
	return inbound[target] >= a.cfg.Thresholds.IndependentEntityRefs
}

// OrphanRemovalAnalyzer flags OneToMany associations with orphanRemoval but
// no remove cascade: removing an item from the in-memory collection deletes
// it, yet deleting the parent leaves the children behind. The composition
// is half-configured either way.
type OrphanRemovalAnalyzer struct {
	provider metadata.Provider
}

// NewOrphanRemovalAnalyzer creates the analyzer. The provider must not be nil.
func NewOrphanRemovalAnalyzer(provider metadata.Provider) *OrphanRemovalAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &OrphanRemovalAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *OrphanRemovalAnalyzer) Name() string { return "orphan_removal" }

// Analyze yields one warning per incomplete composition.
func (a *OrphanRemovalAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for t := range a.provider.AllTypes() {
			for _, assoc := range t.Associations {
				if assoc.Cardinality != metadata.OneToMany || !assoc.OrphanRemoval {
					continue
				}
				if hasCascadeRemove(assoc.Cascade) {
					continue
				}

				if !yield(issue.Issue{
					Type:     issue.TypeOrphanRemovalIncomplete,
					Title:    "Incomplete Composition",
					Severity: issue.SeverityWarning,
					Description: fmt.Sprintf(
						"%s.%s sets orphanRemoval without cascade remove: removing a child from the collection deletes it, but deleting the parent %s does not delete its children.",
						t.ShortName, assoc.FieldName, t.ShortName),
					Suggestion: &issue.Suggestion{
						Template: "complete_composition",
						Context: map[string]any{
							"type":  t.ShortName,
							"field": assoc.FieldName,
						},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeOrphanRemovalIncomplete,
							Severity: issue.SeverityWarning,
							Title:    "Add cascade remove to the composition",
							Tags:     []string{"integrity", "cascade"},
						},
					},
				}) {
					return
				}
			}
		}
	}
}

// CascadeDBMismatchAnalyzer compares ORM-level delete propagation with the
// database-level onDelete constraint behind the same relation. For each
// OneToMany association with a mappedBy inverse, the inverse side's first
// join column supplies the database action.
//
// Four mutually exclusive asymmetries are reported, first match wins; all
// are warnings:
//  1. ORM cascades remove but the database nullifies (SET NULL).
//  2. orphanRemoval is on but the database nullifies.
//  3. The database cascades deletes but the ORM does not.
//  4. The ORM cascades remove with no database constraint action at all.
type CascadeDBMismatchAnalyzer struct {
	provider metadata.Provider
}

// NewCascadeDBMismatchAnalyzer creates the analyzer.
// The provider must not be nil.
func NewCascadeDBMismatchAnalyzer(provider metadata.Provider) *CascadeDBMismatchAnalyzer {
	if provider == nil {
		panic("analyzer: nil metadata provider")
	}
	return &CascadeDBMismatchAnalyzer{provider: provider}
}

// Name identifies the analyzer in diagnostics output.
func (a *CascadeDBMismatchAnalyzer) Name() string { return "cascade_db_mismatch" }

// Analyze yields one warning per detected asymmetry.
func (a *CascadeDBMismatchAnalyzer) Analyze(_ *query.RecordCollection) iter.Seq[issue.Issue] {
	return func(yield func(issue.Issue) bool) {
		for t := range a.provider.AllTypes() {
			for _, assoc := range t.Associations {
				if assoc.Cardinality != metadata.OneToMany || assoc.MappedBy == "" {
					continue
				}

				target, ok := a.provider.TypeByName(assoc.TargetType)
				if !ok {
					continue
				}
				inverse, ok := target.Association(assoc.MappedBy)
				if !ok || len(inverse.JoinColumns) == 0 {
					continue
				}

				onDelete := inverse.JoinColumns[0].OnDelete
				ormRemove := hasCascadeRemove(assoc.Cascade)

				var description string
				switch {
				case ormRemove && onDelete == metadata.OnDeleteSetNull:
					description = fmt.Sprintf(
						"%s.%s cascades remove in the ORM, but the database constraint is onDelete=SET NULL: ORM deletes remove rows while direct SQL deletes only nullify the reference.",
						t.ShortName, assoc.FieldName)
				case assoc.OrphanRemoval && onDelete == metadata.OnDeleteSetNull:
					description = fmt.Sprintf(
						"%s.%s uses orphanRemoval, but the database constraint is onDelete=SET NULL: collection removal deletes rows while direct SQL deletes only nullify the reference.",
						t.ShortName, assoc.FieldName)
				case onDelete == metadata.OnDeleteCascade && !ormRemove:
					description = fmt.Sprintf(
						"%s.%s has no ORM remove cascade, but the database constraint is onDelete=CASCADE: direct SQL deletes cascade while ORM-mediated deletes do not.",
						t.ShortName, assoc.FieldName)
				case ormRemove && onDelete == metadata.OnDeleteNone:
					description = fmt.Sprintf(
						"%s.%s cascades remove in the ORM, but the database declares no onDelete action: raw SQL deletes of %s rows risk a constraint violation.",
						t.ShortName, assoc.FieldName, t.TableName)
				default:
					continue
				}

				if !yield(issue.Issue{
					Type:        issue.TypeCascadeDBMismatch,
					Title:       "ORM Cascade And Database Constraint Disagree",
					Severity:    issue.SeverityWarning,
					Description: description,
					Suggestion: &issue.Suggestion{
						Template: "align_cascade_constraint",
						Context: map[string]any{
							"type":     t.ShortName,
							"field":    assoc.FieldName,
							"onDelete": string(onDelete),
						},
						Meta: issue.SuggestionMeta{
							Type:     issue.TypeCascadeDBMismatch,
							Severity: issue.SeverityWarning,
							Title:    "Align ORM cascade with the constraint",
							Tags:     []string{"integrity", "cascade", "schema"},
						},
					},
				}) {
					return
				}
			}
		}
	}
}
