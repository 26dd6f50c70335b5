// Package query provides the executed-query data model consumed by analyzers:
// immutable records of SQL statements with timing, bound parameters, and
// call-site backtraces, plus normalization helpers for deduplication.
package query

import (
	"iter"
	"time"
)

// Frame identifies one call site in a captured backtrace.
type Frame struct {
	Function string
	File     string
	Line     int
}

// Record represents a single executed SQL statement.
// Records are immutable once constructed; analyzers consume them read-only.
type Record struct {
	SQL       string
	Duration  time.Duration
	Params    []any
	Backtrace []Frame
}

// RecordCollection is an ordered, re-iterable set of records.
// Insertion order equals execution order. The collection is materialized
// (not a single-use stream) so multiple analyzers can traverse it
// independently, and it is never mutated after construction.
type RecordCollection struct {
	records []Record
}

// NewRecordCollection builds a collection from the given records.
// The input slice is copied so later mutations by the caller are not observed.
func NewRecordCollection(records ...Record) *RecordCollection {
	owned := make([]Record, len(records))
	copy(owned, records)
	return &RecordCollection{records: owned}
}

// Collect materializes a lazy sequence of records into a collection.
func Collect(seq iter.Seq[Record]) *RecordCollection {
	c := &RecordCollection{}
	for r := range seq {
		c.records = append(c.records, r)
	}
	return c
}

// Len returns the number of records.
func (c *RecordCollection) Len() int {
	return len(c.records)
}

// All returns a re-iterable sequence over the records in execution order.
func (c *RecordCollection) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, r := range c.records {
			if !yield(r) {
				return
			}
		}
	}
}

// At returns the record at position i in execution order.
func (c *RecordCollection) At(i int) Record {
	return c.records[i]
}
