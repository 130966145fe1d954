// SPDX-License-Identifier: MIT

// Package events holds the extracted time-series events that every engine in
// this module consumes.
//
// An Event is one row: a trace (possibly of different length per event), its
// temporal bounds z0/z1/dz, its spatial centroid cx/cy and a subject_id
// grouping key. Events is an ordered, immutable-by-convention table of them.
// Integer ids passed to Select are row positions; Event.Index is the stable
// identifier that lookup tables are keyed by.
package events

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// Column names understood by Column/Groups.
const (
	ColumnIndex     = "index"
	ColumnZ0        = "z0"
	ColumnZ1        = "z1"
	ColumnDz        = "dz"
	ColumnCx        = "cx"
	ColumnCy        = "cy"
	ColumnSubjectID = "subject_id"
)

var (
	// ErrUnknownColumn indicates a column name that is neither built in nor extra.
	ErrUnknownColumn = errors.New("events: unknown column")

	// ErrOutOfRange indicates a row position outside [0,Len()).
	ErrOutOfRange = errors.New("events: row out of range")

	// ErrLabelLength indicates a label vector whose length differs from Len().
	ErrLabelLength = errors.New("events: label vector length mismatch")
)

// Event is one extracted event.
type Event struct {
	Index     int                `msgpack:"index"`
	Trace     []float64          `msgpack:"trace"`
	Channels  [][]float64        `msgpack:"channels,omitempty"` // optional multivariate trace, one slice per channel
	Z0        int                `msgpack:"z0"`
	Z1        int                `msgpack:"z1"`
	Dz        int                `msgpack:"dz"`
	Cx        float64            `msgpack:"cx"`
	Cy        float64            `msgpack:"cy"`
	SubjectID string             `msgpack:"subject_id"`
	Extra     map[string]float64 `msgpack:"extra,omitempty"`
	Labels    map[string]string  `msgpack:"labels,omitempty"`
}

// Value is a single cell of a column: numeric or categorical.
type Value struct {
	Num   float64
	Str   string
	IsStr bool
}

// String returns the categorical form of the value.
func (v Value) String() string {
	if v.IsStr {
		return v.Str
	}

	return strconv.FormatFloat(v.Num, 'g', -1, 64)
}

// Events is an ordered table of events.
type Events struct {
	rows []Event
}

// New builds an Events table from rows. The slice is copied; traces are shared.
func New(rows []Event) *Events {
	cp := make([]Event, len(rows))
	copy(cp, rows)

	return &Events{rows: cp}
}

// FromTraces builds a minimal table where event i has Index i and the given trace.
// Dz is set to the trace length.
func FromTraces(traces [][]float64) *Events {
	rows := make([]Event, len(traces))
	for i, tr := range traces {
		rows[i] = Event{Index: i, Trace: tr, Z1: len(tr), Dz: len(tr)}
	}

	return &Events{rows: rows}
}

// Len returns the number of events.
func (e *Events) Len() int {
	if e == nil {
		return 0
	}

	return len(e.rows)
}

// At returns the event at row position i.
func (e *Events) At(i int) (Event, error) {
	if i < 0 || i >= e.Len() {
		return Event{}, fmt.Errorf("At(%d): %w", i, ErrOutOfRange)
	}

	return e.rows[i], nil
}

// Rows returns the underlying rows (no copy). Callers must not mutate them.
func (e *Events) Rows() []Event { return e.rows }

// Select returns a new table holding the rows at the given positions, in order.
func (e *Events) Select(ids []int) (*Events, error) {
	out := make([]Event, len(ids))
	for k, id := range ids {
		if id < 0 || id >= e.Len() {
			return nil, fmt.Errorf("Select(%d): %w", id, ErrOutOfRange)
		}
		out[k] = e.rows[id]
	}

	return &Events{rows: out}, nil
}

// Copy returns a shallow copy of the table (rows copied, traces shared).
func (e *Events) Copy() *Events {
	return New(e.rows)
}

// Traces returns every event's trace in row order.
func (e *Events) Traces() [][]float64 {
	out := make([][]float64, e.Len())
	for i := range e.rows {
		out[i] = e.rows[i].Trace
	}

	return out
}

// Series returns every event as a multivariate series: Channels when present,
// otherwise the single Trace channel.
func (e *Events) Series() [][][]float64 {
	out := make([][][]float64, e.Len())
	for i := range e.rows {
		if len(e.rows[i].Channels) > 0 {
			out[i] = e.rows[i].Channels
		} else {
			out[i] = [][]float64{e.rows[i].Trace}
		}
	}

	return out
}

// Indices returns every event's Index in row order.
func (e *Events) Indices() []int {
	out := make([]int, e.Len())
	if e == nil {
		return out
	}
	for i := range e.rows {
		out[i] = e.rows[i].Index
	}

	return out
}

// IsRagged reports whether traces differ in length.
func (e *Events) IsRagged() bool {
	return IsRagged(e.Traces())
}

// IsRagged reports whether the sequences differ in length.
func IsRagged(traces [][]float64) bool {
	for i := 1; i < len(traces); i++ {
		if len(traces[i]) != len(traces[0]) {
			return true
		}
	}

	return false
}

// IsMultiSubject reports whether more than one subject_id is present.
func (e *Events) IsMultiSubject() bool {
	for i := 1; i < len(e.rows); i++ {
		if e.rows[i].SubjectID != e.rows[0].SubjectID {
			return true
		}
	}

	return false
}

// Column returns the values of a column in row order. Built-in columns are
// index, z0, z1, dz, cx, cy and subject_id; other names are looked up in
// Extra (numeric) and then Labels (categorical).
func (e *Events) Column(name string) ([]Value, error) {
	out := make([]Value, e.Len())
	for i := range e.rows {
		v, ok := e.rows[i].value(name)
		if !ok {
			return nil, fmt.Errorf("Column(%q) row %d: %w", name, i, ErrUnknownColumn)
		}
		out[i] = v
	}

	return out, nil
}

func (ev *Event) value(name string) (Value, bool) {
	switch name {
	case ColumnIndex:
		return Value{Num: float64(ev.Index)}, true
	case ColumnZ0:
		return Value{Num: float64(ev.Z0)}, true
	case ColumnZ1:
		return Value{Num: float64(ev.Z1)}, true
	case ColumnDz:
		return Value{Num: float64(ev.Dz)}, true
	case ColumnCx:
		return Value{Num: ev.Cx}, true
	case ColumnCy:
		return Value{Num: ev.Cy}, true
	case ColumnSubjectID:
		return Value{Str: ev.SubjectID, IsStr: true}, true
	}
	if v, ok := ev.Extra[name]; ok {
		return Value{Num: v}, true
	}
	if s, ok := ev.Labels[name]; ok {
		return Value{Str: s, IsStr: true}, true
	}

	return Value{}, false
}

// Group is the subset of events sharing one value of a grouping column.
type Group struct {
	Key    string
	Events *Events
}

// Groups partitions the table by a column. Groups are returned in order of
// first appearance; row order inside each group is preserved.
func (e *Events) Groups(column string) ([]Group, error) {
	values, err := e.Column(column)
	if err != nil {
		return nil, err
	}

	var (
		order []string
		rows  = make(map[string][]Event)
	)
	for i, v := range values {
		key := v.String()
		if _, ok := rows[key]; !ok {
			order = append(order, key)
		}
		rows[key] = append(rows[key], e.rows[i])
	}

	out := make([]Group, len(order))
	for i, key := range order {
		out[i] = Group{Key: key, Events: &Events{rows: rows[key]}}
	}

	return out, nil
}

// CreateLookupTable maps each event's Index to the label at the same row.
func (e *Events) CreateLookupTable(labels []int, def int) (*LookupTable, error) {
	if len(labels) != e.Len() {
		return nil, fmt.Errorf("CreateLookupTable: %d labels for %d events: %w", len(labels), e.Len(), ErrLabelLength)
	}
	lt := NewLookupTable(def)
	for i := range e.rows {
		lt.Set(e.rows[i].Index, labels[i])
	}

	return lt, nil
}

// SortedKeys returns the distinct keys of m in ascending order.
func SortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	return keys
}
