// SPDX-License-Identifier: MIT

package events

// DefaultCluster is the conventional label of events that belong to no cluster.
const DefaultCluster = -1

// LookupTable maps an event Index to an integer label (cluster or module id).
//
// Reads never insert: Get reports presence, GetOr falls back to the supplied
// value and Label falls back to the table's own default.
type LookupTable struct {
	def    int
	labels map[int]int
}

// NewLookupTable returns an empty table with the given default label.
func NewLookupTable(def int) *LookupTable {
	return &LookupTable{def: def, labels: make(map[int]int)}
}

// Default returns the label reported for unknown ids by Label.
func (lt *LookupTable) Default() int { return lt.def }

// Set assigns label to id.
func (lt *LookupTable) Set(id, label int) { lt.labels[id] = label }

// Get returns the label of id and whether it is present.
func (lt *LookupTable) Get(id int) (int, bool) {
	v, ok := lt.labels[id]

	return v, ok
}

// GetOr returns the label of id, or def when absent.
func (lt *LookupTable) GetOr(id, def int) int {
	if v, ok := lt.labels[id]; ok {
		return v
	}

	return def
}

// Label returns the label of id, or the table default when absent.
func (lt *LookupTable) Label(id int) int {
	return lt.GetOr(id, lt.def)
}

// Len returns the number of explicit entries.
func (lt *LookupTable) Len() int { return len(lt.labels) }

// Keys returns the explicit ids in ascending order.
func (lt *LookupTable) Keys() []int { return SortedKeys(lt.labels) }

// Map returns a copy of the explicit entries.
func (lt *LookupTable) Map() map[int]int {
	out := make(map[int]int, len(lt.labels))
	for k, v := range lt.labels {
		out[k] = v
	}

	return out
}

// Merge copies every entry of other into lt, overwriting on conflict.
func (lt *LookupTable) Merge(other *LookupTable) {
	for k, v := range other.labels {
		lt.labels[k] = v
	}
}

// Compose returns a table mapping every id of lt through next:
// out[id] = next.Label(lt[id]).
func (lt *LookupTable) Compose(next *LookupTable) *LookupTable {
	out := NewLookupTable(lt.def)
	for k, v := range lt.labels {
		out.labels[k] = next.Label(v)
	}

	return out
}
