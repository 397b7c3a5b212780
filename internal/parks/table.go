package parks

import "slices"

// Table maps each district to its ordered list of park names.
//
// The zero value is an empty table: every lookup misses. Tables are built with
// [NewTable] and never modified afterwards.
type Table struct {
	parks map[District][]string
}

// NewTable builds an immutable table from m. The input map and its slices are
// copied, so later changes by the caller are not observed. Entries whose key
// is not a valid [District] are ignored.
func NewTable(m map[District][]string) *Table {
	t := &Table{parks: make(map[District][]string, len(m))}
	for d, names := range m {
		if !d.IsValid() {
			continue
		}
		t.parks[d] = slices.Clone(names)
	}
	return t
}

// Lookup returns the park names listed for d in table order. The returned
// slice is a copy. ok is false when d has no entry.
func (t *Table) Lookup(d District) (names []string, ok bool) {
	if t == nil {
		return nil, false
	}
	names, ok = t.parks[d]
	if !ok {
		return nil, false
	}
	return slices.Clone(names), true
}

// Len returns the number of districts present in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.parks)
}

// Empty reports whether the table holds no districts. An empty table is the
// degraded state used when the dataset could not be loaded.
func (t *Table) Empty() bool { return t.Len() == 0 }

// ParkCount returns the total number of park names across all districts.
func (t *Table) ParkCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, names := range t.parks {
		n += len(names)
	}
	return n
}
