package mutation

import "sort"

// Entry is one row of a frequency table.
type Entry struct {
	Type  Type
	Count int
}

// FrequencyTable counts mutation types, ordered by descending count.
// Ties keep the order in which the types were first encountered.
type FrequencyTable struct {
	entries []Entry
	index   map[Type]int
}

// Count builds a frequency table from a label sequence.
func Count(labels []Type) *FrequencyTable {
	counts := make(map[Type]int)
	var order []Type
	for _, l := range labels {
		if _, seen := counts[l]; !seen {
			order = append(order, l)
		}
		counts[l]++
	}

	entries := make([]Entry, len(order))
	for i, t := range order {
		entries[i] = Entry{Type: t, Count: counts[t]}
	}
	return NewFrequencyTable(entries)
}

// NewFrequencyTable builds a table from pre-counted entries given in
// first-encounter order. Entries are re-sorted by descending count.
func NewFrequencyTable(entries []Entry) *FrequencyTable {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Count > sorted[j].Count
	})

	index := make(map[Type]int, len(sorted))
	for i, e := range sorted {
		index[e.Type] = i
	}
	return &FrequencyTable{entries: sorted, index: index}
}

// Get returns the count for t, or 0 if t never occurred.
func (f *FrequencyTable) Get(t Type) int {
	if i, ok := f.index[t]; ok {
		return f.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct types.
func (f *FrequencyTable) Len() int {
	return len(f.entries)
}

// Total returns the sum of all counts.
func (f *FrequencyTable) Total() int {
	n := 0
	for _, e := range f.entries {
		n += e.Count
	}
	return n
}

// Entries returns a copy of the rows in table order.
func (f *FrequencyTable) Entries() []Entry {
	out := make([]Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Types returns the distinct types in table order.
func (f *FrequencyTable) Types() []Type {
	out := make([]Type, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.Type
	}
	return out
}
