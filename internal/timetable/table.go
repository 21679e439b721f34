package timetable

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Table is an immutable, ordered set of entries for one mode. Sessions
// in any number of guilds may read the same table concurrently; a
// reload builds a fresh table and swaps the pointer.
type Table struct {
	mode    string
	entries []Entry
	byName  map[string]Entry
}

// NewTable builds a table sorted by offset, then name.
func NewTable(mode string, entries []Entry) *Table {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Offset != sorted[j].Offset {
			return sorted[i].Offset < sorted[j].Offset
		}
		return sorted[i].Name < sorted[j].Name
	})

	byName := make(map[string]Entry, len(sorted))
	for _, e := range sorted {
		byName[e.Name] = e
	}

	return &Table{mode: mode, entries: sorted, byName: byName}
}

func (t *Table) Mode() string {
	return t.mode
}

func (t *Table) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the ordered entry list.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup finds an entry by exact name.
func (t *Table) Lookup(name string) (Entry, bool) {
	e, ok := t.byName[name]
	return e, ok
}

// DueBetween returns every entry whose offset lies in the half-open
// interval (prev, elapsed]. Scanning sequential non-overlapping
// intervals therefore fires each entry exactly once regardless of tick
// granularity.
func (t *Table) DueBetween(prev, elapsed int) []Entry {
	if elapsed <= prev {
		return nil
	}

	start := sort.Search(len(t.entries), func(i int) bool {
		return t.entries[i].Offset > prev
	})

	var due []Entry
	for i := start; i < len(t.entries) && t.entries[i].Offset <= elapsed; i++ {
		due = append(due, t.entries[i])
	}
	return due
}

// LoadFile reads one mode file: a JSON mapping from entry name to spec.
// Malformed entries are skipped individually and returned as warnings;
// the rest of the file still loads.
func LoadFile(path, mode string) (*Table, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read mode file: %w", err)
	}

	specs := make(map[string]EntrySpec)
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, nil, fmt.Errorf("parse mode file %s: %w", path, err)
	}

	entries, warnings := BuildEntries(specs)
	return NewTable(mode, entries), warnings, nil
}

// BuildEntries validates a batch of specs, collecting per-entry
// failures as warnings instead of failing the batch.
func BuildEntries(specs map[string]EntrySpec) ([]Entry, []string) {
	names := make([]string, 0, len(specs))
	for name := range specs {
		names = append(names, name)
	}
	sort.Strings(names)

	var entries []Entry
	var warnings []string
	for _, name := range names {
		e, err := BuildEntry(name, specs[name])
		if err != nil {
			warnings = append(warnings, err.Error())
			continue
		}
		entries = append(entries, e)
	}
	return entries, warnings
}
