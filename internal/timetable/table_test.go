package timetable

import (
	"path/filepath"
	"strings"
	"testing"
)

func testEntries() []Entry {
	return []Entry{
		{Name: "c", Offset: 300, Messages: []string{"c"}, Category: CategoryObjective},
		{Name: "a", Offset: 0, Messages: []string{"a"}, Category: CategoryEarlyGame},
		{Name: "b", Offset: 120, Messages: []string{"b"}, Category: CategoryReminder},
		{Name: "d", Offset: 300, Messages: []string{"d"}, Category: CategoryFarm},
	}
}

func TestTableOrdering(t *testing.T) {
	table := NewTable("ranked", testEntries())

	entries := table.Entries()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}

	// sorted by offset, ties broken by name
	wantOrder := []string{"a", "b", "c", "d"}
	for i, name := range wantOrder {
		if entries[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, entries[i].Name)
		}
	}
}

func TestDueBetweenHalfOpen(t *testing.T) {
	table := NewTable("ranked", testEntries())

	// (0, 120] includes the 120 entry, excludes the 0 entry
	due := table.DueBetween(0, 120)
	if len(due) != 1 || due[0].Name != "b" {
		t.Fatalf("expected [b], got %v", names(due))
	}

	// (119, 120] still catches it
	due = table.DueBetween(119, 120)
	if len(due) != 1 || due[0].Name != "b" {
		t.Fatalf("expected [b], got %v", names(due))
	}

	// (120, 299] catches nothing
	if due = table.DueBetween(120, 299); len(due) != 0 {
		t.Fatalf("expected no entries, got %v", names(due))
	}

	// both 300 entries arrive together
	due = table.DueBetween(299, 300)
	if len(due) != 2 {
		t.Fatalf("expected 2 entries at 300, got %v", names(due))
	}

	// empty and inverted intervals yield nothing
	if due = table.DueBetween(100, 100); due != nil {
		t.Errorf("empty interval should yield nil, got %v", names(due))
	}
	if due = table.DueBetween(200, 100); due != nil {
		t.Errorf("inverted interval should yield nil, got %v", names(due))
	}
}

func TestDueBetweenNoSkipNoDuplicate(t *testing.T) {
	table := DefaultTable("ranked")

	// sweep a full session at several tick granularities; every entry
	// must fire exactly once regardless of step size
	for _, step := range []int{1, 2, 3, 7, 10, 19} {
		fired := make(map[string]int)

		prev := 0
		for elapsed := step; prev < 2500; elapsed += step {
			for _, e := range table.DueBetween(prev, elapsed) {
				fired[e.Name]++
			}
			prev = elapsed
		}

		for _, e := range table.Entries() {
			if e.Offset == 0 {
				continue // offset 0 precedes the first interval
			}
			if fired[e.Name] != 1 {
				t.Errorf("step %d: entry %s fired %d times", step, e.Name, fired[e.Name])
			}
		}
	}
}

func TestLoadFilePartialFailure(t *testing.T) {
	// four entries, one with a negative time: three load, one warning
	table, warnings, err := LoadFile(filepath.Join("testdata", "brawl.json"), "brawl")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if table.Len() != 3 {
		t.Errorf("expected 3 usable entries, got %d", table.Len())
	}

	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d: %v", len(warnings), warnings)
	}

	if !strings.Contains(warnings[0], "broken_timer") {
		t.Errorf("warning should name the offending entry: %q", warnings[0])
	}

	if _, ok := table.Lookup("broken_timer"); ok {
		t.Error("malformed entry must not load")
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, _, err := LoadFile(filepath.Join("testdata", "nope.json"), "nope"); err == nil {
		t.Error("expected error for missing file")
	}
}

func names(entries []Entry) []string {
	var out []string
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}
