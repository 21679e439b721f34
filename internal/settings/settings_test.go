package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/laneguardian/laneguardian/internal/timetable"
)

func testManager(t *testing.T) *Manager {
	t.Helper()

	m := NewManager(filepath.Join(t.TempDir(), "guilds.json"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return m
}

func TestLoadMissingFile(t *testing.T) {
	m := testManager(t)

	if m.Count() != 0 {
		t.Errorf("fresh manager holds %d guilds, want 0", m.Count())
	}

	g := m.Get("guild-1")
	if g.TTS.Language != "en" || g.TTS.Accent != "us" || g.TTS.Speed != 1.0 {
		t.Errorf("default TTS settings mismatch: %+v", g.TTS)
	}
	if g.Lead != 0 {
		t.Errorf("default lead = %d, want 0", g.Lead)
	}
}

func TestUpdatePersistsAcrossReload(t *testing.T) {
	m := testManager(t)

	err := m.Update("guild-1", func(g *Guild) {
		g.DefaultMode = "aram"
		g.Lead = 15
		g.AutoStart = true
		g.AdminRoles = []string{"role-a"}
		g.Categories = map[string]timetable.CategoryState{
			"farm": {Muted: true, Volume: 0.5},
		}
		g.Timers = map[string]timetable.EntrySpec{
			"team_ritual": {Time: intPtr(60), Message: "Spin to win", Category: "reminder"},
		}
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	reloaded := NewManager(m.Path())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	g := reloaded.Get("guild-1")
	if g.DefaultMode != "aram" || g.Lead != 15 || !g.AutoStart {
		t.Errorf("reloaded settings mismatch: %+v", g)
	}
	if st, ok := g.Categories["farm"]; !ok || !st.Muted || st.Volume != 0.5 {
		t.Errorf("category override lost: %+v", g.Categories)
	}
	if _, ok := g.Timers["team_ritual"]; !ok {
		t.Error("custom timer lost across reload")
	}
}

func TestUpdateClampsValues(t *testing.T) {
	m := testManager(t)

	err := m.Update("guild-1", func(g *Guild) {
		g.Lead = 500
		g.TTS.Speed = 9.0
		g.Categories = map[string]timetable.CategoryState{
			"buff": {Volume: 3.0},
		}
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	g := m.Get("guild-1")
	if g.Lead != maxLead {
		t.Errorf("lead = %d, want clamped to %d", g.Lead, maxLead)
	}
	if g.TTS.Speed != maxSpeed {
		t.Errorf("speed = %v, want clamped to %v", g.TTS.Speed, maxSpeed)
	}
	if g.Categories["buff"].Volume != 1.0 {
		t.Errorf("volume = %v, want clamped to 1.0", g.Categories["buff"].Volume)
	}

	err = m.Update("guild-1", func(g *Guild) {
		g.Lead = -5
		g.TTS.Speed = 0.1
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	g = m.Get("guild-1")
	if g.Lead != 0 || g.TTS.Speed != minSpeed {
		t.Errorf("lower clamps failed: lead=%d speed=%v", g.Lead, g.TTS.Speed)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := testManager(t)

	err := m.Update("guild-1", func(g *Guild) {
		g.Categories = map[string]timetable.CategoryState{
			"objective": {Muted: true, Volume: 1.0},
		}
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	g := m.Get("guild-1")
	g.Categories["objective"] = timetable.CategoryState{Muted: false, Volume: 0.1}
	g.AdminRoles = append(g.AdminRoles, "rogue")

	fresh := m.Get("guild-1")
	if !fresh.Categories["objective"].Muted {
		t.Error("mutating a Get copy leaked into the manager")
	}
	if len(fresh.AdminRoles) != 0 {
		t.Error("appending to a Get copy leaked into the manager")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, "guilds.json"))
	if err := m.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i := 0; i < 5; i++ {
		err := m.Update("guild-1", func(g *Guild) { g.Lead = i })
		if err != nil {
			t.Fatalf("Update %d failed: %v", i, err)
		}
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(files) != 1 || files[0].Name() != "guilds.json" {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, f.Name())
		}
		t.Errorf("settings dir contains %v, want only guilds.json", names)
	}
}

func TestOverlayEntriesSkipInvalid(t *testing.T) {
	g := Guild{
		Timers: map[string]timetable.EntrySpec{
			"good_timer": {Time: intPtr(90), Message: "ok", Category: "reminder"},
			"bad_timer":  {Time: intPtr(-3), Message: "nope", Category: "reminder"},
		},
	}

	entries, warnings := g.OverlayEntries()
	if len(entries) != 1 || entries[0].Name != "good_timer" {
		t.Errorf("expected only good_timer, got %v", entries)
	}
	if len(warnings) != 1 {
		t.Errorf("expected one warning, got %v", warnings)
	}
}

func TestCategoryStatesDropUnknown(t *testing.T) {
	g := Guild{
		Categories: map[string]timetable.CategoryState{
			"objective": {Muted: true, Volume: 1.0},
			"mid_game":  {Muted: true, Volume: 1.0},
		},
	}

	states := g.CategoryStates()
	if len(states) != 1 {
		t.Fatalf("expected one resolved category, got %v", states)
	}
	if st, ok := states[timetable.CategoryObjective]; !ok || !st.Muted {
		t.Errorf("objective override missing: %v", states)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	m := testManager(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			guildID := fmt.Sprintf("guild-%d", n)
			if err := m.Update(guildID, func(g *Guild) { g.Lead = n }); err != nil {
				t.Errorf("Update %s failed: %v", guildID, err)
			}
		}(i)
	}
	wg.Wait()

	if m.Count() != 10 {
		t.Errorf("manager holds %d guilds, want 10", m.Count())
	}
}

func intPtr(v int) *int {
	return &v
}
