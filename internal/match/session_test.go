package match

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/laneguardian/laneguardian/internal/timetable"
)

const rankedJSON = `{
	"early_ward_reminder": {"time": 120, "message": "Place wards for vision control", "category": "reminder"},
	"fangtooth_spawn": {"time": 240, "message": "Fangtooth is now online", "category": "objective", "respawn_time": 300, "respawn_window": 30},
	"river_buff": {"time": 180, "message": "River buff spawning", "category": "buff", "buff_duration": 90}
}`

func testLibrary(t *testing.T, mode, content string) *timetable.Library {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, mode+".json"), []byte(content), 0644); err != nil {
		t.Fatalf("write mode file: %v", err)
	}

	lib := timetable.NewLibrary(dir, mode)
	if err := lib.Load(); err != nil {
		t.Fatalf("load library: %v", err)
	}
	return lib
}

func testSession(t *testing.T, lead int) (*Session, *clockwork.FakeClock) {
	t.Helper()

	lib := testLibrary(t, "ranked", rankedJSON)
	fc := clockwork.NewFakeClock()
	s := newSession("test1234", "guild-1", "ranked", lib, nil, fc, 0, lead, nil)
	return s, fc
}

// sweep advances the clock one second at a time up to the target
// elapsed value, recording every fired entry offset by name.
func sweep(s *Session, fc *clockwork.FakeClock, until int, fired map[string][]int) {
	for s.Elapsed() < until {
		fc.Advance(time.Second)
		for _, e := range s.Tick() {
			fired[e.Name] = append(fired[e.Name], e.Offset)
		}
	}
}

func TestSessionFiresStaticEntriesOnce(t *testing.T) {
	s, fc := testSession(t, 0)

	fired := make(map[string][]int)
	sweep(s, fc, 300, fired)

	if got := fired["early_ward_reminder"]; len(got) != 1 || got[0] != 120 {
		t.Errorf("early_ward_reminder fired %v, want [120]", got)
	}
	if got := fired["fangtooth_spawn"]; len(got) != 1 || got[0] != 240 {
		t.Errorf("fangtooth_spawn fired %v, want [240]", got)
	}
}

func TestSessionCoarseTicksDoNotSkip(t *testing.T) {
	s, fc := testSession(t, 0)

	// 17s jumps between ticks: entries must still fire exactly once
	fired := make(map[string][]int)
	for s.Elapsed() < 400 {
		fc.Advance(17 * time.Second)
		for _, e := range s.Tick() {
			fired[e.Name] = append(fired[e.Name], e.Offset)
		}
	}

	for _, name := range []string{"early_ward_reminder", "river_buff", "fangtooth_spawn"} {
		if len(fired[name]) != 1 {
			t.Errorf("%s fired %d times with coarse ticks", name, len(fired[name]))
		}
	}
}

func TestSessionSubSecondTickIsNoop(t *testing.T) {
	s, fc := testSession(t, 0)

	fc.Advance(500 * time.Millisecond)
	if due := s.Tick(); due != nil {
		t.Errorf("sub-second tick should yield nothing, got %v", due)
	}
}

func TestRespawnPredictionFromKill(t *testing.T) {
	s, fc := testSession(t, 0)

	fired := make(map[string][]int)
	sweep(s, fc, 240, fired)

	if len(fired["fangtooth_spawn"]) != 1 {
		t.Fatal("base entry did not fire")
	}

	kill, err := s.RecordKill("fangtooth_spawn", 245)
	if err != nil {
		t.Fatalf("RecordKill failed: %v", err)
	}
	if kill.Respawn != 545 || kill.Window != 30 {
		t.Errorf("kill prediction mismatch: %+v", kill)
	}

	sweep(s, fc, 700, fired)

	if got := fired["fangtooth_spawn_window_open"]; len(got) != 1 || got[0] != 515 {
		t.Errorf("window open fired %v, want [515]", got)
	}
	if got := fired["fangtooth_spawn_respawn"]; len(got) != 1 || got[0] != 545 {
		t.Errorf("respawn fired %v, want [545]", got)
	}
	if got := fired["fangtooth_spawn_window_close"]; len(got) != 1 || got[0] != 575 {
		t.Errorf("window close fired %v, want [575]", got)
	}

	// the synthetic cycle anchored at the authored spawn (510/540/570)
	// was superseded by the observed kill and must never fire
	for name, offsets := range fired {
		for _, off := range offsets {
			if off == 510 || off == 540 || off == 570 {
				t.Errorf("superseded prediction fired: %s at %d", name, off)
			}
		}
	}
}

func TestRespawnSyntheticFirstOccurrence(t *testing.T) {
	s, fc := testSession(t, 0)

	// no kill recorded: the first respawn cycle anchors at the
	// authored spawn time of 240
	fired := make(map[string][]int)
	sweep(s, fc, 600, fired)

	if got := fired["fangtooth_spawn_window_open"]; len(got) != 1 || got[0] != 510 {
		t.Errorf("synthetic window open fired %v, want [510]", got)
	}
	if got := fired["fangtooth_spawn_respawn"]; len(got) != 1 || got[0] != 540 {
		t.Errorf("synthetic respawn fired %v, want [540]", got)
	}
	if got := fired["fangtooth_spawn_window_close"]; len(got) != 1 || got[0] != 570 {
		t.Errorf("synthetic window close fired %v, want [570]", got)
	}
}

func TestSecondKillSupersedesFirst(t *testing.T) {
	s, fc := testSession(t, 0)

	fired := make(map[string][]int)
	sweep(s, fc, 250, fired)

	if _, err := s.RecordKill("fangtooth_spawn", 245); err != nil {
		t.Fatalf("first RecordKill failed: %v", err)
	}

	sweep(s, fc, 300, fired)

	// corrected observation before the first prediction fires
	if _, err := s.RecordKill("fangtooth_spawn", 300); err != nil {
		t.Fatalf("second RecordKill failed: %v", err)
	}

	sweep(s, fc, 700, fired)

	if got := fired["fangtooth_spawn_respawn"]; len(got) != 1 || got[0] != 600 {
		t.Errorf("respawn fired %v, want [600] only", got)
	}

	// 515/545/575 came from the superseded first kill, 510/540 from
	// the synthetic cycle; none of them may fire (570 recurs as the
	// second cycle's window open, so it stays)
	for name, offsets := range fired {
		for _, off := range offsets {
			switch off {
			case 510, 540, 515, 545, 575:
				t.Errorf("cancelled prediction fired: %s at %d", name, off)
			}
		}
	}
}

func TestRecordKillDefaultsToCurrentElapsed(t *testing.T) {
	s, fc := testSession(t, 0)

	fired := make(map[string][]int)
	sweep(s, fc, 250, fired)

	kill, err := s.RecordKill("fangtooth", -1)
	if err != nil {
		t.Fatalf("RecordKill failed: %v", err)
	}

	if kill.Objective != "fangtooth_spawn" {
		t.Errorf("prefix lookup failed: %s", kill.Objective)
	}
	if kill.At != 250 {
		t.Errorf("expected kill at current elapsed 250, got %d", kill.At)
	}
	if kill.Respawn != 550 {
		t.Errorf("expected respawn 550, got %d", kill.Respawn)
	}
}

func TestRecordKillUnknownObjective(t *testing.T) {
	s, _ := testSession(t, 0)

	if _, err := s.RecordKill("dragon", -1); !errors.Is(err, ErrUnknownObjective) {
		t.Errorf("expected ErrUnknownObjective, got %v", err)
	}

	// river_buff has no respawn metadata, so it is not an objective
	if _, err := s.RecordKill("river_buff", -1); !errors.Is(err, ErrUnknownObjective) {
		t.Errorf("expected ErrUnknownObjective for non-respawn entry, got %v", err)
	}
}

func TestBuffExpiryDerivedEntry(t *testing.T) {
	s, fc := testSession(t, 0)

	fired := make(map[string][]int)
	sweep(s, fc, 300, fired)

	if got := fired["river_buff"]; len(got) != 1 || got[0] != 180 {
		t.Fatalf("river_buff fired %v, want [180]", got)
	}
	if got := fired["river_buff_expiry"]; len(got) != 1 || got[0] != 270 {
		t.Errorf("expiry fired %v, want [270]", got)
	}
}

func TestStopDiscardsDynamicEntries(t *testing.T) {
	s, fc := testSession(t, 0)

	fired := make(map[string][]int)
	sweep(s, fc, 250, fired)

	if _, err := s.RecordKill("fangtooth_spawn", 245); err != nil {
		t.Fatalf("RecordKill failed: %v", err)
	}

	s.Stop()

	if s.Running() {
		t.Error("session should not be running after Stop")
	}

	// the very next tick observes the stop
	fc.Advance(400 * time.Second)
	if due := s.Tick(); due != nil {
		t.Errorf("stopped session yielded entries: %v", due)
	}

	if _, err := s.RecordKill("fangtooth_spawn", 500); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning after stop, got %v", err)
	}
}

func TestLeadAnnouncesEarly(t *testing.T) {
	s, fc := testSession(t, 30)

	fired := make(map[string][]int)
	sweep(s, fc, 215, fired)

	// with a 30s lead the 240s entry fires at elapsed 210
	if got := fired["fangtooth_spawn"]; len(got) != 1 {
		t.Fatalf("fangtooth_spawn fired %v, want exactly once by 215s", got)
	}
	if len(fired["river_buff"]) != 1 {
		t.Errorf("river_buff should have fired by 215s with lead 30")
	}
	if len(fired["early_ward_reminder"]) != 1 {
		t.Errorf("early_ward_reminder should have fired by 215s")
	}
}

func TestCategoryStateClamping(t *testing.T) {
	s, _ := testSession(t, 0)

	s.SetCategoryState(timetable.CategoryBuff, true, 1.7)

	st := s.CategoryState(timetable.CategoryBuff)
	if !st.Muted || st.Volume != 1.0 {
		t.Errorf("expected muted with clamped volume 1.0, got %+v", st)
	}

	// untouched categories keep defaults
	st = s.CategoryState(timetable.CategoryFarm)
	if st.Muted || st.Volume != 1.0 {
		t.Errorf("default category state mismatch: %+v", st)
	}
}

func TestSessionStartOffset(t *testing.T) {
	lib := testLibrary(t, "ranked", rankedJSON)
	fc := clockwork.NewFakeClock()

	// late join at 3:50: entries at or before 230 are in the past
	s := newSession("late1234", "guild-1", "ranked", lib, nil, fc, 230, 0, nil)

	fired := make(map[string][]int)
	sweep(s, fc, 300, fired)

	if len(fired["early_ward_reminder"]) != 0 {
		t.Error("past entry fired after late join")
	}
	if len(fired["river_buff"]) != 0 {
		t.Error("past entry fired after late join")
	}
	if got := fired["fangtooth_spawn"]; len(got) != 1 {
		t.Errorf("future entry should fire after late join, got %v", got)
	}
}

func TestSessionOverlayEntries(t *testing.T) {
	lib := testLibrary(t, "ranked", rankedJSON)
	fc := clockwork.NewFakeClock()

	overlay := timetable.NewTable("overlay", []timetable.Entry{
		{Name: "team_ritual", Offset: 60, Messages: []string{"Spin to win"}, Category: timetable.CategoryReminder},
	})

	s := newSession("over1234", "guild-1", "ranked", lib, overlay, fc, 0, 0, nil)

	fired := make(map[string][]int)
	sweep(s, fc, 130, fired)

	if got := fired["team_ritual"]; len(got) != 1 || got[0] != 60 {
		t.Errorf("overlay entry fired %v, want [60]", got)
	}
	if len(fired["early_ward_reminder"]) != 1 {
		t.Error("static entries must fire alongside overlay")
	}
}
