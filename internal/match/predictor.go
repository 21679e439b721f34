package match

import (
	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/timetable"
)

// schedulePrediction builds the respawn cycle for an objective from an
// anchor time: the observed kill, or the authored spawn offset when no
// kill has been seen yet (the first spawn is deterministic, respawns
// are not). Window entries bracket the respawn when the entry carries
// an uncertainty window.
func (s *Session) schedulePrediction(base timetable.Entry, anchor int, synthetic bool) {
	display := base.DisplayName()
	r, w := base.RespawnTime, base.RespawnWindow

	var entries []timetable.Entry
	if w > 0 {
		entries = append(entries, timetable.Entry{
			Name:     base.Name + "_window_open",
			Offset:   anchor + r - w,
			Messages: []string{display + " respawn window opening"},
			Category: base.Category,
		})
	}
	entries = append(entries, timetable.Entry{
		Name:     base.Name + "_respawn",
		Offset:   anchor + r,
		Messages: []string{display + " respawning now"},
		Category: base.Category,
	})
	if w > 0 {
		entries = append(entries, timetable.Entry{
			Name:     base.Name + "_window_close",
			Offset:   anchor + r + w,
			Messages: []string{display + " respawn window closing"},
			Category: base.Category,
		})
	}

	s.predictions[base.Name] = &prediction{
		anchor:    anchor,
		synthetic: synthetic,
		entries:   entries,
	}

	logger.Debug("respawn cycle scheduled",
		"guild", s.guildID, "objective", base.Name,
		"anchor", anchor, "respawn", anchor+r, "synthetic", synthetic)
}

// scheduleExpiry derives a wear-off reminder from a fired entry that
// carries a buff duration.
func (s *Session) scheduleExpiry(base timetable.Entry) {
	s.expiries = append(s.expiries, timetable.Entry{
		Name:     base.Name + "_expiry",
		Offset:   base.Offset + base.BuffDuration,
		Messages: []string{base.DisplayName() + " expiring soon"},
		Category: base.Category,
	})
}

// collectDynamic consumes prediction and expiry entries due in
// (lo, hi]. Entries at or below lo were missed while no session was
// looking (late kills recorded in the past) and are dropped without
// firing; a fully drained cycle is removed.
func (s *Session) collectDynamic(lo, hi int) []timetable.Entry {
	var due []timetable.Entry

	for name, p := range s.predictions {
		remaining := p.entries[:0]
		for _, e := range p.entries {
			switch {
			case e.Offset > lo && e.Offset <= hi:
				due = append(due, e)
			case e.Offset > hi:
				remaining = append(remaining, e)
			}
		}
		p.entries = remaining
		if len(p.entries) == 0 {
			delete(s.predictions, name)
		}
	}

	if len(s.expiries) > 0 {
		var keep []timetable.Entry
		for _, e := range s.expiries {
			switch {
			case e.Offset > lo && e.Offset <= hi:
				due = append(due, e)
			case e.Offset > hi:
				keep = append(keep, e)
			}
		}
		s.expiries = keep
	}

	return due
}
