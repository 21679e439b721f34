package match

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/timetable"
)

// Session is the live game clock for one guild. All mutation goes
// through its mutex: ticks, kill recording, category changes and stop
// are serialized, while different guilds advance independently.
type Session struct {
	mu sync.Mutex

	id      string
	guildID string
	mode    string
	lead    int

	clock   Clock
	library *timetable.Library
	overlay *timetable.Table

	startedAt   time.Time
	startOffset int
	lastElapsed int
	state       State

	categories  map[timetable.Category]timetable.CategoryState
	predictions map[string]*prediction
	expiries    []timetable.Entry
	killed      map[string]bool
}

// prediction is one pending respawn cycle for an objective. A later
// kill replaces the whole cycle.
type prediction struct {
	anchor    int
	synthetic bool
	entries   []timetable.Entry
}

func newSession(id, guildID, mode string, library *timetable.Library, overlay *timetable.Table, clock Clock, offset, lead int, categories map[timetable.Category]timetable.CategoryState) *Session {
	cats := make(map[timetable.Category]timetable.CategoryState, len(timetable.Categories()))
	for _, c := range timetable.Categories() {
		cats[c] = timetable.DefaultCategoryState()
	}
	for c, st := range categories {
		cats[c] = clampState(st)
	}

	return &Session{
		id:          id,
		guildID:     guildID,
		mode:        mode,
		lead:        lead,
		clock:       clock,
		library:     library,
		overlay:     overlay,
		startedAt:   clock.Now(),
		startOffset: offset,
		lastElapsed: offset,
		state:       StateRunning,
		categories:  cats,
		predictions: make(map[string]*prediction),
		killed:      make(map[string]bool),
	}
}

func (s *Session) ID() string      { return s.id }
func (s *Session) GuildID() string { return s.guildID }
func (s *Session) Mode() string    { return s.mode }

func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateRunning
}

// Elapsed returns the current match clock in whole seconds.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() int {
	return s.startOffset + int(s.clock.Since(s.startedAt)/time.Second)
}

// Tick advances the clock and returns the entries that became due
// since the previous tick. Each entry's offset lies in the half-open
// interval (prevElapsed, elapsed], shifted by the announce lead, so no
// entry is skipped or fired twice across tick boundaries.
func (s *Session) Tick() []timetable.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return nil
	}

	elapsed := s.elapsedLocked()
	if elapsed <= s.lastElapsed {
		return nil
	}

	lo := s.lastElapsed + s.lead
	hi := elapsed + s.lead

	due := s.library.Table(s.mode).DueBetween(lo, hi)
	if s.overlay != nil {
		due = append(due, s.overlay.DueBetween(lo, hi)...)
	}

	// fired base entries seed their follow-ups before dynamic
	// collection, so a zero-delay follow-up still lands in this tick
	for _, e := range due {
		if e.RespawnTime > 0 && !s.killed[e.Name] {
			if _, pending := s.predictions[e.Name]; !pending {
				s.schedulePrediction(e, e.Offset, true)
			}
		}
		if e.BuffDuration > 0 {
			s.scheduleExpiry(e)
		}
	}

	due = append(due, s.collectDynamic(lo, hi)...)
	s.lastElapsed = elapsed

	sort.Slice(due, func(i, j int) bool {
		if due[i].Offset != due[j].Offset {
			return due[i].Offset < due[j].Offset
		}
		return due[i].Name < due[j].Name
	})
	return due
}

// RecordKill marks an objective as killed at the given match time (or
// the current clock when at is negative) and schedules its respawn
// window. A pending prediction for the same objective is superseded.
func (s *Session) RecordKill(objective string, at int) (Kill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return Kill{}, ErrNotRunning
	}

	base, err := s.findObjectiveLocked(objective)
	if err != nil {
		return Kill{}, err
	}

	if at < 0 {
		at = s.elapsedLocked()
	}

	if old, ok := s.predictions[base.Name]; ok {
		logger.Debug("respawn prediction superseded",
			"guild", s.guildID, "objective", base.Name,
			"old_anchor", old.anchor, "new_anchor", at, "synthetic", old.synthetic)
		delete(s.predictions, base.Name)
	}

	s.killed[base.Name] = true
	s.schedulePrediction(base, at, false)

	return Kill{
		Objective: base.Name,
		At:        at,
		Respawn:   at + base.RespawnTime,
		Window:    base.RespawnWindow,
	}, nil
}

// Stop halts the clock and discards pending dynamic entries. The next
// tick observes the stopped state and yields nothing.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = StateStopped
	s.predictions = make(map[string]*prediction)
	s.expiries = nil
}

// CategoryState returns the dispatch settings for a category.
func (s *Session) CategoryState(c timetable.Category) timetable.CategoryState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st, ok := s.categories[c]; ok {
		return st
	}
	return timetable.DefaultCategoryState()
}

// SetCategoryState updates mute and volume for a category on the live
// session.
func (s *Session) SetCategoryState(c timetable.Category, muted bool, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories[c] = clampState(timetable.CategoryState{Muted: muted, Volume: volume})
}

// Objectives lists the respawn-tracked entries of the session's
// current table, for command autocomplete and listings.
func (s *Session) Objectives() []timetable.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []timetable.Entry
	for _, e := range s.library.Table(s.mode).Entries() {
		if e.RespawnTime > 0 {
			out = append(out, e)
		}
	}
	if s.overlay != nil {
		for _, e := range s.overlay.Entries() {
			if e.RespawnTime > 0 {
				out = append(out, e)
			}
		}
	}
	return out
}

func (s *Session) findObjectiveLocked(name string) (timetable.Entry, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
	if norm == "" {
		return timetable.Entry{}, fmt.Errorf("%w: empty name", ErrUnknownObjective)
	}

	table := s.library.Table(s.mode)

	if e, ok := table.Lookup(norm); ok && e.RespawnTime > 0 {
		return e, nil
	}
	if s.overlay != nil {
		if e, ok := s.overlay.Lookup(norm); ok && e.RespawnTime > 0 {
			return e, nil
		}
	}

	// unique prefix match, so "fangtooth" finds fangtooth_spawn
	var match timetable.Entry
	found := 0
	for _, e := range table.Entries() {
		if e.RespawnTime > 0 && strings.HasPrefix(e.Name, norm) {
			match = e
			found++
		}
	}
	if s.overlay != nil {
		for _, e := range s.overlay.Entries() {
			if e.RespawnTime > 0 && strings.HasPrefix(e.Name, norm) {
				match = e
				found++
			}
		}
	}

	if found == 1 {
		return match, nil
	}
	return timetable.Entry{}, fmt.Errorf("%w: %q", ErrUnknownObjective, name)
}

func clampState(st timetable.CategoryState) timetable.CategoryState {
	if st.Volume < 0 {
		st.Volume = 0
	}
	if st.Volume > 1 {
		st.Volume = 1
	}
	return st
}
