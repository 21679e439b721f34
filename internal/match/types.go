package match

import (
	"errors"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/laneguardian/laneguardian/internal/timetable"
)

var (
	ErrNotRunning       = errors.New("session is not running")
	ErrUnknownObjective = errors.New("unknown objective")
)

// State tracks the session lifecycle. Idle sessions are not
// materialized: a guild with no entry in the store is idle.
type State int

const (
	StateRunning State = iota
	StateStopped
)

// Clock abstracts time so sessions can be driven deterministically in
// tests. Production uses clockwork.NewRealClock(), tests a FakeClock.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
	NewTicker(d time.Duration) clockwork.Ticker
}

// AnnounceFunc receives each due entry together with the category
// state in effect at dispatch time. The call is fire-and-forget:
// implementations must return promptly and never report back.
type AnnounceFunc func(guildID string, e timetable.Entry, st timetable.CategoryState)

// StartParams carries the guild settings a new session starts with.
type StartParams struct {
	Offset     string // "M:SS" or bare seconds; empty means 0:00
	Mode       string // empty means the library default
	Lead       int    // announce entries this many seconds early
	Categories map[timetable.Category]timetable.CategoryState
	Overlay    []timetable.Entry // guild-authored extra entries
}

// Kill describes a recorded objective kill and the respawn prediction
// derived from it.
type Kill struct {
	Objective string
	At        int
	Respawn   int
	Window    int
}
