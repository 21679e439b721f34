package match

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/timetable"
)

// Store owns one session per guild and the runner goroutine that
// drives each session's clock. Guild clocks are fully independent.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cancels  map[string]context.CancelFunc

	library  *timetable.Library
	clock    Clock
	interval time.Duration
	announce AnnounceFunc
}

func NewStore(library *timetable.Library, clock Clock, interval time.Duration, announce AnnounceFunc) *Store {
	if interval <= 0 {
		interval = time.Second
	}
	return &Store{
		sessions: make(map[string]*Session),
		cancels:  make(map[string]context.CancelFunc),
		library:  library,
		clock:    clock,
		interval: interval,
		announce: announce,
	}
}

// Start creates a running session for the guild. Starting while a
// session is active replaces it: the old session is stopped first, so
// a double start behaves as stop-then-start.
func (st *Store) Start(guildID string, p StartParams) (*Session, error) {
	offset := 0
	if p.Offset != "" {
		var err error
		offset, err = timetable.ParseOffset(p.Offset)
		if err != nil {
			return nil, err
		}
	}

	mode, _ := st.library.Resolve(p.Mode)

	var overlay *timetable.Table
	if len(p.Overlay) > 0 {
		overlay = timetable.NewTable("overlay", p.Overlay)
	}

	id := uuid.New().String()[:8]
	s := newSession(id, guildID, mode, st.library, overlay, st.clock, offset, p.Lead, p.Categories)

	ctx, cancel := context.WithCancel(context.Background())

	st.mu.Lock()
	if old, ok := st.sessions[guildID]; ok {
		st.cancels[guildID]()
		old.Stop()
		logger.Info("session replaced", "guild", guildID, "old", old.id, "new", id)
	}
	st.sessions[guildID] = s
	st.cancels[guildID] = cancel
	st.mu.Unlock()

	go st.run(ctx, s)

	logger.Info("session started",
		"guild", guildID, "session", id, "mode", mode,
		"offset", timetable.FormatOffset(offset), "lead", p.Lead)
	return s, nil
}

// Stop halts and removes the guild's session. Reports whether one was
// running.
func (st *Store) Stop(guildID string) bool {
	st.mu.Lock()
	s, ok := st.sessions[guildID]
	if !ok {
		st.mu.Unlock()
		return false
	}
	cancel := st.cancels[guildID]
	delete(st.sessions, guildID)
	delete(st.cancels, guildID)
	st.mu.Unlock()

	cancel()
	elapsed := s.Elapsed()
	s.Stop()

	logger.Info("session stopped",
		"guild", guildID, "session", s.id,
		"elapsed", timetable.FormatOffset(elapsed))
	return true
}

// Get returns the guild's session, if any.
func (st *Store) Get(guildID string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	s, ok := st.sessions[guildID]
	return s, ok
}

// Count reports the number of active sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StopAll halts every session, used during shutdown.
func (st *Store) StopAll() {
	st.mu.Lock()
	sessions := st.sessions
	cancels := st.cancels
	st.sessions = make(map[string]*Session)
	st.cancels = make(map[string]context.CancelFunc)
	st.mu.Unlock()

	for guildID, s := range sessions {
		cancels[guildID]()
		s.Stop()
	}

	if len(sessions) > 0 {
		logger.Info("all sessions stopped", "count", len(sessions))
	}
}

// run drives one session until its context is cancelled. Dispatch is
// fire-and-forget: a stop cancels future ticks but never recalls an
// announcement already handed to the announcer.
func (st *Store) run(ctx context.Context, s *Session) {
	ticker := st.clock.NewTicker(st.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			for _, e := range s.Tick() {
				st.announce(s.guildID, e, s.CategoryState(e.Category))
			}
		}
	}
}
