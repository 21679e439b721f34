package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/timetable"
)

const (
	maxLead  = 60
	minSpeed = 0.5
	maxSpeed = 2.0
)

// TTS holds a guild's speech preferences.
type TTS struct {
	Language string  `json:"language"`
	Accent   string  `json:"accent"`
	Speed    float64 `json:"speed"`
}

// Guild is one guild's persisted configuration: which mode to start
// by default, how far ahead of the in-game event to speak, per
// category mute/volume overrides and custom timer entries layered on
// top of the mode table.
type Guild struct {
	DefaultMode string                             `json:"default_mode,omitempty"`
	Lead        int                                `json:"announce_lead,omitempty"`
	AutoStart   bool                               `json:"auto_start,omitempty"`
	AdminRoles  []string                           `json:"admin_roles,omitempty"`
	TTS         TTS                                `json:"tts"`
	Categories  map[string]timetable.CategoryState `json:"categories,omitempty"`
	Timers      map[string]timetable.EntrySpec     `json:"timers,omitempty"`
}

// DefaultGuild returns the settings applied before a guild has
// configured anything.
func DefaultGuild() Guild {
	return Guild{
		TTS: TTS{Language: "en", Accent: "us", Speed: 1.0},
	}
}

// CategoryStates resolves the stored category overrides against the
// known categories, dropping names no release understands anymore.
func (g Guild) CategoryStates() map[timetable.Category]timetable.CategoryState {
	if len(g.Categories) == 0 {
		return nil
	}
	states := make(map[timetable.Category]timetable.CategoryState, len(g.Categories))
	for name, state := range g.Categories {
		if cat, ok := timetable.ParseCategory(name); ok {
			states[cat] = state
		}
	}
	return states
}

// OverlayEntries builds the guild's custom timers. Invalid specs are
// reported as warnings and skipped, matching mode file loading.
func (g Guild) OverlayEntries() ([]timetable.Entry, []string) {
	if len(g.Timers) == 0 {
		return nil, nil
	}
	return timetable.BuildEntries(g.Timers)
}

// Manager loads and persists per-guild settings from a single flat
// JSON file. Writes go through a temp file and rename so a crash
// mid-save never truncates the previous state.
type Manager struct {
	mu     sync.RWMutex
	path   string
	guilds map[string]*Guild
}

func NewManager(path string) *Manager {
	return &Manager{
		path:   path,
		guilds: make(map[string]*Guild),
	}
}

func (m *Manager) Path() string {
	return m.path
}

// Load reads the settings file. A missing file is a fresh install,
// not an error.
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		logger.Info("no guild settings file, starting fresh", "path", m.path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read guild settings: %w", err)
	}

	var guilds map[string]*Guild
	if err := json.Unmarshal(data, &guilds); err != nil {
		return fmt.Errorf("failed to parse guild settings: %w", err)
	}

	for _, g := range guilds {
		normalize(g)
	}

	m.mu.Lock()
	m.guilds = guilds
	m.mu.Unlock()

	logger.Info("guild settings loaded", "path", m.path, "guilds", len(guilds))
	return nil
}

// Get returns a guild's settings, or defaults if it has none. The
// returned value is a deep copy and safe to hold across updates.
func (m *Manager) Get(guildID string) Guild {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.guilds[guildID]
	if !ok {
		return DefaultGuild()
	}
	return copyGuild(g)
}

// Update mutates a guild's settings under the manager lock and
// persists the result. Absent guilds start from defaults.
func (m *Manager) Update(guildID string, fn func(*Guild)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guilds[guildID]
	if !ok {
		fresh := DefaultGuild()
		g = &fresh
		m.guilds[guildID] = g
	}

	fn(g)
	normalize(g)

	return m.saveLocked()
}

// Count reports how many guilds have stored settings.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.guilds)
}

// Snapshot marshals the full settings state, used for backups.
func (m *Manager) Snapshot() ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return json.MarshalIndent(m.guilds, "", "  ")
}

func (m *Manager) saveLocked() error {
	data, err := json.MarshalIndent(m.guilds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal guild settings: %w", err)
	}

	dir := filepath.Dir(m.path)
	tmp, err := os.CreateTemp(dir, ".guilds-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write guild settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace guild settings: %w", err)
	}

	return nil
}

func normalize(g *Guild) {
	if g.Lead < 0 {
		g.Lead = 0
	}
	if g.Lead > maxLead {
		g.Lead = maxLead
	}

	if g.TTS.Language == "" {
		g.TTS.Language = "en"
	}
	if g.TTS.Accent == "" {
		g.TTS.Accent = "us"
	}
	if g.TTS.Speed == 0 {
		g.TTS.Speed = 1.0
	}
	if g.TTS.Speed < minSpeed {
		g.TTS.Speed = minSpeed
	}
	if g.TTS.Speed > maxSpeed {
		g.TTS.Speed = maxSpeed
	}

	for name, state := range g.Categories {
		if state.Volume < 0 {
			state.Volume = 0
		}
		if state.Volume > 1 {
			state.Volume = 1
		}
		g.Categories[name] = state
	}
}

func copyGuild(g *Guild) Guild {
	out := *g

	if g.AdminRoles != nil {
		out.AdminRoles = append([]string(nil), g.AdminRoles...)
	}
	if g.Categories != nil {
		out.Categories = make(map[string]timetable.CategoryState, len(g.Categories))
		for k, v := range g.Categories {
			out.Categories[k] = v
		}
	}
	if g.Timers != nil {
		out.Timers = make(map[string]timetable.EntrySpec, len(g.Timers))
		for k, v := range g.Timers {
			out.Timers[k] = v
		}
	}

	return out
}
