package timetable

import (
	"fmt"
	"strings"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// Category tags an entry for selective muting and volume control.
type Category string

const (
	CategoryObjective Category = "objective"
	CategoryBuff      Category = "buff"
	CategoryFarm      Category = "farm"
	CategoryReminder  Category = "reminder"
	CategoryEarlyGame Category = "early_game"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryObjective,
		CategoryBuff,
		CategoryFarm,
		CategoryReminder,
		CategoryEarlyGame,
	}
}

// ParseCategory validates a category string.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories() {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// CategoryState holds the per-session dispatch settings for one category.
type CategoryState struct {
	Muted  bool    `json:"muted"`
	Volume float64 `json:"volume"` // 0.0-1.0
}

// DefaultCategoryState is used when a guild has not configured a category.
func DefaultCategoryState() CategoryState {
	return CategoryState{Muted: false, Volume: 1.0}
}

// Entry is a single scheduled announcement. Offsets are seconds from
// match start. RespawnTime/RespawnWindow mark objectives whose later
// spawns are predicted from kill events; BuffDuration derives an expiry
// reminder after the entry fires.
type Entry struct {
	Name          string
	Offset        int
	Messages      []string
	Category      Category
	RespawnTime   int
	RespawnWindow int
	BuffDuration  int
}

// DisplayName renders an entry name for speech and listings:
// underscores become spaces and a trailing "_spawn" is dropped.
func (e Entry) DisplayName() string {
	name := strings.TrimSuffix(e.Name, "_spawn")
	return strings.ReplaceAll(name, "_", " ")
}

// maxOffset bounds authored trigger times; matches never run longer.
const maxOffset = 3600

// maxMessageLen bounds a single announcement phrase.
const maxMessageLen = 200

// EntrySpec is the wire form of a timer entry as it appears in mode
// files and guild timer overlays. Either "message" or "messages" must
// be present.
type EntrySpec struct {
	Time          *int     `json:"time"`
	Message       string   `json:"message,omitempty"`
	Messages      []string `json:"messages,omitempty"`
	Category      string   `json:"category"`
	RespawnTime   int      `json:"respawn_time,omitempty"`
	RespawnWindow int      `json:"respawn_window,omitempty"`
	BuffDuration  int      `json:"buff_duration,omitempty"`
}

// BuildEntry validates a spec and produces an Entry. An unknown
// category is coerced to reminder rather than rejected; every other
// violation fails the whole entry.
func BuildEntry(name string, spec EntrySpec) (Entry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, fmt.Errorf("entry name is empty")
	}

	if spec.Time == nil {
		return Entry{}, fmt.Errorf("entry %q: missing time", name)
	}
	if *spec.Time < 0 {
		return Entry{}, fmt.Errorf("entry %q: negative time %d", name, *spec.Time)
	}
	if *spec.Time > maxOffset {
		return Entry{}, fmt.Errorf("entry %q: time %d exceeds %d", name, *spec.Time, maxOffset)
	}

	messages := make([]string, 0, len(spec.Messages)+1)
	if spec.Message != "" {
		messages = append(messages, spec.Message)
	}
	for _, m := range spec.Messages {
		if m = strings.TrimSpace(m); m != "" {
			messages = append(messages, m)
		}
	}
	if len(messages) == 0 {
		return Entry{}, fmt.Errorf("entry %q: no messages", name)
	}
	for _, m := range messages {
		if len(m) > maxMessageLen {
			return Entry{}, fmt.Errorf("entry %q: message exceeds %d chars", name, maxMessageLen)
		}
	}

	category, ok := ParseCategory(spec.Category)
	if !ok {
		logger.Warn("unknown category, using reminder", "entry", name, "category", spec.Category)
		category = CategoryReminder
	}

	if spec.RespawnTime < 0 {
		return Entry{}, fmt.Errorf("entry %q: negative respawn_time", name)
	}
	if spec.RespawnWindow < 0 {
		return Entry{}, fmt.Errorf("entry %q: negative respawn_window", name)
	}
	if spec.RespawnWindow > 0 && spec.RespawnTime == 0 {
		return Entry{}, fmt.Errorf("entry %q: respawn_window without respawn_time", name)
	}
	if spec.RespawnWindow > spec.RespawnTime {
		return Entry{}, fmt.Errorf("entry %q: respawn_window %d exceeds respawn_time %d", name, spec.RespawnWindow, spec.RespawnTime)
	}
	if spec.BuffDuration < 0 {
		return Entry{}, fmt.Errorf("entry %q: negative buff_duration", name)
	}

	return Entry{
		Name:          name,
		Offset:        *spec.Time,
		Messages:      messages,
		Category:      category,
		RespawnTime:   spec.RespawnTime,
		RespawnWindow: spec.RespawnWindow,
		BuffDuration:  spec.BuffDuration,
	}, nil
}

// Spec converts an Entry back to its wire form, used by timer listings
// and config export.
func (e Entry) Spec() EntrySpec {
	t := e.Offset
	return EntrySpec{
		Time:          &t,
		Messages:      e.Messages,
		Category:      string(e.Category),
		RespawnTime:   e.RespawnTime,
		RespawnWindow: e.RespawnWindow,
		BuffDuration:  e.BuffDuration,
	}
}
