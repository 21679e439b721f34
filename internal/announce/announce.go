package announce

import (
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/timetable"
)

// Speaker is the voice boundary. Say must return promptly; playback
// (including queueing or preempting an in-flight line) is the
// implementation's problem.
type Speaker interface {
	Say(guildID, text string, volume float64)
}

// Announcer turns due timer entries into spoken lines. Entries whose
// category is muted are dropped, everything else picks a message
// variant and hands it to the speaker with the category volume.
type Announcer struct {
	speaker Speaker
	seed    int64

	mu       sync.Mutex
	counters map[string]int
}

func NewAnnouncer(speaker Speaker, seed int64) *Announcer {
	return &Announcer{
		speaker:  speaker,
		seed:     seed,
		counters: make(map[string]int),
	}
}

// Announce speaks one due entry for a guild. Safe for concurrent use
// across guild tickers.
func (a *Announcer) Announce(guildID string, e timetable.Entry, state timetable.CategoryState) {
	if len(e.Messages) == 0 {
		return
	}

	if state.Muted {
		logger.Debug("announcement muted",
			"guild_id", guildID,
			"entry", e.Name,
			"category", string(e.Category))
		return
	}

	msg := a.pick(guildID, e)

	logger.Debug("announcing entry",
		"guild_id", guildID,
		"entry", e.Name,
		"offset", timetable.FormatOffset(e.Offset),
		"volume", state.Volume)

	a.speaker.Say(guildID, msg, state.Volume)
}

// pick rotates through an entry's message variants. The starting
// variant is derived from the seed so distinct guilds and entries
// spread across variants, and repeated announcements of the same
// entry walk the list round-robin. The same seed always reproduces
// the same sequence.
func (a *Announcer) pick(guildID string, e timetable.Entry) string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}

	key := guildID + ":" + e.Name

	a.mu.Lock()
	n := a.counters[key]
	a.counters[key]++
	a.mu.Unlock()

	h := fnv.New32a()
	fmt.Fprintf(h, "%d:%s", a.seed, key)
	start := int(h.Sum32() % uint32(len(e.Messages)))

	return e.Messages[(start+n)%len(e.Messages)]
}
