package voice

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// Manager owns the bot's voice connections, one per guild. Joining a
// channel the bot is already in reuses the connection; joining a
// different one moves it.
type Manager struct {
	mu      sync.Mutex
	session *discordgo.Session
	conns   map[string]*discordgo.VoiceConnection
}

func NewManager(session *discordgo.Session) *Manager {
	return &Manager{
		session: session,
		conns:   make(map[string]*discordgo.VoiceConnection),
	}
}

// Join connects the bot to a voice channel.
func (m *Manager) Join(guildID, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if vc, ok := m.conns[guildID]; ok {
		if vc.ChannelID == channelID {
			return nil
		}
		if err := vc.Disconnect(); err != nil {
			logger.Warn("failed to leave previous voice channel", "guild_id", guildID, "error", err)
		}
		delete(m.conns, guildID)
	}

	vc, err := m.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("join voice channel: %w", err)
	}

	m.conns[guildID] = vc
	logger.Info("joined voice channel", "guild_id", guildID, "channel_id", channelID)
	return nil
}

// Leave disconnects the bot from a guild's voice channel.
func (m *Manager) Leave(guildID string) {
	m.mu.Lock()
	vc, ok := m.conns[guildID]
	delete(m.conns, guildID)
	m.mu.Unlock()

	if !ok {
		return
	}
	if err := vc.Disconnect(); err != nil {
		logger.Warn("failed to leave voice channel", "guild_id", guildID, "error", err)
		return
	}
	logger.Info("left voice channel", "guild_id", guildID)
}

// Connection returns the guild's live voice connection, if any.
func (m *Manager) Connection(guildID string) (*discordgo.VoiceConnection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vc, ok := m.conns[guildID]
	return vc, ok
}

// Channel returns the voice channel the bot occupies in a guild.
func (m *Manager) Channel(guildID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	vc, ok := m.conns[guildID]
	if !ok {
		return "", false
	}
	return vc.ChannelID, true
}

// Count reports the number of live voice connections.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.conns)
}

// LeaveAll disconnects every guild, used during shutdown.
func (m *Manager) LeaveAll() {
	m.mu.Lock()
	conns := m.conns
	m.conns = make(map[string]*discordgo.VoiceConnection)
	m.mu.Unlock()

	for guildID, vc := range conns {
		if err := vc.Disconnect(); err != nil {
			logger.Warn("failed to leave voice channel", "guild_id", guildID, "error", err)
		}
	}
}
