package bot

import (
	"github.com/bwmarrin/discordgo"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/match"
)

// handleVoiceState drives the hands-free lifecycle: guilds with
// auto-start enabled get a timer the moment a player enters a voice
// channel, and the timer stops when the bot is left alone.
func (b *Bot) handleVoiceState(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	if v.GuildID == "" {
		return
	}
	if s.State.User != nil && v.UserID == s.State.User.ID {
		return
	}

	if v.ChannelID != "" {
		b.maybeAutoStart(v.GuildID, v.ChannelID, v.UserID)
	}

	if v.BeforeUpdate != nil && v.BeforeUpdate.ChannelID != "" && v.BeforeUpdate.ChannelID != v.ChannelID {
		b.maybeAutoStop(v.GuildID, v.BeforeUpdate.ChannelID)
	}
}

func (b *Bot) maybeAutoStart(guildID, channelID, userID string) {
	g := b.settings.Get(guildID)
	if !g.AutoStart {
		return
	}
	if _, running := b.store.Get(guildID); running {
		return
	}
	if b.isBot(guildID, userID) {
		return
	}

	if err := b.voices.Join(guildID, channelID); err != nil {
		logger.Error("auto-start voice join failed", "guild_id", guildID, "error", err)
		return
	}

	overlay, _ := g.OverlayEntries()
	_, err := b.store.Start(guildID, match.StartParams{
		Mode:       g.DefaultMode,
		Lead:       g.Lead,
		Categories: g.CategoryStates(),
		Overlay:    overlay,
	})
	if err != nil {
		logger.Error("auto-start failed", "guild_id", guildID, "error", err)
		b.voices.Leave(guildID)
		return
	}

	logger.Info("timer auto-started", "guild_id", guildID, "channel_id", channelID)
	b.player.Say(guildID, "Game timer started", 1.0)
}

func (b *Bot) maybeAutoStop(guildID, channelID string) {
	botChannel, ok := b.voices.Channel(guildID)
	if !ok || botChannel != channelID {
		return
	}
	if b.humanCount(guildID, channelID) > 0 {
		return
	}

	if b.store.Stop(guildID) {
		logger.Info("timer stopped, voice channel empty", "guild_id", guildID)
	}
	b.player.Stop(guildID)
	b.voices.Leave(guildID)
}

// humanCount counts the non-bot members in a voice channel.
func (b *Bot) humanCount(guildID, channelID string) int {
	g, err := b.session.State.Guild(guildID)
	if err != nil {
		return 0
	}

	count := 0
	for _, vs := range g.VoiceStates {
		if vs.ChannelID != channelID {
			continue
		}
		if b.session.State.User != nil && vs.UserID == b.session.State.User.ID {
			continue
		}
		if b.isBot(guildID, vs.UserID) {
			continue
		}
		count++
	}
	return count
}

// isBot reports whether a user is a bot account. Members missing from
// the state cache count as human so the bot never leaves a channel on
// stale data.
func (b *Bot) isBot(guildID, userID string) bool {
	m, err := b.session.State.Member(guildID, userID)
	if err != nil || m.User == nil {
		return false
	}
	return m.User.Bot
}
