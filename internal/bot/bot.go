package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/match"
	"github.com/laneguardian/laneguardian/internal/settings"
	"github.com/laneguardian/laneguardian/internal/timetable"
	"github.com/laneguardian/laneguardian/internal/voice"
)

// commandName is the slash command group all subcommands hang off.
const commandName = "lane"

// Bot wires the Discord gateway to the match store and voice output.
type Bot struct {
	session  *discordgo.Session
	store    *match.Store
	library  *timetable.Library
	settings *settings.Manager
	voices   *voice.Manager
	player   *voice.Player
}

func New(session *discordgo.Session, store *match.Store, library *timetable.Library, sm *settings.Manager, voices *voice.Manager, player *voice.Player) *Bot {
	b := &Bot{
		session:  session,
		store:    store,
		library:  library,
		settings: sm,
		voices:   voices,
		player:   player,
	}

	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.handleVoiceState)

	return b
}

// Start opens the gateway connection and blocks until the context
// ends, then closes it.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return err
	}

	<-ctx.Done()
	return b.session.Close()
}

// Connected reports whether the gateway session is live.
func (b *Bot) Connected() bool {
	return b.session.DataReady
}

// GuildCount reports how many guilds the bot is in.
func (b *Bot) GuildCount() int {
	return len(b.session.State.Guilds)
}

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	logger.Info("logged in",
		"user", s.State.User.Username,
		"id", s.State.User.ID,
		"guilds", len(r.Guilds))

	if err := s.UpdateGameStatus(0, "/"+commandName+" start"); err != nil {
		logger.Warn("failed to set presence", "error", err)
	}

	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, "", commandTree()); err != nil {
		logger.Error("failed to register slash commands", "error", err)
		return
	}
	logger.Info("slash commands registered", "command", "/"+commandName)
}

// isAdmin gates settings-changing commands: the guild owner, anyone
// with Manage Guild, or anyone holding a configured admin role.
func (b *Bot) isAdmin(i *discordgo.InteractionCreate) bool {
	if i.Member == nil || i.Member.User == nil {
		return false
	}

	if g, err := b.session.State.Guild(i.GuildID); err == nil && g.OwnerID == i.Member.User.ID {
		return true
	}

	if i.Member.Permissions&discordgo.PermissionManageGuild != 0 {
		return true
	}

	adminRoles := b.settings.Get(i.GuildID).AdminRoles
	for _, held := range i.Member.Roles {
		for _, admin := range adminRoles {
			if held == admin {
				return true
			}
		}
	}
	return false
}

// memberVoiceChannel finds the voice channel a guild member occupies.
func (b *Bot) memberVoiceChannel(guildID, userID string) (string, bool) {
	g, err := b.session.State.Guild(guildID)
	if err != nil {
		return "", false
	}
	for _, vs := range g.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, true
		}
	}
	return "", false
}

func (b *Bot) respond(i *discordgo.InteractionCreate, content string) {
	b.respondWith(i, &discordgo.InteractionResponseData{Content: content})
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, content string) {
	b.respondWith(i, &discordgo.InteractionResponseData{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
}

func (b *Bot) respondEmbed(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) {
	b.respondWith(i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (b *Bot) respondWith(i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) {
	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		logger.Error("interaction response failed", "error", err)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
