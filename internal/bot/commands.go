package bot

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/match"
	"github.com/laneguardian/laneguardian/internal/settings"
	"github.com/laneguardian/laneguardian/internal/timetable"
	"github.com/laneguardian/laneguardian/internal/voice"
)

const (
	// discord caps embed fields and autocomplete choices at 25
	maxEmbedFields = 25
	embedColor     = 0x5865F2
)

// commandTree declares the /lane command group registered on ready.
// Mode names stay free-form strings: the library resolves unknown
// modes to the default, so stale choices never strand a guild.
func commandTree() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        commandName,
			Description: "Predecessor game timer announcements",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "start",
					Description: "Start the game timer in your voice channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "time",
							Description: "Current match time as M:SS (default 0:00)",
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "mode",
							Description: "Timetable mode (default from server settings)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "stop",
					Description: "Stop the game timer and leave voice",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "kill",
					Description: "Record an objective kill to predict its respawn",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:         discordgo.ApplicationCommandOptionString,
							Name:         "objective",
							Description:  "Objective that was killed",
							Required:     true,
							Autocomplete: true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "at",
							Description: "Match time of the kill as M:SS (default now)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "mute",
					Description: "Mute a category of announcements",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Category to mute",
							Required:    true,
							Choices:     categoryChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unmute",
					Description: "Unmute a category of announcements",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Category to unmute",
							Required:    true,
							Choices:     categoryChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "volume",
					Description: "Set the volume for a category of announcements",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Category to adjust",
							Required:    true,
							Choices:     categoryChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "percent",
							Description: "Volume from 0 to 100",
							Required:    true,
							MinValue:    floatPtr(0),
							MaxValue:    100,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "timers",
					Description: "List the configured timers",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Only show timers in this category",
							Choices:     categoryChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "addtimer",
					Description: "Add a custom timer or another message to an existing one",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Timer name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "time",
							Description: "Trigger time as M:SS",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message",
							Description: "Announcement message",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "category",
							Description: "Category (default reminder)",
							Choices:     categoryChoices(),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removetimer",
					Description: "Remove a custom timer",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Timer name",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "removemessage",
					Description: "Remove one message variant from a custom timer",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Timer name",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "index",
							Description: "Message number as shown by /lane timers",
							Required:    true,
							MinValue:    floatPtr(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "voice",
					Description: "Show or change the announcer voice",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "language",
							Description: "Speech language",
							Choices:     languageChoices(),
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "accent",
							Description: "Speech accent, e.g. us or co.uk",
						},
						{
							Type:        discordgo.ApplicationCommandOptionNumber,
							Name:        "speed",
							Description: "Speech speed from 0.5 to 2.0",
							MinValue:    floatPtr(0.5),
							MaxValue:    2.0,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "lead",
							Description: "Announce this many seconds before the event",
							MinValue:    floatPtr(0),
							MaxValue:    60,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "reload",
					Description: "Reload timetable files from disk",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "mode",
							Description: "Only reload this mode",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "say",
					Description: "Speak a message in the voice channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message",
							Description: "Message to speak",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "admin",
					Description: "Toggle a role's access to admin commands",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to toggle",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "export",
					Description: "Export the server configuration as a JSON file",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "import",
					Description: "Import a server configuration from a JSON file",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionAttachment,
							Name:        "file",
							Description: "Configuration file produced by /lane export",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "merge",
							Description: "Merge with the current configuration instead of replacing it (default true)",
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "keep_timers",
							Description: "Keep existing custom timers when merging (default true)",
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "autostart",
					Description: "Start the timer automatically when someone joins voice",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Enable or disable auto-start",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "ping",
					Description: "Check that the bot is responding",
				},
			},
		},
	}
}

func categoryChoices() []*discordgo.ApplicationCommandOptionChoice {
	cats := timetable.Categories()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(cats))
	for _, c := range cats {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  string(c),
			Value: string(c),
		})
	}
	return choices
}

func languageChoices() []*discordgo.ApplicationCommandOptionChoice {
	langs := voice.Languages()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(langs))
	for _, l := range langs {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  l,
			Value: l,
		})
	}
	return choices
}

func floatPtr(v float64) *float64 { return &v }

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
	case discordgo.InteractionApplicationCommandAutocomplete:
		b.handleAutocomplete(i)
		return
	default:
		return
	}

	data := i.ApplicationCommandData()
	if data.Name != commandName || len(data.Options) == 0 {
		return
	}

	if i.GuildID == "" || i.Member == nil || i.Member.User == nil {
		b.respondEphemeral(i, "This command only works in a server.")
		return
	}

	sub := data.Options[0]
	opts := optionMap(sub.Options)

	logger.Debug("command received",
		"guild_id", i.GuildID, "user", i.Member.User.ID, "command", sub.Name)

	switch sub.Name {
	case "addtimer", "removetimer", "removemessage", "voice", "reload",
		"admin", "autostart", "export", "import":
		if !b.isAdmin(i) {
			b.respondEphemeral(i, "You don't have permission to use this command!")
			return
		}
	}

	switch sub.Name {
	case "start":
		b.cmdStart(i, opts)
	case "stop":
		b.cmdStop(i)
	case "kill":
		b.cmdKill(i, opts)
	case "mute":
		b.cmdMute(i, opts, true)
	case "unmute":
		b.cmdMute(i, opts, false)
	case "volume":
		b.cmdVolume(i, opts)
	case "timers":
		b.cmdTimers(i, opts)
	case "addtimer":
		b.cmdAddTimer(i, opts)
	case "removetimer":
		b.cmdRemoveTimer(i, opts)
	case "removemessage":
		b.cmdRemoveMessage(i, opts)
	case "voice":
		b.cmdVoice(i, opts)
	case "reload":
		b.cmdReload(i, opts)
	case "say":
		b.cmdSay(i, opts)
	case "admin":
		b.cmdAdmin(i, opts)
	case "export":
		b.cmdExport(i)
	case "import":
		b.cmdImport(i, opts)
	case "autostart":
		b.cmdAutostart(i, opts)
	case "ping":
		b.respondEphemeral(i, "Pong! Bot is working")
	default:
		b.respondEphemeral(i, fmt.Sprintf("Unknown command '%s'", sub.Name))
	}
}

// handleAutocomplete serves objective suggestions for /lane kill from
// the running session's respawn-tracked entries.
func (b *Bot) handleAutocomplete(i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if data.Name != commandName || len(data.Options) == 0 || data.Options[0].Name != "kill" {
		return
	}

	var partial string
	for _, opt := range data.Options[0].Options {
		if opt.Name == "objective" && opt.Focused {
			partial = strings.ToLower(strings.TrimSpace(opt.StringValue()))
		}
	}

	var choices []*discordgo.ApplicationCommandOptionChoice
	if s, ok := b.store.Get(i.GuildID); ok {
		for _, e := range s.Objectives() {
			display := e.DisplayName()
			if partial != "" && !strings.Contains(strings.ToLower(display), partial) &&
				!strings.Contains(e.Name, partial) {
				continue
			}
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
				Name:  display,
				Value: e.Name,
			})
		}
	}
	if len(choices) > maxEmbedFields {
		choices = choices[:maxEmbedFields]
	}

	err := b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
	if err != nil {
		logger.Error("autocomplete response failed", "error", err)
	}
}

func (b *Bot) cmdStart(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	channelID, ok := b.memberVoiceChannel(i.GuildID, i.Member.User.ID)
	if !ok {
		b.respondEphemeral(i, "You need to be in a voice channel!")
		return
	}

	g := b.settings.Get(i.GuildID)

	offset := "0:00"
	if opt, ok := opts["time"]; ok {
		offset = opt.StringValue()
	}
	mode := g.DefaultMode
	if opt, ok := opts["mode"]; ok {
		mode = opt.StringValue()
	}

	overlay, warnings := g.OverlayEntries()
	for _, w := range warnings {
		logger.Warn("custom timer rejected", "guild_id", i.GuildID, "reason", w)
	}

	s, err := b.store.Start(i.GuildID, match.StartParams{
		Offset:     offset,
		Mode:       mode,
		Lead:       g.Lead,
		Categories: g.CategoryStates(),
		Overlay:    overlay,
	})
	if err != nil {
		if errors.Is(err, timetable.ErrInvalidTimeFormat) {
			b.respondEphemeral(i, "Invalid time format. Use M:SS (e.g., 0:05)")
			return
		}
		logger.Error("session start failed", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not start the game timer.")
		return
	}

	if err := b.voices.Join(i.GuildID, channelID); err != nil {
		b.store.Stop(i.GuildID)
		logger.Error("voice join failed", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not join your voice channel.")
		return
	}

	b.respond(i, fmt.Sprintf("Game timer started at %s (mode: %s)",
		timetable.FormatOffset(s.Elapsed()), s.Mode()))
	b.player.Say(i.GuildID, "Game timer started", 1.0)
}

func (b *Bot) cmdStop(i *discordgo.InteractionCreate) {
	stopped := b.store.Stop(i.GuildID)
	b.player.Stop(i.GuildID)
	b.voices.Leave(i.GuildID)

	if !stopped {
		b.respondEphemeral(i, "No game timer is running")
		return
	}
	b.respond(i, "Game timer stopped")
}

func (b *Bot) cmdKill(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	s, ok := b.store.Get(i.GuildID)
	if !ok {
		b.respondEphemeral(i, "No game timer is running")
		return
	}

	objective := opts["objective"].StringValue()

	at := -1
	if opt, ok := opts["at"]; ok {
		parsed, err := timetable.ParseOffset(opt.StringValue())
		if err != nil {
			b.respondEphemeral(i, "Invalid time format. Use M:SS (e.g., 0:05)")
			return
		}
		at = parsed
	}

	kill, err := s.RecordKill(objective, at)
	if err != nil {
		if errors.Is(err, match.ErrUnknownObjective) {
			b.respondEphemeral(i, fmt.Sprintf("Unknown objective '%s'", objective))
			return
		}
		b.respondEphemeral(i, "No game timer is running")
		return
	}

	display := timetable.Entry{Name: kill.Objective}.DisplayName()
	reply := fmt.Sprintf("%s killed at %s, respawn expected at %s",
		display, timetable.FormatOffset(kill.At), timetable.FormatOffset(kill.Respawn))
	if kill.Window > 0 {
		reply += fmt.Sprintf(" (window ±%ds)", kill.Window)
	}
	b.respond(i, reply)
}

func (b *Bot) cmdMute(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, muted bool) {
	cat, ok := timetable.ParseCategory(opts["category"].StringValue())
	if !ok {
		b.respondEphemeral(i, fmt.Sprintf("Unknown category '%s'", opts["category"].StringValue()))
		return
	}

	b.applyCategory(i.GuildID, cat, func(st *timetable.CategoryState) {
		st.Muted = muted
	})

	if muted {
		b.respond(i, fmt.Sprintf("Muted %s announcements", cat))
	} else {
		b.respond(i, fmt.Sprintf("Unmuted %s announcements", cat))
	}
}

func (b *Bot) cmdVolume(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	cat, ok := timetable.ParseCategory(opts["category"].StringValue())
	if !ok {
		b.respondEphemeral(i, fmt.Sprintf("Unknown category '%s'", opts["category"].StringValue()))
		return
	}

	percent := opts["percent"].IntValue()
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	b.applyCategory(i.GuildID, cat, func(st *timetable.CategoryState) {
		st.Volume = float64(percent) / 100
	})

	b.respond(i, fmt.Sprintf("%s volume set to %d%%", cat, percent))
}

// applyCategory changes one category's state on both the persisted
// guild settings and the live session, so the change survives restarts
// and takes effect mid-match.
func (b *Bot) applyCategory(guildID string, cat timetable.Category, fn func(*timetable.CategoryState)) {
	err := b.settings.Update(guildID, func(g *settings.Guild) {
		if g.Categories == nil {
			g.Categories = make(map[string]timetable.CategoryState)
		}
		st, ok := g.Categories[string(cat)]
		if !ok {
			st = timetable.DefaultCategoryState()
		}
		fn(&st)
		g.Categories[string(cat)] = st
	})
	if err != nil {
		logger.Error("failed to save category settings", "guild_id", guildID, "error", err)
	}

	if s, ok := b.store.Get(guildID); ok {
		st := s.CategoryState(cat)
		fn(&st)
		s.SetCategoryState(cat, st.Muted, st.Volume)
	}
}

func (b *Bot) cmdTimers(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	g := b.settings.Get(i.GuildID)

	mode := g.DefaultMode
	if s, ok := b.store.Get(i.GuildID); ok {
		mode = s.Mode()
	}
	mode, table := b.library.Resolve(mode)

	var filter timetable.Category
	if opt, ok := opts["category"]; ok {
		cat, ok := timetable.ParseCategory(opt.StringValue())
		if !ok {
			b.respondEphemeral(i, fmt.Sprintf("Unknown category '%s'", opt.StringValue()))
			return
		}
		filter = cat
	}

	entries := append([]timetable.Entry(nil), table.Entries()...)
	overlay, _ := g.OverlayEntries()
	entries = append(entries, overlay...)

	sort.Slice(entries, func(x, y int) bool {
		if entries[x].Offset != entries[y].Offset {
			return entries[x].Offset < entries[y].Offset
		}
		return entries[x].Name < entries[y].Name
	})

	var fields []*discordgo.MessageEmbedField
	for _, e := range entries {
		if filter != "" && e.Category != filter {
			continue
		}
		var value strings.Builder
		fmt.Fprintf(&value, "Category: %s", e.Category)
		for n, msg := range e.Messages {
			fmt.Fprintf(&value, "\n%d. %s", n+1, msg)
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s - %s", timetable.FormatOffset(e.Offset), e.DisplayName()),
			Value: value.String(),
		})
	}

	if len(fields) == 0 {
		b.respondEphemeral(i, "No timers configured")
		return
	}

	first := fields
	if len(first) > maxEmbedFields {
		first = fields[:maxEmbedFields]
	}
	b.respondEmbed(i, &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Game Timers (%s)", mode),
		Color:  embedColor,
		Fields: first,
	})

	for start := maxEmbedFields; start < len(fields); start += maxEmbedFields {
		end := start + maxEmbedFields
		if end > len(fields) {
			end = len(fields)
		}
		_, err := b.session.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
			Embeds: []*discordgo.MessageEmbed{{
				Title:  fmt.Sprintf("Game Timers (%s) page %d", mode, start/maxEmbedFields+1),
				Color:  embedColor,
				Fields: fields[start:end],
			}},
		})
		if err != nil {
			logger.Error("timer list followup failed", "guild_id", i.GuildID, "error", err)
			return
		}
	}
}

func (b *Bot) cmdAddTimer(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	name := normalizeTimerName(opts["name"].StringValue())
	message := opts["message"].StringValue()

	category := string(timetable.CategoryReminder)
	if opt, ok := opts["category"]; ok {
		category = opt.StringValue()
	}

	offset, err := timetable.ParseOffset(opts["time"].StringValue())
	if err != nil {
		b.respondEphemeral(i, "Invalid time format. Use M:SS (e.g., 0:05)")
		return
	}

	t := offset
	if _, err := timetable.BuildEntry(name, timetable.EntrySpec{
		Time:     &t,
		Message:  message,
		Category: category,
	}); err != nil {
		b.respondEphemeral(i, fmt.Sprintf("Invalid timer: %v", err))
		return
	}

	var count int
	err = b.settings.Update(i.GuildID, func(g *settings.Guild) {
		if g.Timers == nil {
			g.Timers = make(map[string]timetable.EntrySpec)
		}

		spec, ok := g.Timers[name]
		if !ok {
			spec = timetable.EntrySpec{}
		}
		if spec.Message != "" {
			spec.Messages = append([]string{spec.Message}, spec.Messages...)
			spec.Message = ""
		}

		spec.Time = &t
		spec.Category = category
		spec.Messages = append(spec.Messages, message)
		g.Timers[name] = spec
		count = len(spec.Messages)
	})
	if err != nil {
		logger.Error("failed to save timer", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not save the timer.")
		return
	}

	b.respond(i, fmt.Sprintf("Timer '%s' updated at %s with %d message(s)",
		name, timetable.FormatOffset(offset), count))
}

func (b *Bot) cmdRemoveTimer(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	name := normalizeTimerName(opts["name"].StringValue())

	found := false
	err := b.settings.Update(i.GuildID, func(g *settings.Guild) {
		if _, ok := g.Timers[name]; ok {
			delete(g.Timers, name)
			found = true
		}
	})
	if err != nil {
		logger.Error("failed to remove timer", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not remove the timer.")
		return
	}

	if !found {
		b.respondEphemeral(i, fmt.Sprintf("Timer '%s' not found", name))
		return
	}
	b.respond(i, fmt.Sprintf("Timer '%s' removed", name))
}

func (b *Bot) cmdRemoveMessage(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	name := normalizeTimerName(opts["name"].StringValue())
	index := int(opts["index"].IntValue())

	var removed string
	var helpErr error
	err := b.settings.Update(i.GuildID, func(g *settings.Guild) {
		removed, helpErr = removeTimerMessage(g, name, index)
	})
	if err != nil {
		logger.Error("failed to save timer", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not save the timer.")
		return
	}
	if helpErr != nil {
		b.respondEphemeral(i, capitalize(helpErr.Error()))
		return
	}

	b.respond(i, fmt.Sprintf("Removed message from timer '%s': %s", name, removed))
}

// removeTimerMessage drops one variant from a stored timer, counting
// from 1 to match the /lane timers listing. The last message cannot be
// removed; a timer with nothing to say is removed with removetimer.
func removeTimerMessage(g *settings.Guild, name string, index int) (string, error) {
	spec, ok := g.Timers[name]
	if !ok {
		return "", fmt.Errorf("timer '%s' not found", name)
	}

	msgs := spec.Messages
	if spec.Message != "" {
		msgs = append([]string{spec.Message}, msgs...)
	}
	if index < 1 || index > len(msgs) {
		return "", fmt.Errorf("invalid message index, timer '%s' has %d message(s)", name, len(msgs))
	}
	if len(msgs) == 1 {
		return "", fmt.Errorf("timer '%s' has only one message, use removetimer to delete it", name)
	}

	removed := msgs[index-1]
	kept := make([]string, 0, len(msgs)-1)
	kept = append(kept, msgs[:index-1]...)
	kept = append(kept, msgs[index:]...)

	spec.Message = ""
	spec.Messages = kept
	g.Timers[name] = spec
	return removed, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (b *Bot) cmdVoice(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	g := b.settings.Get(i.GuildID)

	if len(opts) == 0 {
		b.respondEphemeral(i, fmt.Sprintf(
			"Voice: language %s, accent %s, speed %.1fx, lead %ds",
			g.TTS.Language, g.TTS.Accent, g.TTS.Speed, g.Lead))
		return
	}

	lang := g.TTS.Language
	accent := g.TTS.Accent
	speed := g.TTS.Speed
	lead := g.Lead

	if opt, ok := opts["language"]; ok {
		lang = opt.StringValue()
	}
	if opt, ok := opts["accent"]; ok {
		accent = opt.StringValue()
	}
	if opt, ok := opts["speed"]; ok {
		speed = opt.FloatValue()
	}
	if opt, ok := opts["lead"]; ok {
		lead = int(opt.IntValue())
	}

	if speed < 0.5 || speed > 2.0 {
		b.respondEphemeral(i, "Speed must be between 0.5 (half speed) and 2.0 (double speed)")
		return
	}
	if !voice.ValidVoice(lang, accent) {
		b.respondEphemeral(i, fmt.Sprintf("Invalid language (%s) and accent (%s) combination", lang, accent))
		return
	}
	if lead < 0 || lead > 60 {
		b.respondEphemeral(i, "Lead must be between 0 and 60 seconds")
		return
	}

	err := b.settings.Update(i.GuildID, func(g *settings.Guild) {
		g.TTS.Language = lang
		g.TTS.Accent = accent
		g.TTS.Speed = speed
		g.Lead = lead
	})
	if err != nil {
		logger.Error("failed to save voice settings", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not save voice settings.")
		return
	}

	b.respond(i, fmt.Sprintf("Voice updated: language %s, accent %s, speed %.1fx, lead %ds",
		lang, accent, speed, lead))
}

func (b *Bot) cmdReload(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	if opt, ok := opts["mode"]; ok {
		mode := opt.StringValue()
		if err := b.library.Reload(mode); err != nil {
			b.respondEphemeral(i, fmt.Sprintf("Reload failed: %v", err))
			return
		}
		b.respond(i, fmt.Sprintf("Mode '%s' reloaded: %d entries", mode, b.library.Table(mode).Len()))
		return
	}

	if err := b.library.Load(); err != nil {
		b.respondEphemeral(i, fmt.Sprintf("Reload failed: %v", err))
		return
	}
	b.respond(i, fmt.Sprintf("Timetables reloaded: %s", strings.Join(b.library.Modes(), ", ")))
}

func (b *Bot) cmdSay(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	message := opts["message"].StringValue()

	if _, ok := b.voices.Channel(i.GuildID); !ok {
		channelID, ok := b.memberVoiceChannel(i.GuildID, i.Member.User.ID)
		if !ok {
			b.respondEphemeral(i, "You need to be in a voice channel!")
			return
		}
		if err := b.voices.Join(i.GuildID, channelID); err != nil {
			logger.Error("voice join failed", "guild_id", i.GuildID, "error", err)
			b.respondEphemeral(i, "Could not join your voice channel.")
			return
		}
	}

	b.player.Say(i.GuildID, message, 1.0)
	b.respond(i, fmt.Sprintf("Playing: %s", message))
}

func (b *Bot) cmdAdmin(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	role := opts["role"].RoleValue(b.session, i.GuildID)
	if role == nil {
		b.respondEphemeral(i, "Unknown role")
		return
	}

	added := false
	err := b.settings.Update(i.GuildID, func(g *settings.Guild) {
		for n, id := range g.AdminRoles {
			if id == role.ID {
				g.AdminRoles = append(g.AdminRoles[:n], g.AdminRoles[n+1:]...)
				return
			}
		}
		g.AdminRoles = append(g.AdminRoles, role.ID)
		added = true
	})
	if err != nil {
		logger.Error("failed to save admin roles", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not save admin roles.")
		return
	}

	if added {
		b.respond(i, fmt.Sprintf("Added %s as admin role", role.Name))
	} else {
		b.respond(i, fmt.Sprintf("Removed %s from admin roles", role.Name))
	}
}

func (b *Bot) cmdAutostart(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	enabled := opts["enabled"].BoolValue()

	err := b.settings.Update(i.GuildID, func(g *settings.Guild) {
		g.AutoStart = enabled
	})
	if err != nil {
		logger.Error("failed to save auto-start", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not save auto-start.")
		return
	}

	if enabled {
		b.respond(i, "Auto-start enabled: the timer starts when someone joins a voice channel")
	} else {
		b.respond(i, "Auto-start disabled")
	}
}

func normalizeTimerName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}
