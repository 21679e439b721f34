package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/settings"
	"github.com/laneguardian/laneguardian/internal/timetable"
	"github.com/laneguardian/laneguardian/internal/voice"
)

// maxImportSize bounds an uploaded configuration file.
const maxImportSize = 1 << 20

// exportFilename is the attachment name /lane export produces.
const exportFilename = "laneguardian-config.json"

// cmdExport hands the guild's configuration back as a JSON attachment
// that /lane import accepts.
func (b *Bot) cmdExport(i *discordgo.InteractionCreate) {
	g := b.settings.Get(i.GuildID)

	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		logger.Error("config export failed", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not export the configuration.")
		return
	}

	b.respondWith(i, &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("Server configuration: %d custom timer(s), voice %s/%s at %.1fx, lead %ds",
			len(g.Timers), g.TTS.Language, g.TTS.Accent, g.TTS.Speed, g.Lead),
		Files: []*discordgo.File{{
			Name:        exportFilename,
			ContentType: "application/json",
			Reader:      bytes.NewReader(data),
		}},
		Flags: discordgo.MessageFlagsEphemeral,
	})
}

// cmdImport loads a configuration attachment into the guild settings.
// Invalid timers are skipped individually, the same partial-failure
// treatment mode files get; a voice the synthesizer cannot produce
// rejects the whole file.
func (b *Bot) cmdImport(i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) {
	att := b.attachmentOption(i, opts["file"])
	if att == nil {
		b.respondEphemeral(i, "No configuration file attached.")
		return
	}
	if att.Size > maxImportSize {
		b.respondEphemeral(i, "File too large. Configuration files should be under 1MB.")
		return
	}
	if !strings.HasSuffix(att.Filename, ".json") {
		b.respondEphemeral(i, "Please provide a .json file containing the configuration.")
		return
	}

	merge := true
	if opt, ok := opts["merge"]; ok {
		merge = opt.BoolValue()
	}
	keepTimers := true
	if opt, ok := opts["keep_timers"]; ok {
		keepTimers = opt.BoolValue()
	}

	data, err := fetchAttachment(att.URL)
	if err != nil {
		logger.Error("config download failed", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not download the configuration file.")
		return
	}

	var imported settings.Guild
	if err := json.Unmarshal(data, &imported); err != nil {
		b.respondEphemeral(i, "Invalid JSON format. Please ensure the file contains a valid configuration.")
		return
	}

	skipped, err := sanitizeImport(&imported)
	if err != nil {
		b.respondEphemeral(i, fmt.Sprintf("Invalid configuration: %v", err))
		return
	}
	for _, reason := range skipped {
		logger.Warn("imported timer rejected", "guild_id", i.GuildID, "reason", reason)
	}

	var result settings.Guild
	err = b.settings.Update(i.GuildID, func(g *settings.Guild) {
		applyImport(g, imported, merge, keepTimers)
		result = *g
	})
	if err != nil {
		logger.Error("config import failed", "guild_id", i.GuildID, "error", err)
		b.respondEphemeral(i, "Could not save the imported configuration.")
		return
	}

	reply := fmt.Sprintf("Configuration imported: %d timer(s), voice %s/%s at %.1fx, lead %ds",
		len(result.Timers), result.TTS.Language, result.TTS.Accent, result.TTS.Speed, result.Lead)
	if len(skipped) > 0 {
		reply += fmt.Sprintf(" (%d invalid timer(s) skipped)", len(skipped))
	}
	b.respondEphemeral(i, reply)
}

// sanitizeImport validates an uploaded configuration in place. Timer
// entries that fail validation are dropped and reported; an unsupported
// voice fails the import outright since every announcement would break.
func sanitizeImport(g *settings.Guild) ([]string, error) {
	if g.TTS.Language == "" {
		g.TTS.Language = "en"
	}
	if g.TTS.Accent == "" {
		g.TTS.Accent = "us"
	}
	if !voice.ValidVoice(g.TTS.Language, g.TTS.Accent) {
		return nil, fmt.Errorf("unsupported voice %s/%s", g.TTS.Language, g.TTS.Accent)
	}

	var skipped []string
	for name, spec := range g.Timers {
		if _, err := timetable.BuildEntry(name, spec); err != nil {
			skipped = append(skipped, err.Error())
			delete(g.Timers, name)
		}
	}
	return skipped, nil
}

// applyImport writes an imported configuration onto the guild. A merge
// lets the imported fields win while optionally keeping existing custom
// timers that the file does not redefine; a plain import replaces
// everything.
func applyImport(g *settings.Guild, in settings.Guild, merge, keepTimers bool) {
	if merge && keepTimers && len(g.Timers) > 0 {
		merged := make(map[string]timetable.EntrySpec, len(g.Timers)+len(in.Timers))
		for name, spec := range g.Timers {
			merged[name] = spec
		}
		for name, spec := range in.Timers {
			merged[name] = spec
		}
		in.Timers = merged
	}
	*g = in
}

// attachmentOption resolves an attachment-typed command option.
func (b *Bot) attachmentOption(i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.MessageAttachment {
	if opt == nil {
		return nil
	}
	id, ok := opt.Value.(string)
	if !ok {
		return nil
	}

	resolved := i.ApplicationCommandData().Resolved
	if resolved == nil {
		return nil
	}
	return resolved.Attachments[id]
}

// fetchAttachment downloads an uploaded file from Discord's CDN.
func fetchAttachment(url string) ([]byte, error) {
	client := &http.Client{Timeout: 15 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if len(data) > maxImportSize {
		return nil, fmt.Errorf("attachment exceeds %d bytes", maxImportSize)
	}
	return data, nil
}
