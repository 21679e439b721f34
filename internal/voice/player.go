package voice

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/jonas747/dca"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/settings"
)

// sendTimeout bounds a single opus frame send so a stalled gateway
// never wedges a playback goroutine.
const sendTimeout = 5 * time.Second

// synthTimeout bounds the synthesis leg of one announcement.
const synthTimeout = 15 * time.Second

// playback tracks one in-flight announcement for a guild.
type playback struct {
	cancel context.CancelFunc
}

// Player speaks announcements into guild voice channels. One playback
// per guild at a time; a newer line preempts whatever is in flight,
// the game state has moved on and the old line is no longer worth
// finishing.
type Player struct {
	cache    *Cache
	voices   *Manager
	rules    *Rules
	settings *settings.Manager

	mu      sync.Mutex
	playing map[string]*playback
}

func NewPlayer(cache *Cache, voices *Manager, rules *Rules, sm *settings.Manager) *Player {
	return &Player{
		cache:    cache,
		voices:   voices,
		rules:    rules,
		settings: sm,
		playing:  make(map[string]*playback),
	}
}

// Say speaks a line in the guild's voice channel. It returns
// immediately; synthesis and streaming happen on their own goroutine.
func (p *Player) Say(guildID, text string, volume float64) {
	go p.speak(guildID, text, volume)
}

// Stop cancels the guild's in-flight playback, if any.
func (p *Player) Stop(guildID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pb, ok := p.playing[guildID]; ok {
		pb.cancel()
		delete(p.playing, guildID)
	}
}

func (p *Player) speak(guildID, text string, volume float64) {
	vc, ok := p.voices.Connection(guildID)
	if !ok {
		logger.Debug("no voice connection, dropping line", "guild_id", guildID)
		return
	}

	tts := p.settings.Get(guildID).TTS
	params := Params{Language: tts.Language, Accent: tts.Accent, Speed: tts.Speed}
	shaped := p.rules.Shape(text)

	ctx, pb := p.preempt(guildID)
	defer p.clear(guildID, pb)

	synthCtx, cancel := context.WithTimeout(ctx, synthTimeout)
	path, err := p.cache.Get(synthCtx, shaped, params)
	cancel()
	if err != nil {
		logger.Error("announcement synthesis failed", "guild_id", guildID, "error", err)
		return
	}

	p.stream(ctx, guildID, vc, path, volume, tts.Speed)
}

// preempt cancels the guild's current playback and registers a new one.
func (p *Player) preempt(guildID string) (context.Context, *playback) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if prev, ok := p.playing[guildID]; ok {
		logger.Debug("preempting playback", "guild_id", guildID)
		prev.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	pb := &playback{cancel: cancel}
	p.playing[guildID] = pb
	return ctx, pb
}

// clear drops the playback registration unless a newer one replaced it.
func (p *Player) clear(guildID string, pb *playback) {
	pb.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing[guildID] == pb {
		delete(p.playing, guildID)
	}
}

func (p *Player) stream(ctx context.Context, guildID string, vc *discordgo.VoiceConnection, path string, volume, speed float64) {
	enc, err := dca.EncodeFile(path, encodeOptions(volume, speed))
	if err != nil {
		logger.Error("audio encode failed", "guild_id", guildID, "error", err)
		return
	}
	defer enc.Cleanup()

	if err := vc.Speaking(true); err != nil {
		logger.Warn("failed to set speaking state", "guild_id", guildID, "error", err)
	}
	defer vc.Speaking(false)

	for {
		frame, err := enc.OpusFrame()
		if err != nil {
			if err != io.EOF {
				logger.Warn("audio stream ended early", "guild_id", guildID, "error", err)
			}
			return
		}

		select {
		case <-ctx.Done():
			return
		case vc.OpusSend <- frame:
		case <-time.After(sendTimeout):
			logger.Warn("voice send timed out", "guild_id", guildID)
			return
		}
	}
}

func encodeOptions(volume, speed float64) *dca.EncodeOptions {
	opts := &dca.EncodeOptions{
		Volume:           int(volume * 256),
		Channels:         2,
		FrameRate:        48000,
		FrameDuration:    20,
		Bitrate:          64,
		Application:      dca.AudioApplicationVoip,
		CompressionLevel: 10,
		PacketLoss:       1,
		BufferedFrames:   100,
		VBR:              true,
	}
	if opts.Volume <= 0 {
		opts.Volume = 1
	}
	// speeds under slowThreshold were already synthesized with the
	// endpoint's slow voice; adding atempo on top would slow them twice
	if speed >= slowThreshold && speed != 1.0 {
		opts.AudioFilter = fmt.Sprintf("atempo=%.2f", speed)
	}
	return opts
}
