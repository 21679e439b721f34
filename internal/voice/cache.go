package voice

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/storage"
)

// Cache keeps synthesized clips on disk keyed by content, so repeat
// announcements never hit the synthesis endpoint twice. When shared
// storage is configured it acts as a second tier: clips synthesized by
// one instance are picked up by the others.
type Cache struct {
	dir   string
	synth Synthesizer
	store *storage.Client // nil when shared storage is disabled
}

func NewCache(dir string, synth Synthesizer, store *storage.Client) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create audio cache dir: %w", err)
	}
	return &Cache{dir: dir, synth: synth, store: store}, nil
}

// Key derives the content address for a phrase and voice.
func Key(text string, p Params) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%s|%.2f", text, p.Language, p.Accent, p.Speed)))
	return hex.EncodeToString(sum[:]) + ".mp3"
}

// Get returns the local path of the clip for a phrase, synthesizing
// and caching it on first use.
func (c *Cache) Get(ctx context.Context, text string, p Params) (string, error) {
	key := Key(text, p)
	path := filepath.Join(c.dir, key)

	if _, err := os.Stat(path); err == nil {
		logger.Debug("audio cache hit", "key", key)
		return path, nil
	}

	if c.store != nil {
		data, err := c.store.GetAudio(ctx, key)
		switch {
		case err == nil:
			if werr := os.WriteFile(path, data, 0644); werr != nil {
				return "", fmt.Errorf("write cached audio: %w", werr)
			}
			logger.Debug("audio fetched from shared storage", "key", key)
			return path, nil
		case !errors.Is(err, storage.ErrNotFound):
			logger.Warn("shared audio fetch failed", "key", key, "error", err)
		}
	}

	data, err := c.synth.Synthesize(ctx, text, p)
	if err != nil {
		return "", fmt.Errorf("synthesize phrase: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write cached audio: %w", err)
	}

	if c.store != nil {
		if err := c.store.PutAudio(ctx, key, data); err != nil {
			logger.Warn("shared audio upload failed", "key", key, "error", err)
		}
	}

	return path, nil
}

// Prune removes cached clips older than maxAge and reports how many
// were deleted.
func (c *Cache) Prune(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, fmt.Errorf("read audio cache dir: %w", err)
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".mp3" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, entry.Name())); err != nil {
			logger.Warn("failed to prune cached audio", "file", entry.Name(), "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("audio cache pruned", "removed", removed)
	}
	return removed, nil
}
