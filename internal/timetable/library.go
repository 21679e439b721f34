package timetable

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/laneguardian/laneguardian/internal/logger"
)

// Library holds one table per mode and serves read-only snapshots to
// sessions. Reload swaps a table pointer under the write lock, so a
// running session picks up the new table on its next tick.
type Library struct {
	mu          sync.RWMutex
	dir         string
	defaultMode string
	tables      map[string]*Table
}

func NewLibrary(dir, defaultMode string) *Library {
	return &Library{
		dir:         dir,
		defaultMode: defaultMode,
		tables:      make(map[string]*Table),
	}
}

// Load scans the modes directory for <mode>.json files. A missing or
// empty directory is not an error: the built-in table backs the
// default mode whenever no file provides it.
func (l *Library) Load() error {
	loaded := make(map[string]*Table)

	files, err := os.ReadDir(l.dir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read modes dir: %w", err)
	}

	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		mode := strings.TrimSuffix(f.Name(), ".json")
		table, warnings, err := LoadFile(filepath.Join(l.dir, f.Name()), mode)
		if err != nil {
			logger.Error("mode file failed to load", "mode", mode, "error", err)
			continue
		}

		for _, w := range warnings {
			logger.Warn("timer entry rejected", "mode", mode, "reason", w)
		}

		loaded[mode] = table
		logger.Info("mode loaded", "mode", mode, "entries", table.Len())
	}

	if _, ok := loaded[l.defaultMode]; !ok {
		loaded[l.defaultMode] = DefaultTable(l.defaultMode)
		logger.Info("built-in table installed", "mode", l.defaultMode)
	}

	l.mu.Lock()
	l.tables = loaded
	l.mu.Unlock()

	return nil
}

// Reload re-reads a single mode file and swaps its table in place.
func (l *Library) Reload(mode string) error {
	path := filepath.Join(l.dir, mode+".json")
	table, warnings, err := LoadFile(path, mode)
	if err != nil {
		return err
	}

	for _, w := range warnings {
		logger.Warn("timer entry rejected", "mode", mode, "reason", w)
	}

	l.mu.Lock()
	l.tables[mode] = table
	l.mu.Unlock()

	logger.Info("mode reloaded", "mode", mode, "entries", table.Len())
	return nil
}

// Resolve maps a requested mode to a loaded table, falling back to the
// default mode with a warning when the mode is unknown. Returns the
// mode actually in effect.
func (l *Library) Resolve(mode string) (string, *Table) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if mode == "" {
		mode = l.defaultMode
	}

	if t, ok := l.tables[mode]; ok {
		return mode, t
	}

	logger.Warn("unknown mode, using default", "mode", mode, "default", l.defaultMode)
	return l.defaultMode, l.tables[l.defaultMode]
}

// Table returns the current table for a mode without fallback logging.
// Sessions call this every tick after resolving their mode once.
func (l *Library) Table(mode string) *Table {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if t, ok := l.tables[mode]; ok {
		return t
	}
	return l.tables[l.defaultMode]
}

// Modes lists the loaded mode names, sorted.
func (l *Library) Modes() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	modes := make([]string, 0, len(l.tables))
	for m := range l.tables {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}
