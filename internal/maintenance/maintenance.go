package maintenance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/settings"
	"github.com/laneguardian/laneguardian/internal/storage"
	"github.com/laneguardian/laneguardian/internal/voice"
)

// cronParser is configured for standard 5-field cron expressions
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// backupRetention is how many settings snapshots are kept remotely.
const backupRetention = 30

// cacheMaxAge is how long unused synthesized clips stay on disk.
const cacheMaxAge = 7 * 24 * time.Hour

// BackupStore is the slice of the storage client the runner needs.
type BackupStore interface {
	UploadBackup(ctx context.Context, name string, data []byte) error
	ListBackups(ctx context.Context) ([]storage.ObjectInfo, error)
	DeleteBackup(ctx context.Context, name string) error
}

// Runner performs scheduled housekeeping: it snapshots guild settings
// to shared storage and prunes stale cached audio.
type Runner struct {
	schedule cron.Schedule
	spec     string
	tz       *time.Location
	settings *settings.Manager
	store    BackupStore
	cache    *voice.Cache
}

func NewRunner(spec string, tz *time.Location, sm *settings.Manager, store BackupStore, cache *voice.Cache) (*Runner, error) {
	sched, err := cronParser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid backup schedule %q: %w", spec, err)
	}

	return &Runner{
		schedule: sched,
		spec:     spec,
		tz:       tz,
		settings: sm,
		store:    store,
		cache:    cache,
	}, nil
}

// Run ticks until the context ends, firing whenever the schedule comes
// due. The check interval keeps minute-level schedules accurate.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	next := r.schedule.Next(time.Now().In(r.tz))
	logger.Info("maintenance scheduled", "spec", r.spec, "next", next)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("maintenance runner stopping")
			return
		case now := <-ticker.C:
			if now.In(r.tz).Before(next) {
				continue
			}
			r.runOnce(ctx)
			next = r.schedule.Next(now.In(r.tz))
			logger.Debug("maintenance next run scheduled", "next", next)
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	r.backupSettings(ctx)
	r.pruneBackups(ctx)
	r.pruneAudio()
}

func (r *Runner) backupSettings(ctx context.Context) {
	if r.store == nil {
		return
	}

	data, err := r.settings.Snapshot()
	if err != nil {
		logger.Error("settings snapshot failed", "error", err)
		return
	}

	name := fmt.Sprintf("guilds-%s.json", time.Now().In(r.tz).Format("20060102-150405"))

	uploadCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := r.store.UploadBackup(uploadCtx, name, data); err != nil {
		logger.Error("settings backup failed", "name", name, "error", err)
	}
}

func (r *Runner) pruneBackups(ctx context.Context) {
	if r.store == nil {
		return
	}

	listCtx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	backups, err := r.store.ListBackups(listCtx)
	if err != nil {
		logger.Error("failed to list settings backups", "error", err)
		return
	}
	if len(backups) <= backupRetention {
		return
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].ModTime.After(backups[j].ModTime)
	})

	for _, old := range backups[backupRetention:] {
		if err := r.store.DeleteBackup(listCtx, old.Name); err != nil {
			logger.Warn("failed to delete old backup", "name", old.Name, "error", err)
			continue
		}
		logger.Debug("old backup deleted", "name", old.Name)
	}
}

func (r *Runner) pruneAudio() {
	if r.cache == nil {
		return
	}
	if _, err := r.cache.Prune(cacheMaxAge); err != nil {
		logger.Warn("audio cache prune failed", "error", err)
	}
}
