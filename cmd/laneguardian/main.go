package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/laneguardian/laneguardian/internal/announce"
	"github.com/laneguardian/laneguardian/internal/bot"
	"github.com/laneguardian/laneguardian/internal/config"
	"github.com/laneguardian/laneguardian/internal/health"
	"github.com/laneguardian/laneguardian/internal/logger"
	"github.com/laneguardian/laneguardian/internal/maintenance"
	"github.com/laneguardian/laneguardian/internal/match"
	"github.com/laneguardian/laneguardian/internal/settings"
	"github.com/laneguardian/laneguardian/internal/storage"
	"github.com/laneguardian/laneguardian/internal/timetable"
	"github.com/laneguardian/laneguardian/internal/voice"
)

func init() {
	godotenv.Load()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}

	library := timetable.NewLibrary(cfg.ModesDir, cfg.DefaultMode)
	if err := library.Load(); err != nil {
		logger.Fatal("failed to load timetables", "error", err)
	}

	guilds := settings.NewManager(cfg.SettingsPath)
	if err := guilds.Load(); err != nil {
		logger.Fatal("failed to load guild settings", "error", err)
	}

	rules, err := voice.LoadRules(cfg.SpeechPath)
	if err != nil {
		logger.Fatal("failed to load speech rules", "error", err)
	}

	// minio storage (optional): shared audio cache and settings backups
	var storageClient *storage.Client
	if cfg.Storage.Enabled {
		storageClient, err = storage.NewClient(storage.Config{
			Endpoint:  cfg.Storage.Endpoint,
			AccessKey: cfg.Storage.AccessKey,
			SecretKey: cfg.Storage.SecretKey,
			UseSSL:    cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Error("failed to create storage client", "error", err)
		} else {
			initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := storageClient.Init(initCtx); err != nil {
				logger.Error("failed to init storage buckets", "error", err)
				storageClient = nil
			} else {
				logger.Info("storage enabled", "endpoint", cfg.Storage.Endpoint)
			}
			cancel()
		}
	}

	synth := voice.NewGoogleSynthesizer(cfg.TTS.BaseURL, cfg.TTS.Timeout)
	cache, err := voice.NewCache(cfg.CacheDir, synth, storageClient)
	if err != nil {
		logger.Fatal("failed to create audio cache", "error", err)
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		logger.Fatal("failed to create discord session", "error", err)
	}

	voices := voice.NewManager(session)
	player := voice.NewPlayer(cache, voices, rules, guilds)
	announcer := announce.NewAnnouncer(player, time.Now().UnixNano())

	store := match.NewStore(library, clockwork.NewRealClock(), cfg.TickInterval, announcer.Announce)

	guardian := bot.New(session, store, library, guilds, voices, player)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthSrv := health.NewServer(cfg.HealthAddr, func() health.Stats {
		return health.Stats{
			Connected: guardian.Connected(),
			Sessions:  store.Count(),
			Voice:     voices.Count(),
			Guilds:    guardian.GuildCount(),
		}
	})
	healthSrv.Start()

	// nightly settings backup and audio cache pruning
	if storageClient != nil {
		tz, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Warn("invalid timezone, using UTC", "timezone", cfg.Timezone)
			tz = time.UTC
		}

		runner, err := maintenance.NewRunner(cfg.BackupSchedule, tz, guilds, storageClient, cache)
		if err != nil {
			logger.Error("failed to create maintenance runner", "error", err)
		} else {
			go runner.Run(ctx)
			logger.Info("maintenance enabled", "schedule", cfg.BackupSchedule)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- guardian.Start(ctx)
	}()

	logger.Info("lane guardian started",
		"modes", library.Modes(),
		"default_mode", cfg.DefaultMode,
		"guilds_configured", guilds.Count(),
		"health", cfg.HealthAddr,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutting down")
	case err := <-errCh:
		logger.Fatal("gateway failed", "error", err)
	}

	store.StopAll()
	voices.LeaveAll()
	cancel()

	if err := <-errCh; err != nil {
		logger.Error("gateway close failed", "error", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("health server shutdown failed", "error", err)
	}
	shutdownCancel()
}
