package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

func Load() (*Config, error) {
	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN not set")
	}

	defaultMode := os.Getenv("GUARDIAN_DEFAULT_MODE")
	if defaultMode == "" {
		defaultMode = "ranked"
	}

	modesDir := os.Getenv("GUARDIAN_MODES")
	if modesDir == "" {
		modesDir = "modes"
	}

	settingsPath := os.Getenv("GUARDIAN_SETTINGS")
	if settingsPath == "" {
		settingsPath = "guilds.json"
	}

	speechPath := os.Getenv("GUARDIAN_SPEECH")
	if speechPath == "" {
		speechPath = "speech.yml"
	}

	cacheDir := os.Getenv("GUARDIAN_CACHE_DIR")
	if cacheDir == "" {
		cacheDir = filepath.Join(os.TempDir(), "laneguardian-audio")
	}

	healthAddr := os.Getenv("GUARDIAN_HEALTH_ADDR")
	if healthAddr == "" {
		healthAddr = ":8081"
	}

	backupSchedule := os.Getenv("GUARDIAN_BACKUP_SCHEDULE")
	if backupSchedule == "" {
		backupSchedule = "0 4 * * *"
	}

	timezone := os.Getenv("TZ")
	if timezone == "" {
		timezone = "UTC"
	}

	return &Config{
		Token:          token,
		DefaultMode:    defaultMode,
		ModesDir:       modesDir,
		SettingsPath:   settingsPath,
		SpeechPath:     speechPath,
		CacheDir:       cacheDir,
		HealthAddr:     healthAddr,
		TickInterval:   loadTickInterval(),
		BackupSchedule: backupSchedule,
		Timezone:       timezone,
		Storage:        loadStorageConfig(),
		TTS:            loadTTSConfig(),
	}, nil
}

// loadTickInterval reads the session tick period. Announcements resolve on
// whole seconds, so anything at or under 1s only changes latency, not which
// entries fire.
func loadTickInterval() time.Duration {
	interval := time.Second
	if ms, err := strconv.Atoi(os.Getenv("GUARDIAN_TICK_MS")); err == nil && ms >= 100 && ms <= 5000 {
		interval = time.Duration(ms) * time.Millisecond
	}
	return interval
}

func loadStorageConfig() StorageConfig {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	if endpoint == "" {
		endpoint = "minio:9000"
	}

	accessKey := os.Getenv("MINIO_ACCESS_KEY")
	secretKey := os.Getenv("MINIO_SECRET_KEY")

	return StorageConfig{
		Enabled:   accessKey != "" && secretKey != "",
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}
}

func loadTTSConfig() TTSConfig {
	baseURL := os.Getenv("GUARDIAN_TTS_URL")
	if baseURL == "" {
		baseURL = "https://translate.google.com/translate_tts"
	}

	timeout := 10 * time.Second
	if secs, err := strconv.Atoi(os.Getenv("GUARDIAN_TTS_TIMEOUT")); err == nil && secs > 0 {
		timeout = time.Duration(secs) * time.Second
	}

	return TTSConfig{
		BaseURL: baseURL,
		Timeout: timeout,
	}
}
