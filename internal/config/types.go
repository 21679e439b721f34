package config

import "time"

type Config struct {
	Token          string
	DefaultMode    string
	ModesDir       string
	SettingsPath   string
	SpeechPath     string
	CacheDir       string
	HealthAddr     string
	TickInterval   time.Duration
	BackupSchedule string
	Timezone       string
	Storage        StorageConfig
	TTS            TTSConfig
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type TTSConfig struct {
	BaseURL string
	Timeout time.Duration
}
