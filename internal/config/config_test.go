package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadRequiresToken(t *testing.T) {
	oldToken := os.Getenv("DISCORD_TOKEN")
	defer os.Setenv("DISCORD_TOKEN", oldToken)

	os.Setenv("DISCORD_TOKEN", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when DISCORD_TOKEN is unset")
	}
}

func TestLoadDefaults(t *testing.T) {
	oldToken := os.Getenv("DISCORD_TOKEN")
	oldMode := os.Getenv("GUARDIAN_DEFAULT_MODE")
	oldAddr := os.Getenv("GUARDIAN_HEALTH_ADDR")
	defer func() {
		os.Setenv("DISCORD_TOKEN", oldToken)
		os.Setenv("GUARDIAN_DEFAULT_MODE", oldMode)
		os.Setenv("GUARDIAN_HEALTH_ADDR", oldAddr)
	}()

	os.Setenv("DISCORD_TOKEN", "test-token")
	os.Setenv("GUARDIAN_DEFAULT_MODE", "")
	os.Setenv("GUARDIAN_HEALTH_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DefaultMode != "ranked" {
		t.Errorf("expected default mode ranked, got %s", cfg.DefaultMode)
	}

	if cfg.HealthAddr != ":8081" {
		t.Errorf("expected health addr :8081, got %s", cfg.HealthAddr)
	}

	if cfg.TickInterval != time.Second {
		t.Errorf("expected 1s tick, got %s", cfg.TickInterval)
	}
}

func TestLoadTickInterval(t *testing.T) {
	oldTick := os.Getenv("GUARDIAN_TICK_MS")
	defer os.Setenv("GUARDIAN_TICK_MS", oldTick)

	tests := []struct {
		value string
		want  time.Duration
	}{
		{"250", 250 * time.Millisecond},
		{"1000", time.Second},
		{"50", time.Second},    // below floor, fall back
		{"99999", time.Second}, // above ceiling, fall back
		{"garbage", time.Second},
		{"", time.Second},
	}

	for _, tt := range tests {
		os.Setenv("GUARDIAN_TICK_MS", tt.value)
		got := loadTickInterval()
		if got != tt.want {
			t.Errorf("loadTickInterval with %q = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestStorageConfigDisabledWithoutCredentials(t *testing.T) {
	oldAccess := os.Getenv("MINIO_ACCESS_KEY")
	oldSecret := os.Getenv("MINIO_SECRET_KEY")
	defer func() {
		os.Setenv("MINIO_ACCESS_KEY", oldAccess)
		os.Setenv("MINIO_SECRET_KEY", oldSecret)
	}()

	os.Setenv("MINIO_ACCESS_KEY", "")
	os.Setenv("MINIO_SECRET_KEY", "")

	sc := loadStorageConfig()
	if sc.Enabled {
		t.Error("storage should be disabled without credentials")
	}

	os.Setenv("MINIO_ACCESS_KEY", "key")
	os.Setenv("MINIO_SECRET_KEY", "secret")

	sc = loadStorageConfig()
	if !sc.Enabled {
		t.Error("storage should be enabled with credentials")
	}
}
