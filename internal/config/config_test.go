package config

import (
	"encoding/base64"
	"testing"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DATABASE_URL", "postgres://localhost/test")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error when JWT_SECRET is unset")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString([]byte("secret")))
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected an error when DATABASE_URL is unset")
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", base64.StdEncoding.EncodeToString([]byte("secret")))
	t.Setenv("DATABASE_URL", "postgres://localhost/test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PickCount != 6 {
		t.Errorf("PickCount = %d, want 6", cfg.PickCount)
	}
	if cfg.PickTime.Seconds() != 30 {
		t.Errorf("PickTime = %v, want 30s", cfg.PickTime)
	}
	if cfg.MapDir == "" || cfg.AnimalDir == "" || cfg.AbilityScriptDir == "" {
		t.Error("expected data directory defaults to be set")
	}
}
