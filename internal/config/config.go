// Package config loads the environment-sourced settings
// requires at startup: JWT_SECRET and DATABASE_URL, plus the tunable
// timing constants, via Viper — mirroring the reference implementation's
// dotenvy + std::env::var startup reads, generalized to explicit structs
// passed into constructors rather than globals read inline.
package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds every environment-sourced setting this core needs.
type Config struct {
	JWTSecret   []byte
	DatabaseURL string

	PickTime     time.Duration
	PlaceTime    time.Duration
	TurnTime     time.Duration
	PickCount    int
	TickInterval time.Duration

	MapDir           string
	AnimalDir        string
	AbilityScriptDir string
}

// Load reads Config from the process environment. JWT_SECRET and
// DATABASE_URL are mandatory; the timing constants default to the
// reference values and may be overridden for testing.
func Load() (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("PICK_TIME_SECONDS", 30)
	v.SetDefault("PLACE_TIME_SECONDS", 60)
	v.SetDefault("TURN_TIME_SECONDS", 60)
	v.SetDefault("PICK_COUNT", 6)
	v.SetDefault("TICK_INTERVAL_SECONDS", 1)
	v.SetDefault("MAP_DIR", "/nakama/data/maps")
	v.SetDefault("ANIMAL_DIR", "/nakama/data/animals")
	v.SetDefault("ABILITY_SCRIPT_DIR", "/nakama/data/abilities")

	secretB64 := v.GetString("JWT_SECRET")
	if secretB64 == "" {
		return Config{}, fmt.Errorf("config: JWT_SECRET is required")
	}
	secret, err := base64.StdEncoding.DecodeString(secretB64)
	if err != nil {
		return Config{}, fmt.Errorf("config: JWT_SECRET is not valid base64: %w", err)
	}

	dbURL := v.GetString("DATABASE_URL")
	if dbURL == "" {
		return Config{}, fmt.Errorf("config: DATABASE_URL is required")
	}

	return Config{
		JWTSecret:    secret,
		DatabaseURL:  dbURL,
		PickTime:     time.Duration(v.GetInt64("PICK_TIME_SECONDS")) * time.Second,
		PlaceTime:    time.Duration(v.GetInt64("PLACE_TIME_SECONDS")) * time.Second,
		TurnTime:     time.Duration(v.GetInt64("TURN_TIME_SECONDS")) * time.Second,
		PickCount:    v.GetInt("PICK_COUNT"),
		TickInterval: time.Duration(v.GetInt64("TICK_INTERVAL_SECONDS")) * time.Second,

		MapDir:           v.GetString("MAP_DIR"),
		AnimalDir:        v.GetString("ANIMAL_DIR"),
		AbilityScriptDir: v.GetString("ABILITY_SCRIPT_DIR"),
	}, nil
}
