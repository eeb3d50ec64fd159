package server

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config controls the HTTP listener. Values come from the environment
// so deployments can tune them without touching the story config file.
type Config struct {
	Port         int `env:"STORYMAP_PORT"          envDefault:"3000"`
	ReadTimeout  int `env:"STORYMAP_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"STORYMAP_WRITE_TIMEOUT" envDefault:"30"`
	// PollWait bounds the /events long-poll, in seconds.
	PollWait int `env:"STORYMAP_POLL_WAIT" envDefault:"25"`
}

// LoadConfigFromEnv returns server configuration with defaults.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse server environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port %d", cfg.Port)
	}
	return cfg, nil
}
