// Package config loads server settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	// Addr is the listen address for the HTTP/WebSocket endpoint.
	Addr string `env:"FORTUNA_ADDR" envDefault:":8080"`

	// RoomIdleTimeout is how long a room may sit with no inbound
	// message before the reaper collects it. Zero disables reaping.
	RoomIdleTimeout time.Duration `env:"FORTUNA_ROOM_IDLE_TIMEOUT" envDefault:"60m"`

	// Debug switches to development logging.
	Debug bool `env:"FORTUNA_DEBUG" envDefault:"false"`
}

func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
