package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config represents the configuration for the relay server.
type Config struct {
	Addr    string        `env:"ADDR" envDefault:"localhost:8494"`
	APIKey  string        `env:"API_KEY"`
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model   string        `env:"MODEL" envDefault:"gpt-4o-mini"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"60s"`
}

// LoadConfig reads the server configuration from PARLEY_* environment
// variables, falling back to the defaults.
func LoadConfig() (Config, error) {
	var c Config
	if err := env.ParseWithOptions(&c, env.Options{Prefix: "PARLEY_"}); err != nil {
		return c, fmt.Errorf("server: could not load configuration: %w", err)
	}
	return c, nil
}
