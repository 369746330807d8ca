package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

var ErrInvalidConfig = errors.New("invalid config")

// Config is the process configuration, read from the environment.
// CORS_ORIGINS is a semicolon separated list.
type Config struct {
	Port          int           `env:"PORT,default=8000"`
	DBPath        string        `env:"CONTINENTAL_DB,default=continental.db"`
	DiscardWindow time.Duration `env:"DISCARD_WINDOW,default=5s"`
	CORSOrigins   []string      `env:"CORS_ORIGINS,default=*"`
	LogLevel      string        `env:"LOG_LEVEL,default=info"`
	CommandRate   float64       `env:"COMMAND_RATE,default=10"`
	CommandBurst  int           `env:"COMMAND_BURST,default=20"`
}

// Load decodes the config from the environment. Defaults apply to anything unset.
func Load() (Config, error) {
	var cfg Config
	err := envdecode.Decode(&cfg)
	if err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	}
	if c.DiscardWindow <= 0 {
		return fmt.Errorf("%w: discard window must be positive", ErrInvalidConfig)
	}
	if c.CommandRate <= 0 || c.CommandBurst <= 0 {
		return fmt.Errorf("%w: command rate and burst must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
