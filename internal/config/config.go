package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port           int    `env:"PORT" envDefault:"3000"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	RedisURL       string `env:"REDIS_URL,required"`
	PublicKeyPath  string `env:"PUBLIC_KEY_PATH" envDefault:"public.key"`
	PrivateKeyPath string `env:"PRIVATE_KEY_PATH" envDefault:"private.key"`
	PushGatewayURL string `env:"PUSH_GATEWAY_URL" envDefault:"https://push.ubuntu.com/notify"`
	PushAppID      string `env:"PUSH_APP_ID" envDefault:"org.kryogenix.caxton_Caxton"`
	CodeTTLSeconds int    `env:"CODE_TTL_SECONDS" envDefault:"900"`
	LogLevel       string `env:"LOG_LEVEL" envDefault:"info"`
}

// CodeTTL is the lifetime of an unredeemed pairing code.
func (c *Config) CodeTTL() time.Duration {
	return time.Duration(c.CodeTTLSeconds) * time.Second
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) Validate() error {
	if c.CodeTTLSeconds <= 0 {
		return fmt.Errorf("CODE_TTL_SECONDS must be positive, got %d", c.CodeTTLSeconds)
	}
	if c.PushGatewayURL == "" {
		return fmt.Errorf("PUSH_GATEWAY_URL must not be empty")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
