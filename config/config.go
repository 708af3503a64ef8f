package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings. Environment variables provide the
// defaults; command-line flags override them.
type Config struct {
	Address     string        `env:"AVATARMIX_ADDRESS" envDefault:"0.0.0.0:8080"`
	AssetRoot   string        `env:"AVATARMIX_ASSETS" envDefault:"assets"`
	Size        int           `env:"AVATARMIX_SIZE" envDefault:"160"`
	LoadTimeout time.Duration `env:"AVATARMIX_LOAD_TIMEOUT" envDefault:"30s"`
	Flash       time.Duration `env:"AVATARMIX_FLASH" envDefault:"500ms"`
	CertFile    string        `env:"AVATARMIX_CERT"`
	KeyFile     string        `env:"AVATARMIX_KEY"`
	// DatabaseURL enables the export audit log when set.
	DatabaseURL string `env:"AVATARMIX_DATABASE_URL"`
	Migrations  string `env:"AVATARMIX_MIGRATIONS" envDefault:"file://migrations"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Size <= 0 {
		return cfg, fmt.Errorf("parse env: AVATARMIX_SIZE must be positive, got %d", cfg.Size)
	}
	return cfg, nil
}

// TLS reports whether both a certificate and a key are configured.
func (c Config) TLS() bool {
	return c.CertFile != "" && c.KeyFile != ""
}
