package sshclient

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the transport knobs shared by every session.
type Config struct {
	Port           int           `env:"SSH_PORT" envDefault:"22"`
	ConnectTimeout time.Duration `env:"SSH_CONNECT_TIMEOUT" envDefault:"10s"`
	// ExecTimeout bounds each remote command. Only the connection has a
	// timeout in the original design; an unbounded exec would pin a
	// deploy worker for the whole run, so we cap it here too.
	ExecTimeout time.Duration `env:"SSH_EXEC_TIMEOUT" envDefault:"30s"`
}

// LoadConfig reads the transport knobs from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Sanitize()
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *Config) Sanitize() {
	if c.Port <= 0 || c.Port > 65535 {
		c.Port = 22
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 10 * time.Second
	}
	if c.ExecTimeout <= 0 {
		c.ExecTimeout = 30 * time.Second
	}
}
