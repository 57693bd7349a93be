package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for the screenlock CLI.
type Config struct {
	DataDir string
	DBFile  string

	// Delays of the passcode entry animations.
	AdvanceDelay time.Duration
	FailureDelay time.Duration

	// WebAuthn relying party used for biometric enrollment.
	RPID          string
	RPDisplayName string
	RPOrigin      string
	// UserAgent selects the biometric label ("Face ID", "Touch ID", ...).
	UserAgent string

	LogLevel  string
	LogFormat string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = ".screenlock"
	c.DBFile = "screenlock.db"
	c.AdvanceDelay = 300 * time.Millisecond
	c.FailureDelay = 400 * time.Millisecond
	c.RPID = "localhost"
	c.RPDisplayName = "Easy Card"
	c.RPOrigin = "https://localhost"
	c.UserAgent = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// DBPath is the database file inside DataDir.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the config file (if any) and command-line flags. Later sources take
// precedence over earlier ones. It panics on unreadable files or bad flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, os.Args[1:])
	parseFlags(cfg, os.Args[1:])
	return cfg
}
