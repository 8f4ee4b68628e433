// Package config resolves runtime settings from defaults, an optional JSON
// file, TASKFLOW_* environment variables and command-line flags, each layer
// overriding the one before.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/naveenspark/taskflow/internal/tokenstore"
)

// Config holds runtime settings for the TaskFlow client.
type Config struct {
	APIURL         string
	WebURL         string
	DataDir        string
	TokenStore     string // tokenstore.BackendFile or tokenstore.BackendSQLite
	RequestTimeout time.Duration
	LogFile        string
	LogLevel       string
}

// LoadDefaults populates c with defaults rooted at home.
func (c *Config) LoadDefaults(home string) {
	c.APIURL = "http://localhost:8080/api"
	c.WebURL = "http://localhost:5173"
	c.DataDir = filepath.Join(home, ".taskflow")
	c.TokenStore = tokenstore.BackendFile
	c.RequestTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.TokenStore {
	case tokenstore.BackendFile, tokenstore.BackendSQLite:
	default:
		return fmt.Errorf("config: token store must be %q or %q, got %q",
			tokenstore.BackendFile, tokenstore.BackendSQLite, c.TokenStore)
	}
	if c.APIURL == "" {
		return fmt.Errorf("config: api url is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Loader reads configuration from the given process inputs.
type Loader struct {
	Args   []string // without the program name
	Getenv func(string) string
	Home   string
}

// Load constructs a Config from the current process: os.Args, the
// environment and the user's home directory. It returns the arguments left
// after removing the ones it consumed.
func Load() (*Config, []string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("get home dir: %w", err)
	}
	return Loader{Args: os.Args[1:], Getenv: os.Getenv, Home: home}.Load()
}

// Load applies defaults, then JSON, then environment, then flags.
func (l Loader) Load() (*Config, []string, error) {
	getenv := l.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}

	cfg := &Config{}
	cfg.LoadDefaults(l.Home)

	path, explicit, err := configFilePath(l.Args)
	if err != nil {
		return nil, nil, err
	}
	if !explicit {
		path = filepath.Join(cfg.DataDir, "config.json")
	}
	if err := parseJSON(cfg, path, explicit); err != nil {
		return nil, nil, err
	}

	parseEnv(cfg, getenv)

	rest, err := parseFlags(cfg, l.Args)
	if err != nil {
		return nil, nil, err
	}

	if cfg.LogFile == "" {
		cfg.LogFile = filepath.Join(cfg.DataDir, "taskflow.log")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, rest, nil
}
