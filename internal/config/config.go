package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultRefreshThresholdMinutes is how close to expiry a token may get
// before requests refresh it proactively.
const DefaultRefreshThresholdMinutes = 5

// defaultWatchInterval is the poll cadence for the watch command.
const defaultWatchInterval = 60 * time.Second

// Config holds all configuration for immoctl. Environment variables
// win over the optional ~/.immoctl/config.yaml file.
type Config struct {
	// Base URL of the platform API, e.g. https://api.immo.example/api.
	APIURL string `env:"IMMO_API_URL"`

	// Account credentials. Only required by commands that log in.
	Email    string `env:"IMMO_EMAIL"`
	Password string `env:"IMMO_PASSWORD"`

	// Path of the session database. Empty means ~/.immoctl/state.db.
	StateDB string `env:"IMMO_STATE_DB"`

	// Minutes before expiry at which tokens refresh proactively.
	RefreshThresholdMinutes int `env:"REFRESH_THRESHOLD_MINUTES"`

	// Poll cadence for the watch command.
	WatchInterval time.Duration `env:"WATCH_INTERVAL"`

	// Device name this client identifies as. Defaults to system hostname.
	DeviceName string `env:"DEVICE_NAME"`

	// Environment controls log format
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
}

// fileConfig mirrors Config for the YAML file layer.
type fileConfig struct {
	APIURL                  string `yaml:"api_url"`
	Email                   string `yaml:"email"`
	Password                string `yaml:"password"`
	StateDB                 string `yaml:"state_db"`
	RefreshThresholdMinutes int    `yaml:"refresh_threshold_minutes"`
	WatchInterval           string `yaml:"watch_interval"`
	DeviceName              string `yaml:"device_name"`
	Environment             string `yaml:"environment"`
}

// warnInsecureEnvFile checks whether the .env file (if present) has
// overly permissive permissions. On Unix systems, group or world
// readable files risk exposing credentials to other users.
func warnInsecureEnvFile() {
	if runtime.GOOS == "windows" {
		return
	}

	info, err := os.Stat(".env")
	if err != nil {
		return // file does not exist, nothing to check
	}

	mode := info.Mode().Perm()
	if mode&0o077 != 0 {
		log.Printf("WARNING: .env file has insecure permissions %04o; recommended 0600", mode)
	}
}

// DefaultConfigPath returns ~/.immoctl/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}

	return filepath.Join(home, ".immoctl", "config.yaml"), nil
}

// Load reads configuration from environment variables, layered over the
// optional config file. It first attempts to load a .env file if
// present, then parses env vars, then fills anything still unset from
// ~/.immoctl/config.yaml.
func Load() (*Config, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(path)
}

// LoadFrom is Load with an explicit config file path, for tests and the
// --config flag.
func LoadFrom(filePath string) (*Config, error) {
	_ = godotenv.Load()

	warnInsecureEnvFile()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.applyFile(filePath); err != nil {
		return nil, err
	}

	if cfg.RefreshThresholdMinutes == 0 {
		cfg.RefreshThresholdMinutes = DefaultRefreshThresholdMinutes
	}

	if cfg.WatchInterval == 0 {
		cfg.WatchInterval = defaultWatchInterval
	}

	if cfg.DeviceName == "" {
		hostname, err := os.Hostname()
		if err != nil || hostname == "" {
			hostname = "immoctl"
		}

		cfg.DeviceName = hostname
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyFile fills fields still at their zero value from the YAML file.
// A missing file is fine; a malformed one is an error.
func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	if c.APIURL == "" {
		c.APIURL = file.APIURL
	}

	if c.Email == "" {
		c.Email = file.Email
	}

	if c.Password == "" {
		c.Password = file.Password
	}

	if c.StateDB == "" {
		c.StateDB = file.StateDB
	}

	if c.RefreshThresholdMinutes == 0 {
		c.RefreshThresholdMinutes = file.RefreshThresholdMinutes
	}

	if c.WatchInterval == 0 && file.WatchInterval != "" {
		d, err := time.ParseDuration(file.WatchInterval)
		if err != nil {
			return fmt.Errorf("parsing watch_interval in %s: %w", path, err)
		}

		c.WatchInterval = d
	}

	if c.DeviceName == "" {
		c.DeviceName = file.DeviceName
	}

	// ENVIRONMENT carries an env default, so the file only wins when
	// the variable is genuinely unset.
	if _, set := os.LookupEnv("ENVIRONMENT"); !set && file.Environment != "" {
		c.Environment = file.Environment
	}

	return nil
}

func (c *Config) validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("IMMO_API_URL is required")
	}

	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("IMMO_API_URL must be an absolute URL, got %q", c.APIURL)
	}

	if c.RefreshThresholdMinutes < 0 {
		return fmt.Errorf("REFRESH_THRESHOLD_MINUTES must not be negative")
	}

	if c.WatchInterval < 0 {
		return fmt.Errorf("WATCH_INTERVAL must not be negative")
	}

	return nil
}

// RefreshThreshold returns the proactive-refresh threshold as a
// duration.
func (c *Config) RefreshThreshold() time.Duration {
	return time.Duration(c.RefreshThresholdMinutes) * time.Minute
}

// IsProduction returns true when the environment is set to production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
