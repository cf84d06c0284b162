package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	// Driver is one of sqlite, postgres or memory.
	Driver string `yaml:"driver"`
	// Path is the SQLite database file.
	Path string `yaml:"path"`
	// DSN is the PostgreSQL connection string.
	DSN string `yaml:"dsn,omitempty"`
}

type Config struct {
	Database DatabaseConfig `yaml:"database"`

	// Timezone is the IANA zone events are interpreted in. "Local" uses the
	// host zone.
	Timezone string `yaml:"timezone"`

	// PollInterval is how often notifications are re-evaluated, e.g. "1s".
	PollInterval       string `yaml:"poll_interval"`
	NotificationBuffer int    `yaml:"notification_buffer"`

	MaxOccurrences int `yaml:"max_occurrences"`
	HorizonYears   int `yaml:"horizon_years"`

	DefaultNotification  int    `yaml:"default_notification_minutes"`
	DefaultView          string `yaml:"default_view"`
	DesktopNotifications bool   `yaml:"desktop_notifications"`

	LogFile   string `yaml:"log_file"`
	LogLevel  string `yaml:"log_level"`
	StateFile string `yaml:"state_file"`

	// Holidays adds or renames calendar holidays, keyed by YYYY-MM-DD.
	Holidays map[string]string `yaml:"holidays,omitempty"`
}

func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   "eventd.db",
		},
		Timezone:             "Local",
		PollInterval:         "1s",
		NotificationBuffer:   64,
		MaxOccurrences:       366,
		HorizonYears:         5,
		DefaultNotification:  10,
		DefaultView:          "month",
		DesktopNotifications: false,
		LogFile:              "eventd.log",
		LogLevel:             "info",
		StateFile:            ".eventd_state.json",
	}
}

// Normalize fills zero values with defaults so older or partial files keep
// working.
func (c *Config) Normalize() {
	d := Default()
	switch strings.ToLower(strings.TrimSpace(c.Database.Driver)) {
	case DriverSQLite, DriverPostgres, DriverMemory:
		c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	default:
		c.Database.Driver = d.Database.Driver
	}
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if dur, err := time.ParseDuration(c.PollInterval); err != nil || dur < time.Second {
		c.PollInterval = d.PollInterval
	}
	if c.NotificationBuffer <= 0 {
		c.NotificationBuffer = d.NotificationBuffer
	}
	if c.MaxOccurrences <= 0 {
		c.MaxOccurrences = d.MaxOccurrences
	}
	if c.HorizonYears <= 0 {
		c.HorizonYears = d.HorizonYears
	}
	if c.DefaultNotification < 0 {
		c.DefaultNotification = d.DefaultNotification
	}
	switch c.DefaultView {
	case "month", "week":
	default:
		c.DefaultView = d.DefaultView
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.StateFile == "" {
		c.StateFile = d.StateFile
	}
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) PollEvery() time.Duration {
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d < time.Second {
		return time.Second
	}
	return d
}

// Load reads the YAML file at path. A missing file is created with the
// defaults and 0600 permissions.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config: path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Default()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// Save writes cfg atomically through a temp file in the same directory.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config: path is empty")
	}
	if cfg == nil {
		return errors.New("config: nil config")
	}
	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".eventd-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// LoadDotEnv exports the variables of the given .env files into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv applies EVENTD_* overrides on top of base.
func FromEnv(base *Config) *Config {
	cfg := *base
	if v, ok := getEnv("EVENTD_DB_DRIVER"); ok {
		cfg.Database.Driver = v
	}
	if v, ok := getEnv("EVENTD_DB_PATH"); ok {
		cfg.Database.Path = v
	}
	if v, ok := getEnv("EVENTD_POSTGRES_DSN"); ok {
		cfg.Database.DSN = v
	}
	if v, ok := getEnv("EVENTD_TIMEZONE"); ok {
		cfg.Timezone = v
	}
	if v, ok := getEnv("EVENTD_POLL_INTERVAL"); ok {
		cfg.PollInterval = v
	}
	if v, ok := getEnvInt("EVENTD_NOTIFICATION_BUFFER"); ok && v > 0 {
		cfg.NotificationBuffer = v
	}
	if v, ok := getEnvInt("EVENTD_MAX_OCCURRENCES"); ok && v > 0 {
		cfg.MaxOccurrences = v
	}
	if v, ok := getEnvInt("EVENTD_HORIZON_YEARS"); ok && v > 0 {
		cfg.HorizonYears = v
	}
	if v, ok := getEnvInt("EVENTD_DEFAULT_NOTIFICATION"); ok && v >= 0 {
		cfg.DefaultNotification = v
	}
	if v, ok := getEnv("EVENTD_DEFAULT_VIEW"); ok {
		cfg.DefaultView = v
	}
	if v, ok := getEnvBool("EVENTD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnv("EVENTD_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnv("EVENTD_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnv("EVENTD_STATE_FILE"); ok {
		cfg.StateFile = v
	}
	cfg.Normalize()
	return &cfg
}

// Resolve loads the YAML file, then .env files, then environment overrides.
func Resolve(path string, envFiles ...string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && cfg == nil {
		return nil, err
	}
	if envErr := LoadDotEnv(envFiles...); envErr != nil {
		return nil, envErr
	}
	return FromEnv(cfg), err
}

func getEnv(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
