package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// CalendarConfig describes one ICS feed.
type CalendarConfig struct {
	// URL is an http(s) subscription URL, a file:// URL or a local path.
	URL string `yaml:"url" json:"url"`
	// ID is an internal identifier used for logging and event IDs.
	ID string `yaml:"id" json:"id"`
	// Name is a human-friendly label.
	Name string `yaml:"name" json:"name"`
}

// Config is the top-level application configuration.
type Config struct {
	// Timezone is the IANA zone used for year boundaries and for the
	// Start/End columns (e.g. "Europe/Paris"). Empty means the host zone.
	Timezone string `yaml:"timezone" json:"timezone"`

	// StartYear is the first year rebuilt, and the first year counted in
	// the summary.
	StartYear int `yaml:"start_year" json:"start_year"`

	// Years is how many consecutive years are rebuilt from StartYear.
	Years int `yaml:"years" json:"years"`

	// Workbook is the xlsx file holding Settings, year sheets and Summary.
	Workbook string `yaml:"workbook" json:"workbook"`

	// CacheDir stores HTTP cache data for remote feeds.
	CacheDir string `yaml:"cache_dir" json:"cache_dir"`

	// Schedule is a cron expression for daemon mode (e.g. "0 * * * *").
	Schedule string `yaml:"schedule" json:"schedule"`

	// Listen is the status endpoint address in daemon mode. Empty disables it.
	Listen string `yaml:"listen" json:"listen"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// Calendars lists the feeds bookings are read from.
	Calendars []CalendarConfig `yaml:"calendars" json:"calendars"`
}

const (
	defaultWorkbook = "./billing.xlsx"
	defaultCacheDir = "./var/ics-cache"
	defaultSchedule = "0 * * * *"
	defaultListen   = "127.0.0.1:8080"
)

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		StartYear: time.Now().Year(),
		Years:     1,
		Workbook:  defaultWorkbook,
		CacheDir:  defaultCacheDir,
		Schedule:  defaultSchedule,
		Listen:    defaultListen,
		LogLevel:  "info",
		Calendars: []CalendarConfig{},
	}
}

// Normalize fills zero values with defaults so partially-filled files work.
func (c *Config) Normalize() {
	if c.StartYear <= 0 {
		c.StartYear = time.Now().Year()
	}
	if c.Years <= 0 {
		c.Years = 1
	}
	if c.Workbook == "" {
		c.Workbook = defaultWorkbook
	}
	if c.CacheDir == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.Schedule == "" {
		c.Schedule = defaultSchedule
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Calendars == nil {
		c.Calendars = []CalendarConfig{}
	}
	for i := range c.Calendars {
		cal := &c.Calendars[i]
		if cal.ID == "" {
			if cal.Name != "" {
				cal.ID = cal.Name
			} else {
				cal.ID = fmt.Sprintf("calendar-%d", i+1)
			}
		}
	}
}

// Location resolves Timezone; an empty value means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Validate checks values Normalize cannot repair.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.StartYear < 1000 || c.StartYear > 9999 {
		return fmt.Errorf("start_year %d is not a 4-digit year", c.StartYear)
	}
	if c.StartYear+c.Years-1 > 9999 {
		return fmt.Errorf("years %d runs past year 9999", c.Years)
	}
	for _, cal := range c.Calendars {
		if cal.URL == "" {
			return fmt.Errorf("calendar %s has no url", cal.ID)
		}
	}
	return nil
}

// Load reads the YAML config at path. If the file does not exist a default
// config is written there (0600) and returned.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes cfg atomically via a temp file and rename; the final file is
// 0600 because feed URLs often carry private tokens.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
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

	tmp, err := os.CreateTemp(dir, ".studiobill-config-*.tmp")
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
