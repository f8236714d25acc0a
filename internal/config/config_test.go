package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_CreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "studiobill.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StartYear != time.Now().Year() || cfg.Years != 1 {
		t.Errorf("defaults = %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("perm = %o, expected 600", perm)
	}
}

func TestLoad_ParsesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studiobill.yaml")
	content := `
timezone: Etc/GMT-1
start_year: 2025
years: 2
workbook: /data/billing.xlsx
calendars:
  - url: https://calendar.example.com/studio.ics
    name: studio
  - url: ./local.ics
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StartYear != 2025 || cfg.Years != 2 || cfg.Workbook != "/data/billing.xlsx" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.CacheDir != defaultCacheDir || cfg.Schedule != defaultSchedule {
		t.Errorf("defaults not filled: %+v", cfg)
	}
	if cfg.Calendars[0].ID != "studio" || cfg.Calendars[1].ID != "calendar-2" {
		t.Errorf("calendar IDs = %q, %q", cfg.Calendars[0].ID, cfg.Calendars[1].ID)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil || loc.String() != "Etc/GMT-1" {
		t.Errorf("Location = %v, %v", loc, err)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("years: [oops"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errSub string
	}{
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "timezone"},
		{"five digit year", func(c *Config) { c.StartYear = 10000 }, "4-digit"},
		{"three digit year", func(c *Config) { c.StartYear = 999 }, "4-digit"},
		{"range overflow", func(c *Config) { c.StartYear = 9999; c.Years = 2 }, "past year 9999"},
		{"calendar without url", func(c *Config) { c.Calendars = []CalendarConfig{{ID: "x"}} }, "no url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.errSub) {
				t.Errorf("Validate() = %v, expected error containing %q", err, tt.errSub)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Calendars = []CalendarConfig{{ID: "a", URL: "file:///tmp/a.ics"}}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Timezone != "UTC" || len(got.Calendars) != 1 || got.Calendars[0].URL != "file:///tmp/a.ics" {
		t.Errorf("round trip = %+v", got)
	}
}
