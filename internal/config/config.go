package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// NOTE: This file provides the configuration model and full YAML-based
// load/save behavior, including first-run config creation and 0600
// permissions.

// EnrichConfig controls the best-effort OGP image lookup pool.
type EnrichConfig struct {
	// Workers is the fixed degree of parallelism for image lookups.
	Workers int `yaml:"workers" json:"workers"`
	// StaggerMs is the courtesy delay between dispatches, in milliseconds.
	StaggerMs int `yaml:"stagger_ms" json:"stagger_ms"`
	// TimeoutSec bounds a single page fetch.
	TimeoutSec int `yaml:"timeout_sec" json:"timeout_sec"`
}

// TimelineConfig describes the fixed OGP canvas geometry.
type TimelineConfig struct {
	// Width / Height in pixels. 1200x630 is the OGP recommended size.
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`

	// MaxEvents caps how many events appear in the visual. This is a
	// presentation limit only; the page below still lists everything.
	MaxEvents int `yaml:"max_events" json:"max_events"`

	// RowHeight is the vertical pitch of one chart row in pixels.
	RowHeight int `yaml:"row_height" json:"row_height"`
}

// Config is the top-level application configuration.
type Config struct {
	// SheetURL is the Google Sheets document holding the event rows.
	// It is rewritten into a CSV export URL before fetching.
	SheetURL string `yaml:"sheet_url" json:"sheet_url"`

	// Listen is the HTTP listen address for the preview server (serve mode).
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the "today" reference
	// (e.g. "Asia/Tokyo").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron is a cron-style schedule string (e.g. "0 * * * *")
	// driving periodic regeneration in serve mode.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays is how far ahead an event may start and still count
	// as upcoming.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// StalenessHours is the minimum elapsed time since the last
	// successful run before a time-based (non-content) refresh fires.
	StalenessHours int `yaml:"staleness_hours" json:"staleness_hours"`

	// HomeCountry is assumed when a region carries no parenthetical
	// country qualifier.
	HomeCountry string `yaml:"home_country" json:"home_country"`

	// CountryMapPath points at the JSON mapping of foreign country
	// names (as written in the sheet) to canonical names.
	CountryMapPath string `yaml:"country_map" json:"country_map"`

	// OutputDir receives index.html, ogp_image.png, timeline.html and
	// events.ics.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// StatePath is the persisted change-state file.
	StatePath string `yaml:"state_path" json:"state_path"`

	// SiteBaseURL prefixes the OGP image URL in page meta tags.
	SiteBaseURL string `yaml:"site_base_url" json:"site_base_url"`

	// LogLevel: debug / info / warn / error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	Enrich   EnrichConfig   `yaml:"enrich" json:"enrich"`
	Timeline TimelineConfig `yaml:"timeline" json:"timeline"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		SheetURL:       "",
		Listen:         "127.0.0.1:8080",
		Timezone:       "Asia/Tokyo",
		RefreshCron:    "0 * * * *",
		HorizonDays:    730,
		StalenessHours: 12,
		HomeCountry:    "Japan",
		CountryMapPath: "country_mapping.json",
		OutputDir:      ".",
		StatePath:      ".last_state.json",
		SiteBaseURL:    "",
		LogLevel:       "info",
		Enrich: EnrichConfig{
			Workers:    5,
			StaggerMs:  100,
			TimeoutSec: 10,
		},
		Timeline: TimelineConfig{
			Width:     1200,
			Height:    630,
			MaxEvents: 12,
			RowHeight: 40,
		},
	}
}

// Normalize fills in missing/zero values with sensible defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	def := DefaultConfig()

	if c.Listen == "" {
		c.Listen = def.Listen
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.RefreshCron == "" {
		c.RefreshCron = def.RefreshCron
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.StalenessHours <= 0 {
		c.StalenessHours = def.StalenessHours
	}
	if c.HomeCountry == "" {
		c.HomeCountry = def.HomeCountry
	}
	if c.CountryMapPath == "" {
		c.CountryMapPath = def.CountryMapPath
	}
	if c.OutputDir == "" {
		c.OutputDir = def.OutputDir
	}
	if c.StatePath == "" {
		c.StatePath = def.StatePath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}

	if c.Enrich.Workers <= 0 {
		c.Enrich.Workers = def.Enrich.Workers
	}
	if c.Enrich.StaggerMs < 0 {
		c.Enrich.StaggerMs = def.Enrich.StaggerMs
	}
	if c.Enrich.TimeoutSec <= 0 {
		c.Enrich.TimeoutSec = def.Enrich.TimeoutSec
	}

	if c.Timeline.Width <= 0 {
		c.Timeline.Width = def.Timeline.Width
	}
	if c.Timeline.Height <= 0 {
		c.Timeline.Height = def.Timeline.Height
	}
	if c.Timeline.MaxEvents <= 0 {
		c.Timeline.MaxEvents = def.Timeline.MaxEvents
	}
	if c.Timeline.RowHeight <= 0 {
		c.Timeline.RowHeight = def.Timeline.RowHeight
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist:
//   - create parent directory if needed
//   - write a default config with 0600 perms
//   - return the default config
//   - If the file exists:
//   - read YAML and unmarshal into Config
//   - normalize defaults
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// Implementation details:
//   - Ensures parent directory exists (0700).
//   - Marshals cfg to YAML.
//   - Writes atomically via a temp file + rename.
//   - Ensures final file permissions are 0600.
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

	// Atomic write: write to temp file in same directory then rename.
	tmp, err := os.CreateTemp(dir, ".makersite-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error.
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

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	return nil
}

// Save is a convenience method on Config that delegates to the
// package-level Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
