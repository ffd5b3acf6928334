package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadFirstRunCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "makersite.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Timezone != "Asia/Tokyo" {
		t.Errorf("timezone = %q, want Asia/Tokyo", cfg.Timezone)
	}
	if cfg.HorizonDays != 730 {
		t.Errorf("horizon_days = %d, want 730", cfg.HorizonDays)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("first run should write the default file: %v", err)
	}
	if runtime.GOOS != "windows" {
		if perm := info.Mode().Perm(); perm != 0o600 {
			t.Errorf("config file perms = %o, want 0600", perm)
		}
	}
}

func TestLoadExistingAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "makersite.yaml")
	partial := "sheet_url: https://docs.google.com/spreadsheets/d/abc/edit\nhorizon_days: 90\n"
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HorizonDays != 90 {
		t.Errorf("explicit horizon_days overridden: %d", cfg.HorizonDays)
	}
	if cfg.StalenessHours != 12 {
		t.Errorf("missing staleness_hours not defaulted: %d", cfg.StalenessHours)
	}
	if cfg.Enrich.Workers != 5 {
		t.Errorf("missing enrich.workers not defaulted: %d", cfg.Enrich.Workers)
	}
	if cfg.Timeline.Width != 1200 {
		t.Errorf("missing timeline.width not defaulted: %d", cfg.Timeline.Width)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "makersite.yaml")

	cfg := DefaultConfig()
	cfg.SheetURL = "https://docs.google.com/spreadsheets/d/xyz/edit"
	cfg.OutputDir = "public"
	if err := cfg.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.SheetURL != cfg.SheetURL {
		t.Errorf("sheet_url = %q", got.SheetURL)
	}
	if got.OutputDir != "public" {
		t.Errorf("output_dir = %q", got.OutputDir)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "makersite.yaml")
	if err := os.WriteFile(path, []byte("listen: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("invalid YAML should surface as an error")
	}
}
