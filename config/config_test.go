package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultMatchesSpecConstants(t *testing.T) {
	cfg := Default()
	if cfg.SeqDelayMS != 12000 {
		t.Fatalf("SeqDelayMS = %d, want 12000", cfg.SeqDelayMS)
	}
	if cfg.Wiring.ThermostatActiveLow {
		t.Fatal("default wiring must not invert any signal")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadOverridesSelectively(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "heatctl.toml")
	contents := `
seq_delay_ms = 9000

[wiring]
thermostat_active_low = true
mode_b_active_low = true
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SeqDelayMS != 9000 {
		t.Fatalf("SeqDelayMS = %d, want 9000", cfg.SeqDelayMS)
	}
	if !cfg.Wiring.ThermostatActiveLow || !cfg.Wiring.ModeBActiveLow {
		t.Fatalf("wiring overrides not applied: %+v", cfg.Wiring)
	}
	if cfg.Wiring.ProviderActiveLow {
		t.Fatal("unmentioned key must keep its default value")
	}
}
