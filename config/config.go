// Package config loads the controller's hardware wiring and timing
// constants from a TOML file, layered over the spec's compiled-in
// defaults (§6.3).
package config

import (
	"os"

	"github.com/pkg/errors"

	"github.com/polyvarium/heatctl/sampler"
	"github.com/polyvarium/heatctl/toml"
)

// Config is the full set of tunables an installer or bring-up engineer
// may need to override per board.
type Config struct {
	NormalCap uint32 `toml:"normal_cap"`
	FaultsCap uint32 `toml:"faults_cap"`

	SeqDelayMS uint32 `toml:"seq_delay_ms"`

	Wiring WiringConfig `toml:"wiring"`
}

// WiringConfig carries the active-low flags for every raw signal
// (thermostat, provider, mode A/B/C).
type WiringConfig struct {
	ThermostatActiveLow bool `toml:"thermostat_active_low"`
	ProviderActiveLow   bool `toml:"provider_active_low"`
	ModeAActiveLow      bool `toml:"mode_a_active_low"`
	ModeBActiveLow      bool `toml:"mode_b_active_low"`
	ModeCActiveLow      bool `toml:"mode_c_active_low"`
}

// Default returns the spec.md §6.3 compiled-in defaults: no active-low
// inversion, standard queue capacities, 12s sequence step delay.
func Default() Config {
	return Config{
		NormalCap:  0, // 0 selects events.DefaultNormalCap
		FaultsCap:  0, // 0 selects events.DefaultFaultsCap
		SeqDelayMS: 12000,
	}
}

// SamplerConfig adapts the wiring section to sampler.Config.
func (c Config) SamplerConfig() sampler.Config {
	return sampler.Config{
		ThermostatActiveLow: c.Wiring.ThermostatActiveLow,
		ProviderActiveLow:   c.Wiring.ProviderActiveLow,
		ModeAActiveLow:      c.Wiring.ModeAActiveLow,
		ModeBActiveLow:      c.Wiring.ModeBActiveLow,
		ModeCActiveLow:      c.Wiring.ModeCActiveLow,
	}
}

// Load reads and decodes path, starting from Default() so any key the
// file omits keeps its compiled-in value. A missing file is not an
// error: Load returns the defaults unchanged, matching the teacher's
// pattern of layering an optional config file over built-in defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "config: reading %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: decoding %s", path)
	}
	return cfg, nil
}
