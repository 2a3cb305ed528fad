// Package sampler implements debounced translation of raw GPIO levels
// into the canonical event vocabulary: a single-channel debouncer for
// the thermostat and provider signals, and a three-way debounced
// selector for the user-mode switch.
package sampler

import "github.com/polyvarium/heatctl/events"

// TickMS is the fixed sampling cadence (INP_TICK_MS).
const TickMS = 1

// Spec-default thresholds (§6.3).
const (
	DebounceMS      = 30
	ProviderStableMS = 2000
	ModeStableMS    = 200
)

// Reader supplies the six raw, synchronous, non-blocking, side-effect
// free signal reads the sampler depends on.
type Reader interface {
	Thermostat() bool
	Provider() bool
	ModeA() bool
	ModeB() bool
	ModeC() bool
}

// Config carries the active-low inversion flags per signal.
type Config struct {
	ThermostatActiveLow bool
	ProviderActiveLow   bool
	ModeAActiveLow      bool
	ModeBActiveLow      bool
	ModeCActiveLow      bool
}

// channel is a single-signal debounce record.
type channel struct {
	stableLevel   bool
	lastRaw       bool
	accumulatedMS uint32
	thresholdMS   uint32
	activeLow     bool
}

func (c *channel) level(raw bool) bool {
	if c.activeLow {
		return !raw
	}
	return raw
}

// tick runs one INP_TICK_MS debounce step and reports whether the
// stable level changed (and to what).
func (c *channel) tick(raw bool) (changed bool, newLevel bool) {
	if raw == c.lastRaw {
		if c.accumulatedMS <= 0xFFFF-TickMS {
			c.accumulatedMS += TickMS
		} else {
			c.accumulatedMS = 0xFFFF
		}
		if c.accumulatedMS >= c.thresholdMS {
			lvl := c.level(raw)
			if lvl != c.stableLevel {
				c.stableLevel = lvl
				return true, lvl
			}
		}
		return false, c.stableLevel
	}
	c.accumulatedMS = TickMS
	c.lastRaw = raw
	return false, c.stableLevel
}

func (c *channel) seed(raw bool) {
	c.lastRaw = raw
	c.stableLevel = c.level(raw)
	c.accumulatedMS = c.thresholdMS
}

// ambiguousIndex marks a selector read with zero or more than one active
// position.
const ambiguousIndex = -1

// selector is the three-way debounced mode switch, tracking which of
// ELEC(0)/GAS(1)/BI(2) currently reads active.
type selector struct {
	stableIndex   int
	lastIndex     int
	accumulatedMS uint32
	thresholdMS   uint32
}

func rawIndex(a, b, c bool) int {
	count := 0
	idx := ambiguousIndex
	if a {
		count++
		idx = 0
	}
	if b {
		count++
		idx = 1
	}
	if c {
		count++
		idx = 2
	}
	if count != 1 {
		return ambiguousIndex
	}
	return idx
}

func (s *selector) tick(idx int) (changed bool, newIndex int) {
	if idx == ambiguousIndex {
		s.accumulatedMS = 0
		s.lastIndex = ambiguousIndex
		return false, s.stableIndex
	}
	if idx == s.lastIndex {
		if s.accumulatedMS <= 0xFFFF-TickMS {
			s.accumulatedMS += TickMS
		} else {
			s.accumulatedMS = 0xFFFF
		}
		if s.accumulatedMS >= s.thresholdMS && idx != s.stableIndex {
			s.stableIndex = idx
			return true, idx
		}
		return false, s.stableIndex
	}
	s.lastIndex = idx
	s.accumulatedMS = TickMS
	return false, s.stableIndex
}

func (s *selector) seed(idx int) {
	if idx == ambiguousIndex {
		s.stableIndex = 0
		s.lastIndex = ambiguousIndex
		s.accumulatedMS = 0
		return
	}
	s.lastIndex = idx
	s.stableIndex = idx
	s.accumulatedMS = s.thresholdMS
}

// Sampler ties the three debounce channels to a Reader and pushes
// canonical events onto a Bus.
type Sampler struct {
	reader Reader
	out    *events.Bus

	thermostat channel
	provider   channel
	mode       selector
}

// New constructs a Sampler reading from r, pushing into out, configured
// per cfg. Thresholds are fixed at their spec.md §6.3 defaults.
func New(r Reader, out *events.Bus, cfg Config) *Sampler {
	return &Sampler{
		reader: r,
		out:    out,
		thermostat: channel{thresholdMS: DebounceMS, activeLow: cfg.ThermostatActiveLow},
		provider:   channel{thresholdMS: ProviderStableMS, activeLow: cfg.ProviderActiveLow},
		mode:       selector{thresholdMS: ModeStableMS},
	}
}

// modeRaw reads and inverts the three selector inputs per their
// active-low flags in cfg (the selector holds no config of its own and
// is polarity-agnostic; inversion happens here).
func (s *Sampler) modeRaw(cfg Config) (a, b, c bool) {
	a = s.reader.ModeA()
	b = s.reader.ModeB()
	c = s.reader.ModeC()
	if cfg.ModeAActiveLow {
		a = !a
	}
	if cfg.ModeBActiveLow {
		b = !b
	}
	if cfg.ModeCActiveLow {
		c = !c
	}
	return a, b, c
}

// SeedFromHW snapshots the current raw state and pre-saturates each
// accumulator at its threshold so the first Tick after seeding cannot
// produce a phantom event.
func (s *Sampler) SeedFromHW(cfg Config) {
	s.thermostat.seed(s.reader.Thermostat())
	s.provider.seed(s.reader.Provider())
	a, b, c := s.modeRaw(cfg)
	s.mode.seed(rawIndex(a, b, c))
}

// Tick runs one INP_TICK_MS sampling step against nowTick, pushing any
// canonical events produced by debounced edges.
func (s *Sampler) Tick(cfg Config, nowTick uint32) {
	if changed, level := s.thermostat.tick(s.reader.Thermostat()); changed {
		if level {
			s.out.Push(events.Normal, events.KindThermostatOn, events.Arg{}, nowTick)
		} else {
			s.out.Push(events.Normal, events.KindThermostatOff, events.Arg{}, nowTick)
		}
	}

	if changed, level := s.provider.tick(s.reader.Provider()); changed {
		if level {
			s.out.Push(events.Normal, events.KindProviderToElec, events.Arg{}, nowTick)
		} else {
			s.out.Push(events.Normal, events.KindProviderToGas, events.Arg{}, nowTick)
		}
	}

	a, b, c := s.modeRaw(cfg)
	if changed, idx := s.mode.tick(rawIndex(a, b, c)); changed {
		switch idx {
		case 0:
			s.out.Push(events.Normal, events.KindUserModeElec, events.Arg{}, nowTick)
		case 1:
			s.out.Push(events.Normal, events.KindUserModeGas, events.Arg{}, nowTick)
		case 2:
			s.out.Push(events.Normal, events.KindUserModeBi, events.Arg{}, nowTick)
		}
	}
}
