// Command heatctl is a headless runner that replays a scripted input
// sequence against the controller core and prints a trace, for
// exercising the concrete scenarios a terminal isn't needed for.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/polyvarium/heatctl/config"
	"github.com/polyvarium/heatctl/controller"
	"github.com/polyvarium/heatctl/events"
	"github.com/polyvarium/heatctl/fsm"
	"github.com/polyvarium/heatctl/sampler"
	"github.com/polyvarium/heatctl/timer"
)

// scenarioReader drives the sampler from a scripted step list instead of
// live GPIO; each step sets raw levels at its ms, and they hold until a
// later step changes them.
type scenarioReader struct {
	thermostat, provider, a, b, c bool
}

func (r *scenarioReader) Thermostat() bool { return r.thermostat }
func (r *scenarioReader) Provider() bool   { return r.provider }
func (r *scenarioReader) ModeA() bool      { return r.a }
func (r *scenarioReader) ModeB() bool      { return r.b }
func (r *scenarioReader) ModeC() bool      { return r.c }

// step is one scripted instant: at MS, set the named raw levels (nil
// fields are left unchanged) and/or push a direct event.
type step struct {
	ms          uint32
	thermostat  *bool
	provider    *bool
	pushKind    events.Kind
	pushQueue   events.QueueID
}

func ptr(b bool) *bool { return &b }

// normalElectricStart reproduces scenario 1 from the concrete scenarios:
// IDLE with target=ELEC, thermostat on, watch the staged start.
func normalElectricStart() []step {
	return []step{
		{ms: 0, thermostat: ptr(true)},
		{ms: sampler.DebounceMS + fsm.SeqDelayMS},
		{ms: sampler.DebounceMS + 2*fsm.SeqDelayMS},
	}
}

// overtempFromHeatElec reproduces scenario 5: a direct fault injection
// from an already-heating state.
func overtempFromHeatElec() []step {
	return []step{
		{ms: 0, thermostat: ptr(true)},
		// With the default sequence delay, HEAT_ELEC is reached one step
		// before DebounceMS + 2*SeqDelayMS.
		{ms: sampler.DebounceMS + 2*fsm.SeqDelayMS + timer.TickMS, pushKind: events.KindOvertempCrit, pushQueue: events.Faults},
	}
}

var scenarios = map[string]func() []step{
	"electric-start": normalElectricStart,
	"overtemp":       overtempFromHeatElec,
}

func main() {
	name := flag.String("scenario", "electric-start", "scenario to run (electric-start, overtemp)")
	cfgPath := flag.String("config", "heatctl.toml", "path to configuration file")
	debug := flag.Bool("debug", false, "enable debug logging to stderr")
	flag.Parse()

	if !*debug {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	steps, ok := scenarios[*name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown scenario %q\n", *name)
		os.Exit(1)
	}

	reader := &scenarioReader{}
	bus := events.NewBus(int(cfg.NormalCap), int(cfg.FaultsCap))
	timers := timer.NewService(bus)
	samp := sampler.New(reader, bus, cfg.SamplerConfig())
	machine := fsm.New(bus, timers, traceObserver{})
	machine.SetSeqDelayMS(cfg.SeqDelayMS)

	// targetElec resolves the combined provider authorization and
	// user-mode selection: mode A/B pin the target outright, otherwise
	// (BI, neither pinned) the provider's current authorization decides.
	targetElec := func() bool {
		switch {
		case reader.a:
			return true
		case reader.b:
			return false
		default:
			return reader.provider
		}
	}

	machine.RegisterGuard(fsm.GuardLockoutClear, func() bool { return !timers.IsActive(timer.MinOff) })
	machine.RegisterGuard(fsm.GuardTargetElec, targetElec)
	machine.RegisterGuard(fsm.GuardTargetGas, func() bool { return !targetElec() })
	machine.RegisterGuard(fsm.GuardTempSafe, func() bool { return true })
	machine.RegisterGuard(fsm.GuardNoFault, func() bool { return true })

	// electric-start scenario targets ELEC via the user-mode selector.
	reader.a = true

	ctl := controller.New(bus, timers, samp, machine, cfg.SamplerConfig())
	ctl.Init(fsm.Idle)

	schedule := steps()
	lastState := machine.State()
	var at uint32
	for _, sc := range schedule {
		for ; at < sc.ms; at++ {
			ctl.Step()
			if machine.State() != lastState {
				fmt.Printf("t=%dms state=%s\n", at, machine.State())
				lastState = machine.State()
			}
		}
		if sc.thermostat != nil {
			reader.thermostat = *sc.thermostat
		}
		if sc.provider != nil {
			reader.provider = *sc.provider
		}
		if sc.pushKind != 0 {
			bus.Push(sc.pushQueue, sc.pushKind, events.Arg{}, at)
		}
	}
	// drain any trailing effect of the final scripted instant.
	for i := 0; i < 100; i++ {
		ctl.Step()
		if machine.State() != lastState {
			fmt.Printf("t=%dms state=%s\n", at+uint32(i), machine.State())
			lastState = machine.State()
		}
	}

	fmt.Printf("final state=%s ignored=%d\n", machine.State(), ctl.Ignored())
}

type traceObserver struct{}

func (traceObserver) Notify(a fsm.ActionID) {
	log.Printf("action: %d", a)
}
