// Package controller implements the host loop: the sole producer of
// wall-clock cadence, driving the input sampler and timer service at
// their configured periods and draining the event queue into the FSM
// core once per outer tick.
package controller

import (
	"github.com/polyvarium/heatctl/events"
	"github.com/polyvarium/heatctl/fsm"
	"github.com/polyvarium/heatctl/sampler"
	"github.com/polyvarium/heatctl/timer"
)

// Controller wires the four control-path components together and
// advances them in lockstep on every Step call. It carries no logging
// and performs no I/O of its own: the control path stays side-effect
// free per the component design.
type Controller struct {
	Queue   *events.Bus
	Timers  *timer.Service
	Sampler *sampler.Sampler
	Machine *fsm.Machine

	cfg sampler.Config

	tick         uint32
	timerAccumMS uint32

	ignored uint32
}

// New constructs a Controller from already-built collaborators. Wiring
// (guard registration, observer, timer arming interface) is the
// caller's responsibility, mirroring the teacher's pattern of
// constructing each subsystem independently before handing it to a
// lifecycle owner.
func New(queue *events.Bus, timers *timer.Service, samp *sampler.Sampler, machine *fsm.Machine, cfg sampler.Config) *Controller {
	return &Controller{
		Queue:   queue,
		Timers:  timers,
		Sampler: samp,
		Machine: machine,
		cfg:     cfg,
	}
}

// Init seeds the sampler from current hardware state and sets the FSM's
// initial state, matching the bring-up sequence a real board would run
// once before the first Step.
func (c *Controller) Init(initial fsm.State) {
	c.Sampler.SeedFromHW(c.cfg)
	c.Machine.Init(initial)
}

// Step advances the controller by one INP_TICK_MS (the sampler's native
// cadence): it ticks the sampler every call, ticks the timer service
// every TMR_TICK_MS/INP_TICK_MS calls, then drains the event queue to
// empty, dispatching each event to the FSM and counting ignored events.
func (c *Controller) Step() {
	c.Sampler.Tick(c.cfg, c.tick)

	c.timerAccumMS += sampler.TickMS
	if c.timerAccumMS >= timer.TickMS {
		c.timerAccumMS -= timer.TickMS
		c.Timers.Tick(c.tick)
	}

	for {
		e, ok := c.Queue.Pop()
		if !ok {
			break
		}
		if !c.Machine.HandleEvent(e) {
			c.Queue.NoteIgnored(e.Kind)
			c.ignored++
		}
	}

	c.tick++
}

// Ignored returns the running count of dispatched-but-unmatched events,
// independent of the per-queue Stats.Ignored counters (which are scoped
// per queue; this is the host loop's own total).
func (c *Controller) Ignored() uint32 {
	return c.ignored
}
