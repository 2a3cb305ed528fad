// Package timer implements the fixed set of software one-shot timers
// that expire into the event queue.
package timer

import "github.com/polyvarium/heatctl/events"

// ID is the closed enumeration of timer slots, sized to TMR_COUNT.
type ID int

const (
	Seq ID = iota
	MinOff
	MinOn
	CooldownMin
	MaxBurner
	MaxElems
	User0
	User1

	// Count is the fixed number of software timers (TMR_COUNT).
	Count
)

func (id ID) valid() bool { return id >= 0 && id < Count }

// TickMS is the fixed compile-time tick granularity (TMR_TICK_MS).
const TickMS = 10

// MSToTicks rounds a millisecond delay up to whole ticks, raising a
// computed value of zero to one so a freshly armed timer cannot expire
// in the tick it was armed in.
func MSToTicks(delayMS uint32) uint32 {
	ticks := (delayMS + TickMS - 1) / TickMS
	if ticks == 0 {
		ticks = 1
	}
	return ticks
}

// Pusher is the push-only view of the event queue the timer service
// depends on, breaking the events<->timers cross-dependency by making
// the dependency one-directional: timers know how to push, nothing else.
type Pusher interface {
	Push(id events.QueueID, k events.Kind, arg events.Arg, tick uint32) bool
}

type record struct {
	remainingTicks uint32
	kind           events.Kind
	arg            events.Arg
	active         bool
}

// Service owns the fixed TMR_COUNT array of timer records and a push-only
// handle to the event queue they expire into.
type Service struct {
	records [Count]record
	out     Pusher
}

// NewService constructs a timer service that expires into out.
func NewService(out Pusher) *Service {
	return &Service{out: out}
}

// Set arms (or reschedules, if already active) timer id to fire
// (kind, arg) after delayMS, rounded up to whole ticks. Returns false for
// an out-of-range id or kind without changing any state.
func (s *Service) Set(id ID, delayMS uint32, kind events.Kind, arg events.Arg) bool {
	if !id.valid() || kind <= 0 || kind > events.MaxKind {
		return false
	}
	s.records[id] = record{
		remainingTicks: MSToTicks(delayMS),
		kind:           kind,
		arg:            arg,
		active:         true,
	}
	return true
}

// Cancel disarms id. Idempotent.
func (s *Service) Cancel(id ID) {
	if !id.valid() {
		return
	}
	s.records[id].active = false
}

// IsActive reports whether id currently carries a live countdown.
func (s *Service) IsActive(id ID) bool {
	if !id.valid() {
		return false
	}
	return s.records[id].active
}

// RemainingMS reports the timer's remaining budget in milliseconds,
// computed from whole ticks (not a live wall-clock estimate) — a timer
// sitting at zero ticks while retrying a blocked push still active reads
// as zero, not negative.
func (s *Service) RemainingMS(id ID) uint32 {
	if !id.valid() {
		return 0
	}
	return s.records[id].remainingTicks * TickMS
}

// Tick decrements every active record by one tick (saturating at zero)
// and attempts to push any record that reaches zero. A successful push
// disarms the timer; a failed push (Normal queue full) leaves it active
// at zero ticks so it retries on the next Tick, guaranteeing no lost
// expiry at the cost of bounded delay.
func (s *Service) Tick(nowTick uint32) {
	for i := range s.records {
		r := &s.records[i]
		if !r.active {
			continue
		}
		if r.remainingTicks > 0 {
			r.remainingTicks--
		}
		if r.remainingTicks == 0 {
			if s.out.Push(events.Normal, r.kind, r.arg, nowTick) {
				r.active = false
			}
		}
	}
}
