package fsm

import (
	"github.com/polyvarium/heatctl/events"
	"github.com/polyvarium/heatctl/timer"
)

// SeqDelayMS is the default inter-step delay in the start/stop sequence
// (SEQ_DELAY_MS, §6.3).
const SeqDelayMS = 12000

// Default budgets for the runtime-limit and anti-flap timers the timer
// ID set declares (TMR_MIN_OFF, TMR_MAX_BURNER, TMR_MAX_ELEMS) but the
// canonical transition table never wires in (original_source leaves
// these unused). This implementation wires them: MinOffMS gates LOCKOUT_CLEAR
// after any stop, MaxBurnerMS/MaxElemsMS force a fault if a single heat
// call runs unreasonably long.
const (
	MinOffMS    = 5000
	MaxBurnerMS = 3_600_000
	MaxElemsMS  = 3_600_000
)

// TimerArmer is the subset of timer.Service the sequencer and the
// anti-flap/runtime-limit timers need; satisfied directly by
// *timer.Service.
type TimerArmer interface {
	Set(id timer.ID, delayMS uint32, kind events.Kind, arg events.Arg) bool
	Cancel(id timer.ID)
}

// Machine is the FSM core: current state, the owned sequencer, the
// guard registry, and handles to the collaborators actions notify or
// arm.
type Machine struct {
	table    Table
	state    State
	seq      Sequencer
	guards   map[GuardID]GuardFunc
	observer Observer
	timers   TimerArmer
	queue    *events.Bus

	seqDelayMS uint32
}

// New constructs a Machine wired to queue (for the sequencer's
// self-enqueued SEQ_DONE) and timers (for TMR_SEQ). Call Init before
// first use and RegisterGuard for every GuardID the table references
// other than GuardNone.
func New(queue *events.Bus, timers TimerArmer, observer Observer) *Machine {
	return &Machine{
		table:      DefaultTable(),
		guards:     make(map[GuardID]GuardFunc),
		queue:      queue,
		timers:     timers,
		observer:   observer,
		seqDelayMS: SeqDelayMS,
	}
}

// RegisterGuard binds a pure predicate to a GuardID. GuardNone is always
// true and cannot be overridden.
func (m *Machine) RegisterGuard(id GuardID, fn GuardFunc) {
	if id == GuardNone {
		return
	}
	m.guards[id] = fn
}

// SetSeqDelayMS overrides the inter-step sequence delay TMR_SEQ arms with,
// for a board configuration that deviates from SeqDelayMS.
func (m *Machine) SetSeqDelayMS(delayMS uint32) {
	m.seqDelayMS = delayMS
}

// Init sets the initial state and resets the sequencer.
func (m *Machine) Init(initial State) {
	m.state = initial
	m.seq = Sequencer{}
}

// State returns the current state. Never observes an intermediate state
// mid-dispatch: HandleEvent commits state only after its action runs.
func (m *Machine) State() State {
	return m.state
}

// Sequencer returns a snapshot of the internal sequencer state, for
// telemetry/dashboard use.
func (m *Machine) Sequencer() Sequencer {
	return m.seq
}

func (m *Machine) guardsPass(ids []GuardID) bool {
	for _, id := range ids {
		if id == GuardNone {
			continue
		}
		fn, ok := m.guards[id]
		if !ok || !fn() {
			return false
		}
	}
	return true
}

// HandleEvent dispatches one event: the fault fast-path first, then the
// table in declaration order. Returns false if no row matched (the
// caller is expected to count this as ignored, not as an error).
func (m *Machine) HandleEvent(e events.Event) bool {
	if isFaultClass(e.Kind) {
		m.execute(ActionEnterFault, e)
		m.state = Fault
		return true
	}

	if e.Kind == events.KindOvertempWarn {
		m.notify(ActionOvertempWarn)
		return true
	}

	for _, row := range m.table {
		if row.Src != m.state || row.Event != e.Kind {
			continue
		}
		if !m.guardsPass(row.Guards) {
			continue
		}
		m.execute(row.Action, e)
		m.state = row.Dst
		return true
	}
	return false
}

func (m *Machine) notify(a ActionID) {
	if m.observer != nil {
		m.observer.Notify(a)
	}
}

func (m *Machine) armSeq(kind events.Kind) {
	if m.timers != nil {
		m.timers.Set(timer.Seq, m.seqDelayMS, kind, events.Arg{})
	}
}

func (m *Machine) armMinOff() {
	if m.timers != nil {
		m.timers.Set(timer.MinOff, MinOffMS, events.KindMinOffDone, events.Arg{})
	}
}

func (m *Machine) armMaxBurner() {
	if m.timers != nil {
		m.timers.Set(timer.MaxBurner, MaxBurnerMS, events.KindFaultTimeBurner, events.Arg{})
	}
}

func (m *Machine) armMaxElems() {
	if m.timers != nil {
		m.timers.Set(timer.MaxElems, MaxElemsMS, events.KindFaultTimeElems, events.Arg{})
	}
}

func (m *Machine) cancelRuntimeLimits() {
	if m.timers != nil {
		m.timers.Cancel(timer.MaxBurner)
		m.timers.Cancel(timer.MaxElems)
	}
}

func (m *Machine) enqueueSeqDone(tick uint32) {
	if m.queue != nil {
		m.queue.Push(events.Normal, events.KindSeqDone, events.Arg{}, tick)
	}
}

func (m *Machine) execute(a ActionID, e events.Event) {
	switch a {
	case ActionNone:
		// no-op

	case ActionSeqStart:
		m.seq = Sequencer{Direction: DirUp, Step: 0}
		m.armSeq(events.KindSeqStepTimeout)
		m.notify(ActionSeqStart)

	case ActionSeqStep:
		m.seqStep(e.Tick)

	case ActionSeqStop:
		m.seq = Sequencer{Direction: DirDown, Step: 3}
		m.armSeq(events.KindSeqStepTimeout)
		m.notify(ActionSeqStop)

	case ActionEnterElec:
		m.armMaxElems()
		m.notify(ActionEnterElec)

	case ActionEnterGas:
		m.armMaxBurner()
		m.notify(ActionEnterGas)

	case ActionEnterCool:
		m.cancelRuntimeLimits()
		m.armMinOff()
		m.notify(ActionEnterCool)

	case ActionAllOff:
		m.notify(ActionAllOff)

	case ActionEnterFault:
		m.seq.Direction = DirNone
		m.cancelRuntimeLimits()
		m.notify(ActionEnterFault)
	}
}

// seqStep advances the sequencer by one, per the direction-specific
// ramp table in §4.4: UP raises elements 1->2->3, DOWN lowers 3->2->1.
func (m *Machine) seqStep(tick uint32) {
	switch m.seq.Direction {
	case DirUp:
		switch m.seq.Step {
		case 0:
			m.seq.Step = 1
			m.armSeq(events.KindSeqStepTimeout)
			m.notify(ActionSeqStep)
		case 1:
			m.seq.Step = 2
			m.notify(ActionSeqStep)
			m.seq.Direction = DirNone
			m.enqueueSeqDone(tick)
		}
	case DirDown:
		switch m.seq.Step {
		case 3:
			m.seq.Step = 2
			m.armSeq(events.KindSeqStepTimeout)
			m.notify(ActionSeqStep)
		case 2:
			m.seq.Step = 1
			m.notify(ActionSeqStep)
			m.seq.Direction = DirNone
			m.enqueueSeqDone(tick)
		}
	}
}
