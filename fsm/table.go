package fsm

import "github.com/polyvarium/heatctl/events"

// Row is one immutable tuple of the transition table. Guards are ANDed;
// all must pass for the row to be a candidate.
type Row struct {
	Src    State
	Event  events.Kind
	Guards []GuardID
	Action ActionID
	Dst    State
}

// Table is the ordered transition table; order is significant, as the
// first matching, guard-passing row wins.
type Table []Row

// faultKinds lists the event kinds that bypass the table entirely via
// the fault fast-path (§4.4 step 1).
var faultKinds = map[events.Kind]bool{
	events.KindOvertempCrit:     true,
	events.KindFaultRedundancy:  true,
	events.KindFaultTimeBurner:  true,
	events.KindFaultTimeElems:   true,
	events.KindSensorFault:      true,
}

func isFaultClass(k events.Kind) bool { return faultKinds[k] }

// DefaultTable returns the canonical 12-row table from the transition
// table design, minus the dedicated no-op lockout row, plus the FAULT
// exit row this implementation adds to resolve the FAULT_CLEAR open
// question (§9 option a). LOCKOUT_CLEAR is folded directly into rows 2
// and 3's guards as a second conjunct, per the other half of the §9
// row-1 resolution: the anti-flap interval blocks a start outright
// instead of being enforced by a separate, earlier-matching no-op row
// that would otherwise shadow both of these and make them dead.
func DefaultTable() Table {
	return Table{
		{Idle, events.KindThermostatOn, []GuardID{GuardLockoutClear, GuardTargetElec}, ActionSeqStart, Starting},
		{Idle, events.KindThermostatOn, []GuardID{GuardLockoutClear, GuardTargetGas}, ActionEnterGas, HeatGas},
		{Starting, events.KindSeqStepTimeout, nil, ActionSeqStep, Starting},
		{Stopping, events.KindSeqStepTimeout, nil, ActionSeqStep, Stopping},
		{Starting, events.KindSeqDone, nil, ActionEnterElec, HeatElec},
		{Stopping, events.KindSeqDone, nil, ActionEnterCool, Cooldown},
		{HeatElec, events.KindThermostatOff, nil, ActionSeqStop, Stopping},
		{HeatGas, events.KindThermostatOff, nil, ActionEnterCool, Cooldown},
		{Cooldown, events.KindTempSafe, nil, ActionAllOff, Idle},
		{HeatElec, events.KindTransitionReq, []GuardID{GuardTargetGas}, ActionSeqStop, Stopping},
		{HeatGas, events.KindTransitionReq, []GuardID{GuardTargetElec}, ActionEnterCool, Cooldown},
		// Added row: resolves the FAULT_CLEAR open question (§9 option a).
		{Fault, events.KindFaultClear, []GuardID{GuardNoFault}, ActionAllOff, Idle},
	}
}
