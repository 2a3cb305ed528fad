// Package events implements the dual-priority event queue that sits
// between the input sampler / timer service and the FSM core.
package events

// Kind identifies the canonical event vocabulary. Zero is reserved as an
// invalid sentinel; valid kinds occupy (0, MaxKind].
type Kind int

const (
	_ Kind = iota // 0 reserved, invalid sentinel

	// KindThermostatOn is the thermostat's debounced rising edge.
	// Producer: sampler | Queue: Normal
	KindThermostatOn

	// KindThermostatOff is the thermostat's debounced falling edge.
	// Producer: sampler | Queue: Normal
	KindThermostatOff

	// KindProviderToElec signals the utility authorizing electric.
	// Producer: sampler | Queue: Normal
	KindProviderToElec

	// KindProviderToGas signals the utility authorizing gas.
	// Producer: sampler | Queue: Normal
	KindProviderToGas

	// KindUserModeElec is the three-way selector settling on ELEC.
	// Producer: sampler | Queue: Normal
	KindUserModeElec

	// KindUserModeGas is the three-way selector settling on GAS.
	// Producer: sampler | Queue: Normal
	KindUserModeGas

	// KindUserModeBi is the three-way selector settling on BI.
	// Producer: sampler | Queue: Normal
	KindUserModeBi

	// KindSeqStepTimeout fires when TMR_SEQ expires mid-sequence.
	// Producer: timer | Queue: Normal
	KindSeqStepTimeout

	// KindMinOnDone fires when the minimum-on interlock elapses.
	// Producer: timer | Queue: Normal
	KindMinOnDone

	// KindMinOffDone fires when the anti-flap lockout elapses.
	// Producer: timer | Queue: Normal
	KindMinOffDone

	// KindCooldownTimeout fires when the cooldown ceiling elapses
	// without TEMP_SAFE having been observed.
	// Producer: timer | Queue: Normal
	KindCooldownTimeout

	// KindTempSafe signals the sensor collaborator observed a
	// below-threshold temperature.
	// Producer: external sensor collaborator | Queue: Normal
	KindTempSafe

	// KindOvertempWarn is a non-fatal pre-alarm threshold crossing.
	// Producer: external sensor collaborator | Queue: Normal
	KindOvertempWarn

	// KindOvertempCrit is fault-class: bypasses the transition table.
	// Producer: external sensor collaborator | Queue: Faults
	KindOvertempCrit

	// KindFaultRedundancy is fault-class: redundant sensor disagreement.
	// Producer: external sensor collaborator | Queue: Faults
	KindFaultRedundancy

	// KindFaultTimeBurner is fault-class: burner exceeded its maximum
	// continuous run time (TMR_MAX_BURNER).
	// Producer: timer | Queue: Normal (timers push only to Normal)
	KindFaultTimeBurner

	// KindFaultTimeElems is fault-class: elements exceeded their
	// maximum continuous run time (TMR_MAX_ELEMS).
	// Producer: timer | Queue: Normal (timers push only to Normal)
	KindFaultTimeElems

	// KindSensorFault is fault-class: a sensor read failure.
	// Producer: external sensor collaborator | Queue: Faults
	KindSensorFault

	// KindFaultClear requests FAULT exit after external confirmation.
	// Producer: external operator/collaborator | Queue: Normal
	KindFaultClear

	// KindSeqDone is self-enqueued by the sequencer on its last step.
	// Producer: fsm (sequencer action) | Queue: Normal
	KindSeqDone

	// KindTransitionReq requests a live energy-source switch while
	// heating (provider or user-mode change during HEAT_ELEC/HEAT_GAS).
	// Producer: none inside this module | Queue: Normal
	KindTransitionReq

	// KindReserved0 and KindReserved1 round out the canonical
	// enumeration; unused by the table but kept so Kind's range matches
	// the original vocabulary exactly.
	KindReserved0
	KindReserved1

	// MaxKind is the largest valid Kind value.
	MaxKind = KindReserved1
)

// valid reports whether k lies in the open interval (0, MaxKind].
func (k Kind) valid() bool {
	return k > 0 && k <= MaxKind
}

// faultClass reports whether k must be dispatched through the FSM's
// fault fast-path and queued on the Faults queue by producers that know
// it is a fault at push time. The FSM makes its own independent
// fault-class check in HandleEvent; this is queue-routing guidance for
// callers pushing externally-sourced fault events.
func (k Kind) faultClass() bool {
	switch k {
	case KindOvertempCrit, KindFaultRedundancy, KindFaultTimeBurner, KindFaultTimeElems, KindSensorFault:
		return true
	default:
		return false
	}
}

// Arg carries at most one 8-bit and one 16-bit scalar payload alongside
// an event. Zero value means "no payload".
type Arg struct {
	U8  uint8
	U16 uint16
}

// Event is a tagged value with no heap resources: freely copyable.
type Event struct {
	Kind Kind
	Arg  Arg
	Tick uint32
}

// QueueID selects one of the two priority-ranked queues.
type QueueID int

const (
	Normal QueueID = iota
	Faults
)

// Stats holds the per-queue telemetry counters. Reading never resets them.
type Stats struct {
	Pushed    uint32
	Popped    uint32
	Dropped   uint32
	Coalesced uint32
	Ignored   uint32
}
