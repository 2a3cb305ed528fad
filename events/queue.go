package events

// ring is a fixed-capacity single-producer/single-consumer ring buffer of
// events, cooperatively reentrant: a Push invoked from inside a Pop's
// consumer callback (timer expiry fired from within FSM dispatch) is
// safe because the control path never yields between the two — there is
// no concurrent access to guard against, only the reentrant call shape
// spec.md §9 documents. A design targeting an ISR-sourced ring instead
// would replace this with atomic CAS'd head/tail and published flags,
// the shape the teacher's original event queue used for its
// multi-producer game-event bus.
type ring struct {
	events []Event
	head   int // next slot to pop
	tail   int // next slot to push
	count  int
}

func newRing(capacity int) *ring {
	return &ring{events: make([]Event, capacity)}
}

func (r *ring) cap() int { return len(r.events) }
func (r *ring) full() bool  { return r.count == len(r.events) }
func (r *ring) empty() bool { return r.count == 0 }

func (r *ring) pushBack(e Event) {
	r.events[r.tail] = e
	r.tail = (r.tail + 1) % len(r.events)
	r.count++
}

// overwriteOldest drops the event at head and writes e at the new tail,
// used by the Faults queue's overflow policy.
func (r *ring) overwriteOldest(e Event) {
	r.head = (r.head + 1) % len(r.events)
	r.count--
	r.pushBack(e)
}

func (r *ring) popFront() (Event, bool) {
	if r.empty() {
		return Event{}, false
	}
	e := r.events[r.head]
	r.head = (r.head + 1) % len(r.events)
	r.count--
	return e, true
}

// contains reports whether an event of kind k is currently queued, for
// the coalescing check ("between tail and head" in spec terms, i.e.
// anywhere among the currently-queued elements).
func (r *ring) contains(k Kind) bool {
	for i := 0; i < r.count; i++ {
		if r.events[(r.head+i)%len(r.events)].Kind == k {
			return true
		}
	}
	return false
}

// DefaultNormalCap and DefaultFaultsCap mirror spec.md §6.3.
const (
	DefaultNormalCap = 32
	DefaultFaultsCap = 8
)

// Bus is the dual-priority event queue: two bounded ring buffers with
// per-kind coalescing and independent overflow policy, draining
// Faults-before-Normal.
type Bus struct {
	normal *ring
	faults *ring

	normalStats Stats
	faultsStats Stats

	coalesce [MaxKind + 1]bool
}

// defaultCoalesced lists the kinds coalesced by default per spec.md §4.1.
var defaultCoalesced = []Kind{
	KindThermostatOn,
	KindThermostatOff,
	KindTransitionReq,
	KindProviderToElec,
	KindProviderToGas,
}

// NewBus constructs a queue pair with the given capacities. A capacity of
// zero selects the spec.md default for that queue.
func NewBus(normalCap, faultsCap int) *Bus {
	if normalCap <= 0 {
		normalCap = DefaultNormalCap
	}
	if faultsCap <= 0 {
		faultsCap = DefaultFaultsCap
	}
	b := &Bus{
		normal: newRing(normalCap),
		faults: newRing(faultsCap),
	}
	for _, k := range defaultCoalesced {
		b.coalesce[k] = true
	}
	return b
}

func (b *Bus) queueFor(id QueueID) (*ring, *Stats) {
	if id == Faults {
		return b.faults, &b.faultsStats
	}
	return b.normal, &b.normalStats
}

// SetCoalesce toggles the coalescing flag for kind k. Returns false for an
// out-of-range kind, leaving no flags changed.
func (b *Bus) SetCoalesce(k Kind, enable bool) bool {
	if !k.valid() {
		return false
	}
	b.coalesce[k] = enable
	return true
}

// Push enqueues (kind, arg) with tick onto the named queue.
//
// Validation: an out-of-range kind is rejected, no side effects.
// Coalescing: if enabled for kind and an event of that kind is already
// queued, the push is reported accepted but the payload is discarded and
// coalesced is incremented; pushed is not incremented again.
// Overflow: Normal drops the new event on a full queue; Faults overwrites
// the oldest slot and still counts the overwrite as dropped.
func (b *Bus) Push(id QueueID, k Kind, arg Arg, tick uint32) bool {
	if !k.valid() {
		return false
	}
	r, stats := b.queueFor(id)

	if b.coalesce[k] && r.contains(k) {
		stats.Coalesced++
		return true
	}

	e := Event{Kind: k, Arg: arg, Tick: tick}

	if !r.full() {
		r.pushBack(e)
		stats.Pushed++
		return true
	}

	if id == Faults {
		r.overwriteOldest(e)
		stats.Pushed++
		stats.Dropped++
		return true
	}

	stats.Dropped++
	return false
}

// Pop returns the next event to dispatch, draining Faults to empty
// before any Normal event is returned.
func (b *Bus) Pop() (Event, bool) {
	if e, ok := b.faults.popFront(); ok {
		b.faultsStats.Popped++
		return e, true
	}
	if e, ok := b.normal.popFront(); ok {
		b.normalStats.Popped++
		return e, true
	}
	return Event{}, false
}

// NoteIgnored records that a dispatched event of kind k matched no
// transition row. The counter is attributed to the queue the kind
// normally travels on.
func (b *Bus) NoteIgnored(k Kind) {
	if k.faultClass() {
		b.faultsStats.Ignored++
		return
	}
	b.normalStats.Ignored++
}

// Stats returns the telemetry snapshot for the named queue.
func (b *Bus) Stats(id QueueID) Stats {
	_, stats := b.queueFor(id)
	return *stats
}
