package timer

import (
	"testing"

	"github.com/polyvarium/heatctl/events"
)

type fakePusher struct {
	full    bool
	pushed  []events.Kind
}

func (f *fakePusher) Push(id events.QueueID, k events.Kind, arg events.Arg, tick uint32) bool {
	if f.full {
		return false
	}
	f.pushed = append(f.pushed, k)
	return true
}

func TestMSToTicksRoundsUpAndFloorsAtOne(t *testing.T) {
	cases := []struct {
		ms   uint32
		want uint32
	}{
		{0, 1},
		{1, 1},
		{10, 1},
		{11, 2},
		{12000, 1200},
	}
	for _, c := range cases {
		if got := MSToTicks(c.ms); got != c.want {
			t.Errorf("MSToTicks(%d) = %d, want %d", c.ms, got, c.want)
		}
	}
}

func TestSetExpiresAfterExactTickCount(t *testing.T) {
	p := &fakePusher{}
	s := NewService(p)

	s.Set(Seq, 35, events.KindSeqStepTimeout, events.Arg{})
	ticks := MSToTicks(35)

	for i := uint32(0); i < ticks-1; i++ {
		s.Tick(i)
	}
	if len(p.pushed) != 0 {
		t.Fatalf("expired early, after %d of %d ticks", ticks-1, ticks)
	}

	s.Tick(ticks - 1)
	if len(p.pushed) != 1 || p.pushed[0] != events.KindSeqStepTimeout {
		t.Fatalf("pushed = %v, want one SeqStepTimeout", p.pushed)
	}
	if s.IsActive(Seq) {
		t.Fatal("timer should disarm after successful expiry")
	}
}

func TestBackPressureRetriesUntilAccepted(t *testing.T) {
	p := &fakePusher{full: true}
	s := NewService(p)
	s.Set(MinOff, 10, events.KindMinOffDone, events.Arg{})

	s.Tick(0)
	if !s.IsActive(MinOff) {
		t.Fatal("timer must remain active when push is blocked")
	}
	if s.RemainingMS(MinOff) != 0 {
		t.Fatalf("remaining = %d, want 0 while retrying", s.RemainingMS(MinOff))
	}

	s.Tick(1)
	s.Tick(2)
	if len(p.pushed) != 0 {
		t.Fatal("no push should have succeeded while full")
	}

	p.full = false
	s.Tick(3)
	if len(p.pushed) != 1 {
		t.Fatalf("expected exactly one push once unblocked, got %v", p.pushed)
	}
	if s.IsActive(MinOff) {
		t.Fatal("timer should disarm once the retry succeeds")
	}
}

func TestSetReschedulesActiveTimer(t *testing.T) {
	p := &fakePusher{}
	s := NewService(p)

	s.Set(User0, 1000, events.KindSeqDone, events.Arg{})
	s.Set(User0, 10, events.KindSeqDone, events.Arg{})

	s.Tick(0)
	if len(p.pushed) != 1 {
		t.Fatalf("rescheduled timer should fire at the new delay, pushed=%v", p.pushed)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	p := &fakePusher{}
	s := NewService(p)
	s.Cancel(Seq)
	s.Cancel(Seq)
	if s.IsActive(Seq) {
		t.Fatal("cancel of never-armed timer must not activate it")
	}
}

func TestSetRejectsInvalidIDOrKind(t *testing.T) {
	p := &fakePusher{}
	s := NewService(p)
	if s.Set(Count, 10, events.KindSeqDone, events.Arg{}) {
		t.Fatal("out-of-range id must be rejected")
	}
	if s.Set(Seq, 10, 0, events.Arg{}) {
		t.Fatal("invalid kind must be rejected")
	}
}
