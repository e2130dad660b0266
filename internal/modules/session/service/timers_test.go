package service

import (
	"testing"
	"time"

	"distracted/internal/platform/clock"
)

type heldTimers struct {
	fns []func()
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return false }

func (h *heldTimers) AfterFunc(_ time.Duration, fn func()) clock.Timer {
	h.fns = append(h.fns, fn)
	return heldTimer{}
}

func TestTimerSetDiscardsReplacedCallbacks(t *testing.T) {
	t.Parallel()
	held := &heldTimers{}
	set := newTimerSet(held)
	var claimed []uint64
	fn := func(token uint64) {
		if set.claim("task", token) {
			claimed = append(claimed, token)
		}
	}
	set.arm("task", time.Second, fn)
	set.arm("task", time.Second, fn)

	held.fns[0]()
	if len(claimed) != 0 {
		t.Fatalf("replaced timer must not be claimed")
	}
	held.fns[1]()
	if len(claimed) != 1 || set.armed("task") {
		t.Fatalf("current timer must be claimed once: %v", claimed)
	}
	held.fns[1]()
	if len(claimed) != 1 {
		t.Fatalf("a claimed timer cannot be claimed twice")
	}
}

func TestTimerSetCancelAll(t *testing.T) {
	t.Parallel()
	held := &heldTimers{}
	set := newTimerSet(held)
	set.arm("a", time.Second, func(uint64) {})
	set.arm("b", time.Second, func(uint64) {})
	set.cancelAll()
	if set.len() != 0 {
		t.Fatalf("cancelAll left %d timers", set.len())
	}
}
