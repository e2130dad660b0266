package domain

import (
	"math/rand"
	"testing"
	"time"
)

func TestBuildScheduleIsSortedAndInRange(t *testing.T) {
	t.Parallel()
	plan := DefaultSchedulePlan()
	for seed := int64(1); seed <= 20; seed++ {
		events := BuildSchedule(180*time.Second, plan, rand.New(rand.NewSource(seed)))
		if len(events) == 0 {
			t.Fatalf("seed %d produced no events", seed)
		}
		for i, ev := range events {
			if ev.FireAt < plan.Grace || ev.FireAt >= 180*time.Second {
				t.Fatalf("seed %d event %d out of range: %v", seed, i, ev.FireAt)
			}
			if i > 0 && events[i-1].FireAt > ev.FireAt {
				t.Fatalf("seed %d not sorted at %d", seed, i)
			}
			if ev.Phase == 0 && ev.Hint == "" {
				t.Fatalf("wildcard without hint: %+v", ev)
			}
		}
	}
}

func TestBuildScheduleDensifiesTowardsTheEnd(t *testing.T) {
	t.Parallel()
	plan := DefaultSchedulePlan()
	plan.Wildcards = 0
	plan.Grace = 0
	var perPhase [PhaseCount + 1]int
	for seed := int64(1); seed <= 50; seed++ {
		for _, ev := range BuildSchedule(180*time.Second, plan, rand.New(rand.NewSource(seed))) {
			perPhase[ev.Phase]++
		}
	}
	if !(perPhase[1] < perPhase[2] && perPhase[2] < perPhase[3]) {
		t.Fatalf("expected increasing density, got %v", perPhase[1:])
	}
}

func TestBuildScheduleDeterministicForSeed(t *testing.T) {
	t.Parallel()
	a := BuildSchedule(120*time.Second, DefaultSchedulePlan(), rand.New(rand.NewSource(99)))
	b := BuildSchedule(120*time.Second, DefaultSchedulePlan(), rand.New(rand.NewSource(99)))
	if len(a) != len(b) {
		t.Fatalf("length mismatch %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("event %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestSchedulePlanValidate(t *testing.T) {
	t.Parallel()
	plan := DefaultSchedulePlan()
	plan.Phases[1].MinGap = 0
	if err := plan.Validate(); err == nil {
		t.Fatalf("zero gap must be invalid")
	}
}

func TestTunablesValidate(t *testing.T) {
	t.Parallel()
	if err := DefaultTunables().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
	bad := DefaultTunables()
	bad.WorkingMemoryExpiry = time.Second
	if err := bad.Validate(); err == nil {
		t.Fatalf("short working memory expiry must be invalid")
	}
}
