package domain

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

const PhaseCount = 3

// ScheduleEvent is one planned firing. Phase is 1..PhaseCount for phased
// firings and 0 for wildcards; wildcards carry a category hint.
type ScheduleEvent struct {
	FireAt time.Duration
	Phase  int
	Hint   Category
}

func (e ScheduleEvent) Source() string {
	if e.Phase == 0 {
		return "wildcard"
	}
	return fmt.Sprintf("phase-%d", e.Phase)
}

// PhasePlan bounds the gap between firings as fractions of the phase length.
type PhasePlan struct {
	MinGap float64
	MaxGap float64
}

type SchedulePlan struct {
	Phases    [PhaseCount]PhasePlan
	Wildcards int
	// Grace keeps the opening seconds free of distractions.
	Grace time.Duration
}

func DefaultSchedulePlan() SchedulePlan {
	return SchedulePlan{
		Phases: [PhaseCount]PhasePlan{
			{MinGap: 0.25, MaxGap: 0.40},
			{MinGap: 0.15, MaxGap: 0.25},
			{MinGap: 0.08, MaxGap: 0.14},
		},
		Wildcards: 3,
		Grace:     5 * time.Second,
	}
}

func (p SchedulePlan) Validate() error {
	for i, phase := range p.Phases {
		if phase.MinGap <= 0 || phase.MaxGap < phase.MinGap {
			return fmt.Errorf("phase %d gap bounds invalid: min=%v max=%v", i+1, phase.MinGap, phase.MaxGap)
		}
	}
	if p.Wildcards < 0 {
		return fmt.Errorf("wildcards must be >= 0")
	}
	if p.Grace < 0 {
		return fmt.Errorf("grace must be >= 0")
	}
	return nil
}

// BuildSchedule splits the session into equal phases whose gaps shrink,
// so firings get denser towards the end, then mixes in wildcard firings.
// The result is sorted by FireAt and every FireAt lies in [Grace, duration).
func BuildSchedule(duration time.Duration, plan SchedulePlan, rng *rand.Rand) []ScheduleEvent {
	if duration <= 0 {
		return nil
	}
	phaseLen := duration / PhaseCount
	events := []ScheduleEvent{}
	if phaseLen > 0 {
		for i, phase := range plan.Phases {
			start := time.Duration(i) * phaseLen
			end := start + phaseLen
			if i == PhaseCount-1 {
				end = duration
			}
			gap := func() time.Duration {
				frac := phase.MinGap + rng.Float64()*(phase.MaxGap-phase.MinGap)
				d := time.Duration(frac * float64(phaseLen)).Truncate(time.Millisecond)
				if d <= 0 {
					d = time.Millisecond
				}
				return d
			}
			for at := start + gap(); at < end; at += gap() {
				if at < plan.Grace {
					continue
				}
				events = append(events, ScheduleEvent{FireAt: at, Phase: i + 1})
			}
		}
	}
	if window := duration - plan.Grace; window > 0 {
		for i := 0; i < plan.Wildcards; i++ {
			at := plan.Grace + time.Duration(rng.Int63n(int64(window))).Truncate(time.Millisecond)
			events = append(events, ScheduleEvent{
				FireAt: at,
				Hint:   Categories[rng.Intn(len(Categories))],
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].FireAt < events[j].FireAt })
	return events
}
