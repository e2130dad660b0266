package service

import (
	"fmt"

	"distracted/internal/modules/session/domain"
	apperrors "distracted/internal/platform/errors"
)

// fire runs one scheduled firing. It is suppressed while any distraction is
// active; the category guard is logged separately for tuning. A wildcard's
// hint tilts the draw towards its category.
func (e *Engine) fire(ev domain.ScheduleEvent) {
	s := e.session
	if s.Active != nil {
		s.Suppressed++
		guard := "global"
		if ev.Hint != "" && s.Active.Event().Category == ev.Hint {
			guard = "category"
		}
		e.log.Debug("distraction suppressed", "session", s.ID, "source", ev.Source(), "guard", guard)
		return
	}
	entry, ok := e.pick(ev.Hint)
	if !ok {
		e.log.Trace("distraction pool empty", "session", s.ID)
		return
	}
	e.activate(entry, ev.Source())
}

func (e *Engine) pick(hint domain.Category) (domain.CatalogEntry, bool) {
	s := e.session
	weights := domain.CategoryWeights(s.Tasks.Progress(), s.Resources.FocusRatio(), e.tunables.Weights)
	if hint != "" {
		weights = weights.Boost(domain.BucketOfCategory(hint), e.tunables.Weights.HintBoost)
	}
	return e.pool.Pick(weights, e.rng)
}

// Inject triggers a distraction on demand under the same guards as a
// scheduled firing. An empty entryID draws from the weighted pool. It
// reports false when the firing was suppressed.
func (e *Engine) Inject(entryID string) (domain.DistractionEvent, bool, error) {
	e.mu.Lock()
	if !e.runningLocked() {
		e.mu.Unlock()
		return domain.DistractionEvent{}, false, apperrors.ErrNotRunning
	}
	var (
		entry domain.CatalogEntry
		ok    bool
	)
	if entryID == "" {
		entry, ok = e.pick("")
	} else {
		entry, ok = e.pool.Entry(entryID)
	}
	if !ok {
		e.mu.Unlock()
		if entryID == "" {
			return domain.DistractionEvent{}, false, fmt.Errorf("%w: distraction pool is empty", apperrors.ErrNotFound)
		}
		return domain.DistractionEvent{}, false, fmt.Errorf("%w: distraction %q", apperrors.ErrNotFound, entryID)
	}
	if e.session.Active != nil {
		e.session.Suppressed++
		e.mu.Unlock()
		return domain.DistractionEvent{}, false, nil
	}
	ev := e.activate(entry, "manual")
	e.unlockAndFlush()
	return ev, true, nil
}

func (e *Engine) activate(entry domain.CatalogEntry, source string) domain.DistractionEvent {
	s := e.session
	now := e.clock.Now()
	ev := domain.NewDistractionEvent(e.ids.New(), entry, source, now)
	s.Resources.AddFocus(-e.tunables.DistractionCost)
	s.Triggered++

	switch ev.Effect {
	case domain.EffectRabbitHole:
		s.Active = domain.RabbitHole{DistractionEvent: ev, ExpiresAt: now.Add(e.tunables.RabbitHoleDuration)}
		e.after(timerEffect, e.tunables.RabbitHoleDuration, e.expireActive)
	case domain.EffectWorkingMemory:
		s.Active = domain.WorkingMemory{
			DistractionEvent: ev,
			Stage:            domain.StageDissolve,
			StageEndsAt:      now.Add(e.tunables.DissolveDuration),
			ExpiresAt:        now.Add(e.tunables.WorkingMemoryExpiry),
		}
		e.after(timerStage, e.tunables.DissolveDuration, e.advanceStage)
		e.after(timerEffect, e.tunables.WorkingMemoryExpiry, e.expireActive)
	default:
		s.Active = domain.Ordinary{DistractionEvent: ev}
	}

	e.log.Debug("distraction activated",
		"session", s.ID,
		"entry", entry.ID,
		"category", entry.Category,
		"effect", ev.Effect,
		"source", source,
		"focus", s.Resources.Focus,
	)
	e.queue(domain.CueDistractionActivated, func(c *domain.Cue) { c.Distraction = &ev })
	return ev
}

func (e *Engine) advanceStage() {
	s := e.session
	wm, ok := s.Active.(domain.WorkingMemory)
	if !ok {
		return
	}
	next, ok := wm.NextStage()
	if !ok {
		return
	}
	now := e.clock.Now()
	wm.Stage = next
	switch next {
	case domain.StageConfusion:
		wm.StageEndsAt = now.Add(e.tunables.ConfusionDuration)
		e.after(timerStage, e.tunables.ConfusionDuration, e.advanceStage)
	default:
		wm.StageEndsAt = wm.ExpiresAt
	}
	s.Active = wm
	ev := wm.DistractionEvent
	e.queue(domain.CueDistractionStage, func(c *domain.Cue) {
		c.Distraction = &ev
		c.Stage = next
	})
}

func (e *Engine) expireActive() {
	if e.session.Active == nil {
		return
	}
	e.resolveActive(domain.ResolutionExpired)
}

// resolveActive releases the lock held by the active distraction and grants
// the focus recovery of its kind.
func (e *Engine) resolveActive(resolution domain.Resolution) {
	s := e.session
	active := s.Active
	ev := active.Event()
	ev.ResolvedAt = e.clock.Now()
	ev.Resolution = resolution

	switch active.Kind() {
	case domain.KindRabbitHole:
		s.Resources.AddFocus(e.tunables.RabbitHoleReward)
	case domain.KindWorkingMemory:
		s.Resources.AddFocus(e.tunables.WorkingMemoryReward)
	default:
		s.Resources.AddFocus(e.tunables.DistractionReward)
	}
	s.Resolved++
	s.Distractions = append(s.Distractions, ev)
	s.Active = nil
	e.timers.cancel(timerEffect)
	e.timers.cancel(timerStage)

	e.log.Debug("distraction resolved", "session", s.ID, "entry", ev.EntryID, "resolution", resolution, "focus", s.Resources.Focus)
	e.queue(domain.CueDistractionResolved, func(c *domain.Cue) { c.Distraction = &ev })
}
