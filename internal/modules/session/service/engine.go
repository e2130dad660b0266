package service

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"distracted/internal/modules/session/domain"
	sessionout "distracted/internal/modules/session/port/out"
	"distracted/internal/platform/clock"
	apperrors "distracted/internal/platform/errors"
	"distracted/internal/platform/id"
)

// Clock is what the engine needs from time: reading it and arming callbacks.
type Clock interface {
	clock.Clock
	clock.Timers
}

// Engine runs one session at a time. Every timer callback and every player
// action takes the same lock, so handlers never interleave. Cues are queued
// while the lock is held and published after it is released.
type Engine struct {
	mu       sync.Mutex
	clock    Clock
	ids      id.Generator
	tunables domain.Tunables
	log      hclog.Logger

	feed  sessionout.RecognitionFeed
	sinks []sessionout.CueSink

	timers   *timerSet
	session  *domain.Session
	last     *domain.Session
	pool     domain.Pool
	rng      *rand.Rand
	schedule []domain.ScheduleEvent
	outbox   []domain.Cue

	// gen changes on every Start and Reset. Work begun outside the lock
	// carries the gen it started under and is dropped if it moved on.
	gen uint64
}

func NewEngine(clk Clock, ids id.Generator, tunables domain.Tunables, logger hclog.Logger) (*Engine, error) {
	if err := tunables.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Engine{
		clock:    clk,
		ids:      ids,
		tunables: tunables,
		log:      logger.Named("engine"),
		timers:   newTimerSet(clk),
	}, nil
}

func (e *Engine) Tunables() domain.Tunables {
	return e.tunables
}

// AttachFeed sets the label source polled while a session runs.
func (e *Engine) AttachFeed(feed sessionout.RecognitionFeed) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.feed = feed
}

func (e *Engine) AddSink(sink sessionout.CueSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append(e.sinks, sink)
}

// Start begins a session. A session that is running or awaiting reset
// must be reset first.
func (e *Engine) Start(plan domain.Plan) (domain.Snapshot, error) {
	if err := plan.Validate(); err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	e.mu.Lock()
	if e.session != nil {
		state := e.session.State
		e.mu.Unlock()
		return domain.Snapshot{}, fmt.Errorf("%w: current session is %s", apperrors.ErrSessionActive, state)
	}

	plan = normalizePlan(plan)
	now := e.clock.Now()
	e.gen++
	e.rng = rand.New(rand.NewSource(plan.Seed))
	e.pool = domain.NewPool(plan.Distractions)
	e.session = domain.NewSession(e.ids.New(), plan, e.tunables, now)
	e.last = nil
	e.schedule = domain.BuildSchedule(e.tunables.SessionDuration, e.tunables.Schedule, e.rng)

	e.after(timerMaster, e.tunables.Tick, e.masterTick)
	e.after(timerTask, e.tunables.Tick, e.taskTick)
	if e.feed != nil {
		e.armPoll()
	}
	for i, ev := range e.schedule {
		ev := ev
		e.after(fmt.Sprintf("fire-%03d", i), ev.FireAt, func() { e.fire(ev) })
	}

	e.log.Info("session started",
		"session", e.session.ID,
		"chapter", plan.ChapterID,
		"seed", plan.Seed,
		"tasks", len(plan.Tasks),
		"distractions", e.pool.Size(),
		"scheduled", len(e.schedule),
	)
	e.queue(domain.CueSessionStarted, nil)
	snap := e.snapshotLocked()
	e.unlockAndFlush()
	return snap, nil
}

// Reset cancels every pending timer and returns to idle. The last terminal
// session stays readable through Report until the next start.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.timers.cancelAll()
	e.gen++
	if e.session != nil {
		if e.session.State.Terminal() {
			e.last = e.session
		}
		e.log.Info("session reset", "session", e.session.ID, "state", e.session.State)
	}
	e.session = nil
	e.schedule = nil
	e.outbox = nil
	e.mu.Unlock()
}

func (e *Engine) State() domain.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return domain.StateIdle
	}
	return e.session.State
}

// PendingTimers reports how many callbacks the engine still holds.
func (e *Engine) PendingTimers() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timers.len()
}

func (e *Engine) Schedule() []domain.ScheduleEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.ScheduleEvent(nil), e.schedule...)
}

// ObserveLabels feeds recognised labels into the session. While an
// interruption is active only that interruption can react; the current
// task cannot complete in the same observation.
func (e *Engine) ObserveLabels(labels []string) domain.ObserveResult {
	e.mu.Lock()
	return e.observeLocked(labels)
}

// observeFor applies labels polled on behalf of session generation gen.
// They are ignored once that session was reset or replaced.
func (e *Engine) observeFor(gen uint64, labels []string) domain.ObserveResult {
	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		e.log.Trace("stale poll ignored", "gen", gen)
		return domain.ObserveIgnored
	}
	return e.observeLocked(labels)
}

// observeLocked is entered with the lock held and releases it.
func (e *Engine) observeLocked(labels []string) domain.ObserveResult {
	if !e.runningLocked() {
		e.mu.Unlock()
		return domain.ObserveIgnored
	}
	seen := normalizeLabels(labels)
	s := e.session
	var result domain.ObserveResult
	switch active := s.Active.(type) {
	case nil:
		task, ok := s.Tasks.Current()
		if ok && seen[task.TargetLabel] {
			e.completeTask()
			result = domain.ObserveTaskCompleted
		} else {
			result = domain.ObserveNoMatch
		}
	case domain.Ordinary:
		if active.TargetLabel != "" && seen[active.TargetLabel] {
			e.resolveActive(domain.ResolutionMatched)
			result = domain.ObserveDistractionCleared
		} else {
			result = domain.ObserveBlocked
		}
	default:
		result = domain.ObserveBlocked
	}
	e.unlockAndFlush()
	return result
}

// Dismiss clears an ordinary distraction without its label.
func (e *Engine) Dismiss() error {
	return e.resolveAs(domain.KindOrdinary, domain.ResolutionDismissed)
}

// Escape leaves a rabbit hole.
func (e *Engine) Escape() error {
	return e.resolveAs(domain.KindRabbitHole, domain.ResolutionEscaped)
}

// Recover answers the working memory prompt once it is shown.
func (e *Engine) Recover() error {
	e.mu.Lock()
	if err := e.activeLocked(domain.KindWorkingMemory); err != nil {
		e.mu.Unlock()
		return err
	}
	if wm := e.session.Active.(domain.WorkingMemory); wm.Stage != domain.StageRecovery {
		e.mu.Unlock()
		return fmt.Errorf("%w: stage is %s", apperrors.ErrRecoveryNotReady, wm.Stage)
	}
	e.resolveActive(domain.ResolutionRecovered)
	e.unlockAndFlush()
	return nil
}

func (e *Engine) resolveAs(kind domain.InterruptionKind, resolution domain.Resolution) error {
	e.mu.Lock()
	if err := e.activeLocked(kind); err != nil {
		e.mu.Unlock()
		return err
	}
	e.resolveActive(resolution)
	e.unlockAndFlush()
	return nil
}

func (e *Engine) activeLocked(kind domain.InterruptionKind) error {
	if !e.runningLocked() {
		return apperrors.ErrNotRunning
	}
	if e.session.Active == nil {
		return apperrors.ErrNoActiveDistraction
	}
	if got := e.session.Active.Kind(); got != kind {
		return fmt.Errorf("%w: active distraction is %s", apperrors.ErrWrongInterruption, got)
	}
	return nil
}

func (e *Engine) Snapshot() domain.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Report returns the frozen report of the current or last terminal session.
func (e *Engine) Report() (domain.Report, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.session != nil && e.session.State.Terminal():
		return e.session.Report(), nil
	case e.session == nil && e.last != nil:
		return e.last.Report(), nil
	default:
		return domain.Report{}, apperrors.ErrNoReport
	}
}

func (e *Engine) runningLocked() bool {
	return e.session != nil && e.session.State == domain.StateRunning
}

// after arms a named callback that runs under the engine lock, and only
// while the session that armed it is still running.
func (e *Engine) after(key string, d time.Duration, fn func()) {
	e.timers.arm(key, d, func(token uint64) {
		e.mu.Lock()
		if !e.timers.claim(key, token) || !e.runningLocked() {
			e.mu.Unlock()
			e.log.Trace("stale timer ignored", "timer", key)
			return
		}
		fn()
		e.unlockAndFlush()
	})
}

// armPoll schedules the next feed poll. The feed is read outside the lock.
func (e *Engine) armPoll() {
	e.timers.arm(timerPoll, e.tunables.PollInterval, func(token uint64) {
		e.mu.Lock()
		if !e.timers.claim(timerPoll, token) || !e.runningLocked() || e.feed == nil {
			e.mu.Unlock()
			return
		}
		feed, gen := e.feed, e.gen
		e.armPoll()
		e.mu.Unlock()

		if labels := feed.Poll(); len(labels) > 0 {
			e.observeFor(gen, labels)
		}
	})
}

func (e *Engine) masterTick() {
	s := e.session
	s.Elapsed += e.tunables.Tick
	if s.Elapsed >= e.tunables.SessionDuration {
		e.finish(domain.StateCompleted)
		return
	}
	e.after(timerMaster, e.tunables.Tick, e.masterTick)
}

// finish freezes the session. It runs at most once per session because
// every caller requires the running state and all timers are cancelled here.
func (e *Engine) finish(state domain.State) {
	s := e.session
	e.timers.cancelAll()
	now := e.clock.Now()
	if s.Active != nil {
		ev := s.Active.Event()
		ev.Resolution = domain.ResolutionAbandoned
		s.Distractions = append(s.Distractions, ev)
		s.Active = nil
	}
	s.State = state
	s.EndedAt = now

	report := s.Report()
	kind := domain.CueSessionCompleted
	if state == domain.StateFailed {
		kind = domain.CueScoreDepleted
	}
	e.log.Info("session finished",
		"session", s.ID,
		"state", state,
		"elapsed", s.Elapsed,
		"score", s.Resources.Score,
		"focus", s.Resources.Focus,
		"completed", s.Completed,
		"skipped", s.Skipped,
	)
	e.queueCue(domain.Cue{Kind: kind, Report: &report})
}

func (e *Engine) queue(kind domain.CueKind, fill func(*domain.Cue)) {
	cue := domain.Cue{Kind: kind}
	if fill != nil {
		fill(&cue)
	}
	e.queueCue(cue)
}

func (e *Engine) queueCue(cue domain.Cue) {
	s := e.session
	cue.SessionID = s.ID
	cue.At = e.clock.Now()
	cue.ElapsedSeconds = int(s.Elapsed / time.Second)
	cue.Score = s.Resources.Score
	cue.Focus = s.Resources.Focus
	e.outbox = append(e.outbox, cue)
}

func (e *Engine) unlockAndFlush() {
	cues := e.outbox
	e.outbox = nil
	sinks := append([]sessionout.CueSink(nil), e.sinks...)
	e.mu.Unlock()
	for _, cue := range cues {
		for _, sink := range sinks {
			sink.Publish(cue)
		}
	}
}

func (e *Engine) snapshotLocked() domain.Snapshot {
	s := e.session
	if s == nil {
		return domain.Snapshot{State: domain.StateIdle, RemainingSeconds: int(e.tunables.SessionDuration / time.Second)}
	}
	now := e.clock.Now()
	snap := domain.Snapshot{
		SessionID:            s.ID,
		ChapterID:            s.ChapterID,
		ChapterTitle:         s.ChapterTitle,
		State:                s.State,
		ElapsedSeconds:       int(s.Elapsed / time.Second),
		RemainingSeconds:     int((e.tunables.SessionDuration - s.Elapsed) / time.Second),
		Score:                s.Resources.Score,
		Focus:                s.Resources.Focus,
		TaskIndex:            s.Tasks.Index(),
		TaskCount:            s.Tasks.Len(),
		TaskRemainingSeconds: int(s.TaskRemaining / time.Second),
		TasksCompleted:       s.Completed,
		TasksSkipped:         s.Skipped,
		Triggered:            s.Triggered,
		Resolved:             s.Resolved,
		Suppressed:           s.Suppressed,
	}
	if snap.RemainingSeconds < 0 {
		snap.RemainingSeconds = 0
	}
	snap.CurrentTask, snap.HasTask = s.Tasks.Current()
	if s.Active != nil {
		view := &domain.ActiveView{Kind: s.Active.Kind(), Event: s.Active.Event()}
		switch active := s.Active.(type) {
		case domain.RabbitHole:
			view.ExpiresInSeconds = secondsUntil(now, active.ExpiresAt)
		case domain.WorkingMemory:
			view.Stage = active.Stage
			view.ExpiresInSeconds = secondsUntil(now, active.ExpiresAt)
			view.StageEndsInSeconds = secondsUntil(now, active.StageEndsAt)
		}
		snap.Active = view
	}
	return snap
}

func secondsUntil(now, at time.Time) int {
	d := at.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

func normalizeLabels(labels []string) map[string]bool {
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if norm := normalizeLabel(label); norm != "" {
			seen[norm] = true
		}
	}
	return seen
}

func normalizePlan(plan domain.Plan) domain.Plan {
	tasks := make([]domain.Task, len(plan.Tasks))
	for i, task := range plan.Tasks {
		task.TargetLabel = normalizeLabel(task.TargetLabel)
		tasks[i] = task
	}
	entries := make([]domain.CatalogEntry, len(plan.Distractions))
	for i, entry := range plan.Distractions {
		entry.TargetLabel = normalizeLabel(entry.TargetLabel)
		entries[i] = entry
	}
	plan.Tasks = tasks
	plan.Distractions = entries
	return plan
}

func normalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
