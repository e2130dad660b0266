package domain

import (
	"fmt"
	"time"
)

const SchemaVersion = 1

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Tunables are the balancing constants of a session.
type Tunables struct {
	SessionDuration time.Duration
	TaskTimeout     time.Duration
	Tick            time.Duration
	PollInterval    time.Duration

	StartScore int
	StartFocus int

	TimeoutPenalty      int
	DistractionCost     int
	TaskReward          int
	DistractionReward   int
	RabbitHoleReward    int
	WorkingMemoryReward int

	RabbitHoleDuration  time.Duration
	DissolveDuration    time.Duration
	ConfusionDuration   time.Duration
	WorkingMemoryExpiry time.Duration

	Weights  WeightParams
	Schedule SchedulePlan
}

func DefaultTunables() Tunables {
	return Tunables{
		SessionDuration:     180 * time.Second,
		TaskTimeout:         20 * time.Second,
		Tick:                time.Second,
		PollInterval:        500 * time.Millisecond,
		StartScore:          ResourceMax,
		StartFocus:          ResourceMax,
		TimeoutPenalty:      20,
		DistractionCost:     10,
		TaskReward:          10,
		DistractionReward:   6,
		RabbitHoleReward:    4,
		WorkingMemoryReward: 2,
		RabbitHoleDuration:  8 * time.Second,
		DissolveDuration:    3 * time.Second,
		ConfusionDuration:   3 * time.Second,
		WorkingMemoryExpiry: 15 * time.Second,
		Weights:             DefaultWeightParams(),
		Schedule:            DefaultSchedulePlan(),
	}
}

func (t Tunables) Validate() error {
	if t.Tick <= 0 {
		return fmt.Errorf("tick must be > 0")
	}
	if t.SessionDuration < t.Tick {
		return fmt.Errorf("session duration must be at least one tick")
	}
	if t.TaskTimeout < t.Tick {
		return fmt.Errorf("task timeout must be at least one tick")
	}
	if t.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if t.TimeoutPenalty < 0 || t.DistractionCost < 0 {
		return fmt.Errorf("penalties must be >= 0")
	}
	if t.TaskReward < 0 || t.DistractionReward < 0 || t.RabbitHoleReward < 0 || t.WorkingMemoryReward < 0 {
		return fmt.Errorf("rewards must be >= 0")
	}
	if t.RabbitHoleDuration <= 0 || t.DissolveDuration <= 0 || t.ConfusionDuration <= 0 {
		return fmt.Errorf("effect durations must be > 0")
	}
	if t.WorkingMemoryExpiry < t.DissolveDuration+t.ConfusionDuration {
		return fmt.Errorf("working memory expiry must cover dissolve and confusion stages")
	}
	return t.Schedule.Validate()
}

// Plan is everything a session needs at start.
type Plan struct {
	ChapterID    string
	ChapterTitle string
	Seed         int64
	Tasks        []Task
	Distractions []CatalogEntry
}

func (p Plan) Validate() error {
	if len(p.Tasks) == 0 {
		return fmt.Errorf("plan has no tasks")
	}
	for i, task := range p.Tasks {
		if task.TargetLabel == "" {
			return fmt.Errorf("task %d has no target label", i)
		}
	}
	return nil
}

// Session is the live aggregate. It is owned by the engine and mutated only
// under its lock.
type Session struct {
	ID           string
	ChapterID    string
	ChapterTitle string
	Seed         int64
	State        State
	StartedAt    time.Time
	EndedAt      time.Time

	Elapsed       time.Duration
	TaskRemaining time.Duration
	TaskStartedAt time.Time

	Resources Resources
	Tasks     TaskSequence
	Active    Interruption

	Completed  int
	Skipped    int
	Triggered  int
	Resolved   int
	Suppressed int

	TaskLog      []TaskRecord
	Distractions []DistractionEvent
}

func NewSession(id string, plan Plan, t Tunables, now time.Time) *Session {
	return &Session{
		ID:            id,
		ChapterID:     plan.ChapterID,
		ChapterTitle:  plan.ChapterTitle,
		Seed:          plan.Seed,
		State:         StateRunning,
		StartedAt:     now,
		TaskRemaining: t.TaskTimeout,
		TaskStartedAt: now,
		Resources:     NewResources(t.StartScore, t.StartFocus),
		Tasks:         NewTaskSequence(plan.Tasks),
	}
}

func (s *Session) Report() Report {
	return Report{
		SchemaVersion:          SchemaVersion,
		SessionID:              s.ID,
		ChapterID:              s.ChapterID,
		ChapterTitle:           s.ChapterTitle,
		Seed:                   s.Seed,
		State:                  s.State,
		StartedAt:              s.StartedAt,
		EndedAt:                s.EndedAt,
		ElapsedSeconds:         int(s.Elapsed / time.Second),
		TasksCompleted:         s.Completed,
		TasksSkipped:           s.Skipped,
		DistractionsTriggered:  s.Triggered,
		DistractionsResolved:   s.Resolved,
		DistractionsSuppressed: s.Suppressed,
		FinalScore:             s.Resources.Score,
		FinalFocus:             s.Resources.Focus,
		Tasks:                  append([]TaskRecord(nil), s.TaskLog...),
		Distractions:           append([]DistractionEvent(nil), s.Distractions...),
	}
}

// Report is the frozen outcome of a terminal session.
type Report struct {
	SchemaVersion          int
	SessionID              string
	ChapterID              string
	ChapterTitle           string
	Seed                   int64
	State                  State
	StartedAt              time.Time
	EndedAt                time.Time
	ElapsedSeconds         int
	TasksCompleted         int
	TasksSkipped           int
	DistractionsTriggered  int
	DistractionsResolved   int
	DistractionsSuppressed int
	FinalScore             int
	FinalFocus             int
	Tasks                  []TaskRecord
	Distractions           []DistractionEvent
}

// ReportSummary is the indexed row shown in history listings.
type ReportSummary struct {
	SessionID      string
	ChapterID      string
	ChapterTitle   string
	State          State
	StartedAt      time.Time
	ElapsedSeconds int
	TasksCompleted int
	TasksSkipped   int
	FinalScore     int
	FinalFocus     int
	NotePath       string
}

type ActiveView struct {
	Kind               InterruptionKind
	Event              DistractionEvent
	Stage              WorkingMemoryStage
	ExpiresInSeconds   int
	StageEndsInSeconds int
}

type Snapshot struct {
	SessionID            string
	ChapterID            string
	ChapterTitle         string
	State                State
	ElapsedSeconds       int
	RemainingSeconds     int
	Score                int
	Focus                int
	TaskIndex            int
	TaskCount            int
	CurrentTask          Task
	HasTask              bool
	TaskRemainingSeconds int
	TasksCompleted       int
	TasksSkipped         int
	Triggered            int
	Resolved             int
	Suppressed           int
	Active               *ActiveView
}

type ObserveResult string

const (
	ObserveIgnored            ObserveResult = "ignored"
	ObserveNoMatch            ObserveResult = "no-match"
	ObserveTaskCompleted      ObserveResult = "task-completed"
	ObserveDistractionCleared ObserveResult = "distraction-cleared"
	// ObserveBlocked means an interruption is active and the labels did not resolve it.
	ObserveBlocked ObserveResult = "blocked"
)
