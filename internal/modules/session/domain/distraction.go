package domain

import "time"

type Category string

const (
	CategoryEnvironment   Category = "environment"
	CategoryBiological    Category = "biological"
	CategoryPsychological Category = "psychological"
	CategorySocial        Category = "social"
)

var Categories = []Category{CategoryEnvironment, CategoryBiological, CategoryPsychological, CategorySocial}

type SpecialEffect string

const (
	EffectNone          SpecialEffect = "none"
	EffectRabbitHole    SpecialEffect = "rabbit-hole"
	EffectWorkingMemory SpecialEffect = "working-memory-failure"
)

// CatalogEntry is immutable reference data the scheduler draws from.
type CatalogEntry struct {
	ID          string
	Category    Category
	Title       string
	Description string
	TargetLabel string
	CostSeconds int
	Effect      SpecialEffect
}

func (e CatalogEntry) Special() bool {
	return e.Effect != EffectNone && e.Effect != ""
}

type Resolution string

const (
	ResolutionMatched   Resolution = "matched"
	ResolutionDismissed Resolution = "dismissed"
	ResolutionEscaped   Resolution = "escaped"
	ResolutionRecovered Resolution = "recovered"
	ResolutionExpired   Resolution = "expired"
	// ResolutionAbandoned marks a distraction still open when the session ended.
	ResolutionAbandoned Resolution = "abandoned"
)

type DistractionEvent struct {
	ID          string
	EntryID     string
	Category    Category
	Title       string
	Description string
	TargetLabel string
	CostSeconds int
	Effect      SpecialEffect
	Source      string
	TriggeredAt time.Time
	ResolvedAt  time.Time
	Resolution  Resolution
}

func (e DistractionEvent) Resolved() bool {
	return !e.ResolvedAt.IsZero()
}

func NewDistractionEvent(id string, entry CatalogEntry, source string, now time.Time) DistractionEvent {
	effect := entry.Effect
	if effect == "" {
		effect = EffectNone
	}
	return DistractionEvent{
		ID:          id,
		EntryID:     entry.ID,
		Category:    entry.Category,
		Title:       entry.Title,
		Description: entry.Description,
		TargetLabel: entry.TargetLabel,
		CostSeconds: entry.CostSeconds,
		Effect:      effect,
		Source:      source,
		TriggeredAt: now,
	}
}

type InterruptionKind string

const (
	KindOrdinary      InterruptionKind = "ordinary"
	KindRabbitHole    InterruptionKind = "rabbit-hole"
	KindWorkingMemory InterruptionKind = "working-memory-failure"
)

// Interruption is the single active distraction slot. Exactly one of
// Ordinary, RabbitHole or WorkingMemory.
type Interruption interface {
	Kind() InterruptionKind
	Event() DistractionEvent
}

// Ordinary resolves by recognising its target label or by dismissal.
type Ordinary struct {
	DistractionEvent
}

func (Ordinary) Kind() InterruptionKind    { return KindOrdinary }
func (o Ordinary) Event() DistractionEvent { return o.DistractionEvent }

// RabbitHole resolves by escape or when ExpiresAt passes.
type RabbitHole struct {
	DistractionEvent
	ExpiresAt time.Time
}

func (RabbitHole) Kind() InterruptionKind    { return KindRabbitHole }
func (r RabbitHole) Event() DistractionEvent { return r.DistractionEvent }

type WorkingMemoryStage string

const (
	StageDissolve  WorkingMemoryStage = "dissolve"
	StageConfusion WorkingMemoryStage = "confusion"
	StageRecovery  WorkingMemoryStage = "recovery"
)

// WorkingMemory walks dissolve -> confusion -> recovery. Recover is only
// accepted in the recovery stage; ExpiresAt resolves it regardless of stage.
type WorkingMemory struct {
	DistractionEvent
	Stage       WorkingMemoryStage
	StageEndsAt time.Time
	ExpiresAt   time.Time
}

func (WorkingMemory) Kind() InterruptionKind    { return KindWorkingMemory }
func (w WorkingMemory) Event() DistractionEvent { return w.DistractionEvent }

// NextStage reports the stage after the current one, false at recovery.
func (w WorkingMemory) NextStage() (WorkingMemoryStage, bool) {
	switch w.Stage {
	case StageDissolve:
		return StageConfusion, true
	case StageConfusion:
		return StageRecovery, true
	default:
		return w.Stage, false
	}
}
