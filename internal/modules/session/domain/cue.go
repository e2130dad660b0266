package domain

import "time"

type CueKind string

const (
	CueSessionStarted       CueKind = "session-started"
	CueTaskCompleted        CueKind = "task-completed"
	CueTaskTimeout          CueKind = "task-timeout"
	CueDistractionActivated CueKind = "distraction-activated"
	CueDistractionStage     CueKind = "distraction-stage"
	CueDistractionResolved  CueKind = "distraction-resolved"
	CueScoreDepleted        CueKind = "score-depleted"
	CueSessionCompleted     CueKind = "session-completed"
)

// Cue is a notification published after the engine releases its lock.
// Terminal cues carry the final report.
type Cue struct {
	Kind           CueKind
	SessionID      string
	At             time.Time
	ElapsedSeconds int
	Score          int
	Focus          int
	Task           *Task
	Distraction    *DistractionEvent
	Stage          WorkingMemoryStage
	Report         *Report
}

func (c Cue) Terminal() bool {
	return c.Kind == CueScoreDepleted || c.Kind == CueSessionCompleted
}
