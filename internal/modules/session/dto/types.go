package dto

import "time"

type StartInput struct {
	ChapterID string
	Seed      int64
}

type ObserveInput struct {
	Labels []string
}

type ObserveOutput struct {
	Result   string
	Snapshot SnapshotOutput
}

type DistractInput struct {
	DistractionID string
}

type DistractOutput struct {
	Fired       bool
	Distraction DistractionOutput
}

type TaskOutput struct {
	ID          string
	Title       string
	TargetLabel string
}

type DistractionOutput struct {
	ID          string
	EntryID     string
	Category    string
	Title       string
	Description string
	TargetLabel string
	Effect      string
	Source      string
	TriggeredAt time.Time
	ResolvedAt  time.Time
	Resolution  string
}

type ActiveOutput struct {
	Kind               string
	Stage              string
	ExpiresInSeconds   int
	StageEndsInSeconds int
	Distraction        DistractionOutput
}

type SnapshotOutput struct {
	SessionID            string
	ChapterID            string
	ChapterTitle         string
	State                string
	ElapsedSeconds       int
	RemainingSeconds     int
	Score                int
	Focus                int
	TaskIndex            int
	TaskCount            int
	TaskRemainingSeconds int
	TasksCompleted       int
	TasksSkipped         int
	Triggered            int
	Resolved             int
	Suppressed           int
	Task                 *TaskOutput
	Active               *ActiveOutput
}

type TaskRecordOutput struct {
	TaskID      string
	Title       string
	TargetLabel string
	Outcome     string
	At          time.Time
	TookSeconds float64
}

type ReportOutput struct {
	SessionID              string
	ChapterID              string
	ChapterTitle           string
	Seed                   int64
	State                  string
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
	Tasks                  []TaskRecordOutput
	Distractions           []DistractionOutput
	NotePath               string
}

type ReportSummaryOutput struct {
	SessionID      string
	ChapterID      string
	ChapterTitle   string
	State          string
	StartedAt      time.Time
	ElapsedSeconds int
	TasksCompleted int
	TasksSkipped   int
	FinalScore     int
	FinalFocus     int
	NotePath       string
}

type CueOutput struct {
	Kind           string
	SessionID      string
	At             time.Time
	ElapsedSeconds int
	Score          int
	Focus          int
	Message        string
	Stage          string
	Task           *TaskOutput
	Distraction    *DistractionOutput
	Report         *ReportOutput
}

func (c CueOutput) Terminal() bool {
	return c.Report != nil
}
