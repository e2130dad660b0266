package domain

import "time"

type Task struct {
	ID          string
	Title       string
	TargetLabel string
	Difficulty  int
}

// TaskSequence is a fixed list consumed circularly; only the index moves.
type TaskSequence struct {
	tasks []Task
	index int
}

func NewTaskSequence(tasks []Task) TaskSequence {
	return TaskSequence{tasks: append([]Task(nil), tasks...)}
}

func (s TaskSequence) Current() (Task, bool) {
	if len(s.tasks) == 0 {
		return Task{}, false
	}
	return s.tasks[s.index], true
}

// Advance moves to the next task, wrapping after the last one.
func (s *TaskSequence) Advance() {
	if len(s.tasks) == 0 {
		return
	}
	s.index = (s.index + 1) % len(s.tasks)
}

func (s TaskSequence) Index() int { return s.index }
func (s TaskSequence) Len() int   { return len(s.tasks) }

func (s TaskSequence) Tasks() []Task {
	return append([]Task(nil), s.tasks...)
}

// Progress is index / len, the ratio the distraction weights read.
func (s TaskSequence) Progress() float64 {
	if len(s.tasks) == 0 {
		return 0
	}
	return float64(s.index) / float64(len(s.tasks))
}

type TaskOutcome string

const (
	TaskCompleted TaskOutcome = "completed"
	TaskTimedOut  TaskOutcome = "timeout"
)

type TaskRecord struct {
	TaskID      string
	Title       string
	TargetLabel string
	Outcome     TaskOutcome
	At          time.Time
	Took        time.Duration
}
