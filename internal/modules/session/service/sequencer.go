package service

import (
	"distracted/internal/modules/session/domain"
)

func (e *Engine) taskTick() {
	s := e.session
	s.TaskRemaining -= e.tunables.Tick
	if s.TaskRemaining <= 0 {
		e.timeoutTask()
		return
	}
	e.after(timerTask, e.tunables.Tick, e.taskTick)
}

func (e *Engine) completeTask() {
	s := e.session
	task, _ := s.Tasks.Current()
	s.Resources.AddFocus(e.tunables.TaskReward)
	s.Completed++
	e.recordTask(task, domain.TaskCompleted)
	s.Tasks.Advance()
	e.log.Debug("task completed", "session", s.ID, "task", task.ID, "focus", s.Resources.Focus)
	e.queue(domain.CueTaskCompleted, func(c *domain.Cue) { c.Task = &task })
	e.restartTaskCountdown()
}

func (e *Engine) timeoutTask() {
	s := e.session
	task, _ := s.Tasks.Current()
	s.Resources.AddScore(-e.tunables.TimeoutPenalty)
	s.Skipped++
	e.recordTask(task, domain.TaskTimedOut)
	s.Tasks.Advance()
	e.log.Debug("task timed out", "session", s.ID, "task", task.ID, "score", s.Resources.Score)
	e.queue(domain.CueTaskTimeout, func(c *domain.Cue) { c.Task = &task })
	if s.Resources.Depleted() {
		e.finish(domain.StateFailed)
		return
	}
	e.restartTaskCountdown()
}

func (e *Engine) restartTaskCountdown() {
	s := e.session
	s.TaskRemaining = e.tunables.TaskTimeout
	s.TaskStartedAt = e.clock.Now()
	e.after(timerTask, e.tunables.Tick, e.taskTick)
}

func (e *Engine) recordTask(task domain.Task, outcome domain.TaskOutcome) {
	s := e.session
	now := e.clock.Now()
	s.TaskLog = append(s.TaskLog, domain.TaskRecord{
		TaskID:      task.ID,
		Title:       task.Title,
		TargetLabel: task.TargetLabel,
		Outcome:     outcome,
		At:          now,
		Took:        now.Sub(s.TaskStartedAt),
	})
}
