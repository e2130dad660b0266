package usecase

import (
	"fmt"

	"distracted/internal/modules/session/domain"
	"distracted/internal/modules/session/dto"
)

func toSnapshotOutput(s domain.Snapshot) dto.SnapshotOutput {
	out := dto.SnapshotOutput{
		SessionID:            s.SessionID,
		ChapterID:            s.ChapterID,
		ChapterTitle:         s.ChapterTitle,
		State:                string(s.State),
		ElapsedSeconds:       s.ElapsedSeconds,
		RemainingSeconds:     s.RemainingSeconds,
		Score:                s.Score,
		Focus:                s.Focus,
		TaskIndex:            s.TaskIndex,
		TaskCount:            s.TaskCount,
		TaskRemainingSeconds: s.TaskRemainingSeconds,
		TasksCompleted:       s.TasksCompleted,
		TasksSkipped:         s.TasksSkipped,
		Triggered:            s.Triggered,
		Resolved:             s.Resolved,
		Suppressed:           s.Suppressed,
	}
	if s.HasTask {
		task := toTaskOutput(s.CurrentTask)
		out.Task = &task
	}
	if s.Active != nil {
		out.Active = &dto.ActiveOutput{
			Kind:               string(s.Active.Kind),
			Stage:              string(s.Active.Stage),
			ExpiresInSeconds:   s.Active.ExpiresInSeconds,
			StageEndsInSeconds: s.Active.StageEndsInSeconds,
			Distraction:        toDistractionOutput(s.Active.Event),
		}
	}
	return out
}

func toTaskOutput(t domain.Task) dto.TaskOutput {
	return dto.TaskOutput{ID: t.ID, Title: t.Title, TargetLabel: t.TargetLabel}
}

func toDistractionOutput(ev domain.DistractionEvent) dto.DistractionOutput {
	return dto.DistractionOutput{
		ID:          ev.ID,
		EntryID:     ev.EntryID,
		Category:    string(ev.Category),
		Title:       ev.Title,
		Description: ev.Description,
		TargetLabel: ev.TargetLabel,
		Effect:      string(ev.Effect),
		Source:      ev.Source,
		TriggeredAt: ev.TriggeredAt,
		ResolvedAt:  ev.ResolvedAt,
		Resolution:  string(ev.Resolution),
	}
}

func toReportOutput(r domain.Report, note string) dto.ReportOutput {
	out := dto.ReportOutput{
		SessionID:              r.SessionID,
		ChapterID:              r.ChapterID,
		ChapterTitle:           r.ChapterTitle,
		Seed:                   r.Seed,
		State:                  string(r.State),
		StartedAt:              r.StartedAt,
		EndedAt:                r.EndedAt,
		ElapsedSeconds:         r.ElapsedSeconds,
		TasksCompleted:         r.TasksCompleted,
		TasksSkipped:           r.TasksSkipped,
		DistractionsTriggered:  r.DistractionsTriggered,
		DistractionsResolved:   r.DistractionsResolved,
		DistractionsSuppressed: r.DistractionsSuppressed,
		FinalScore:             r.FinalScore,
		FinalFocus:             r.FinalFocus,
		NotePath:               note,
	}
	for _, rec := range r.Tasks {
		out.Tasks = append(out.Tasks, dto.TaskRecordOutput{
			TaskID:      rec.TaskID,
			Title:       rec.Title,
			TargetLabel: rec.TargetLabel,
			Outcome:     string(rec.Outcome),
			At:          rec.At,
			TookSeconds: rec.Took.Seconds(),
		})
	}
	for _, ev := range r.Distractions {
		out.Distractions = append(out.Distractions, toDistractionOutput(ev))
	}
	return out
}

func toCueOutput(c domain.Cue) dto.CueOutput {
	out := dto.CueOutput{
		Kind:           string(c.Kind),
		SessionID:      c.SessionID,
		At:             c.At,
		ElapsedSeconds: c.ElapsedSeconds,
		Score:          c.Score,
		Focus:          c.Focus,
		Stage:          string(c.Stage),
		Message:        cueMessage(c),
	}
	if c.Task != nil {
		task := toTaskOutput(*c.Task)
		out.Task = &task
	}
	if c.Distraction != nil {
		ev := toDistractionOutput(*c.Distraction)
		out.Distraction = &ev
	}
	if c.Report != nil {
		report := toReportOutput(*c.Report, "")
		out.Report = &report
	}
	return out
}

func cueMessage(c domain.Cue) string {
	switch c.Kind {
	case domain.CueSessionStarted:
		return "Session started. Find the first item."
	case domain.CueTaskCompleted:
		return fmt.Sprintf("Found it: %s", c.Task.Title)
	case domain.CueTaskTimeout:
		return fmt.Sprintf("Too slow: %s", c.Task.Title)
	case domain.CueDistractionActivated:
		return fmt.Sprintf("Distracted: %s", c.Distraction.Title)
	case domain.CueDistractionStage:
		switch c.Stage {
		case domain.StageConfusion:
			return "Wait... what was I looking for?"
		case domain.StageRecovery:
			return "Press r to remember what you came for."
		}
		return string(c.Stage)
	case domain.CueDistractionResolved:
		return fmt.Sprintf("Back on track (%s): %s", c.Distraction.Resolution, c.Distraction.Title)
	case domain.CueScoreDepleted:
		return "Score depleted. Session over."
	case domain.CueSessionCompleted:
		return "Time is up. Session complete."
	}
	return string(c.Kind)
}
