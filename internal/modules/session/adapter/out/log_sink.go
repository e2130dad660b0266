package out

import (
	hclog "github.com/hashicorp/go-hclog"

	"distracted/internal/modules/session/domain"
)

// LogSink writes every cue to the logger. Headless runs use it as their
// only presentation.
type LogSink struct {
	log hclog.Logger
}

func NewLogSink(logger hclog.Logger) *LogSink {
	return &LogSink{log: logger.Named("cues")}
}

func (s *LogSink) Publish(cue domain.Cue) {
	args := []any{"session", cue.SessionID, "elapsed", cue.ElapsedSeconds, "score", cue.Score, "focus", cue.Focus}
	if cue.Task != nil {
		args = append(args, "task", cue.Task.Title)
	}
	if cue.Distraction != nil {
		args = append(args, "distraction", cue.Distraction.Title)
		if cue.Distraction.Resolution != "" {
			args = append(args, "resolution", cue.Distraction.Resolution)
		}
	}
	if cue.Stage != "" {
		args = append(args, "stage", cue.Stage)
	}
	if cue.Report != nil {
		args = append(args, "state", cue.Report.State, "completed", cue.Report.TasksCompleted, "skipped", cue.Report.TasksSkipped)
	}
	s.log.Info(string(cue.Kind), args...)
}
