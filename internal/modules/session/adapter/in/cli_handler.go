package in

import (
	"context"

	"distracted/internal/modules/session/dto"
	sessionin "distracted/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, chapterID string, seed int64) (dto.SnapshotOutput, error) {
	return h.usecase.Start(ctx, dto.StartInput{ChapterID: chapterID, Seed: seed})
}

func (h CLIHandler) Snapshot(ctx context.Context) (dto.SnapshotOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Report(ctx context.Context) (dto.ReportOutput, error) {
	return h.usecase.Report(ctx)
}

func (h CLIHandler) History(ctx context.Context, limit int) ([]dto.ReportSummaryOutput, error) {
	return h.usecase.History(ctx, limit)
}

func (h CLIHandler) GetReport(ctx context.Context, sessionID string) (dto.ReportOutput, error) {
	return h.usecase.GetReport(ctx, sessionID)
}

func (h CLIHandler) Dismiss(ctx context.Context) error { return h.usecase.Dismiss(ctx) }
func (h CLIHandler) Escape(ctx context.Context) error  { return h.usecase.Escape(ctx) }
func (h CLIHandler) Recover(ctx context.Context) error { return h.usecase.Recover(ctx) }

func (h CLIHandler) Distract(ctx context.Context, distractionID string) (dto.DistractOutput, error) {
	return h.usecase.Distract(ctx, dto.DistractInput{DistractionID: distractionID})
}

// Play starts a session and blocks until it ends or ctx is done, handing
// each cue to onCue. A cancelled session is reset before returning.
func (h CLIHandler) Play(ctx context.Context, chapterID string, seed int64, onCue func(dto.CueOutput)) (dto.ReportOutput, error) {
	cues, stop := h.usecase.Subscribe()
	defer stop()
	if _, err := h.usecase.Start(ctx, dto.StartInput{ChapterID: chapterID, Seed: seed}); err != nil {
		return dto.ReportOutput{}, err
	}
	for {
		select {
		case <-ctx.Done():
			_ = h.usecase.Reset(context.Background())
			return dto.ReportOutput{}, ctx.Err()
		case cue, ok := <-cues:
			if !ok {
				return h.usecase.Report(ctx)
			}
			if onCue != nil {
				onCue(cue)
			}
			if cue.Terminal() {
				return *cue.Report, nil
			}
		}
	}
}
