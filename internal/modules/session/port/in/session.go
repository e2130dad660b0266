package in

import (
	"context"

	"distracted/internal/modules/session/dto"
)

type Usecase interface {
	Start(ctx context.Context, input dto.StartInput) (dto.SnapshotOutput, error)
	Observe(ctx context.Context, input dto.ObserveInput) (dto.ObserveOutput, error)
	Dismiss(ctx context.Context) error
	Escape(ctx context.Context) error
	Recover(ctx context.Context) error
	Distract(ctx context.Context, input dto.DistractInput) (dto.DistractOutput, error)
	Reset(ctx context.Context) error
	Snapshot(ctx context.Context) (dto.SnapshotOutput, error)
	Report(ctx context.Context) (dto.ReportOutput, error)
	History(ctx context.Context, limit int) ([]dto.ReportSummaryOutput, error)
	GetReport(ctx context.Context, sessionID string) (dto.ReportOutput, error)
	// Subscribe streams cues until the returned cancel func is called.
	Subscribe() (<-chan dto.CueOutput, func())
}
