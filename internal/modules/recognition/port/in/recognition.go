package in

import (
	"context"

	"distracted/internal/modules/recognition/dto"
)

// FrameSource is an open connection to one recognizer process.
type FrameSource interface {
	Name() string
	// Next blocks until the recognizer returns a frame or ctx ends.
	Next(ctx context.Context) (dto.Frame, error)
	Close() error
}

type Usecase interface {
	List(ctx context.Context) ([]dto.RecognizerInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Open(ctx context.Context, name string) (FrameSource, error)
}
