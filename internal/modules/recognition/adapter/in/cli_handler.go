package in

import (
	"context"
	"time"

	"distracted/internal/modules/recognition/dto"
	recognitionin "distracted/internal/modules/recognition/port/in"
)

type CLIHandler struct {
	usecase recognitionin.Usecase
}

func NewCLIHandler(usecase recognitionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.RecognizerInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

// Probe opens a recognizer and pulls count frames from it.
func (h CLIHandler) Probe(ctx context.Context, name string, count int, perFrame time.Duration) ([]dto.Frame, error) {
	source, err := h.usecase.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer source.Close()
	frames := make([]dto.Frame, 0, count)
	for i := 0; i < count; i++ {
		callCtx, cancel := context.WithTimeout(ctx, perFrame)
		frame, err := source.Next(callCtx)
		cancel()
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
