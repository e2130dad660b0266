package usecase

import (
	"context"

	"distracted/internal/modules/recognition/dto"
	recognitionin "distracted/internal/modules/recognition/port/in"
	"distracted/internal/modules/recognition/service"
)

type Interactor struct {
	svc *service.RecognitionService
}

func NewInteractor(svc *service.RecognitionService) recognitionin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.RecognizerInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Open(ctx context.Context, name string) (recognitionin.FrameSource, error) {
	stream, err := i.svc.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return stream, nil
}
