package in

import (
	"context"

	"distracted/internal/modules/catalog/dto"
)

type Usecase interface {
	ListChapters(ctx context.Context) ([]dto.ChapterOutput, error)
	Draw(ctx context.Context, input dto.DrawInput) (dto.DrawOutput, error)
	ListDistractions(ctx context.Context) ([]dto.DistractionOutput, error)
}
