package in

import (
	"context"

	catalogdto "distracted/internal/modules/catalog/dto"
	catalogin "distracted/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Chapters(ctx context.Context) ([]catalogdto.ChapterOutput, error) {
	return h.usecase.ListChapters(ctx)
}

func (h CLIHandler) Distractions(ctx context.Context) ([]catalogdto.DistractionOutput, error) {
	return h.usecase.ListDistractions(ctx)
}
