package usecase

import (
	"context"

	catalogdto "distracted/internal/modules/catalog/dto"
	catalogin "distracted/internal/modules/catalog/port/in"
	"distracted/internal/modules/catalog/service"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) ListChapters(ctx context.Context) ([]catalogdto.ChapterOutput, error) {
	catalog, err := i.svc.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalogdto.ChapterOutput, 0, len(catalog.Chapters))
	for _, ch := range catalog.Chapters {
		out = append(out, catalogdto.ChapterOutput{ID: ch.ID, Title: ch.Title, TaskCount: len(ch.Tasks)})
	}
	return out, nil
}

func (i *Interactor) Draw(ctx context.Context, input catalogdto.DrawInput) (catalogdto.DrawOutput, error) {
	chapter, tasks, err := i.svc.Draw(ctx, input.ChapterID, input.Seed, input.Count)
	if err != nil {
		return catalogdto.DrawOutput{}, err
	}
	out := catalogdto.DrawOutput{ChapterID: chapter.ID, ChapterTitle: chapter.Title}
	for _, task := range tasks {
		out.Tasks = append(out.Tasks, catalogdto.TaskOutput{
			ID:          task.ID,
			Title:       task.Title,
			TargetLabel: task.TargetLabel,
			Difficulty:  task.Difficulty,
		})
	}
	return out, nil
}

func (i *Interactor) ListDistractions(ctx context.Context) ([]catalogdto.DistractionOutput, error) {
	catalog, err := i.svc.Load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]catalogdto.DistractionOutput, 0, len(catalog.Distractions))
	for _, d := range catalog.Distractions {
		out = append(out, catalogdto.DistractionOutput{
			ID:            d.ID,
			Category:      string(d.Category),
			Title:         d.Title,
			Description:   d.Description,
			TargetLabel:   d.TargetLabel,
			CostSeconds:   d.CostSeconds,
			SpecialEffect: string(d.SpecialEffect),
		})
	}
	return out, nil
}
