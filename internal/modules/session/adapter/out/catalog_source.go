package out

import (
	"context"

	catalogdto "distracted/internal/modules/catalog/dto"
	catalogin "distracted/internal/modules/catalog/port/in"
	"distracted/internal/modules/session/domain"
	sessionout "distracted/internal/modules/session/port/out"
)

// CatalogSource reads tasks and distractions through the catalog module.
type CatalogSource struct {
	catalog catalogin.Usecase
}

func NewCatalogSource(catalog catalogin.Usecase) *CatalogSource {
	return &CatalogSource{catalog: catalog}
}

func (c *CatalogSource) Draw(ctx context.Context, chapterID string, seed int64, count int) (sessionout.TaskDraw, error) {
	out, err := c.catalog.Draw(ctx, catalogdto.DrawInput{ChapterID: chapterID, Seed: seed, Count: count})
	if err != nil {
		return sessionout.TaskDraw{}, err
	}
	draw := sessionout.TaskDraw{ChapterID: out.ChapterID, ChapterTitle: out.ChapterTitle}
	for _, task := range out.Tasks {
		draw.Tasks = append(draw.Tasks, domain.Task{
			ID:          task.ID,
			Title:       task.Title,
			TargetLabel: task.TargetLabel,
			Difficulty:  task.Difficulty,
		})
	}
	return draw, nil
}

func (c *CatalogSource) Distractions(ctx context.Context) ([]domain.CatalogEntry, error) {
	items, err := c.catalog.ListDistractions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.CatalogEntry, 0, len(items))
	for _, item := range items {
		out = append(out, domain.CatalogEntry{
			ID:          item.ID,
			Category:    domain.Category(item.Category),
			Title:       item.Title,
			Description: item.Description,
			TargetLabel: item.TargetLabel,
			CostSeconds: item.CostSeconds,
			Effect:      domain.SpecialEffect(item.SpecialEffect),
		})
	}
	return out, nil
}
