package service

import (
	"context"
	"fmt"
	"math/rand"

	"distracted/internal/modules/catalog/domain"
	catalogout "distracted/internal/modules/catalog/port/out"
	apperrors "distracted/internal/platform/errors"
)

const DefaultTaskCount = 8

type CatalogService struct {
	store catalogout.CatalogStore
}

func NewCatalogService(store catalogout.CatalogStore) *CatalogService {
	return &CatalogService{store: store}
}

func (s *CatalogService) Load(ctx context.Context) (domain.Catalog, error) {
	catalog, err := s.store.Load(ctx)
	if err != nil {
		return domain.Catalog{}, err
	}
	catalog = catalog.Normalized()
	if err := catalog.Validate(); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	return catalog, nil
}

// Draw picks a chapter (random when chapterID is empty) and returns count
// tasks from it in shuffled order. Short chapters are cycled, reshuffling
// each pass, so the sequence always has count entries.
func (s *CatalogService) Draw(ctx context.Context, chapterID string, seed int64, count int) (domain.Chapter, []domain.TaskSpec, error) {
	if count <= 0 {
		count = DefaultTaskCount
	}
	catalog, err := s.Load(ctx)
	if err != nil {
		return domain.Chapter{}, nil, err
	}
	rng := rand.New(rand.NewSource(seed))

	var chapter domain.Chapter
	if chapterID == "" {
		chapter = catalog.Chapters[rng.Intn(len(catalog.Chapters))]
	} else {
		found, ok := catalog.Chapter(chapterID)
		if !ok {
			return domain.Chapter{}, nil, fmt.Errorf("%w: chapter %s", apperrors.ErrNotFound, chapterID)
		}
		chapter = found
	}

	tasks := make([]domain.TaskSpec, 0, count)
	for len(tasks) < count {
		pass := append([]domain.TaskSpec(nil), chapter.Tasks...)
		rng.Shuffle(len(pass), func(i, j int) { pass[i], pass[j] = pass[j], pass[i] })
		for _, task := range pass {
			if len(tasks) == count {
				break
			}
			tasks = append(tasks, task)
		}
	}
	return chapter, tasks, nil
}
