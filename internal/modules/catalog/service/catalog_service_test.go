package service_test

import (
	"context"
	"errors"
	"testing"

	"distracted/internal/modules/catalog/domain"
	"distracted/internal/modules/catalog/service"
	apperrors "distracted/internal/platform/errors"
)

type fakeStore struct {
	catalog domain.Catalog
	err     error
}

func (f fakeStore) Load(context.Context) (domain.Catalog, error) { return f.catalog, f.err }

func threeTaskCatalog() domain.Catalog {
	return domain.Catalog{
		SchemaVersion: domain.SchemaVersion,
		Chapters: []domain.Chapter{
			{ID: "a", Title: "A", Tasks: []domain.TaskSpec{
				{ID: "a1", TargetLabel: "cup"},
				{ID: "a2", TargetLabel: "bowl"},
				{ID: "a3", TargetLabel: "fork"},
			}},
			{ID: "b", Title: "B", Tasks: []domain.TaskSpec{{ID: "b1", TargetLabel: "book"}}},
		},
	}
}

func TestDrawCyclesShortChapterToCount(t *testing.T) {
	t.Parallel()
	svc := service.NewCatalogService(fakeStore{catalog: threeTaskCatalog()})
	chapter, tasks, err := svc.Draw(context.Background(), "a", 7, 8)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if chapter.ID != "a" || len(tasks) != 8 {
		t.Fatalf("expected 8 tasks from chapter a, got %s/%d", chapter.ID, len(tasks))
	}
	counts := map[string]int{}
	for _, task := range tasks {
		counts[task.ID]++
	}
	for id, n := range counts {
		if n < 2 || n > 3 {
			t.Fatalf("task %s drawn %d times, expected balanced cycling", id, n)
		}
	}
}

func TestDrawIsDeterministicPerSeed(t *testing.T) {
	t.Parallel()
	svc := service.NewCatalogService(fakeStore{catalog: threeTaskCatalog()})
	_, first, err := svc.Draw(context.Background(), "", 42, 0)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	_, second, err := svc.Draw(context.Background(), "", 42, 0)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if len(first) != service.DefaultTaskCount || len(second) != service.DefaultTaskCount {
		t.Fatalf("expected default count, got %d/%d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different draws at %d: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestDrawUnknownChapterAndInvalidCatalog(t *testing.T) {
	t.Parallel()
	svc := service.NewCatalogService(fakeStore{catalog: threeTaskCatalog()})
	if _, _, err := svc.Draw(context.Background(), "zzz", 1, 8); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	broken := threeTaskCatalog()
	broken.Chapters[1].Tasks = nil
	svc = service.NewCatalogService(fakeStore{catalog: broken})
	if _, _, err := svc.Draw(context.Background(), "a", 1, 8); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}
