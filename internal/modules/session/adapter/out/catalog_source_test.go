package out

import (
	"context"
	"errors"
	"testing"

	catalogdto "distracted/internal/modules/catalog/dto"
	"distracted/internal/modules/session/domain"
)

type stubCatalog struct {
	draw  catalogdto.DrawInput
	items []catalogdto.DistractionOutput
	err   error
}

func (s *stubCatalog) ListChapters(context.Context) ([]catalogdto.ChapterOutput, error) {
	return nil, nil
}

func (s *stubCatalog) Draw(_ context.Context, input catalogdto.DrawInput) (catalogdto.DrawOutput, error) {
	s.draw = input
	if s.err != nil {
		return catalogdto.DrawOutput{}, s.err
	}
	return catalogdto.DrawOutput{
		ChapterID:    "kitchen",
		ChapterTitle: "Kitchen",
		Tasks:        []catalogdto.TaskOutput{{ID: "t1", Title: "Find a cup", TargetLabel: "cup", Difficulty: 2}},
	}, nil
}

func (s *stubCatalog) ListDistractions(context.Context) ([]catalogdto.DistractionOutput, error) {
	return s.items, s.err
}

func TestCatalogSourceMapsDraw(t *testing.T) {
	t.Parallel()
	stub := &stubCatalog{}
	draw, err := NewCatalogSource(stub).Draw(context.Background(), "kitchen", 7, 4)
	if err != nil {
		t.Fatalf("draw: %v", err)
	}
	if stub.draw.ChapterID != "kitchen" || stub.draw.Seed != 7 || stub.draw.Count != 4 {
		t.Fatalf("input not forwarded: %+v", stub.draw)
	}
	if draw.ChapterTitle != "Kitchen" || len(draw.Tasks) != 1 || draw.Tasks[0].TargetLabel != "cup" || draw.Tasks[0].Difficulty != 2 {
		t.Fatalf("unexpected draw: %+v", draw)
	}
}

func TestCatalogSourceMapsDistractions(t *testing.T) {
	t.Parallel()
	stub := &stubCatalog{items: []catalogdto.DistractionOutput{
		{ID: "d1", Category: "social", Title: "Doorbell", TargetLabel: "door", CostSeconds: 5},
		{ID: "d2", Category: "psychological", Title: "Scroll", SpecialEffect: "rabbit-hole"},
	}}
	entries, err := NewCatalogSource(stub).Distractions(context.Background())
	if err != nil {
		t.Fatalf("distractions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Category != domain.CategorySocial || entries[0].CostSeconds != 5 || entries[0].TargetLabel != "door" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Effect != domain.EffectRabbitHole {
		t.Fatalf("effect not mapped: %+v", entries[1])
	}
}

func TestCatalogSourcePropagatesErrors(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	source := NewCatalogSource(&stubCatalog{err: boom})
	if _, err := source.Draw(context.Background(), "", 1, 1); !errors.Is(err, boom) {
		t.Fatalf("draw error not propagated: %v", err)
	}
	if _, err := source.Distractions(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("distractions error not propagated: %v", err)
	}
}
