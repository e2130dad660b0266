package domain_test

import (
	"testing"

	"distracted/internal/modules/catalog/domain"
)

func validCatalog() domain.Catalog {
	return domain.Catalog{
		SchemaVersion: domain.SchemaVersion,
		Chapters: []domain.Chapter{{
			ID:    "kitchen",
			Title: "Kitchen",
			Tasks: []domain.TaskSpec{{ID: "k1", TargetLabel: " Cup ", Difficulty: 1}},
		}},
		Distractions: []domain.DistractionSpec{
			{ID: "d1", Category: domain.CategoryBiological, Title: "Thirsty", TargetLabel: "bottle", CostSeconds: 5},
			{ID: "d2", Category: domain.CategoryPsychological, Title: "One more video", CostSeconds: 8, SpecialEffect: domain.EffectRabbitHole},
		},
	}
}

func TestCatalogNormalizedAndValid(t *testing.T) {
	t.Parallel()
	c := validCatalog().Normalized()
	if err := c.Validate(); err != nil {
		t.Fatalf("catalog should be valid: %v", err)
	}
	if c.Chapters[0].Tasks[0].TargetLabel != "cup" {
		t.Fatalf("expected normalized label, got %q", c.Chapters[0].Tasks[0].TargetLabel)
	}
	if c.Chapters[0].Tasks[0].Title != "Find a cup" {
		t.Fatalf("expected default title, got %q", c.Chapters[0].Tasks[0].Title)
	}
	if c.Distractions[0].SpecialEffect != domain.EffectNone {
		t.Fatalf("expected empty effect to normalize to none, got %q", c.Distractions[0].SpecialEffect)
	}
}

func TestCatalogValidateRejects(t *testing.T) {
	t.Parallel()
	cases := map[string]func(*domain.Catalog){
		"no chapters":          func(c *domain.Catalog) { c.Chapters = nil },
		"empty chapter":        func(c *domain.Catalog) { c.Chapters[0].Tasks = nil },
		"task without label":   func(c *domain.Catalog) { c.Chapters[0].Tasks[0].TargetLabel = "" },
		"unknown category":     func(c *domain.Catalog) { c.Distractions[0].Category = "cosmic" },
		"unknown effect":       func(c *domain.Catalog) { c.Distractions[1].SpecialEffect = "teleport" },
		"ordinary no label":    func(c *domain.Catalog) { c.Distractions[0].TargetLabel = "" },
		"non-positive cost":    func(c *domain.Catalog) { c.Distractions[0].CostSeconds = 0 },
		"duplicate distractor": func(c *domain.Catalog) { c.Distractions[1].ID = "d1" },
		"duplicate chapter": func(c *domain.Catalog) {
			c.Chapters = append(c.Chapters, c.Chapters[0])
		},
	}
	for name, mutate := range cases {
		c := validCatalog()
		mutate(&c)
		if err := c.Normalized().Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestSpecialEffectMayOmitLabel(t *testing.T) {
	t.Parallel()
	d := domain.DistractionSpec{ID: "wm", Category: domain.CategoryPsychological, Title: "Why am I here?", CostSeconds: 10, SpecialEffect: domain.EffectWorkingMemory}
	if err := d.Validate(); err != nil {
		t.Fatalf("special effect without label should be valid: %v", err)
	}
}
