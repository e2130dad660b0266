package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	catalogout "distracted/internal/modules/catalog/adapter/out"
	"distracted/internal/modules/catalog/domain"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	t.Parallel()
	store := catalogout.NewYAMLCatalogStore(filepath.Join(t.TempDir(), "missing.yaml"))
	catalog, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load default catalog: %v", err)
	}
	normalized := catalog.Normalized()
	if err := normalized.Validate(); err != nil {
		t.Fatalf("default catalog must validate: %v", err)
	}
	effects := map[domain.SpecialEffect]int{}
	categories := map[domain.Category]int{}
	for _, d := range normalized.Distractions {
		effects[d.SpecialEffect]++
		categories[d.Category]++
	}
	if effects[domain.EffectRabbitHole] == 0 || effects[domain.EffectWorkingMemory] == 0 {
		t.Fatalf("default catalog must carry both special effects, got %v", effects)
	}
	for _, c := range []domain.Category{domain.CategoryEnvironment, domain.CategoryBiological, domain.CategoryPsychological, domain.CategorySocial} {
		if categories[c] == 0 {
			t.Fatalf("default catalog has no %s distractions", c)
		}
	}
}

func TestCatalogFileOverridesDefault(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	raw := `schema_version: 1
chapters:
  - id: garage
    title: Garage
    tasks:
      - {id: g1, target_label: bicycle}
distractions: []
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := catalogout.NewYAMLCatalogStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load catalog: %v", err)
	}
	if len(catalog.Chapters) != 1 || catalog.Chapters[0].ID != "garage" {
		t.Fatalf("expected override chapter, got %+v", catalog.Chapters)
	}
}

func TestCatalogRejectsUnknownFieldsAndSchema(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("schema_version: 1\nchapters: []\nbonus: true\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := catalogout.NewYAMLCatalogStore(unknown).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
	future := filepath.Join(dir, "future.yaml")
	if err := os.WriteFile(future, []byte("schema_version: 9\nchapters: []\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := catalogout.NewYAMLCatalogStore(future).Load(context.Background()); err == nil {
		t.Fatalf("expected schema version error")
	}
}
