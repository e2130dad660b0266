package out

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"distracted/internal/modules/catalog/domain"
	catalogout "distracted/internal/modules/catalog/port/out"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

// YAMLCatalogStore reads the catalog from path, falling back to the embedded
// default when the file does not exist.
type YAMLCatalogStore struct {
	path string
}

func NewYAMLCatalogStore(path string) catalogout.CatalogStore {
	return &YAMLCatalogStore{path: path}
}

func (s *YAMLCatalogStore) Load(_ context.Context) (domain.Catalog, error) {
	payload := defaultCatalog
	if s.path != "" {
		b, err := os.ReadFile(s.path)
		switch {
		case err == nil:
			payload = b
		case os.IsNotExist(err):
		default:
			return domain.Catalog{}, fmt.Errorf("read catalog: %w", err)
		}
	}
	return decodeCatalog(payload)
}

func decodeCatalog(payload []byte) (domain.Catalog, error) {
	catalog := domain.Catalog{}
	decoder := yaml.NewDecoder(bytes.NewReader(payload))
	decoder.KnownFields(true)
	if err := decoder.Decode(&catalog); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if catalog.SchemaVersion != domain.SchemaVersion {
		return domain.Catalog{}, fmt.Errorf("unsupported catalog schema version %d", catalog.SchemaVersion)
	}
	return catalog, nil
}
