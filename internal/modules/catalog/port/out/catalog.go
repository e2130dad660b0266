package out

import (
	"context"

	"distracted/internal/modules/catalog/domain"
)

type CatalogStore interface {
	Load(ctx context.Context) (domain.Catalog, error)
}
