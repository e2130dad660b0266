package out

import (
	"context"

	"distracted/internal/modules/recognition/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Connection is a running recognizer process.
type Connection interface {
	Metadata(ctx context.Context) (domain.Metadata, error)
	Recognize(ctx context.Context, sequence int64) (domain.Frame, error)
	Close() error
}

type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Connect(ctx context.Context, manifest domain.Manifest) (Connection, error)
}
