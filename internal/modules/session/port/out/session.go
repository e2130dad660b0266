package out

import (
	"context"

	"distracted/internal/modules/session/domain"
)

// RecognitionFeed returns the labels seen since the last poll. It must not block.
type RecognitionFeed interface {
	Poll() []string
}

type CueSink interface {
	Publish(cue domain.Cue)
}

type ReportStore interface {
	Save(ctx context.Context, report domain.Report) (string, error)
}

type ReportIndex interface {
	Upsert(ctx context.Context, report domain.Report, notePath string) error
	List(ctx context.Context, limit int) ([]domain.ReportSummary, error)
	Get(ctx context.Context, sessionID string) (domain.Report, string, error)
}

type TaskDraw struct {
	ChapterID    string
	ChapterTitle string
	Tasks        []domain.Task
}

type TaskSource interface {
	Draw(ctx context.Context, chapterID string, seed int64, count int) (TaskDraw, error)
}

type DistractionSource interface {
	Distractions(ctx context.Context) ([]domain.CatalogEntry, error)
}
