package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	hclog "github.com/hashicorp/go-hclog"

	"distracted/internal/modules/session/domain"
	"distracted/internal/modules/session/dto"
	sessionout "distracted/internal/modules/session/port/out"
	"distracted/internal/modules/session/service"
	apperrors "distracted/internal/platform/errors"
)

const subscriberBuffer = 64

type Options struct {
	TaskCount int
	// NewSeed supplies a seed when a start request has none.
	NewSeed func() (int64, error)
	Logger  hclog.Logger
}

type Interactor struct {
	engine       *service.Engine
	tasks        sessionout.TaskSource
	distractions sessionout.DistractionSource
	store        sessionout.ReportStore
	index        sessionout.ReportIndex
	taskCount    int
	newSeed      func() (int64, error)
	log          hclog.Logger

	mu       sync.Mutex
	subs     map[int]chan dto.CueOutput
	nextSub  int
	lastNote string
}

// NewInteractor wires the engine to its sources and persistence and
// registers itself as a cue sink. store and index may be nil.
func NewInteractor(
	engine *service.Engine,
	tasks sessionout.TaskSource,
	distractions sessionout.DistractionSource,
	store sessionout.ReportStore,
	index sessionout.ReportIndex,
	opts Options,
) *Interactor {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	newSeed := opts.NewSeed
	if newSeed == nil {
		newSeed = func() (int64, error) { return 1, nil }
	}
	it := &Interactor{
		engine:       engine,
		tasks:        tasks,
		distractions: distractions,
		store:        store,
		index:        index,
		taskCount:    opts.TaskCount,
		newSeed:      newSeed,
		log:          logger.Named("session"),
		subs:         map[int]chan dto.CueOutput{},
	}
	engine.AddSink(it)
	return it
}

// Start resets a finished session, draws the chapter's tasks and starts
// the engine. An empty chapter lets the catalog pick one from the seed.
func (it *Interactor) Start(ctx context.Context, input dto.StartInput) (dto.SnapshotOutput, error) {
	chapterID := strings.TrimSpace(input.ChapterID)
	if it.engine.State().Terminal() {
		it.engine.Reset()
	}
	seed := input.Seed
	if seed == 0 {
		var err error
		if seed, err = it.newSeed(); err != nil {
			return dto.SnapshotOutput{}, fmt.Errorf("generate seed: %w", err)
		}
	}
	draw, err := it.tasks.Draw(ctx, chapterID, seed, it.taskCount)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	entries, err := it.distractions.Distractions(ctx)
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	snap, err := it.engine.Start(domain.Plan{
		ChapterID:    draw.ChapterID,
		ChapterTitle: draw.ChapterTitle,
		Seed:         seed,
		Tasks:        draw.Tasks,
		Distractions: entries,
	})
	if err != nil {
		return dto.SnapshotOutput{}, err
	}
	it.mu.Lock()
	it.lastNote = ""
	it.mu.Unlock()
	return toSnapshotOutput(snap), nil
}

func (it *Interactor) Observe(_ context.Context, input dto.ObserveInput) (dto.ObserveOutput, error) {
	if it.engine.State() != domain.StateRunning {
		return dto.ObserveOutput{}, apperrors.ErrNotRunning
	}
	result := it.engine.ObserveLabels(input.Labels)
	return dto.ObserveOutput{Result: string(result), Snapshot: toSnapshotOutput(it.engine.Snapshot())}, nil
}

func (it *Interactor) Dismiss(context.Context) error { return it.engine.Dismiss() }
func (it *Interactor) Escape(context.Context) error  { return it.engine.Escape() }
func (it *Interactor) Recover(context.Context) error { return it.engine.Recover() }

func (it *Interactor) Distract(_ context.Context, input dto.DistractInput) (dto.DistractOutput, error) {
	ev, fired, err := it.engine.Inject(strings.TrimSpace(input.DistractionID))
	if err != nil {
		return dto.DistractOutput{}, err
	}
	return dto.DistractOutput{Fired: fired, Distraction: toDistractionOutput(ev)}, nil
}

func (it *Interactor) Reset(context.Context) error {
	it.engine.Reset()
	return nil
}

func (it *Interactor) Snapshot(context.Context) (dto.SnapshotOutput, error) {
	return toSnapshotOutput(it.engine.Snapshot()), nil
}

func (it *Interactor) Report(context.Context) (dto.ReportOutput, error) {
	report, err := it.engine.Report()
	if err != nil {
		return dto.ReportOutput{}, err
	}
	it.mu.Lock()
	note := it.lastNote
	it.mu.Unlock()
	return toReportOutput(report, note), nil
}

func (it *Interactor) History(ctx context.Context, limit int) ([]dto.ReportSummaryOutput, error) {
	if it.index == nil {
		return []dto.ReportSummaryOutput{}, nil
	}
	items, err := it.index.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ReportSummaryOutput, 0, len(items))
	for _, item := range items {
		out = append(out, dto.ReportSummaryOutput{
			SessionID:      item.SessionID,
			ChapterID:      item.ChapterID,
			ChapterTitle:   item.ChapterTitle,
			State:          string(item.State),
			StartedAt:      item.StartedAt,
			ElapsedSeconds: item.ElapsedSeconds,
			TasksCompleted: item.TasksCompleted,
			TasksSkipped:   item.TasksSkipped,
			FinalScore:     item.FinalScore,
			FinalFocus:     item.FinalFocus,
			NotePath:       item.NotePath,
		})
	}
	return out, nil
}

func (it *Interactor) GetReport(ctx context.Context, sessionID string) (dto.ReportOutput, error) {
	if strings.TrimSpace(sessionID) == "" {
		return dto.ReportOutput{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	if it.index == nil {
		return dto.ReportOutput{}, fmt.Errorf("%w: report %s", apperrors.ErrNotFound, sessionID)
	}
	report, note, err := it.index.Get(ctx, sessionID)
	if err != nil {
		return dto.ReportOutput{}, err
	}
	return toReportOutput(report, note), nil
}

func (it *Interactor) Subscribe() (<-chan dto.CueOutput, func()) {
	it.mu.Lock()
	defer it.mu.Unlock()
	id := it.nextSub
	it.nextSub++
	ch := make(chan dto.CueOutput, subscriberBuffer)
	it.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			it.mu.Lock()
			defer it.mu.Unlock()
			delete(it.subs, id)
			close(ch)
		})
	}
}

// Publish persists terminal reports, then fans the cue out to subscribers.
// A full subscriber misses the cue rather than stalling the engine.
func (it *Interactor) Publish(cue domain.Cue) {
	out := toCueOutput(cue)
	if cue.Report != nil {
		note := it.persist(*cue.Report)
		out.Report.NotePath = note
	}
	it.mu.Lock()
	defer it.mu.Unlock()
	for id, ch := range it.subs {
		select {
		case ch <- out:
		default:
			it.log.Warn("subscriber lagging, cue dropped", "subscriber", id, "cue", cue.Kind)
		}
	}
}

func (it *Interactor) persist(report domain.Report) string {
	ctx := context.Background()
	note := ""
	if it.store != nil {
		path, err := it.store.Save(ctx, report)
		if err != nil {
			it.log.Error("save report note", "session", report.SessionID, "error", err)
		} else {
			note = path
		}
	}
	if it.index != nil {
		if err := it.index.Upsert(ctx, report, note); err != nil {
			it.log.Error("index report", "session", report.SessionID, "error", err)
		}
	}
	it.mu.Lock()
	it.lastNote = note
	it.mu.Unlock()
	it.log.Info("report saved", "session", report.SessionID, "state", report.State, "note", note)
	return note
}
