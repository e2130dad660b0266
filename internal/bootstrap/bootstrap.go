package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	hclog "github.com/hashicorp/go-hclog"

	cataloginadapter "distracted/internal/modules/catalog/adapter/in"
	catalogoutadapter "distracted/internal/modules/catalog/adapter/out"
	catalogservice "distracted/internal/modules/catalog/service"
	catalogusecase "distracted/internal/modules/catalog/usecase"
	recognitioninadapter "distracted/internal/modules/recognition/adapter/in"
	recognitionoutadapter "distracted/internal/modules/recognition/adapter/out"
	recognitionin "distracted/internal/modules/recognition/port/in"
	recognitionservice "distracted/internal/modules/recognition/service"
	recognitionusecase "distracted/internal/modules/recognition/usecase"
	sessioninadapter "distracted/internal/modules/session/adapter/in"
	sessionoutadapter "distracted/internal/modules/session/adapter/out"
	"distracted/internal/modules/session/domain"
	sessionin "distracted/internal/modules/session/port/in"
	sessionservice "distracted/internal/modules/session/service"
	sessionusecase "distracted/internal/modules/session/usecase"
	"distracted/internal/platform/clock"
	"distracted/internal/platform/config"
	"distracted/internal/platform/id"
	"distracted/internal/platform/logging"
	"distracted/internal/platform/random"
	uiapp "distracted/internal/ui/app"
)

const (
	recognizerFrameTimeout = 2 * time.Second
	tasksPerSession        = 8
)

type Options struct {
	// LogToFile sends logs to the data dir instead of stderr. The TUI owns
	// the terminal, so interactive runs set it.
	LogToFile bool
	// Clock replaces the wall clock; simulate passes a manual one.
	Clock sessionservice.Clock
	// LogCues adds a sink that logs every cue.
	LogCues bool
}

type App struct {
	Config         config.Config
	Logger         hclog.Logger
	CatalogCLI     cataloginadapter.CLIHandler
	SessionCLI     sessioninadapter.CLIHandler
	RecognitionCLI recognitioninadapter.CLIHandler

	session     sessionin.Usecase
	recognition recognitionin.Usecase
	engine      *sessionservice.Engine
	feedName    string
	closers     []io.Closer
}

func New(cfg config.Config, opts Options) (*App, error) {
	app := &App{Config: cfg}

	var out io.Writer = os.Stderr
	if opts.LogToFile {
		f, err := logging.OpenFile(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, f)
		out = f
	}
	logger := logging.New(logging.Options{Name: "distracted", Level: cfg.Log.Level, JSON: cfg.Log.JSON, Output: out})
	app.Logger = logger

	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}

	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(catalogoutadapter.NewYAMLCatalogStore(cfg.CatalogPath)))
	app.CatalogCLI = cataloginadapter.NewCLIHandler(catalogUC)

	engine, err := sessionservice.NewEngine(clk, id.RandomHex{}, Tunables(cfg.Game), logger)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new engine: %w", err)
	}
	app.engine = engine
	if opts.LogCues {
		engine.AddSink(sessionoutadapter.NewLogSink(logger))
	}

	index, err := sessionoutadapter.NewSQLiteReportIndex(cfg.DBPath)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("new report index: %w", err)
	}
	app.closers = append(app.closers, index)

	source := sessionoutadapter.NewCatalogSource(catalogUC)
	sessionUC := sessionusecase.NewInteractor(
		engine,
		source,
		source,
		sessionoutadapter.NewVaultReportStore(cfg.ReportsDir),
		index,
		sessionusecase.Options{TaskCount: tasksPerSession, NewSeed: random.NewSeed, Logger: logger},
	)
	app.session = sessionUC
	app.SessionCLI = sessioninadapter.NewCLIHandler(sessionUC)

	app.recognition = recognitionusecase.NewInteractor(recognitionservice.NewRecognitionService(
		recognitionoutadapter.NewFileManifestStore(cfg.DataDir, cfg.RecognizersPath),
		recognitionoutadapter.NewGRPCHost(logger),
	))
	app.RecognitionCLI = recognitioninadapter.NewCLIHandler(app.recognition)
	return app, nil
}

// Tunables applies environment overrides to the built-in defaults. Values
// that make no sense are left for Tunables.Validate to reject.
func Tunables(game config.GameConfig) domain.Tunables {
	t := domain.DefaultTunables()
	seconds := func(dst *time.Duration, v *int, unit time.Duration) {
		if v != nil {
			*dst = time.Duration(*v) * unit
		}
	}
	seconds(&t.SessionDuration, game.SessionSeconds, time.Second)
	seconds(&t.TaskTimeout, game.TaskTimeoutSeconds, time.Second)
	seconds(&t.PollInterval, game.PollIntervalMS, time.Millisecond)
	override := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	override(&t.TimeoutPenalty, game.TimeoutPenalty)
	override(&t.DistractionCost, game.DistractionCost)
	override(&t.TaskReward, game.TaskReward)
	override(&t.DistractionReward, game.DistractionReward)
	override(&t.RabbitHoleReward, game.RabbitHoleReward)
	override(&t.WorkingMemoryReward, game.WorkingMemoryReward)
	return t
}

// UseManualFeed attaches a feed fed by typed labels.
func (a *App) UseManualFeed() *sessionoutadapter.ManualFeed {
	feed := sessionoutadapter.NewManualFeed()
	a.engine.AttachFeed(feed)
	a.feedName = "manual"
	return feed
}

// UseRecognizer starts the named recognizer plugin and attaches it as the
// engine's feed. The plugin stops when the app closes.
func (a *App) UseRecognizer(ctx context.Context, name string) error {
	source, err := a.recognition.Open(ctx, name)
	if err != nil {
		return fmt.Errorf("open recognizer %s: %w", name, err)
	}
	feed := sessionoutadapter.NewPluginFeed(source, a.engine.Tunables().PollInterval, recognizerFrameTimeout, a.Logger)
	feed.Run(context.Background())
	a.closers = append(a.closers, feed)
	a.engine.AttachFeed(feed)
	a.feedName = name
	return nil
}

// UseSimulatedFeed attaches a seeded player that finds what it looks for
// with probability hitRate.
func (a *App) UseSimulatedFeed(ctx context.Context, seed int64, hitRate float64) error {
	entries, err := a.CatalogCLI.Distractions(ctx)
	if err != nil {
		return err
	}
	vocabulary := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.TargetLabel != "" {
			vocabulary = append(vocabulary, entry.TargetLabel)
		}
	}
	targets := func() []string {
		snap, err := a.session.Snapshot(context.Background())
		if err != nil {
			return nil
		}
		var out []string
		if snap.Active != nil && snap.Active.Distraction.TargetLabel != "" {
			out = append(out, snap.Active.Distraction.TargetLabel)
		}
		if snap.Task != nil {
			out = append(out, snap.Task.TargetLabel)
		}
		return out
	}
	a.engine.AttachFeed(sessionoutadapter.NewSimulatedFeed(seed, hitRate, vocabulary, targets))
	a.feedName = "simulated"
	return nil
}

func (a *App) Session() sessionin.Usecase {
	return a.session
}

func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

func RunTUI(app *App, chapterID string, seed int64) error {
	model := uiapp.NewModel(app.session, uiapp.Options{ChapterID: chapterID, Seed: seed, FeedName: app.feedName})
	defer model.Close()
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	_ = app.session.Reset(context.Background())
	return err
}
