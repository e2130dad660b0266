package bootstrap

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	sessiondto "distracted/internal/modules/session/dto"
	"distracted/internal/platform/clock"
)

const simulationStep = 250 * time.Millisecond

// Simulate plays one session on virtual time. The seeded player sees its
// targets with probability hitRate and, with the same odds at each step,
// climbs out of rabbit holes and answers recovery prompts.
func Simulate(ctx context.Context, app *App, clk *clock.Manual, chapterID string, seed int64, hitRate float64) (sessiondto.ReportOutput, error) {
	if err := app.UseSimulatedFeed(ctx, seed, hitRate); err != nil {
		return sessiondto.ReportOutput{}, err
	}
	if _, err := app.session.Start(ctx, sessiondto.StartInput{ChapterID: chapterID, Seed: seed}); err != nil {
		return sessiondto.ReportOutput{}, err
	}
	rng := rand.New(rand.NewSource(seed ^ 0x5eed))
	limit := app.engine.Tunables().SessionDuration + time.Minute
	for played := time.Duration(0); played <= limit; played += simulationStep {
		if err := ctx.Err(); err != nil {
			_ = app.session.Reset(context.Background())
			return sessiondto.ReportOutput{}, err
		}
		clk.Advance(simulationStep)
		snap, err := app.session.Snapshot(ctx)
		if err != nil {
			return sessiondto.ReportOutput{}, err
		}
		if snap.State != "running" {
			return app.session.Report(ctx)
		}
		if snap.Active == nil || rng.Float64() >= hitRate {
			continue
		}
		switch {
		case snap.Active.Kind == "rabbit-hole":
			_ = app.session.Escape(ctx)
		case snap.Active.Kind == "working-memory-failure" && snap.Active.Stage == "recovery":
			_ = app.session.Recover(ctx)
		}
	}
	return sessiondto.ReportOutput{}, fmt.Errorf("simulation did not finish within %s of virtual time", limit)
}
