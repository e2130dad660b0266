package app

import (
	"context"
	"strings"
	"testing"

	sessiondto "distracted/internal/modules/session/dto"
	apperrors "distracted/internal/platform/errors"
	"distracted/internal/ui/components"
)

type fakeSession struct {
	started  []sessiondto.StartInput
	observed [][]string
	dismiss  error
}

func (f *fakeSession) Start(_ context.Context, in sessiondto.StartInput) (sessiondto.SnapshotOutput, error) {
	f.started = append(f.started, in)
	return sessiondto.SnapshotOutput{SessionID: "s1", ChapterTitle: "Kitchen", TaskCount: 8}, nil
}

func (f *fakeSession) Observe(_ context.Context, in sessiondto.ObserveInput) (sessiondto.ObserveOutput, error) {
	f.observed = append(f.observed, in.Labels)
	return sessiondto.ObserveOutput{Result: "task-completed"}, nil
}

func (f *fakeSession) Dismiss(context.Context) error { return f.dismiss }
func (f *fakeSession) Escape(context.Context) error  { return nil }
func (f *fakeSession) Recover(context.Context) error { return nil }
func (f *fakeSession) Reset(context.Context) error   { return nil }

func (f *fakeSession) Distract(context.Context, sessiondto.DistractInput) (sessiondto.DistractOutput, error) {
	return sessiondto.DistractOutput{}, nil
}

func (f *fakeSession) Snapshot(context.Context) (sessiondto.SnapshotOutput, error) {
	return sessiondto.SnapshotOutput{}, nil
}

func (f *fakeSession) History(context.Context, int) ([]sessiondto.ReportSummaryOutput, error) {
	return nil, nil
}

func (f *fakeSession) GetReport(context.Context, string) (sessiondto.ReportOutput, error) {
	return sessiondto.ReportOutput{}, apperrors.ErrNotFound
}

func (f *fakeSession) Subscribe() (<-chan sessiondto.CueOutput, func()) {
	ch := make(chan sessiondto.CueOutput)
	return ch, func() {}
}

func submit(t *testing.T, m Model, input string) (Model, actionDoneMsg) {
	t.Helper()
	next, cmd := m.Update(components.PaletteSubmitMsg{Input: input})
	if cmd == nil {
		t.Fatalf("%q produced no command", input)
	}
	done, ok := cmd().(actionDoneMsg)
	if !ok {
		t.Fatalf("%q did not produce an action result", input)
	}
	return next.(Model), done
}

func TestPaletteStartParsesChapterAndSeed(t *testing.T) {
	t.Parallel()
	fake := &fakeSession{}
	m := NewModel(fake, Options{ChapterID: "default", Seed: 3})

	_, done := submit(t, m, "start kitchen 42")
	if done.err != nil {
		t.Fatalf("start: %v", done.err)
	}
	if len(fake.started) != 1 || fake.started[0].ChapterID != "kitchen" || fake.started[0].Seed != 42 {
		t.Fatalf("unexpected start input: %+v", fake.started)
	}

	_, _ = submit(t, m, "start")
	if fake.started[1].ChapterID != "default" || fake.started[1].Seed != 3 {
		t.Fatalf("bare start must use options: %+v", fake.started[1])
	}
}

func TestPaletteSeeForwardsLabels(t *testing.T) {
	t.Parallel()
	fake := &fakeSession{}
	m := NewModel(fake, Options{})

	_, done := submit(t, m, "see cup keys")
	if len(fake.observed) != 1 || strings.Join(fake.observed[0], ",") != "cup,keys" {
		t.Fatalf("unexpected labels: %v", fake.observed)
	}
	if !strings.Contains(done.label, "task-completed") {
		t.Fatalf("unexpected status: %s", done.label)
	}
}

func TestActionErrorsBecomeStatus(t *testing.T) {
	t.Parallel()
	fake := &fakeSession{dismiss: apperrors.ErrNoActiveDistraction}
	m := NewModel(fake, Options{})

	_, done := submit(t, m, "dismiss")
	next, _ := m.Update(done)
	if got := next.(Model).status; got != "dismissed: nothing to clear" {
		t.Fatalf("unexpected status: %q", got)
	}
}

func TestPaletteRejectsBadInput(t *testing.T) {
	t.Parallel()
	m := NewModel(&fakeSession{}, Options{})

	next, _ := m.Update(components.PaletteSubmitMsg{Input: "start kitchen nope"})
	if got := next.(Model).status; got != "invalid seed: nope" {
		t.Fatalf("unexpected status: %q", got)
	}
	next, _ = m.Update(components.PaletteSubmitMsg{Input: "fly"})
	if got := next.(Model).status; got != "unknown command: fly" {
		t.Fatalf("unexpected status: %q", got)
	}
}
