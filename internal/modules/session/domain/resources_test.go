package domain

import (
	"math/rand"
	"testing"
)

func TestResourcesClampOnEveryMutation(t *testing.T) {
	t.Parallel()
	r := NewResources(150, -5)
	if r.Score != ResourceMax || r.Focus != ResourceMin {
		t.Fatalf("unexpected clamped start: %+v", r)
	}
	r.AddScore(-1000)
	r.AddFocus(1000)
	if r.Score != 0 || r.Focus != 100 {
		t.Fatalf("unexpected clamped values: %+v", r)
	}
	if !r.Depleted() {
		t.Fatalf("score 0 must be depleted")
	}
}

func TestResourcesStayInBoundsUnderRandomDeltas(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(7))
	r := NewResources(100, 100)
	for i := 0; i < 5000; i++ {
		r.AddScore(rng.Intn(81) - 40)
		r.AddFocus(rng.Intn(81) - 40)
		if r.Score < ResourceMin || r.Score > ResourceMax || r.Focus < ResourceMin || r.Focus > ResourceMax {
			t.Fatalf("step %d out of bounds: %+v", i, r)
		}
	}
}

func TestTaskSequenceWrapsModuloLength(t *testing.T) {
	t.Parallel()
	tasks := []Task{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	for k := 0; k < 7; k++ {
		seq := NewTaskSequence(tasks)
		for i := 0; i < len(tasks)+k; i++ {
			seq.Advance()
		}
		if seq.Index() != k%len(tasks) {
			t.Fatalf("after %d advances index=%d want %d", len(tasks)+k, seq.Index(), k%len(tasks))
		}
		current, ok := seq.Current()
		if !ok || current.ID != tasks[k%len(tasks)].ID {
			t.Fatalf("unexpected current task: %+v", current)
		}
	}
}

func TestTaskSequenceProgressAndEmpty(t *testing.T) {
	t.Parallel()
	seq := NewTaskSequence([]Task{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})
	seq.Advance()
	seq.Advance()
	if seq.Progress() != 0.5 {
		t.Fatalf("progress = %v", seq.Progress())
	}
	empty := NewTaskSequence(nil)
	empty.Advance()
	if _, ok := empty.Current(); ok {
		t.Fatalf("empty sequence must not have a current task")
	}
	if empty.Progress() != 0 {
		t.Fatalf("empty progress must be 0")
	}
}

func TestWorkingMemoryStageOrder(t *testing.T) {
	t.Parallel()
	wm := WorkingMemory{Stage: StageDissolve}
	next, ok := wm.NextStage()
	if !ok || next != StageConfusion {
		t.Fatalf("dissolve -> %s %v", next, ok)
	}
	wm.Stage = next
	next, ok = wm.NextStage()
	if !ok || next != StageRecovery {
		t.Fatalf("confusion -> %s %v", next, ok)
	}
	wm.Stage = next
	if _, ok := wm.NextStage(); ok {
		t.Fatalf("recovery must be the last stage")
	}
}
