package out

import (
	"math/rand"
	"strings"
	"sync"
)

// ManualFeed queues labels typed by the player until the next poll.
type ManualFeed struct {
	mu     sync.Mutex
	labels []string
}

func NewManualFeed() *ManualFeed {
	return &ManualFeed{}
}

func (f *ManualFeed) Push(labels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.labels = append(f.labels, labels...)
}

func (f *ManualFeed) Poll() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.labels
	f.labels = nil
	return out
}

// SimulatedFeed plays a distractible player. On each poll it either finds
// what it is looking for, with probability HitRate, or reports a couple of
// background labels from the vocabulary. Background labels never include a
// current target, so a miss is always a miss.
type SimulatedFeed struct {
	mu         sync.Mutex
	rng        *rand.Rand
	hitRate    float64
	vocabulary []string
	targets    func() []string
}

func NewSimulatedFeed(seed int64, hitRate float64, vocabulary []string, targets func() []string) *SimulatedFeed {
	if hitRate < 0 {
		hitRate = 0
	}
	if hitRate > 1 {
		hitRate = 1
	}
	return &SimulatedFeed{
		rng:        rand.New(rand.NewSource(seed)),
		hitRate:    hitRate,
		vocabulary: append([]string(nil), vocabulary...),
		targets:    targets,
	}
}

func (f *SimulatedFeed) Poll() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var targets []string
	if f.targets != nil {
		targets = f.targets()
		if f.rng.Float64() < f.hitRate {
			return targets
		}
	}
	background := f.background(targets)
	if len(background) == 0 {
		return nil
	}
	out := make([]string, 0, 2)
	for i := 0; i < 2; i++ {
		out = append(out, background[f.rng.Intn(len(background))])
	}
	return out
}

func (f *SimulatedFeed) background(targets []string) []string {
	if len(targets) == 0 {
		return f.vocabulary
	}
	wanted := make(map[string]struct{}, len(targets))
	for _, target := range targets {
		wanted[strings.ToLower(strings.TrimSpace(target))] = struct{}{}
	}
	out := make([]string, 0, len(f.vocabulary))
	for _, label := range f.vocabulary {
		if _, ok := wanted[strings.ToLower(strings.TrimSpace(label))]; !ok {
			out = append(out, label)
		}
	}
	return out
}
