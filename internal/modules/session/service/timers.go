package service

import (
	"time"

	"distracted/internal/platform/clock"
)

const (
	timerMaster = "master"
	timerTask   = "task"
	timerPoll   = "poll"
	timerEffect = "effect"
	timerStage  = "stage"
)

type armedTimer struct {
	token uint64
	timer clock.Timer
}

// timerSet tracks every pending callback of a session by name. A callback
// only runs if its token is still the one armed under its name, so stopped
// or replaced timers that already started firing are discarded.
type timerSet struct {
	timers  clock.Timers
	seq     uint64
	handles map[string]armedTimer
}

func newTimerSet(timers clock.Timers) *timerSet {
	return &timerSet{timers: timers, handles: map[string]armedTimer{}}
}

func (s *timerSet) arm(key string, d time.Duration, fn func(token uint64)) {
	s.cancel(key)
	s.seq++
	token := s.seq
	s.handles[key] = armedTimer{token: token, timer: s.timers.AfterFunc(d, func() { fn(token) })}
}

// claim consumes the handle if token is current.
func (s *timerSet) claim(key string, token uint64) bool {
	armed, ok := s.handles[key]
	if !ok || armed.token != token {
		return false
	}
	delete(s.handles, key)
	return true
}

func (s *timerSet) cancel(key string) {
	if armed, ok := s.handles[key]; ok {
		armed.timer.Stop()
		delete(s.handles, key)
	}
}

func (s *timerSet) cancelAll() {
	for key, armed := range s.handles {
		armed.timer.Stop()
		delete(s.handles, key)
	}
}

func (s *timerSet) armed(key string) bool {
	_, ok := s.handles[key]
	return ok
}

func (s *timerSet) len() int {
	return len(s.handles)
}
