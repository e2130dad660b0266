package out

import (
	"context"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	recognitionin "distracted/internal/modules/recognition/port/in"
)

const (
	maxFeedBackoff = 5 * time.Second
)

// PluginFeed pulls frames from a recognizer in the background. Poll hands
// the engine every label seen since the previous poll, each once. A slow or
// failing recognizer leaves the engine with nothing to observe.
type PluginFeed struct {
	source   recognitionin.FrameSource
	interval time.Duration
	timeout  time.Duration
	log      hclog.Logger

	mu      sync.Mutex
	pending []string
	seen    map[string]struct{}
	lastErr error

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewPluginFeed(source recognitionin.FrameSource, interval, timeout time.Duration, logger hclog.Logger) *PluginFeed {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &PluginFeed{
		source:   source,
		interval: interval,
		timeout:  timeout,
		log:      logger.Named("feed").With("recognizer", source.Name()),
		seen:     map[string]struct{}{},
		done:     make(chan struct{}),
	}
}

// Run starts the pull loop. It returns immediately.
func (f *PluginFeed) Run(ctx context.Context) {
	ctx, f.cancel = context.WithCancel(ctx)
	go f.loop(ctx)
}

func (f *PluginFeed) loop(ctx context.Context) {
	defer close(f.done)
	wait := time.Duration(0)
	failures := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		frame, err := f.source.Next(callCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			failures++
			wait = backoff(f.interval, failures)
			f.mu.Lock()
			f.lastErr = err
			f.mu.Unlock()
			f.log.Warn("recognizer frame failed", "error", err, "retry_in", wait)
			continue
		}
		if failures > 0 {
			f.log.Info("recognizer recovered", "after_failures", failures)
		}
		failures = 0
		wait = f.interval
		f.mu.Lock()
		for _, name := range frame.Names() {
			if _, ok := f.seen[name]; ok {
				continue
			}
			f.seen[name] = struct{}{}
			f.pending = append(f.pending, name)
		}
		f.lastErr = nil
		f.mu.Unlock()
	}
}

func backoff(interval time.Duration, failures int) time.Duration {
	wait := interval
	for i := 1; i < failures && wait < maxFeedBackoff; i++ {
		wait *= 2
	}
	if wait > maxFeedBackoff {
		wait = maxFeedBackoff
	}
	return wait
}

func (f *PluginFeed) Poll() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.pending) == 0 {
		return nil
	}
	out := f.pending
	f.pending = nil
	f.seen = map[string]struct{}{}
	return out
}

// Err reports the most recent frame failure, nil once a frame succeeds.
func (f *PluginFeed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastErr
}

// Close stops the loop and the recognizer process.
func (f *PluginFeed) Close() error {
	var err error
	f.once.Do(func() {
		if f.cancel != nil {
			f.cancel()
			<-f.done
		}
		err = f.source.Close()
	})
	return err
}
