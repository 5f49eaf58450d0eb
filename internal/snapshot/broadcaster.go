package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/nse-data/internal/metrics"
	"github.com/rickgao/nse-data/internal/model"
)

// Provider supplies the page a broadcast cycle pushes.
type Provider interface {
	Latest(ctx context.Context, opts Options, skip, limit int) (model.SnapshotPage, error)
}

// Pusher delivers one snapshot page to a subscriber. A returned error
// drops the subscriber.
type Pusher interface {
	Push(page model.SnapshotPage) error
}

// PusherFunc is a function adapter for Pusher.
type PusherFunc func(model.SnapshotPage) error

func (f PusherFunc) Push(page model.SnapshotPage) error {
	return f(page)
}

// Config holds broadcaster configuration.
type Config struct {
	Interval time.Duration // Push interval (default: 5s)
	PageSize int           // Rows per push (default: 100)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 5 * time.Second,
		PageSize: 100,
	}
}

// Subscriber is one live feed. Returned by Subscribe, passed back to
// Unsubscribe.
type Subscriber struct {
	pusher Pusher
	done   chan struct{}
	once   sync.Once
}

func (s *Subscriber) close() {
	s.once.Do(func() { close(s.done) })
}

// Broadcaster pushes the first snapshot page to every subscriber on an
// interval. Each subscriber gets its own goroutine so one slow connection
// never delays the others.
type Broadcaster struct {
	cfg      Config
	provider Provider
	logger   *slog.Logger

	mu   sync.Mutex
	subs map[*Subscriber]struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster(cfg Config, provider Provider, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultConfig().Interval
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	b := &Broadcaster{
		cfg:      cfg,
		provider: provider,
		logger:   logger,
		subs:     make(map[*Subscriber]struct{}),
	}
	// The lifetime context exists from construction, so Subscribe is safe
	// before Start; Stop or the Start caller's context ends it.
	b.ctx, b.cancel = context.WithCancel(context.Background())
	return b
}

// Start ties the broadcaster's lifetime to ctx.
func (b *Broadcaster) Start(ctx context.Context) error {
	go func() {
		select {
		case <-ctx.Done():
			b.cancel()
		case <-b.ctx.Done():
		}
	}()
	b.logger.Info("snapshot broadcaster started",
		"interval", b.cfg.Interval,
		"page_size", b.cfg.PageSize,
	)
	return nil
}

// Stop terminates every subscriber loop and waits for them to finish.
func (b *Broadcaster) Stop(ctx context.Context) error {
	b.cancel()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("snapshot broadcaster stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers p and starts its push loop. The first page goes out
// immediately, then on every interval. The loop ends when the subscriber
// is unsubscribed, a push fails, or the broadcaster stops; every exit path
// removes the registry entry.
func (b *Broadcaster) Subscribe(p Pusher) *Subscriber {
	sub := &Subscriber{
		pusher: p,
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	n := len(b.subs)
	b.mu.Unlock()

	b.wg.Add(1)
	go b.run(sub)

	b.logger.Info("subscriber joined", "subscribers", n)
	return sub
}

// Unsubscribe ends sub's push loop. Safe to call more than once.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	sub.close()
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) run(sub *Subscriber) {
	defer b.wg.Done()
	defer func() {
		b.mu.Lock()
		delete(b.subs, sub)
		n := len(b.subs)
		b.mu.Unlock()
		sub.close()
		b.logger.Info("subscriber left", "subscribers", n)
	}()

	ticker := time.NewTicker(b.cfg.Interval)
	defer ticker.Stop()

	if !b.push(sub) {
		return
	}
	for {
		select {
		case <-b.ctx.Done():
			return
		case <-sub.done:
			return
		case <-ticker.C:
			if !b.push(sub) {
				return
			}
		}
	}
}

// push sends one cycle to sub. Provider errors are logged and the cycle
// skipped; push errors drop the subscriber.
func (b *Broadcaster) push(sub *Subscriber) bool {
	page, err := b.provider.Latest(b.ctx, Options{}, 0, b.cfg.PageSize)
	if err != nil {
		if b.ctx.Err() != nil {
			return false
		}
		b.logger.Error("snapshot fetch failed", "error", err)
		metrics.SnapshotPushErrors.Inc()
		return true
	}

	if err := sub.pusher.Push(page); err != nil {
		b.logger.Warn("push failed, dropping subscriber", "error", err)
		metrics.SnapshotPushErrors.Inc()
		return false
	}

	metrics.SnapshotPushes.Inc()
	return true
}
