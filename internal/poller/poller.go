// Package poller runs a function on a fixed interval.
package poller

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval matches the chat refresh rate of the web client.
const DefaultInterval = 5 * time.Second

// Func is one poll. Errors are logged and do not stop the loop.
type Func func(ctx context.Context) error

// Poller calls fn immediately on Start and then once per interval.
type Poller struct {
	name     string
	fn       Func
	interval time.Duration
	logger   log.FieldLogger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	runs    int
	lastErr error
}

// New creates a poller. A non-positive interval means DefaultInterval.
func New(name string, interval time.Duration, fn Func, logger log.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Poller{
		name:     name,
		fn:       fn,
		interval: interval,
		logger:   logger.WithField("poller", name),
	}
}

// Start begins the loop. It is a no-op if the poller is already running.
// The loop also ends when ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go p.loop(ctx)
	p.logger.Debug("poller.started")
}

// Stop ends the loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
	p.logger.Debug("poller.stopped")
}

// Running reports whether Start was called without a matching Stop.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Stats returns the number of completed polls and the last error.
func (p *Poller) Stats() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs, p.lastErr
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	err := p.fn(ctx)
	if err != nil && ctx.Err() == nil {
		p.logger.WithError(err).Warn("poller.poll_failed")
	}
	p.mu.Lock()
	p.runs++
	p.lastErr = err
	p.mu.Unlock()
}
