// Package notify provides cancelable background polling: notification
// feeds refresh on a fixed interval and stop with their owning context,
// never relying on garbage collection to end a loop.
package notify

import (
	"context"
	"sync"
	"time"
)

// Poller runs fetch immediately and then on every interval tick until
// the context is canceled or Stop is called.
type Poller struct {
	Interval time.Duration
	Fetch    func(ctx context.Context)

	once sync.Once
	stop chan struct{}
}

func NewPoller(interval time.Duration, fetch func(ctx context.Context)) *Poller {
	return &Poller{Interval: interval, Fetch: fetch, stop: make(chan struct{})}
}

func (p *Poller) Start(ctx context.Context) {
	go func() {
		p.Fetch(ctx)
		t := time.NewTicker(p.Interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-p.stop:
				return
			case <-t.C:
				p.Fetch(ctx)
			}
		}
	}()
}

// Stop is idempotent and safe to call concurrently with the loop.
func (p *Poller) Stop() {
	p.once.Do(func() { close(p.stop) })
}
