package notify

import (
	"context"
	"sync"
	"time"
)

type stopper interface{ Stop() }

// Registry owns the background tasks tied to session lifetime: one
// notification feed per active customer session, one per active admin
// session, plus the admin dashboard refresher. Tasks are dropped
// explicitly when the owning session ends and all stop together when
// the registry context is canceled.
type Registry struct {
	mu    sync.Mutex
	ctx   context.Context
	feeds map[string]*Feed
	tasks map[string]stopper
}

func NewRegistry(ctx context.Context) *Registry {
	return &Registry{
		ctx:   ctx,
		feeds: map[string]*Feed{},
		tasks: map[string]stopper{},
	}
}

// Feed returns the feed registered under key, creating and starting it
// on first use.
func (r *Registry) Feed(key string, fetch FetchFunc, mark MarkFunc) *Feed {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[key]; ok {
		return f
	}
	f := NewFeed(fetch, mark)
	f.Start(r.ctx)
	r.feeds[key] = f
	return f
}

// EnsureTask starts a repeating task under key if not already running.
func (r *Registry) EnsureTask(key string, interval time.Duration, fn func(ctx context.Context)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[key]; ok {
		return
	}
	p := NewPoller(interval, fn)
	p.Start(r.ctx)
	r.tasks[key] = p
}

// Drop stops and removes the feed or task registered under key.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.feeds[key]; ok {
		f.Stop()
		delete(r.feeds, key)
	}
	if t, ok := r.tasks[key]; ok {
		t.Stop()
		delete(r.tasks, key)
	}
}
