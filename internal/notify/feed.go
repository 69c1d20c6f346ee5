package notify

import (
	"context"
	"sync"
	"time"

	"autocare/internal/domain"
	applog "autocare/internal/log"
)

const FeedInterval = 30 * time.Second

// FetchFunc lists notifications for one feed (customer or admin).
type FetchFunc func(ctx context.Context) ([]domain.Notification, error)

// MarkFunc is the best-effort remote mark-as-read call.
type MarkFunc func(ctx context.Context, id string) error

// Feed is one polling notification feed. The customer and admin feeds
// are independent instances over different backend endpoints.
type Feed struct {
	mu    sync.Mutex
	items []domain.Notification

	fetch  FetchFunc
	mark   MarkFunc
	poller *Poller
}

func NewFeed(fetch FetchFunc, mark MarkFunc) *Feed {
	f := &Feed{fetch: fetch, mark: mark}
	f.poller = NewPoller(FeedInterval, f.Refresh)
	return f
}

// Start begins polling; the feed stops when ctx is canceled.
func (f *Feed) Start(ctx context.Context) { f.poller.Start(ctx) }

func (f *Feed) Stop() { f.poller.Stop() }

// Refresh replaces the feed from the backend, keeping locally read flags
// for ids the server still reports unread. A fetch failure keeps the
// current items; the feed never blocks a page.
func (f *Feed) Refresh(ctx context.Context) {
	remote, err := f.fetch(ctx)
	if err != nil {
		applog.Degrade("notifications.refresh.fallback", err, nil)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	read := map[string]bool{}
	for _, n := range f.items {
		if n.Read {
			read[n.ID] = true
		}
	}
	for i := range remote {
		if read[remote[i].ID] {
			remote[i].Read = true
		}
	}
	f.items = remote
}

func (f *Feed) Items() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.items...)
}

func (f *Feed) Unread() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, it := range f.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// MarkRead flips the local flag first, then fires the best-effort remote
// call; its failure is not surfaced. Marking an already-read or unknown
// id is a no-op, not an error.
func (f *Feed) MarkRead(ctx context.Context, id string) {
	f.mu.Lock()
	found, already := false, false
	for i := range f.items {
		if f.items[i].ID == id {
			found = true
			already = f.items[i].Read
			f.items[i].Read = true
			break
		}
	}
	f.mu.Unlock()
	if !found || already {
		return
	}
	if err := f.mark(ctx, id); err != nil {
		applog.Degrade("notifications.read.fallback", err, map[string]any{"notification_id": id})
	}
}
