// Package session keeps one mounted users page per open console tab.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"useradmin/internal/listing"
)

// Factory builds an unmounted page bound to ctx.
type Factory func(ctx context.Context) *listing.Page

type entry struct {
	page     *listing.Page
	lastSeen time.Time
	// streams counts open event streams; a watched page never idles out.
	streams int
}

// minSweepEvery bounds how often Run sweeps.
const minSweepEvery = time.Second

// Registry owns the mounted pages. A page lives until it is unmounted
// explicitly, idles past the TTL, or the registry closes.
type Registry struct {
	factory Factory
	ttl     time.Duration
	logger  *zap.SugaredLogger
	now     func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	pages map[string]*entry
}

func NewRegistry(factory Factory, ttl time.Duration, logger *zap.SugaredLogger) *Registry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		factory: factory,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
		ctx:     ctx,
		cancel:  cancel,
		pages:   map[string]*entry{},
	}
}

// Mount creates a page, issues its initial fetch and returns its id.
func (r *Registry) Mount() (string, *listing.Page) {
	id := uuid.NewString()
	p := r.factory(r.ctx)

	r.mu.Lock()
	r.pages[id] = &entry{page: p, lastSeen: r.now()}
	n := len(r.pages)
	r.mu.Unlock()

	p.Mount()
	r.logger.Debugw("page mounted", "session", id, "sessions", n)
	return id, p
}

// Get returns the page for id and marks it as seen.
func (r *Registry) Get(id string) (*listing.Page, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.pages[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.page, true
}

// Hold returns the page for id and keeps it from expiring until release is
// called. Event streams hold their page for as long as they are open.
func (r *Registry) Hold(id string) (p *listing.Page, release func(), ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.pages[id]
	if !ok {
		return nil, nil, false
	}
	e.streams++
	e.lastSeen = r.now()

	var once sync.Once
	release = func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			e.streams--
			e.lastSeen = r.now()
		})
	}
	return e.page, release, true
}

// Unmount tears the page down. It reports whether id was mounted.
func (r *Registry) Unmount(id string) bool {
	r.mu.Lock()
	e, ok := r.pages[id]
	delete(r.pages, id)
	r.mu.Unlock()
	if !ok {
		return false
	}
	e.page.Unmount()
	r.logger.Debugw("page unmounted", "session", id)
	return true
}

// Len is the number of mounted pages.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pages)
}

// Sweep unmounts every page idle for longer than the TTL.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*listing.Page
	for id, e := range r.pages {
		if e.streams == 0 && e.lastSeen.Before(cutoff) {
			expired = append(expired, e.page)
			delete(r.pages, id)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		p.Unmount()
	}
	if len(expired) > 0 {
		r.logger.Infow("expired idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done. Intervals below one second
// are raised to it.
func (r *Registry) Run(ctx context.Context, every time.Duration) {
	if every < minSweepEvery {
		every = minSweepEvery
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.Sweep()
		}
	}
}

// Close unmounts every page.
func (r *Registry) Close() {
	r.cancel()
	r.mu.Lock()
	pages := r.pages
	r.pages = map[string]*entry{}
	r.mu.Unlock()
	for _, e := range pages {
		e.page.Unmount()
	}
}
