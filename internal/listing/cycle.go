package listing

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
)

// Fetcher issues the read request behind a fetch cycle.
type Fetcher interface {
	ListUsers(ctx context.Context, params map[string]string) (models.UserPage, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, params map[string]string) (models.UserPage, error)

func (f FetcherFunc) ListUsers(ctx context.Context, params map[string]string) (models.UserPage, error) {
	return f(ctx, params)
}

// Cycle runs fetches against a Store. Every fetch is tagged with a
// monotonic sequence number; only the most recently issued fetch may write
// its outcome, and starting a fetch cancels the previous one.
type Cycle struct {
	fetcher Fetcher
	store   *Store
	timeout time.Duration
	logger  *zap.SugaredLogger

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type CycleOption func(*Cycle)

// WithTimeout bounds each read request.
func WithTimeout(d time.Duration) CycleOption {
	return func(c *Cycle) { c.timeout = d }
}

func WithLogger(l *zap.SugaredLogger) CycleOption {
	return func(c *Cycle) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCycle(f Fetcher, s *Store, opts ...CycleOption) *Cycle {
	c := &Cycle{fetcher: f, store: s, logger: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start issues a fetch for q in the background and returns its sequence.
func (c *Cycle) Start(ctx context.Context, q Query) uint64 {
	fctx, seq := c.begin(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		_ = c.finish(fctx, seq, q)
	}()
	return seq
}

// Run issues a fetch for q and waits for it. The returned error is a
// domain.FetchError; it is also recorded in the store when q is still the
// latest request. Run is not tracked by Wait; a Stop issued meanwhile still
// discards its outcome.
func (c *Cycle) Run(ctx context.Context, q Query) error {
	fctx, seq := c.begin(ctx)
	return c.finish(fctx, seq, q)
}

// Wait blocks until every started fetch has returned.
func (c *Cycle) Wait() {
	c.wg.Wait()
}

// Stop cancels the in-flight fetch and discards any response still to
// arrive.
func (c *Cycle) Stop() {
	c.mu.Lock()
	c.seq++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Cycle) begin(ctx context.Context) (context.Context, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.seq++
	fctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.store.SetLoading(true)
	c.store.SetError("")
	return fctx, c.seq
}

func (c *Cycle) finish(ctx context.Context, seq uint64, q Query) error {
	rctx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	page, err := c.fetcher.ListUsers(rctx, q.Params())
	if err != nil {
		err = domain.FetchError{Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.logger.Debugw("discarding superseded fetch", "seq", seq, "latest", c.seq)
		return err
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if err != nil {
		c.logger.Warnw("list fetch failed", "seq", seq, "error", err)
		c.store.SetError(domain.FetchMessage(err))
	} else {
		c.store.SetUsers(page.Data)
		c.store.SetTotalRecords(page.TotalUsers)
		c.store.setSeq(seq)
	}
	c.store.SetLoading(false)
	return err
}
