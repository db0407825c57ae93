package listing

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
)

func TestCycleRunSuccess(t *testing.T) {
	store := NewStore()
	var sawLoading bool
	f := FetcherFunc(func(_ context.Context, params map[string]string) (models.UserPage, error) {
		sawLoading = store.Snapshot().Loading
		return models.UserPage{Data: sampleUsers, TotalUsers: 57}, nil
	})

	c := NewCycle(f, store)
	if err := c.Run(context.Background(), NewQuery(10)); err != nil {
		t.Fatalf("run: %v", err)
	}

	st := store.Snapshot()
	if !sawLoading {
		t.Fatalf("loading should be true while the request is in flight")
	}
	if st.Loading {
		t.Fatalf("loading should be false after the fetch")
	}
	if st.Total != 57 {
		t.Fatalf("total should mirror the server count, got %d", st.Total)
	}
	if diff := cmp.Diff(sampleUsers, st.Items); diff != "" {
		t.Fatalf("items (-want +got):\n%s", diff)
	}
	if st.Seq != 1 {
		t.Fatalf("expected seq 1, got %d", st.Seq)
	}
}

func TestCycleRunFailureKeepsStaleItems(t *testing.T) {
	store := NewStore()
	store.SetUsers(sampleUsers)
	store.SetTotalRecords(2)

	f := FetcherFunc(func(context.Context, map[string]string) (models.UserPage, error) {
		return models.UserPage{}, errors.New("Network Error")
	})
	err := NewCycle(f, store).Run(context.Background(), NewQuery(10))

	var fe domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %T %v", err, err)
	}
	st := store.Snapshot()
	if st.Error != "Network Error" {
		t.Fatalf("expected error message stored, got %q", st.Error)
	}
	if st.Loading {
		t.Fatalf("loading must be false after a failure")
	}
	if len(st.Items) != 2 || st.Total != 2 {
		t.Fatalf("failure must leave items/total untouched, got %+v", st)
	}
}

func TestCycleClearsErrorOnNextFetch(t *testing.T) {
	store := NewStore()
	fail := true
	f := FetcherFunc(func(context.Context, map[string]string) (models.UserPage, error) {
		if fail {
			return models.UserPage{}, errors.New("down")
		}
		return models.UserPage{Data: sampleUsers, TotalUsers: 2}, nil
	})
	c := NewCycle(f, store)
	_ = c.Run(context.Background(), NewQuery(10))
	if store.Snapshot().Error == "" {
		t.Fatal("expected error after failed fetch")
	}

	fail = false
	if err := c.Run(context.Background(), NewQuery(10)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := store.Snapshot().Error; got != "" {
		t.Fatalf("successful fetch should leave no error, got %q", got)
	}
}

func TestCycleDiscardsSupersededResponse(t *testing.T) {
	store := NewStore()
	slowUsers := []models.User{{ID: 9, Username: "slow"}}
	fastUsers := []models.User{{ID: 7, Username: "fast"}}
	releaseSlow := make(chan struct{})

	f := FetcherFunc(func(_ context.Context, params map[string]string) (models.UserPage, error) {
		if params["status"] == "active" {
			<-releaseSlow
			return models.UserPage{Data: slowUsers, TotalUsers: 1}, nil
		}
		return models.UserPage{Data: fastUsers, TotalUsers: 1}, nil
	})
	c := NewCycle(f, store)

	slow := NewQuery(10)
	slow.SetFilter("status", "active")
	fast := NewQuery(10)
	fast.SetFilter("status", "inactive")

	c.Start(context.Background(), slow)
	second := c.Start(context.Background(), fast)

	waitFor(t, "fast fetch", func() bool { return store.Snapshot().Seq == second })
	close(releaseSlow)
	c.Wait()

	st := store.Snapshot()
	if diff := cmp.Diff(fastUsers, st.Items); diff != "" {
		t.Fatalf("latest request must win (-want +got):\n%s", diff)
	}
	if st.Loading {
		t.Fatalf("loading should be false once the latest fetch resolved")
	}
}

func TestCycleSupersededFetchKeepsLoading(t *testing.T) {
	store := NewStore()
	release := map[string]chan struct{}{"a": make(chan struct{}), "b": make(chan struct{})}
	f := FetcherFunc(func(_ context.Context, params map[string]string) (models.UserPage, error) {
		<-release[params["q"]]
		return models.UserPage{Data: []models.User{{ID: 1, Username: params["q"]}}, TotalUsers: 1}, nil
	})
	c := NewCycle(f, store)

	qa, qb := NewQuery(10), NewQuery(10)
	qa.SetFilter("q", "a")
	qb.SetFilter("q", "b")
	c.Start(context.Background(), qa)
	c.Start(context.Background(), qb)

	close(release["a"])
	time.Sleep(20 * time.Millisecond)
	if !store.Snapshot().Loading {
		t.Fatalf("a superseded response must not end the loading state")
	}
	close(release["b"])
	c.Wait()
	st := store.Snapshot()
	if st.Loading || st.Items[0].Username != "b" {
		t.Fatalf("unexpected final state %+v", st)
	}
}

func TestCycleCancelsPreviousRequest(t *testing.T) {
	store := NewStore()
	var mu sync.Mutex
	var cancelled bool
	first := true
	f := FetcherFunc(func(ctx context.Context, _ map[string]string) (models.UserPage, error) {
		mu.Lock()
		isFirst := first
		first = false
		mu.Unlock()
		if isFirst {
			<-ctx.Done()
			mu.Lock()
			cancelled = true
			mu.Unlock()
			return models.UserPage{}, ctx.Err()
		}
		return models.UserPage{Data: sampleUsers, TotalUsers: 2}, nil
	})
	c := NewCycle(f, store)
	c.Start(context.Background(), NewQuery(10))
	waitFor(t, "first request in flight", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return !first
	})
	c.Start(context.Background(), NewQuery(10))
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	if !cancelled {
		t.Fatalf("starting a new fetch should cancel the previous request")
	}
	if st := store.Snapshot(); st.Error != "" || len(st.Items) != 2 {
		t.Fatalf("cancelled request leaked into state: %+v", st)
	}
}

func TestCycleTimeout(t *testing.T) {
	store := NewStore()
	f := FetcherFunc(func(ctx context.Context, _ map[string]string) (models.UserPage, error) {
		<-ctx.Done()
		return models.UserPage{}, ctx.Err()
	})
	err := NewCycle(f, store, WithTimeout(10*time.Millisecond)).Run(context.Background(), NewQuery(10))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if store.Snapshot().Error == "" {
		t.Fatal("timeout should surface as a fetch error")
	}
}

func TestCycleStopDiscardsInFlight(t *testing.T) {
	store := NewStore()
	f := FetcherFunc(func(ctx context.Context, _ map[string]string) (models.UserPage, error) {
		<-ctx.Done()
		return models.UserPage{}, ctx.Err()
	})
	c := NewCycle(f, store)
	c.Start(context.Background(), NewQuery(10))
	c.Stop()

	if st := store.Snapshot(); st.Error != "" {
		t.Fatalf("stopped fetch must not write an error, got %q", st.Error)
	}
}
