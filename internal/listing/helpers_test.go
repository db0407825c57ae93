package listing

import (
	"context"
	"sync"
	"testing"
	"time"

	"useradmin/internal/domain/models"
)

// manualScheduler replaces time.AfterFunc so tests decide when timers fire.
type manualScheduler struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	fn      func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{fn: f, delay: d}
	s.timers = append(s.timers, t)
	return t
}

// FireAll runs every timer that has not been stopped, in schedule order.
func (s *manualScheduler) FireAll() int {
	s.mu.Lock()
	timers := append([]*manualTimer(nil), s.timers...)
	s.mu.Unlock()

	fired := 0
	for _, t := range timers {
		t.mu.Lock()
		run := !t.stopped && !t.fired
		t.fired = true
		t.mu.Unlock()
		if run {
			t.fn()
			fired++
		}
	}
	return fired
}

type fakeBackend struct {
	mu      sync.Mutex
	calls   []map[string]string
	list    func(ctx context.Context, params map[string]string) (models.UserPage, error)
	deleted []int64
	created []models.UserInput
	updated map[int64]models.UserInput
}

func newFakeBackend(users ...models.User) *fakeBackend {
	return &fakeBackend{
		updated: map[int64]models.UserInput{},
		list: func(context.Context, map[string]string) (models.UserPage, error) {
			return models.UserPage{Data: users, TotalUsers: len(users)}, nil
		},
	}
}

func (f *fakeBackend) ListUsers(ctx context.Context, params map[string]string) (models.UserPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, params)
	list := f.list
	f.mu.Unlock()
	return list(ctx, params)
}

func (f *fakeBackend) CreateUser(_ context.Context, in models.UserInput) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, in)
	return models.User{ID: int64(100 + len(f.created)), Username: in.Username, Name: in.Name, Lastname: in.Lastname, Status: in.Status}, nil
}

func (f *fakeBackend) UpdateUser(_ context.Context, id int64, in models.UserInput) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated[id] = in
	return models.User{ID: id, Username: in.Username, Name: in.Name, Lastname: in.Lastname, Status: in.Status}, nil
}

func (f *fakeBackend) DeleteUser(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeBackend) Calls() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.calls...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

var sampleUsers = []models.User{
	{ID: 1, Username: "jdoe", Name: "John", Lastname: "Doe", Status: models.StatusActive},
	{ID: 2, Username: "mroe", Name: "Mary", Lastname: "Roe", Status: models.StatusInactive},
}
