package listing

import (
	"sync"

	"useradmin/internal/domain/models"
)

// ListState is everything the users table renders from.
type ListState struct {
	Items    []models.User `json:"items"`
	Total    int           `json:"total"`
	Loading  bool          `json:"loading"`
	Error    string        `json:"error,omitempty"`
	Selected *models.User  `json:"selected,omitempty"`
	// Seq is the fetch whose response produced Items.
	Seq uint64 `json:"seq"`
}

// Store is the single source of truth for list state. It is mutated only
// through its named actions and read through Snapshot or Subscribe.
type Store struct {
	mu      sync.RWMutex
	state   ListState
	subs    map[int]chan struct{}
	nextSub int
	closed  bool
}

func NewStore() *Store {
	return &Store{
		state: ListState{Items: []models.User{}},
		subs:  map[int]chan struct{}{},
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() ListState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.state
	out.Items = append([]models.User(nil), s.state.Items...)
	if s.state.Selected != nil {
		sel := *s.state.Selected
		out.Selected = &sel
	}
	return out
}

// SetUsers replaces the listed users wholesale.
func (s *Store) SetUsers(users []models.User) {
	items := append([]models.User{}, users...)
	s.update(func(st *ListState) { st.Items = items })
}

// SetTotalRecords stores the server-reported total.
func (s *Store) SetTotalRecords(total int) {
	if total < 0 {
		total = 0
	}
	s.update(func(st *ListState) { st.Total = total })
}

func (s *Store) SetLoading(loading bool) {
	s.update(func(st *ListState) { st.Loading = loading })
}

// SetError stores the fetch failure message; empty clears it.
func (s *Store) SetError(message string) {
	s.update(func(st *ListState) { st.Error = message })
}

// SetCurrentUser selects a row as the target of an edit or delete; nil
// clears the selection.
func (s *Store) SetCurrentUser(u *models.User) {
	var sel *models.User
	if u != nil {
		c := *u
		sel = &c
	}
	s.update(func(st *ListState) { st.Selected = sel })
}

func (s *Store) setSeq(seq uint64) {
	s.update(func(st *ListState) { st.Seq = seq })
}

// Subscribe returns a channel that receives a signal after every change.
// Signals coalesce: a slow reader sees one pending signal, never a backlog.
// The channel is closed on unsubscribe or when the store is closed.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan struct{}, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

// Close releases every subscriber. Later mutations still apply but notify
// nobody.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) update(fn func(*ListState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
