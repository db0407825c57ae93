package listing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"useradmin/internal/domain"
	"useradmin/internal/domain/models"
)

// Writer performs the mutations behind the create/edit form and the delete
// confirmation.
type Writer interface {
	CreateUser(ctx context.Context, in models.UserInput) (models.User, error)
	UpdateUser(ctx context.Context, id int64, in models.UserInput) (models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// Backend is the REST collaborator a Page talks to.
type Backend interface {
	Fetcher
	Writer
}

// Modal is the overlay currently open on top of the table.
type Modal string

const (
	ModalNone   Modal = ""
	ModalCreate Modal = "create"
	ModalEdit   Modal = "edit"
	ModalDelete Modal = "delete"
)

// ErrNoSelection is returned when a row action needs a selected user.
var ErrNoSelection = errors.New("no user selected")

// PageConfig tunes a mounted page.
type PageConfig struct {
	PageSize       int
	SearchDebounce time.Duration
	FetchTimeout   time.Duration
	Logger         *zap.SugaredLogger
	// AfterFunc overrides the debounce scheduler.
	AfterFunc AfterFunc
}

// Page binds the debounced search, the query state, the fetch cycle and
// the store for one mounted users view. All intents go through it.
type Page struct {
	backend Backend
	store   *Store
	cycle   *Cycle
	search  *Debouncer[string]
	logger  *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	query      Query
	searchTerm string
	modal      Modal
	unmounted  bool
}

// NewPage builds a page; nothing is fetched until Mount.
func NewPage(ctx context.Context, backend Backend, cfg PageConfig) *Page {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	pctx, cancel := context.WithCancel(ctx)
	store := NewStore()
	p := &Page{
		backend: backend,
		store:   store,
		cycle:   NewCycle(backend, store, WithTimeout(cfg.FetchTimeout), WithLogger(logger)),
		logger:  logger,
		ctx:     pctx,
		cancel:  cancel,
		query:   NewQuery(cfg.PageSize),
	}
	p.search = NewDebouncer(cfg.SearchDebounce, p.applySearch)
	if cfg.AfterFunc != nil {
		p.search.WithAfterFunc(cfg.AfterFunc)
	}
	return p
}

// Mount issues the initial fetch.
func (p *Page) Mount() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startLocked()
}

// Store exposes the page's list state for rendering.
func (p *Page) Store() *Store { return p.store }

// Query returns a copy of the current filters and pagination.
func (p *Page) Query() Query {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query.Clone()
}

// SearchTerm is the raw, not yet debounced, search input.
func (p *Page) SearchTerm() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.searchTerm
}

func (p *Page) Modal() Modal {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.modal
}

// SetFilter changes one filter, resets to page 1 and refetches.
func (p *Page) SetFilter(key, value string) {
	p.Batch(func(q *Query) { q.SetFilter(key, value) })
}

// SetPage moves the table to another page or page size and refetches.
func (p *Page) SetPage(page, pageSize int) {
	p.Batch(func(q *Query) { q.SetPage(page, pageSize) })
}

// Batch applies several query changes and refetches once.
func (p *Page) Batch(fn func(q *Query)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unmounted {
		return
	}
	fn(&p.query)
	p.startLocked()
}

// SetSearchTerm records a keystroke. The term reaches the filters only after
// it has been stable for the debounce period.
func (p *Page) SetSearchTerm(term string) {
	p.mu.Lock()
	p.searchTerm = term
	p.mu.Unlock()
	p.search.Push(term)
}

func (p *Page) applySearch(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unmounted {
		return
	}
	if p.query.Filter(SearchKey) == strings.TrimSpace(term) {
		return
	}
	p.query.SetFilter(SearchKey, term)
	p.startLocked()
}

// Refresh re-runs the fetch cycle with the current query. It is the
// callback invoked after any external mutation completes.
func (p *Page) Refresh() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.unmounted {
		return
	}
	p.startLocked()
}

// OpenCreate opens the empty user form.
func (p *Page) OpenCreate() {
	p.setModal(ModalCreate, nil)
}

// Edit opens the user form pre-filled with u.
func (p *Page) Edit(u models.User) {
	p.setModal(ModalEdit, &u)
}

// RequestDelete opens the delete confirmation for u. Nothing is removed
// until ConfirmDelete.
func (p *Page) RequestDelete(u models.User) {
	p.setModal(ModalDelete, &u)
}

// CloseModal dismisses any open form or confirmation.
func (p *Page) CloseModal() {
	p.setModal(ModalNone, nil)
}

// FindRow returns the listed user with the given id.
func (p *Page) FindRow(id int64) (models.User, bool) {
	for _, u := range p.store.Snapshot().Items {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// ConfirmDelete deletes the selected user on the backend and refetches.
func (p *Page) ConfirmDelete(ctx context.Context) error {
	sel := p.store.Snapshot().Selected
	if sel == nil || p.Modal() != ModalDelete {
		return ErrNoSelection
	}
	if err := p.backend.DeleteUser(ctx, sel.ID); err != nil {
		return fmt.Errorf("delete user %d: %w", sel.ID, err)
	}
	p.logger.Infow("user deleted", "id", sel.ID)
	p.CloseModal()
	p.Refresh()
	return nil
}

// Save submits the open form: the create form posts a new user, the edit
// form updates the selected one. The list is refetched afterwards.
func (p *Page) Save(ctx context.Context, in models.UserInput) (models.User, error) {
	in = in.Normalize()
	if err := validateInput(in, p.Modal() == ModalCreate); err != nil {
		return models.User{}, err
	}

	var (
		saved models.User
		err   error
	)
	switch p.Modal() {
	case ModalEdit:
		sel := p.store.Snapshot().Selected
		if sel == nil {
			return models.User{}, ErrNoSelection
		}
		saved, err = p.backend.UpdateUser(ctx, sel.ID, in)
	case ModalCreate:
		saved, err = p.backend.CreateUser(ctx, in)
	default:
		return models.User{}, ErrNoSelection
	}
	if err != nil {
		return models.User{}, fmt.Errorf("save user: %w", err)
	}
	p.logger.Infow("user saved", "id", saved.ID)
	p.CloseModal()
	p.Refresh()
	return saved, nil
}

// Wait blocks until in-flight fetches have returned.
func (p *Page) Wait() {
	p.cycle.Wait()
}

// Unmount tears the page down: the debounce timer is cancelled, the
// in-flight fetch is abandoned and subscribers are released.
func (p *Page) Unmount() {
	p.mu.Lock()
	if p.unmounted {
		p.mu.Unlock()
		return
	}
	p.unmounted = true
	p.mu.Unlock()

	p.search.Stop()
	p.cycle.Stop()
	p.cancel()
	p.store.Close()
}

func (p *Page) startLocked() {
	p.cycle.Start(p.ctx, p.query.Clone())
}

func (p *Page) setModal(m Modal, u *models.User) {
	p.mu.Lock()
	p.modal = m
	p.mu.Unlock()
	p.store.SetCurrentUser(u)
}

func validateInput(in models.UserInput, creating bool) error {
	switch {
	case in.Username == "":
		return domain.ValidationError{Field: "username", Msg: "required"}
	case in.Name == "":
		return domain.ValidationError{Field: "name", Msg: "required"}
	case in.Lastname == "":
		return domain.ValidationError{Field: "lastname", Msg: "required"}
	case !models.ValidStatus(in.Status):
		return domain.ValidationError{Field: "status", Msg: "must be active or inactive"}
	case creating && in.Password == "":
		return domain.ValidationError{Field: "password", Msg: "required"}
	}
	return nil
}
