package shop

import (
	"context"
	"errors"
	"sync"

	"github.com/Skotchmaster/storefront/internal/advisor"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
)

var ErrEmptyCart = errors.New("cart is empty")

// Backend is the remote surface the store depends on. Both the in-process
// mock and the HTTP client implement it.
type Backend interface {
	ListProducts(ctx context.Context, f *query.Filter) ([]models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	CreateOrder(ctx context.Context, draft models.OrderDraft, token string) (*models.Order, error)
	ListOrders(ctx context.Context, token string) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, token string) (*models.Order, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
}

// TokenSetter is implemented by backends that carry the bearer themselves.
type TokenSetter interface {
	SetToken(token string)
}

// Store is the application-scoped commerce state. Every change goes
// through Dispatch.
type Store struct {
	backend Backend
	repo    *repo.GormRepo
	advisor *advisor.Advisor

	mu    sync.Mutex
	state State

	subMu   sync.Mutex
	subs    map[int]func(State)
	nextSub int

	syncs    sync.WaitGroup
	failMu   sync.Mutex
	failures []SyncFailure
}

type Option func(*Store)

func WithAdvisor(a *advisor.Advisor) Option {
	return func(s *Store) { s.advisor = a }
}

// New restores the cart and the session from r.
func New(ctx context.Context, backend Backend, r *repo.GormRepo, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		repo:    r,
		subs:    map[int]func(State){},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = State{
		Products: []models.Product{},
		Cart:     repo.Read(ctx, r, repo.KeyCart, []models.CartItem{}),
		Session:  repo.Read(ctx, r, repo.KeySession, (*models.Session)(nil)),
		Orders:   []models.Order{},
	}
	if s.state.Cart == nil {
		s.state.Cart = []models.CartItem{}
	}
	s.forwardToken(s.state.Token())
	return s
}

func (s *Store) forwardToken(token string) {
	if ts, ok := s.backend.(TokenSetter); ok {
		ts.SetToken(token)
	}
}

// Dispatch applies a, persists the cart or session when a touched them and
// notifies subscribers.
func (s *Store) Dispatch(ctx context.Context, a Action) State {
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	s.persist(ctx, a)
	snap := s.state.clone()
	s.mu.Unlock()

	s.notify(snap)
	return snap
}

func (s *Store) persist(ctx context.Context, a Action) {
	l := logging.FromContext(ctx).With("svc", "shop.persist")
	ctx = context.WithoutCancel(ctx)

	if touchesCart(a) {
		if err := s.repo.Write(ctx, repo.KeyCart, s.state.Cart); err != nil {
			l.Error("cart_write_failed", "error", err)
		}
	}
	if touchesSession(a) {
		var err error
		if s.state.Session == nil {
			err = s.repo.Delete(ctx, repo.KeySession)
		} else {
			err = s.repo.Write(ctx, repo.KeySession, s.state.Session)
		}
		if err != nil {
			l.Error("session_write_failed", "error", err)
		}
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers fn for every subsequent state change.
func (s *Store) Subscribe(fn func(State)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(snap State) {
	s.subMu.Lock()
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap.clone())
	}
}
