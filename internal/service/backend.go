package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

const DefaultLatency = 600 * time.Millisecond

const (
	EventProductCreated     = "product_created"
	EventProductUpdated     = "product_updated"
	EventProductDeleted     = "product_deleted"
	EventOrderCreated       = "order_created"
	EventOrderStatusUpdated = "order_status_updated"
)

type Event struct {
	Type     string          `json:"type"`
	EntityID string          `json:"entityID"`
	Product  *models.Product `json:"product,omitempty"`
	Order    *models.Order   `json:"order,omitempty"`
	At       time.Time       `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Publishers fans an event out to every publisher.
type Publishers []Publisher

func (ps Publishers) Publish(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range ps {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Backend emulates the remote storefront API on top of the local collections.
// Every call waits Latency first; ctx is only honoured during that wait.
type Backend struct {
	Repo      *repo.GormRepo
	Publisher Publisher
	Latency   time.Duration
	Now       func() time.Time
	NewID     func() string

	tokenSecret []byte
	accounts    []account
}

type Option func(*Backend)

func WithLatency(d time.Duration) Option {
	return func(b *Backend) { b.Latency = d }
}

func WithPublisher(p Publisher) Option {
	return func(b *Backend) { b.Publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(b *Backend) { b.Now = now }
}

func WithIDs(newID func() string) Option {
	return func(b *Backend) { b.NewID = newID }
}

func WithTokenSecret(secret []byte) Option {
	return func(b *Backend) { b.tokenSecret = secret }
}

func New(r *repo.GormRepo, opts ...Option) (*Backend, error) {
	b := &Backend{
		Repo:        r,
		Latency:     DefaultLatency,
		Now:         func() time.Time { return time.Now().UTC() },
		NewID:       uuid.NewString,
		tokenSecret: []byte("lumina-mock-secret"),
	}
	for _, opt := range opts {
		opt(b)
	}

	accounts, err := provision(b.tokenSecret)
	if err != nil {
		return nil, fmt.Errorf("provision accounts: %w", err)
	}
	b.accounts = accounts
	return b, nil
}

func (b *Backend) wait(ctx context.Context) error {
	if b.Latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(b.Latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (b *Backend) publish(ctx context.Context, ev Event) {
	if b.Publisher == nil {
		return
	}
	ev.At = b.Now()
	if err := b.Publisher.Publish(ctx, ev); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "svc", "backend", "event", ev.Type, "entity_id", ev.EntityID, "error", err)
	}
}

func failed(err error) error {
	return fmt.Errorf("%w: %w", ErrOperationFailed, err)
}
