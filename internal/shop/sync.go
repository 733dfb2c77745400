package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

// SyncFailure is an optimistic status change the backend did not accept.
type SyncFailure struct {
	OrderID string             `json:"orderID"`
	Status  models.OrderStatus `json:"status"`
	Err     error              `json:"-"`
	Reason  string             `json:"reason"`
	At      time.Time          `json:"at"`
}

// UpdateOrderStatus rewrites the cached order at once, then syncs the change
// in the background when signed in. A failed sync keeps the local status and
// is recorded for RetrySync. Statuses outside the enum are refused.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown order status %q", service.ErrValidation, status)
	}
	snap := s.Dispatch(ctx, SetStatus{ID: id, Status: status})

	token := snap.Token()
	if token == "" {
		return nil
	}

	ctx = context.WithoutCancel(ctx)
	s.syncs.Add(1)
	go func() {
		defer s.syncs.Done()
		_ = s.syncStatus(ctx, id, status, token)
	}()
	return nil
}

func (s *Store) cachedStatus(id string) (models.OrderStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.state.Orders {
		if o.ID == id {
			return o.Status, true
		}
	}
	return "", false
}

// syncStatus pushes status and reconciles the failure records of the order
// with its cached status. A failure is only kept while the cache still shows
// the status that failed.
func (s *Store) syncStatus(ctx context.Context, id string, status models.OrderStatus, token string) error {
	l := logging.FromContext(ctx).With("svc", "shop.sync", "order_id", id, "order_status", status)

	_, err := s.backend.UpdateOrderStatus(ctx, id, status, token)

	s.failMu.Lock()
	defer s.failMu.Unlock()

	cur, cached := s.cachedStatus(id)
	if !cached {
		cur = status
	}

	kept := s.failures[:0]
	for _, f := range s.failures {
		if f.OrderID != id || (f.Status == cur && f.Status != status) {
			kept = append(kept, f)
		}
	}
	s.failures = kept

	if err != nil {
		if status != cur {
			l.Warn("status_sync_failed", "reason", "superseded locally", "local_status", cur, "error", err)
			return err
		}
		l.Error("status_sync_failed", "reason", "local state kept", "error", err)
		s.failures = append(s.failures, SyncFailure{OrderID: id, Status: status, Err: err, Reason: err.Error(), At: time.Now().UTC()})
		return err
	}
	l.Info("status_synced")
	return nil
}

// Wait blocks until every background sync has finished.
func (s *Store) Wait() {
	s.syncs.Wait()
}

func (s *Store) SyncFailures() []SyncFailure {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	return append([]SyncFailure(nil), s.failures...)
}

// RetrySync resends every recorded failure synchronously with the current
// session token. The cached status of the order is sent, so a retry never
// reverts a newer local change.
func (s *Store) RetrySync(ctx context.Context) error {
	token := s.Snapshot().Token()
	var errs []error
	for _, f := range s.SyncFailures() {
		if token == "" {
			errs = append(errs, f.Err)
			continue
		}
		status := f.Status
		if cur, ok := s.cachedStatus(f.OrderID); ok {
			status = cur
		}
		if err := s.syncStatus(ctx, f.OrderID, status, token); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
