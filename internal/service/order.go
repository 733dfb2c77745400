package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func emptyOrders() []models.Order { return []models.Order{} }

// CreateOrder records a Pending order built from draft. The newest order
// is stored first.
func (b *Backend) CreateOrder(ctx context.Context, draft models.OrderDraft, token string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.create")

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if token == "" {
		l.Warn("unauthorized", "status", 401, "reason", "missing token")
		return nil, ErrUnauthorized
	}
	if len(draft.Items) == 0 {
		l.Warn("validation_failed", "status", 400, "reason", "no items")
		return nil, fmt.Errorf("%w: order has no items", ErrValidation)
	}
	for _, it := range draft.Items {
		if it.Quantity < 1 {
			l.Warn("validation_failed", "status", 400, "reason", "bad quantity", "product_id", it.ID)
			return nil, fmt.Errorf("%w: quantity for %s must be positive", ErrValidation, it.ID)
		}
	}

	items := models.CloneItems(draft.Items)
	total := draft.TotalPrice
	if total == 0 {
		itemsPrice := draft.ItemsPrice
		if itemsPrice == 0 {
			itemsPrice = models.ItemsTotal(items)
		}
		total = itemsPrice + draft.ShippingPrice + draft.TaxPrice
	}

	order := models.Order{
		ID:            b.NewID(),
		CustomerName:  draft.CustomerName,
		Email:         draft.Email,
		Address:       draft.ShippingAddress.Address,
		Items:         items,
		Total:         total,
		TotalPrice:    total,
		Status:        models.OrderStatusPending,
		Date:          b.Now(),
		PaymentMethod: draft.PaymentMethod,
	}

	ctx = context.WithoutCancel(ctx)
	_, err := repo.Update(ctx, b.Repo, repo.KeyOrders, emptyOrders(), func(cur []models.Order) ([]models.Order, error) {
		return append([]models.Order{order}, cur...), nil
	})
	if err != nil {
		l.Error("db_create_failed", "status", 500, "error", err)
		return nil, failed(err)
	}

	l.Info("created", "order_id", order.ID, "total", order.Total, "items", len(order.Items))
	out := models.CloneOrder(order)
	b.publish(ctx, Event{Type: EventOrderCreated, EntityID: order.ID, Order: &out})
	return &out, nil
}

// ListOrders returns every recorded order, newest first.
func (b *Backend) ListOrders(ctx context.Context, token string) ([]models.Order, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if token == "" {
		logging.FromContext(ctx).Warn("unauthorized", "svc", "order.list", "status", 401)
		return nil, ErrUnauthorized
	}
	return repo.Read(context.WithoutCancel(ctx), b.Repo, repo.KeyOrders, emptyOrders()), nil
}

// UpdateOrderStatus returns nil without error when id is unknown.
func (b *Backend) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus, token string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", id)

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if token == "" {
		l.Warn("unauthorized", "status", 401, "reason", "missing token")
		return nil, ErrUnauthorized
	}
	if !status.Valid() {
		l.Warn("validation_failed", "status", 400, "reason", "unknown status", "value", status)
		return nil, fmt.Errorf("%w: unknown order status %q", ErrValidation, status)
	}

	var updated models.Order
	ctx = context.WithoutCancel(ctx)
	_, err := repo.Update(ctx, b.Repo, repo.KeyOrders, emptyOrders(), func(cur []models.Order) ([]models.Order, error) {
		for i := range cur {
			if cur[i].ID == id {
				cur[i].Status = status
				updated = models.CloneOrder(cur[i])
				return cur, nil
			}
		}
		return nil, errNoChange
	})
	switch {
	case errors.Is(err, errNoChange):
		l.Info("update_skipped", "reason", "unknown order")
		return nil, nil
	case err != nil:
		l.Error("db_update_failed", "status", 500, "error", err)
		return nil, failed(err)
	}

	l.Info("status_updated", "order_status", status)
	b.publish(ctx, Event{Type: EventOrderStatusUpdated, EntityID: id, Order: &updated})
	return &updated, nil
}

// GetOrder returns nil without error when id is unknown.
func (b *Backend) GetOrder(ctx context.Context, id, token string) (*models.Order, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if token == "" {
		logging.FromContext(ctx).Warn("unauthorized", "svc", "order.get", "status", 401)
		return nil, ErrUnauthorized
	}
	for _, o := range repo.Read(context.WithoutCancel(ctx), b.Repo, repo.KeyOrders, emptyOrders()) {
		if o.ID == id {
			o := models.CloneOrder(o)
			return &o, nil
		}
	}
	return nil, nil
}
