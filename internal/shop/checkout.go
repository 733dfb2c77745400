package shop

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

const (
	DefaultCountry       = "USA"
	DefaultPaymentMethod = "Credit Card"
)

// Checkout places an order for the current cart. The cart is cleared only
// when the backend accepted the order.
func (s *Store) Checkout(ctx context.Context, addr models.ShippingAddress, paymentMethod string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "shop.checkout")

	snap := s.Snapshot()
	if snap.Token() == "" {
		l.Warn("checkout_failed", "reason", "not signed in")
		return nil, service.ErrUnauthorized
	}
	if len(snap.Cart) == 0 {
		return nil, ErrEmptyCart
	}
	if addr.Country == "" {
		addr.Country = DefaultCountry
	}
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	itemsPrice := models.ItemsTotal(snap.Cart)
	shipping := models.ShippingFor(itemsPrice)
	draft := models.OrderDraft{
		CustomerName:    snap.Session.Name,
		Email:           snap.Session.Email,
		ShippingAddress: addr,
		Items:           snap.Cart,
		PaymentMethod:   paymentMethod,
		ItemsPrice:      itemsPrice,
		ShippingPrice:   shipping,
		TotalPrice:      itemsPrice + shipping,
	}

	order, err := s.backend.CreateOrder(ctx, draft, snap.Token())
	if err != nil {
		l.Warn("checkout_failed", "error", err)
		return nil, err
	}

	s.AddOrder(ctx, *order)
	s.ClearCart(ctx)
	l.Info("checkout_success", "order_id", order.ID, "total", order.Total)
	return order, nil
}

type Dashboard struct {
	Revenue       float64 `json:"revenue"`
	Orders        int     `json:"orders"`
	Products      int     `json:"products"`
	AverageOrder  float64 `json:"averageOrder"`
	PendingOrders int     `json:"pendingOrders"`
}

// Dashboard summarises the cached orders and catalogue for the admin view.
func (s *Store) Dashboard() Dashboard {
	snap := s.Snapshot()
	d := Dashboard{Orders: len(snap.Orders), Products: len(snap.Products)}
	for _, o := range snap.Orders {
		total := o.TotalPrice
		if total == 0 {
			total = o.Total
		}
		d.Revenue += total
		if o.Status == models.OrderStatusPending {
			d.PendingOrders++
		}
	}
	if d.Orders > 0 {
		d.AverageOrder = d.Revenue / float64(d.Orders)
	}
	return d
}
