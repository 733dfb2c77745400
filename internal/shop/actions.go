package shop

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

// FetchProducts replaces the product cache. On failure the stale cache is kept.
func (s *Store) FetchProducts(ctx context.Context) error {
	products, err := s.backend.ListProducts(ctx, nil)
	if err != nil {
		logging.FromContext(ctx).Warn("fetch_products_failed", "svc", "shop", "error", err)
		return err
	}
	s.Dispatch(ctx, SetProducts{Products: products})
	return nil
}

func (s *Store) AddToCart(ctx context.Context, p models.Product) {
	s.Dispatch(ctx, AddToCart{Product: p})
}

func (s *Store) RemoveFromCart(ctx context.Context, id string) {
	s.Dispatch(ctx, RemoveFromCart{ID: id})
}

// UpdateQuantity removes the item when quantity is not positive.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	s.Dispatch(ctx, UpdateQuantity{ID: id, Quantity: quantity})
}

func (s *Store) ClearCart(ctx context.Context) {
	s.Dispatch(ctx, ClearCart{})
}

func (s *Store) ToggleCart(ctx context.Context) {
	s.Dispatch(ctx, ToggleCart{})
}

func (s *Store) Login(ctx context.Context, session *models.Session) {
	if session == nil {
		s.Logout(ctx)
		return
	}
	s.Dispatch(ctx, SetSession{Session: session})
	s.forwardToken(session.Token)
}

// SignIn authenticates against the backend and stores the session.
func (s *Store) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	session, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	s.Login(ctx, session)
	return session, nil
}

func (s *Store) Logout(ctx context.Context) {
	s.Dispatch(ctx, SetSession{Session: nil})
	s.forwardToken("")
}

func (s *Store) AddProduct(ctx context.Context, in models.ProductInput) {
	if _, err := s.backend.CreateProduct(ctx, in); err != nil {
		logging.FromContext(ctx).Error("add_product_failed", "svc", "shop", "error", err)
	}
	_ = s.FetchProducts(ctx)
}

func (s *Store) UpdateProduct(ctx context.Context, p models.Product) {
	if _, err := s.backend.UpdateProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Error("update_product_failed", "svc", "shop", "product_id", p.ID, "error", err)
	}
	_ = s.FetchProducts(ctx)
}

func (s *Store) DeleteProduct(ctx context.Context, id string) {
	if err := s.backend.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete_product_failed", "svc", "shop", "product_id", id, "error", err)
	}
	_ = s.FetchProducts(ctx)
}

func (s *Store) AddOrder(ctx context.Context, o models.Order) {
	s.Dispatch(ctx, AddOrder{Order: o})
}

// FetchOrders replaces the order cache with the backend's list.
func (s *Store) FetchOrders(ctx context.Context) error {
	token := s.Snapshot().Token()
	if token == "" {
		return service.ErrUnauthorized
	}
	orders, err := s.backend.ListOrders(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Warn("fetch_orders_failed", "svc", "shop", "error", err)
		return err
	}
	s.Dispatch(ctx, SetOrders{Orders: orders})
	return nil
}

// Advise asks the advisor about the cached catalogue.
func (s *Store) Advise(ctx context.Context, q string) string {
	return s.advisor.Advise(ctx, q, s.Snapshot().Products)
}
