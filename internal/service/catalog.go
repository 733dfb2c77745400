package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func (b *Backend) products(ctx context.Context) []models.Product {
	return repo.Read(ctx, b.Repo, repo.KeyProducts, models.SeedProducts())
}

// ListProducts returns the catalogue, narrowed by f when f is non-nil.
func (b *Backend) ListProducts(ctx context.Context, f *query.Filter) ([]models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	products := b.products(context.WithoutCancel(ctx))
	if f == nil {
		return products, nil
	}
	return query.Apply(products, *f), nil
}

// GetProduct returns nil without error when id is unknown.
func (b *Backend) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	for _, p := range b.products(context.WithoutCancel(ctx)) {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

func validateProduct(name string, price float64, stock int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if price < 0 {
		return fmt.Errorf("%w: price must be non-negative", ErrValidation)
	}
	if stock < 0 {
		return fmt.Errorf("%w: stock must be non-negative", ErrValidation)
	}
	return nil
}

func (b *Backend) CreateProduct(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateProduct(in.Name, in.Price, in.Stock); err != nil {
		l.Warn("validation_failed", "status", 400, "error", err)
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	p := in.WithIdentity(b.NewID())
	_, err := repo.Update(ctx, b.Repo, repo.KeyProducts, models.SeedProducts(), func(cur []models.Product) ([]models.Product, error) {
		return append(cur, p), nil
	})
	if err != nil {
		l.Error("db_create_failed", "status", 500, "error", err)
		return nil, failed(err)
	}

	l.Info("created", "product_id", p.ID)
	b.publish(ctx, Event{Type: EventProductCreated, EntityID: p.ID, Product: &p})
	return &p, nil
}

// UpdateProduct replaces the product with the same id. An unknown id leaves
// the catalogue untouched and returns p unchanged.
func (b *Backend) UpdateProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", p.ID)

	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	if err := validateProduct(p.Name, p.Price, p.Stock); err != nil {
		l.Warn("validation_failed", "status", 400, "error", err)
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	_, err := repo.Update(ctx, b.Repo, repo.KeyProducts, models.SeedProducts(), func(cur []models.Product) ([]models.Product, error) {
		for i := range cur {
			if cur[i].ID == p.ID {
				cur[i] = p
				return cur, nil
			}
		}
		return nil, errNoChange
	})
	switch {
	case errors.Is(err, errNoChange):
		l.Info("update_skipped", "reason", "unknown product")
		return &p, nil
	case err != nil:
		l.Error("db_update_failed", "status", 500, "error", err)
		return nil, failed(err)
	}

	l.Info("updated")
	b.publish(ctx, Event{Type: EventProductUpdated, EntityID: p.ID, Product: &p})
	return &p, nil
}

// DeleteProduct removes id from the catalogue; unknown ids are not an error.
func (b *Backend) DeleteProduct(ctx context.Context, id string) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	if err := b.wait(ctx); err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	_, err := repo.Update(ctx, b.Repo, repo.KeyProducts, models.SeedProducts(), func(cur []models.Product) ([]models.Product, error) {
		out := cur[:0]
		for _, p := range cur {
			if p.ID != id {
				out = append(out, p)
			}
		}
		if len(out) == len(cur) {
			return nil, errNoChange
		}
		return out, nil
	})
	switch {
	case errors.Is(err, errNoChange):
		l.Info("delete_skipped", "reason", "unknown product")
		return nil
	case err != nil:
		l.Error("db_delete_failed", "status", 500, "error", err)
		return failed(err)
	}

	l.Info("deleted")
	b.publish(ctx, Event{Type: EventProductDeleted, EntityID: id})
	return nil
}
