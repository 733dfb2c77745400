package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

// Indexer mirrors catalogue changes into the search index.
type Indexer struct {
	ES    *elasticsearch.Client
	Index string
}

func (ix *Indexer) Publish(ctx context.Context, ev service.Event) error {
	switch ev.Type {
	case service.EventProductCreated, service.EventProductUpdated:
		if ev.Product == nil {
			return nil
		}
		return ix.put(ctx, *ev.Product)
	case service.EventProductDeleted:
		return ix.remove(ctx, ev.EntityID)
	default:
		return nil
	}
}

// Reindex writes every product, e.g. the seeded catalogue at startup.
func (ix *Indexer) Reindex(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		if err := ix.put(ctx, p); err != nil {
			return err
		}
	}
	logging.FromContext(ctx).Info("reindexed", "component", "es", "index", ix.Index, "count", len(products))
	return nil
}

func (ix *Indexer) put(ctx context.Context, p models.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es: encode product %s: %w", p.ID, err)
	}

	res, err := ix.ES.Index(ix.Index, bytes.NewReader(data),
		ix.ES.Index.WithContext(ctx),
		ix.ES.Index.WithDocumentID(p.ID),
		ix.ES.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("es: index product %s: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: index product %s: %s: %s", p.ID, res.Status(), body)
	}
	return nil
}

func (ix *Indexer) remove(ctx context.Context, id string) error {
	res, err := ix.ES.Delete(ix.Index, id,
		ix.ES.Delete.WithContext(ctx),
		ix.ES.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("es: delete product %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("es: delete product %s: %s: %s", id, res.Status(), body)
	}
	return nil
}
