package es

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
)

const productMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "brand":       {"type": "text"},
      "category":    {"type": "keyword"},
      "price":       {"type": "double"},
      "stock":       {"type": "integer"},
      "rating":      {"type": "double"},
      "reviews":     {"type": "integer"},
      "image":       {"type": "keyword", "index": false}
    }
  }
}`

func NewClient(ctx context.Context, cfg config.Config) (*elasticsearch.Client, error) {
	l := logging.FromContext(ctx).With("component", "es")
	l.Info("connecting", "url", cfg.ESURL, "user", cfg.ESUser)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	l.Info("connected")
	return client, nil
}

// EnsureIndex creates index with the product mapping unless it exists.
func EnsureIndex(ctx context.Context, client *elasticsearch.Client, index string) error {
	res, err := client.Indices.Exists([]string{index}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("es: index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = client.Indices.Create(index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(productMapping)),
	)
	if err != nil {
		return fmt.Errorf("es: create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		// lost a race with another instance
		if strings.Contains(string(body), "resource_already_exists_exception") {
			return nil
		}
		return fmt.Errorf("es: create index: %s: %s", res.Status(), body)
	}

	logging.FromContext(ctx).Info("index_created", "component", "es", "index", index)
	return nil
}

// Connect dials the cluster, ensures the index and mirrors products into it.
// Nothing is returned unless every step succeeded, so callers never wire a
// half-initialised index.
func Connect(ctx context.Context, cfg config.Config, products []models.Product) (*elasticsearch.Client, *Indexer, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := EnsureIndex(ctx, client, cfg.ESIndex); err != nil {
		return nil, nil, err
	}
	indexer := &Indexer{ES: client, Index: cfg.ESIndex}
	if err := indexer.Reindex(ctx, products); err != nil {
		return nil, nil, err
	}
	return client, indexer, nil
}
