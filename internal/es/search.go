package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/query"
)

type Result struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}

func searchBody(q string, f query.Filter, from, size int) map[string]any {
	var must []any
	if q != "" {
		must = append(must, map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "description", "brand"},
				"fuzziness": "AUTO",
			},
		})
	}

	lo, hi := f.Bounds()
	filter := []any{
		map[string]any{"range": map[string]any{
			"price": map[string]any{"gte": lo, "lte": hi},
		}},
	}
	if f.Category != "" && f.Category != query.AllCategories {
		filter = append(filter, map[string]any{"term": map[string]any{"category": f.Category}})
	}

	boolQ := map[string]any{"filter": filter}
	if len(must) > 0 {
		boolQ["must"] = must
	}
	return map[string]any{
		"query": map[string]any{"bool": boolQ},
		"from":  from,
		"size":  size,
	}
}

// Search runs a fuzzy full-text query over name, description and brand,
// narrowed by the category and price bounds of f.
func Search(ctx context.Context, client *elasticsearch.Client, index, q string, f query.Filter, page, size int) (Result, error) {
	from, size := Page(page, size)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(q, f, from, size)); err != nil {
		return Result{}, fmt.Errorf("es: encode search: %w", err)
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(index),
		client.Search.WithBody(&buf),
	)
	if err != nil {
		return Result{}, fmt.Errorf("es: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return Result{}, fmt.Errorf("es: search: %s: %s", res.Status(), body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return Result{}, fmt.Errorf("es: decode search: %w", err)
	}

	out := Result{Total: r.Hits.Total.Value, Products: make([]models.Product, len(r.Hits.Hits))}
	for i, hit := range r.Hits.Hits {
		out.Products[i] = hit.Source
	}
	return out, nil
}
