// Command shopper runs one scripted shopping session against the storefront
// API, or against the in-process mock backend when no API URL is set, and
// prints the resulting state as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/Skotchmaster/storefront/internal/advisor"
	"github.com/Skotchmaster/storefront/internal/apiclient"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/shop"
)

type report struct {
	State     shop.State         `json:"state"`
	Order     *models.Order      `json:"order,omitempty"`
	Dashboard *shop.Dashboard    `json:"dashboard,omitempty"`
	Answer    string             `json:"answer,omitempty"`
	Failures  []shop.SyncFailure `json:"syncFailures,omitempty"`
}

func main() {
	cfg := config.Load()

	apiURL := flag.String("api", cfg.APIURL, "storefront API base URL; empty uses the in-process mock")
	statePath := flag.String("state", "file:shopper.db", "local store for cart and session")
	email := flag.String("email", "user@lumina.com", "login email")
	password := flag.String("password", "user123", "login password")
	buy := flag.String("buy", "1", "comma-separated product ids to add to the cart")
	address := flag.String("address", "1 Main St", "shipping address")
	status := flag.String("status", "", "admin only: move the newest order to this status")
	ask := flag.String("ask", "", "question for the shopping advisor")
	flag.Parse()

	logger := logging.New(cfg.LogLevel).With("service", "shopper")
	ctx := logging.IntoContext(context.Background(), logger)

	db, err := repo.Open(ctx, *statePath)
	if err != nil {
		log.Fatalf("open local store: %v", err)
	}
	local := repo.New(db)
	defer local.Close()

	var backend shop.Backend
	if *apiURL != "" {
		backend = apiclient.NewClient(*apiURL)
	} else {
		b, err := service.New(local, service.WithLatency(cfg.MockLatency), service.WithTokenSecret(cfg.JWTSecret))
		if err != nil {
			log.Fatalf("backend: %v", err)
		}
		backend = b
	}

	var gen advisor.Generator
	if cfg.GeminiAPIKey != "" {
		gen = advisor.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	store := shop.New(ctx, backend, local, shop.WithAdvisor(advisor.New(gen)))

	if err := store.FetchProducts(ctx); err != nil {
		log.Fatalf("fetch products: %v", err)
	}
	session, err := store.SignIn(ctx, *email, *password)
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	byID := map[string]models.Product{}
	for _, p := range store.Snapshot().Products {
		byID[p.ID] = p
	}
	for _, id := range strings.Split(*buy, ",") {
		p, ok := byID[strings.TrimSpace(id)]
		if !ok {
			logger.Warn("unknown_product", "product_id", id)
			continue
		}
		store.AddToCart(ctx, p)
	}

	out := report{}
	if len(store.Snapshot().Cart) > 0 {
		order, err := store.Checkout(ctx, models.ShippingAddress{Address: *address}, "")
		if err != nil {
			logger.Error("checkout_failed", "error", err)
		}
		out.Order = order
	}

	if session.IsAdmin() {
		if err := store.FetchOrders(ctx); err != nil {
			logger.Error("fetch_orders_failed", "error", err)
		}
		if orders := store.Snapshot().Orders; *status != "" && len(orders) > 0 {
			st, err := models.ParseOrderStatus(*status)
			if err != nil {
				log.Fatalf("status: %v", err)
			}
			if err := store.UpdateOrderStatus(ctx, orders[0].ID, st); err != nil {
				log.Fatalf("status: %v", err)
			}
			store.Wait()
		}
		d := store.Dashboard()
		out.Dashboard = &d
	}

	if *ask != "" {
		out.Answer = store.Advise(ctx, *ask)
	}

	out.State = store.Snapshot()
	out.Failures = store.SyncFailures()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
