package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/advisor"
	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/es"
	"github.com/Skotchmaster/storefront/internal/httpserver"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)
	baseCtx := logging.IntoContext(context.Background(), logger)

	ctx, cancel := context.WithTimeout(baseCtx, 10*time.Second)
	db, err := repo.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	store := repo.New(db)

	var pubs service.Publishers

	var producer *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = mykafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		pubs = append(pubs, producer)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	catalog := &httpserver.CatalogHTTP{Index: cfg.ESIndex}
	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(baseCtx, 15*time.Second)
		client, indexer, err := es.Connect(ctx, cfg, repo.Read(ctx, store, repo.KeyProducts, models.SeedProducts()))
		cancel()
		if err != nil {
			logger.Error("es_unavailable", "reason", "search disabled", "error", err)
		} else {
			pubs = append(pubs, indexer)
			catalog.ES = client
		}
	}

	svc, err := service.New(store,
		service.WithLatency(cfg.MockLatency),
		service.WithTokenSecret(cfg.JWTSecret),
		service.WithPublisher(pubs),
	)
	if err != nil {
		log.Fatalf("backend: %v", err)
	}
	catalog.Svc = svc

	var gen advisor.Generator
	if cfg.GeminiAPIKey != "" {
		gen = advisor.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Catalog:   catalog,
		Orders:    &httpserver.OrderHTTP{Svc: svc},
		Auth:      &httpserver.AuthHTTP{Svc: svc},
		Advisor:   &httpserver.AdvisorHTTP{Svc: svc, Advisor: advisor.New(gen)},
		JWTSecret: cfg.JWTSecret,
		Ready: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	if err := serve(srv, stop, logger); err != nil {
		logger.Error("listen_failed", "addr", srv.Addr, "error", err)
		exitCode = 1
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	_ = srv.Shutdown(shutdownCtx)
	shutdownCancel()

	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}
	_ = store.Close()

	logger.Info("stopped")
	os.Exit(exitCode)
}

// serve runs srv until a signal arrives on stop or the listener fails.
func serve(srv *http.Server, stop <-chan os.Signal, logger *slog.Logger) error {
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-stop:
		return nil
	case err := <-serveErr:
		return err
	}
}
