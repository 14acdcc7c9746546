package main

import (
	"context"
	"errors"
	"go-places/handlers"
	"go-places/overlay"
	"go-places/services"
	"go-places/utils/config"
	"go-places/utils/logger"
	"go-places/utils/metrics"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	log := logger.Setup()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration error", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catalog backend (optional)
	var catalog *services.CatalogService
	if cfg.MongoURI != "" {
		catalog, err = services.NewCatalogService(ctx, services.CatalogOptions{
			MongoURI:  cfg.MongoURI,
			Database:  cfg.MongoDatabase,
			RedisAddr: cfg.RedisAddr,
			RedisDB:   cfg.RedisDB,
			SeedFile:  cfg.CatalogSeedFile,
		})
		if err != nil {
			log.Error("catalog unavailable", "err", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := catalog.Close(closeCtx); err != nil {
				log.Error("catalog close failed", "err", err)
			}
		}()
	}

	// Places provider and session registry
	provider := services.NewPlacesClient(cfg.PlacesAPIURL, cfg.PlacesAPIKey, cfg.FetchTimeout)
	sessions := services.NewSessionService(provider, services.SessionOptions{
		Gate: services.GateConfig{
			AccuracyThreshold: cfg.GateAccuracyMeters,
			MapSpanDegrees:    cfg.MapSpanDegrees,
			SearchRadius:      cfg.SearchRadiusMeters,
		},
		Overlay: overlay.Config{
			MaxVisibleAnnotations:  cfg.MaxVisibleAnnotations,
			HeadingSmoothingFactor: cfg.HeadingSmoothingFactor,
			MaxDistance:            cfg.MaxDistanceMeters,
		},
		FetchTimeout: cfg.FetchTimeout,
	}, services.NewTokenService(cfg.JWTSecret, cfg.SessionTTL))
	defer sessions.CloseAll()
	sessions.StartJanitor(ctx, cfg.SessionSweepInterval)

	// Router and server
	r := handlers.NewRouter(handlers.RouterOptions{
		SessionService: sessions,
		CatalogService: catalog,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        metrics.Handler(),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown failed", "err", err)
		}
	}()

	log.Info("server starting", "addr", cfg.Addr, "places_api", cfg.PlacesAPIURL, "catalog", catalog != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server failed", "err", err)
		os.Exit(1)
	}
}
