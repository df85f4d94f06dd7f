package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.connectwisedev.com/storefront-service/pkg/admin"
	"gitlab.connectwisedev.com/storefront-service/pkg/api"
	"gitlab.connectwisedev.com/storefront-service/pkg/auth"
	"gitlab.connectwisedev.com/storefront-service/pkg/cache"
	"gitlab.connectwisedev.com/storefront-service/pkg/cart"
	"gitlab.connectwisedev.com/storefront-service/pkg/catalog"
	"gitlab.connectwisedev.com/storefront-service/pkg/config"
	"gitlab.connectwisedev.com/storefront-service/pkg/database"
	"gitlab.connectwisedev.com/storefront-service/pkg/gateway"
	"gitlab.connectwisedev.com/storefront-service/pkg/orders"
	"gitlab.connectwisedev.com/storefront-service/pkg/storage"
)

const (
	cartIdleTimeout = 2 * time.Hour
	shutdownTimeout = 15 * time.Second
)

func main() {
	config.LoadEnv()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := database.NewPostgresClient(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize DB client: %v", err)
	}
	defer dbClient.Close()
	if err := dbClient.Migrate(ctx); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize Redis client: %v", err)
	}
	defer redisClient.Close()

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize file storage: %v", err)
	}

	products := gateway.NewCachedProducts(
		gateway.NewProducts(dbClient),
		cache.NewProductCache(redisClient, cfg.Shop.CatalogCacheTTL),
	)
	store := catalog.NewStore(products)
	if err := store.Load(ctx); err != nil {
		log.Printf("Starting with an empty catalog: %v", err)
	}
	if cfg.Shop.CatalogRefresh > 0 {
		go store.Poll(ctx, cfg.Shop.CatalogRefresh)
	}

	syncer := cart.NewSyncer(gateway.NewCarts(dbClient))
	defer syncer.Close()
	sessions := cart.NewSessions(func(deviceID string) cart.LocalStore {
		return cache.NewLocalCartStore(redisClient, deviceID)
	}, gateway.NewCarts(dbClient), syncer)
	go pruneCarts(ctx, sessions)

	srv := &api.Server{
		Catalog:      store,
		Carts:        sessions,
		Auth:         auth.NewService(gateway.NewUsers(dbClient), cache.NewSessionStore(redisClient), cfg.Shop.SessionTTL),
		Orders:       orders.NewService(gateway.NewOrders(dbClient)),
		Admin:        admin.NewProducts(store, files),
		FreeShipping: cfg.Shop.FreeShippingThreshold,
	}
	if disk, ok := files.(*storage.DiskStore); ok {
		srv.Uploads = http.FileServer(http.Dir(disk.Root()))
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Storefront listening on %s (%s)", cfg.HTTPAddr, cfg.AppEnv)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
	if err := syncer.Flush(shutdownCtx); err != nil {
		log.Printf("Pending cart writes not flushed: %v", err)
	}
	products.Wait()
}

func pruneCarts(ctx context.Context, sessions *cart.Sessions) {
	ticker := time.NewTicker(cartIdleTimeout / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := sessions.Prune(cartIdleTimeout); n > 0 {
				log.Printf("Released %d idle device carts", n)
			}
		}
	}
}
