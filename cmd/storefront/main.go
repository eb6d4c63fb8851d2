// cmd/storefront/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/ecommerce-storefront/internal/config"
	"github.com/your-org/ecommerce-storefront/internal/domain/cart"
	"github.com/your-org/ecommerce-storefront/internal/domain/catalog"
	"github.com/your-org/ecommerce-storefront/internal/domain/identity"
	"github.com/your-org/ecommerce-storefront/internal/domain/order"
	"github.com/your-org/ecommerce-storefront/internal/domain/pages"
	"github.com/your-org/ecommerce-storefront/internal/domain/session"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/backend"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/database/postgres"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/database/redis"
	"github.com/your-org/ecommerce-storefront/internal/infrastructure/storage"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/handlers"
	"github.com/your-org/ecommerce-storefront/internal/interfaces/http/routes"
	"github.com/your-org/ecommerce-storefront/internal/pkg/email"
	"github.com/your-org/ecommerce-storefront/internal/pkg/logger"
	"github.com/your-org/ecommerce-storefront/internal/pkg/pdf"
)

const purgeInterval = 15 * time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr := logger.New(cfg)
	logr.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Client state storage
	deps := http.Dependencies{}
	var closers []func() error

	switch cfg.Storage.Driver {
	case "redis":
		redisClient, err := redis.NewConnection(cfg, logr)
		if err != nil {
			logr.Fatalf("Failed to connect to Redis: %v", err)
		}
		closers = append(closers, redisClient.Close)
		deps.Storage = redisClient
		deps.Redis = redisClient.GetClient()

	case "postgres":
		db, err := postgres.NewConnection(cfg, logr)
		if err != nil {
			logr.Fatalf("Failed to connect to database: %v", err)
		}
		closers = append(closers, db.Close)

		if err := db.Health(ctx); err != nil {
			logr.Fatalf("Database health check failed: %v", err)
		}

		migration := postgres.NewMigration(db.GetDB(), logr)
		if err := migration.RunAutoMigrations(); err != nil {
			logr.Fatalf("Database migration failed: %v", err)
		}
		if err := migration.CreateIndexes(); err != nil {
			logr.Warnf("Index creation failed: %v", err)
		}

		states := postgres.NewStateStore(db.GetDB(), cfg.Storage.TTL)
		if cfg.Storage.TTL > 0 {
			go purgeExpired(ctx, states, logr)
		}
		deps.Storage = states

	default:
		logr.Info("💾 Using in-memory client state storage")
		deps.Storage = storage.NewMemory(cfg.Storage.TTL)
	}

	// Backend API and domain services
	client := backend.NewClient(cfg, logr)

	catalogService := catalog.NewService(client, cfg.Images.PlaceholderURL, logr)
	orderService := order.NewService(client, logr)
	sessionService := session.NewService(client, logr)
	bridge := identity.NewBridge(cfg, client, logr)

	pagesService, err := pages.NewService(cfg, email.NewEmailService(cfg, logr), logr)
	if err != nil {
		logr.Fatalf("Failed to load page content: %v", err)
	}

	deps.Bridge = bridge
	deps.Handlers = routes.Handlers{
		Auth:    handlers.NewAuthHandler(sessionService),
		Google:  handlers.NewGoogleHandler(bridge, cfg),
		Cart:    handlers.NewCartHandler(catalogService, orderService, cart.RulesFromConfig(cfg)),
		Order:   handlers.NewOrderHandler(orderService, pdf.NewService(cfg), logr),
		Catalog: handlers.NewCatalogHandler(catalogService),
		Pages:   handlers.NewPagesHandler(pagesService),
	}

	// Google Identity Services loads in the background; sign-in falls back
	// to the redirect flow until it is ready
	if cfg.Google.ClientID != "" {
		go func() {
			if err := bridge.Init(ctx); err != nil {
				logr.WithError(err).Warn("⚠️  Google sign-in unavailable, using redirect fallback")
			}
		}()
	}

	logr.Info("✅ All systems operational!")

	server := http.NewServer(cfg, logr, deps)

	go func() {
		if err := server.Start(); err != nil {
			logr.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logr.Info("👋 Shutting down gracefully...")
	stop()

	// Give server 30 seconds to shutdown gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logr.Errorf("Failed to shutdown HTTP server gracefully: %v", err)
	}

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			logr.WithError(err).Warn("Failed to close connection")
		}
	}

	logr.Info("✅ Server shutdown completed")
}

// purgeExpired sweeps stale client state rows until ctx is done
func purgeExpired(ctx context.Context, states *postgres.StateStore, log *logrus.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := states.PurgeExpired(ctx)
			if err != nil {
				log.WithError(err).Warn("Failed to purge expired client state")
				continue
			}
			if removed > 0 {
				log.WithField("removed", removed).Debug("Purged expired client state")
			}
		}
	}
}
