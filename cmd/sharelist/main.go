package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sharelist/sharelist/internal/access"
	"github.com/sharelist/sharelist/internal/api"
	"github.com/sharelist/sharelist/internal/classify"
	"github.com/sharelist/sharelist/internal/config"
	"github.com/sharelist/sharelist/internal/hub"
	"github.com/sharelist/sharelist/internal/repository/postgres"
	"github.com/sharelist/sharelist/internal/service"
	"github.com/sharelist/sharelist/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting sharelist...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	db, err := config.NewDatabase(ctx, cfg.DatabaseURL, l)
	if err != nil {
		l.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.Migrate(cfg.MigrationsPath); err != nil {
		l.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db.DB)
	listRepo := postgres.NewListRepository(db.DB)
	itemRepo := postgres.NewItemRepository(db.DB)
	shareRepo := postgres.NewShareRepository(db.DB)
	familyRepo := postgres.NewFamilyRepository(db.DB)
	categoryRepo := postgres.NewCategoryRepository(db.DB)
	itemNameRepo := postgres.NewItemNameRepository(db.DB)

	// Optional category lookup seed
	if cfg.CategorySeedPath != "" {
		if err := classify.SeedCategories(ctx, cfg.CategorySeedPath, categoryRepo, l); err != nil {
			l.Fatalf("Failed to seed categories: %v", err)
		}
	}

	resolver := access.NewResolver(listRepo, shareRepo, familyRepo)

	// Live update hub; joins are checked against the resolver.
	metrics := hub.NewMetrics(prometheus.DefaultRegisterer)
	h := hub.New(l, resolver, metrics)

	// Optional external classifier
	var classifier service.Classifier
	if cfg.ClassifierURL != "" {
		classifier = classify.NewClient(cfg.ClassifierURL, l)
		l.Infof("Classification service at %s", cfg.ClassifierURL)
	} else {
		l.Info("No classification service configured; items stay uncategorized")
	}

	// Service layer
	svc := service.New(service.Deps{
		Logger:      l,
		Resolver:    resolver,
		Broadcaster: h,
		Classifier:  classifier,
		Users:       userRepo,
		Lists:       listRepo,
		Items:       itemRepo,
		Shares:      shareRepo,
		Families:    familyRepo,
		Categories:  categoryRepo,
		ItemNames:   itemNameRepo,
	})

	apiServer := api.NewServer(svc, h, l)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: apiServer.Handler(),
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	l.Info("sharelist started successfully")

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	l.Info("Shutting down HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		l.Errorf("HTTP shutdown error: %v", err)
	}

	l.Info("Closing live connections...")
	if err := h.Shutdown(shutdownCtx); err != nil {
		l.Errorf("Hub shutdown error: %v", err)
	}

	l.Info("sharelist stopped")
}
