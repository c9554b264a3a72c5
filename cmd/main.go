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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"medorder/internal/config"
	"medorder/internal/document"
	httpapi "medorder/internal/http"
	"medorder/internal/logging"
	"medorder/internal/normalize"
	"medorder/internal/numbering"
	"medorder/internal/repository"
	"medorder/internal/seed"
	"medorder/internal/service"

	_ "medorder/docs"
)

// @title Medorder API
// @version 1.0
// @description Pharmacy order intake: catalog, customers, manual and voice-agent orders, invoices.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.Logger)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	repos, closeStore, err := openStore(cfg.Store, logger)
	if err != nil {
		logger.Fatal("open store", zap.String("driver", cfg.Store.Driver), zap.Error(err))
	}
	defer closeStore()

	if cfg.Store.SeedCSV != "" {
		n, err := seed.ImportFile(context.Background(), repos.Medicines, cfg.Store.SeedCSV, logger)
		if err != nil {
			logger.Fatal("seed catalog", zap.String("file", cfg.Store.SeedCSV), zap.Error(err))
		}
		logger.Info("catalog seeded", zap.Int("created", n))
	}

	numbers, err := numbering.New(cfg.Ordering.NumberingNode)
	if err != nil {
		logger.Fatal("numbering", zap.Error(err))
	}

	opts := []service.FulfillerOption{service.WithLogger(logger)}
	if cfg.Documents.Dir != "" {
		opts = append(opts, service.WithRenderer(document.NewFileRenderer(cfg.Documents.Dir, document.Shop{
			Name:    cfg.Documents.ShopName,
			Address: cfg.Documents.ShopAddress,
			Phone:   cfg.Documents.ShopPhone,
			GSTIN:   cfg.Documents.ShopGST,
		})))
	}
	fulfiller := service.NewFulfiller(repos, numbers, opts...)

	orch := service.NewOrchestrator(fulfiller, normalize.New(cfg.Ordering.CountryCode), repos.Orders, logger)
	medicinesSvc := service.NewMedicineService(repos.Medicines)
	ordersSvc := service.NewOrderService(repos, logger)

	srv := httpapi.NewServer(medicinesSvc, orch, ordersSvc, logger)

	httpServer := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", httpServer.Addr),
			zap.String("store", cfg.Store.Driver),
			zap.String("env", cfg.App.Env))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}
}

// openStore returns the repositories for the configured driver and a
// function releasing its resources.
func openStore(cfg config.StoreConfig, logger *zap.Logger) (repository.Repositories, func(), error) {
	if cfg.Driver != config.DriverPostgres {
		return repository.NewMemoryRepositories(), func() {}, nil
	}
	db, err := repository.OpenPostgres(cfg.DatabaseURL, cfg.MaxConns, logger)
	if err != nil {
		return repository.Repositories{}, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if cfg.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			closeDB()
			return repository.Repositories{}, nil, err
		}
		logger.Info("schema migrated")
	}
	return repository.NewGormRepositories(db), closeDB, nil
}
