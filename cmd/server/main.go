package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/config"
	"github.com/mamadbah2/sitestock/internal/repository"
	"github.com/mamadbah2/sitestock/internal/repository/cache"
	"github.com/mamadbah2/sitestock/internal/repository/mongodb"
	"github.com/mamadbah2/sitestock/internal/repository/sheets"
	"github.com/mamadbah2/sitestock/internal/scheduler"
	"github.com/mamadbah2/sitestock/internal/server/handlers"
	"github.com/mamadbah2/sitestock/internal/server/router"
	commandsvc "github.com/mamadbah2/sitestock/internal/service/commands"
	reportingsvc "github.com/mamadbah2/sitestock/internal/service/reporting"
	stocksvc "github.com/mamadbah2/sitestock/internal/service/stock"
	whatsappsvc "github.com/mamadbah2/sitestock/internal/service/whatsapp"
	whatsappclient "github.com/mamadbah2/sitestock/pkg/clients/whatsapp"
	"github.com/mamadbah2/sitestock/pkg/logger"
)

func main() {
	// Quantities are JSON numbers on the wire.
	decimal.MarshalJSONWithoutQuotes = true

	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.Env, cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	mongoRepo, err := mongodb.NewMongoDBRepository(startupCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var (
		catalog repository.MaterialCatalog = mongoRepo
		seen    whatsappsvc.MessageLog
	)
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewClient(startupCtx, cfg.Redis)
		if err != nil {
			baseLogger.Warn("redis unavailable, material cache disabled", zap.Error(err))
		} else {
			defer func() { _ = redisClient.Close() }()
			catalog = cache.NewMaterialCache(mongoRepo, redisClient, cfg.Redis.TTL, baseLogger.Named("repo.cache"))
			seen = cache.NewMessageLog(redisClient, 24*time.Hour)
			baseLogger.Info("material cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.Enabled() {
		repo, err := sheets.NewGoogleSheetRepository(startupCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		sheetsRepo = repo
	}

	stockSvc := stocksvc.NewService(mongoRepo, mongoRepo, catalog, baseLogger.Named("svc.stock"))
	reportingSvc := reportingsvc.NewService(stockSvc, mongoRepo, catalog, sheetsRepo, cfg.Digest.LowStockThreshold, baseLogger.Named("svc.reporting"))

	var (
		webhookHandler *handlers.WebhookHandler
		sender         scheduler.Sender
	)
	if cfg.WhatsApp.Enabled() {
		dispatcher := commandsvc.NewService(stockSvc, baseLogger.Named("svc.commands"))
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsappclient.NewClient(cfg.WhatsApp), dispatcher, seen, baseLogger.Named("svc.whatsapp"))
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
		sender = messagingSvc
	} else {
		baseLogger.Warn("whatsapp token missing, chat commands and digest delivery disabled")
	}

	stockHandler := handlers.NewStockHandler(stockSvc, reportingSvc, baseLogger.Named("handlers.stock"))
	engine := router.New(cfg.Server, stockHandler, webhookHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Digest, reportingSvc, sender, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
