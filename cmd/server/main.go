package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/chatforge/wagateway/internal/config"
	"github.com/chatforge/wagateway/internal/repository/mongodb"
	"github.com/chatforge/wagateway/internal/repository/sheets"
	"github.com/chatforge/wagateway/internal/scheduler"
	"github.com/chatforge/wagateway/internal/server/handlers"
	"github.com/chatforge/wagateway/internal/server/router"
	onboardingsvc "github.com/chatforge/wagateway/internal/service/onboarding"
	"github.com/chatforge/wagateway/internal/service/reply"
	webhooksvc "github.com/chatforge/wagateway/internal/service/webhook"
	"github.com/chatforge/wagateway/internal/signature"
	"github.com/chatforge/wagateway/pkg/clients/graph"
	"github.com/chatforge/wagateway/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	repo, err := mongodb.NewRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := repo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var leadExporter webhooksvc.LeadExporter
	if cfg.LeadExportEnabled() {
		exporter, err := sheets.NewLeadExporter(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init lead exporter", zap.Error(err))
		}
		leadExporter = exporter
		baseLogger.Info("lead export to google sheets enabled")
	} else {
		baseLogger.Info("lead export disabled, sheets settings missing")
	}

	if cfg.Webhook.AppSecret == "" {
		baseLogger.Warn("FACEBOOK_APP_SECRET missing, webhook signature verification disabled")
	}

	graphClient := graph.NewClient(cfg.Graph)
	verifier := signature.NewVerifier(cfg.Webhook.AppSecret)

	dispatcher := webhooksvc.NewDispatcher(cfg, repo, graphClient, reply.NewStaticGenerator(), leadExporter, baseLogger.Named("svc.webhook"))
	onboarder := onboardingsvc.NewService(cfg, graphClient, repo, baseLogger.Named("svc.onboarding"))

	webhookHandler := handlers.NewWebhookHandler(dispatcher, verifier, baseLogger.Named("handlers.webhook"))
	onboardingHandler := handlers.NewOnboardingHandler(onboarder, baseLogger.Named("handlers.onboarding"))
	engine := router.New(webhookHandler, onboardingHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, repo, graphClient, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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
