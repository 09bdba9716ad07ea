package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"nightfall/api"
	"nightfall/config"
	"nightfall/database"
	"nightfall/events"
	"nightfall/repository"
	"nightfall/service"
	"nightfall/solana"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	if cfg.Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	log.Info("Starting nightfall settlement service...")

	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)
	auditRepo := repository.NewAuditLogRepository(db)
	rail := solana.NewMockRail()

	settlementService := service.NewSettlementService(uowFactory, rail, auditRepo, cfg)
	gameService := service.NewGameService(uowFactory, settlementService, cfg)
	userService := service.NewUserService(uowFactory)

	// Stand-in for the websocket relay: settlement outcomes are logged so
	// operators can follow them without the front-end attached
	eventBus.Subscribe(events.EventTypeGameCompleted, func(ctx context.Context, event events.Event) {
		e := event.(events.GameCompletedEvent)
		log.WithFields(log.Fields{
			"gameID": e.GameID,
			"winner": e.Winner,
			"pool":   e.TotalPool.SOL(),
		}).Info("game_completed broadcast")
	})
	eventBus.Subscribe(events.EventTypeRefundProcessed, func(ctx context.Context, event events.Event) {
		e := event.(events.RefundProcessedEvent)
		log.WithFields(log.Fields{
			"gameID":   e.GameID,
			"refunded": e.Refunded,
		}).Info("refund broadcast")
	})

	handlers := api.NewHandlers(gameService, userService, settlementService)
	router := api.NewRouter(handlers, cfg.Environment)

	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("HTTP server failed")
		}
	}()
	log.WithField("port", cfg.HTTPPort).Info("API server listening")

	metricsServer := api.StartMetricsServer(cfg.MetricsPort, db.Health)
	log.WithField("port", cfg.MetricsPort).Info("Metrics server listening")

	<-ctx.Done()

	log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("HTTP server shutdown error")
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("Metrics server shutdown error")
	}

	db.Close()
	log.Info("Shutdown completed")

	return nil
}
