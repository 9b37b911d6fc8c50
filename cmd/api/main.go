package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/support-copilot/ticket-api/internal/api/http/handlers"
	"github.com/support-copilot/ticket-api/internal/cache"
	"github.com/support-copilot/ticket-api/internal/config"
	"github.com/support-copilot/ticket-api/internal/domain"
	"github.com/support-copilot/ticket-api/internal/events"
	"github.com/support-copilot/ticket-api/internal/llm"
	"github.com/support-copilot/ticket-api/internal/observability"
	"github.com/support-copilot/ticket-api/internal/persistence"
	"github.com/support-copilot/ticket-api/internal/repository"
	"github.com/support-copilot/ticket-api/internal/service"

	httptransport "github.com/support-copilot/ticket-api/internal/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	dispatcher.Subscribe(events.TicketProcessed, func(_ context.Context, event events.Event) {
		fallback := len(event.Result.ModelsUsed) == 1 && event.Result.ModelsUsed[0] == domain.FallbackModelName
		metrics.RecordClassification(string(event.Result.Category), fallback)
	})

	ticketRepo := repository.NewTicketRepository(pg.PoolHandle())
	modelClient := llm.NewClient(cfg.Groq)
	resultCache := cache.NewClassificationCache(redis, cfg.Cache.TTL, logger)

	processingService := service.NewProcessingService(service.Dependencies{
		TicketRepo: ticketRepo,
		Model:      modelClient,
		Cache:      resultCache,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, httptransport.MiddlewareConfig{
		Logger:      logger,
		Metrics:     metrics,
		Timeout:     cfg.App.RequestTimeout(),
		CORSOrigins: cfg.App.CORSOrigins,
		Development: cfg.App.IsDevelopment(),
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, processingService),
		Tickets: handlers.NewTicketsHandler(processingService, ticketRepo),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
