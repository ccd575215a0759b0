package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/supportiq/internal/api/http"
	"github.com/spec-kit/supportiq/internal/api/http/handlers"
	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/events"
	"github.com/spec-kit/supportiq/internal/observability"
	"github.com/spec-kit/supportiq/internal/persistence"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/repository"
	"github.com/spec-kit/supportiq/internal/search"
	"github.com/spec-kit/supportiq/internal/service"
	"github.com/spec-kit/supportiq/internal/urgency"
	"github.com/spec-kit/supportiq/internal/worker"
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

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	knowledgeRepo := repository.NewKnowledgeRepository(pool)
	resolutionRepo := repository.NewResolutionRepository(pool)
	promotionRepo := repository.NewPromotionRepository(pool)

	embedder := provider.NewHTTPEmbedder(cfg.Providers.EmbeddingURL, cfg.Providers.EmbeddingDimension, cfg.Providers.Timeout())
	sentiment := provider.NewHTTPSentimentClassifier(cfg.Providers.SentimentURL, cfg.Providers.Timeout())

	ranker, err := search.NewRanker(cfg.Search.SemanticWeight, cfg.Search.KeywordWeight, cfg.Search.TopK)
	if err != nil {
		logger.Fatal("invalid search weights", zap.Error(err))
	}
	engine := urgency.NewEngine(cfg.Urgency)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	searchService := service.NewSearchService(service.SearchDependencies{
		KnowledgeRepo: knowledgeRepo,
		Embedder:      embedder,
		Ranker:        ranker,
		Cache:         redis.ClientHandle(),
		CacheTTL:      cfg.Redis.EmbedCacheTTL(),
		Logger:        logger,
	})
	triageService := service.NewTriageService(service.TriageDependencies{
		TicketRepo: ticketRepo,
		Engine:     engine,
		Sentiment:  sentiment,
		Embedder:   embedder,
		Searcher:   searchService,
		Events:     dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	resolutionService := service.NewResolutionService(service.ResolutionDependencies{
		TicketRepo:     ticketRepo,
		ResolutionRepo: resolutionRepo,
		KnowledgeRepo:  knowledgeRepo,
		Events:         dispatcher,
		Logger:         logger,
	})
	promotionService := service.NewPromotionService(service.PromotionDependencies{
		KnowledgeRepo: knowledgeRepo,
		PromotionRepo: promotionRepo,
		Config:        cfg.Promotion,
		Events:        dispatcher,
		Metrics:       metrics,
		Logger:        logger,
	})
	knowledgeService := service.NewKnowledgeService(service.KnowledgeDependencies{
		KnowledgeRepo: knowledgeRepo,
		Embedder:      embedder,
		Logger:        logger,
	})

	notifications := service.NewNotificationService(cfg.Notification, logger)
	notifications.Register(dispatcher)

	sweeper := worker.NewSweepWorker(promotionService, cfg.Promotion.SweepInterval(), logger)
	sweeper.Start()
	defer sweeper.Stop()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:     handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Tickets:    handlers.NewTicketsHandler(triageService, resolutionService),
		Search:     handlers.NewSearchHandler(searchService),
		Knowledge:  handlers.NewKnowledgeHandler(knowledgeService),
		Promotions: handlers.NewPromotionsHandler(promotionService),
	})

	go func() {
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
