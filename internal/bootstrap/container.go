package bootstrap

import (
	"context"
	"log"

	"practicehub-be/internal/config"
	"practicehub-be/internal/controller"
	"practicehub-be/internal/dto"
	"practicehub-be/internal/entity"
	"practicehub-be/internal/pkg/logger"
	"practicehub-be/internal/pkg/mailer"
	"practicehub-be/internal/repository/unitofwork"
	"practicehub-be/internal/service"
	"practicehub-be/internal/websocket"
	"practicehub-be/pkg/embedding"
	"practicehub-be/pkg/events"
	pkgNats "practicehub-be/pkg/nats"
	"practicehub-be/pkg/provider"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	SyncController   controller.ISyncController
	JobController    controller.IJobController
	UsageController  controller.IUsageController
	SearchController controller.ISearchController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	JobRunner       service.IJobRunnerService

	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// Embedding provider
	var embeddingProvider embedding.Provider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiApiKey, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: GEMINI (%s)", cfg.Ai.EmbeddingModel)
	}

	// External event sources behind the connector gateway
	registry := provider.NewRegistry()
	for _, name := range cfg.Provider.Services {
		if name == "" {
			continue
		}
		registry.Register(provider.NewRestSource(name, cfg.Provider.BaseURL))
	}

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub for live progress
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	publisherService := service.NewPublisherService(cfg.Jobs.ProgressTopicName, pubSub)

	guardrailService := service.NewGuardrailService(
		uowFactory,
		cfg.Ai.CreditsMonthly,
		cfg.Ai.RequestsPerMinute,
		cfg.Ai.DailyCostCapUsd,
		sysLogger,
	)

	embeddingCacheService := service.NewEmbeddingCacheService(
		uowFactory,
		embeddingProvider,
		guardrailService,
		sysLogger,
	)

	jobQueueService := service.NewJobQueueService(uowFactory, cfg.Jobs.MaxAttempts, natsPub)

	ingestionService := service.NewIngestionService(
		uowFactory,
		jobQueueService,
		embeddingCacheService,
		sysLogger,
	)

	sessionService := service.NewSyncSessionService(uowFactory, sysLogger)

	syncService := service.NewSyncService(
		sessionService,
		jobQueueService,
		ingestionService,
		publisherService,
		registry,
		natsPub,
		emailService,
		sysLogger,
	)

	jobRunner := service.NewJobRunnerService(jobQueueService, sysLogger)
	registerJobHandlers(jobRunner, ingestionService, syncService)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Jobs.ProgressTopicName,
		sessionService,
		wsHub,
		sysLogger,
	)

	// Audit trail of domain events; delivery state lives on the job and
	// session rows, so logging is all this consumer does.
	if natsSub != nil {
		err := natsSub.Subscribe("events.>", "practicehub-audit", func(ctx context.Context, evt events.Event) error {
			sysLogger.Info("events", "domain event", map[string]interface{}{
				"type":    evt.EventType(),
				"payload": evt.Payload(),
			})
			return nil
		})
		if err != nil {
			log.Printf("[WARN] Failed to subscribe to domain events: %v", err)
		}
	}

	// 4. Controllers
	return &Container{
		SyncController:   controller.NewSyncController(syncService, wsHub),
		JobController:    controller.NewJobController(jobQueueService, jobRunner, cfg.Jobs.SweepClaimLimit),
		UsageController:  controller.NewUsageController(guardrailService),
		SearchController: controller.NewSearchController(embeddingCacheService),

		ConsumerService: consumerService,
		JobRunner:       jobRunner,
		WebSocketHub:    wsHub,
		Logger:          sysLogger,
	}
}

// registerJobHandlers binds each job type to its pipeline stage. Payloads
// reaching a handler have already passed schema validation.
func registerJobHandlers(
	runner service.IJobRunnerService,
	ingestion service.IIngestionService,
	syncSvc service.ISyncService,
) {
	runner.RegisterHandler(entity.JobTypeNormalize, func(ctx context.Context, job *entity.Job) error {
		payload, err := dto.DecodeJobPayload(job.Type, job.Payload)
		if err != nil {
			return err
		}
		p := payload.(*dto.NormalizeJobPayload)
		_, err = ingestion.NormalizeEvent(ctx, job.UserId, p.RawEventId, job.BatchId)
		return err
	})

	runner.RegisterHandler(entity.JobTypeEmbed, func(ctx context.Context, job *entity.Job) error {
		payload, err := dto.DecodeJobPayload(job.Type, job.Payload)
		if err != nil {
			return err
		}
		p := payload.(*dto.EmbedJobPayload)
		_, err = ingestion.EmbedInteraction(ctx, job.UserId, p.OwnerType, p.OwnerId)
		return err
	})

	runner.RegisterHandler(entity.JobTypeSync, func(ctx context.Context, job *entity.Job) error {
		payload, err := dto.DecodeJobPayload(job.Type, job.Payload)
		if err != nil {
			return err
		}
		return syncSvc.ExecuteSync(ctx, job.UserId, payload.(*dto.SyncJobPayload))
	})

	runner.SetBatchFinalizer(syncSvc.FinalizeBatchIfDone)
}
