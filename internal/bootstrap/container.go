package bootstrap

import (
	"log"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"

	"paper-brain-be/internal/config"
	"paper-brain-be/internal/controller"
	"paper-brain-be/internal/pkg/logger"
	"paper-brain-be/internal/repository/contract"
	"paper-brain-be/internal/repository/implementation"
	"paper-brain-be/internal/repository/memory"
	"paper-brain-be/internal/service"
	"paper-brain-be/pkg/arxiv"
	"paper-brain-be/pkg/brain"
	"paper-brain-be/pkg/chat"
	"paper-brain-be/pkg/embedding"
	"paper-brain-be/pkg/llm/factory"
	pkgNats "paper-brain-be/pkg/nats"
	"paper-brain-be/pkg/paper"
	"paper-brain-be/pkg/quota"
	"paper-brain-be/pkg/rag"
	"paper-brain-be/pkg/rank"
)

type Container struct {
	// Controllers
	SessionController controller.ISessionController
	BrainController   controller.IBrainController
	ChatController    controller.IChatController
	AdminController   controller.IAdminController

	// Exposed for the health endpoint
	SessionService service.ISessionService

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

// NewContainer wires the dependency graph. db may be nil; metrics
// persistence and the embedding cache are then disabled.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Persistence
	var metricsRepo contract.RequestMetricRepository
	var embeddingCache rank.EmbeddingCache
	if db != nil {
		metricsRepo = implementation.NewRequestMetricRepository(db)
		embeddingCache = service.NewPgEmbeddingCache(implementation.NewPaperEmbeddingRepository(db))
	} else {
		log.Println("[WARN] No database configured, metrics and embedding cache disabled")
	}

	sessionRepo := memory.NewSessionRepository(cfg.SessionTTL())

	// NATS (best-effort)
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	// 5. Pipelines
	arxivClient := arxiv.NewClient()
	arxivClient.QueryBaseURL = cfg.Arxiv.QueryBaseURL
	arxivClient.PDFBaseURL = cfg.Arxiv.PDFBaseURL

	// Pipeline traces get their own rotating file so LLM prompts and
	// ranking decisions do not flood the application log.
	pipelineLogger := log.New(&lumberjack.Logger{
		Filename:   cfg.App.PipelineLogPath,
		MaxSize:    50,
		MaxBackups: 3,
		MaxAge:     14,
	}, "", log.LstdFlags)
	ranker := rank.NewEngine(embeddingProvider, embeddingCache, pipelineLogger)
	ingester := paper.NewIngester(arxivClient, pipelineLogger)
	answerer := rag.NewAnswerer(llmProvider, ranker)

	searchPipeline := brain.NewSearchPipeline(llmProvider, arxivClient, ranker, pipelineLogger)
	loadPipeline := brain.NewLoadPipeline(ingester, pipelineLogger)
	chatPipeline := chat.NewPipeline(answerer, pipelineLogger)

	// 6. Services
	publisherService := service.NewPublisherService(cfg.Keys.MetricsTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Keys.MetricsTopic, metricsRepo)

	quotaCfg := quota.Config{
		MaxSearches:      cfg.Quota.MaxSearches,
		MaxChats:         cfg.Quota.MaxChats,
		UserCooldown:     time.Duration(cfg.Quota.CooldownMinutes) * time.Minute,
		ProviderCooldown: time.Duration(cfg.Quota.ProviderCooldownMinutes) * time.Minute,
	}

	sessionService := service.NewSessionService(
		sessionRepo,
		searchPipeline,
		loadPipeline,
		chatPipeline,
		quotaCfg,
		publisherService,
		natsPub,
		sysLogger,
	)
	adminService := service.NewAdminService(sysLogger, metricsRepo)

	// 7. Controllers
	return &Container{
		SessionController: controller.NewSessionController(sessionService),
		BrainController:   controller.NewBrainController(sessionService),
		ChatController:    controller.NewChatController(sessionService),
		AdminController:   controller.NewAdminController(adminService),

		SessionService:  sessionService,
		ConsumerService: consumerService,
	}
}
