package bootstrap

import (
	"context"
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"

	"ai-bizops-be/internal/config"
	"ai-bizops-be/internal/controller"
	"ai-bizops-be/internal/entity"
	"ai-bizops-be/internal/pkg/logger"
	"ai-bizops-be/internal/pkg/mailer"
	"ai-bizops-be/internal/repository"
	"ai-bizops-be/internal/service"
	"ai-bizops-be/pkg/agent"
	"ai-bizops-be/pkg/dataquery"
	"ai-bizops-be/pkg/embedding"
	"ai-bizops-be/pkg/llm/factory"
	pktNats "ai-bizops-be/pkg/nats"
	"ai-bizops-be/pkg/rag/retriever"
	"ai-bizops-be/pkg/rag/vectorstore"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController
	AgentController    controller.IAgentController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	DocumentService service.IDocumentService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	if err := db.AutoMigrate(
		&entity.Conversation{},
		&entity.Message{},
		&entity.Document{},
		&entity.DocumentChunk{},
		&entity.ScheduledJob{},
		&entity.Sale{},
		&entity.Customer{},
		&entity.Product{},
		&entity.SupportTicket{},
		&entity.Metric{},
	); err != nil {
		log.Printf("[WARN] AutoMigrate failed: %v", err)
	}

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

	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	var eventPublisher agent.EventPublisher
	if natsPub != nil {
		eventPublisher = natsPub
	}

	// 3. AI providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmProvider, err := factory.NewProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.GeminiAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval
	store := vectorstore.NewStore(embeddingProvider)
	ret := retriever.NewRetriever(store)

	// 5. Repositories
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	jobRepo := repository.NewJobRepository(db)

	// 6. Orchestrator
	executor := dataquery.NewGormExecutor(db)
	orchestrator := agent.NewOrchestrator(
		llmProvider,
		ret,
		executor,
		jobRepo,
		emailService,
		eventPublisher,
		sysLogger,
	)

	// 7. Services
	publisherService := service.NewPublisherService(cfg.App.ChunkPersistTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.ChunkPersistTopic,
		documentRepo,
		store,
	)

	chatService := service.NewChatService(orchestrator, conversationRepo, messageRepo, sysLogger)
	documentService := service.NewDocumentService(store, documentRepo, publisherService, embeddingProvider, sysLogger)
	agentService := service.NewAgentService(orchestrator)

	// Rebuild the in-memory index before serving traffic
	if err := documentService.RestoreIndex(context.Background()); err != nil {
		log.Printf("[WARN] Failed to restore vector index: %v", err)
	}

	// 8. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService, sysLogger),
		DocumentController: controller.NewDocumentController(documentService),
		AgentController:    controller.NewAgentController(agentService),
		ConsumerService:    consumerService,
		DocumentService:    documentService,
		Logger:             sysLogger,
	}
}
