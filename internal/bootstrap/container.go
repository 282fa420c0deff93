package bootstrap

import (
	"context"
	"log"
	"time"

	"contract-redline-be/internal/config"
	"contract-redline-be/internal/controller"
	"contract-redline-be/internal/pkg/logger"
	"contract-redline-be/internal/pkg/serverutils"
	"contract-redline-be/internal/repository/contract"
	"contract-redline-be/internal/repository/implementation"
	"contract-redline-be/internal/repository/memory"
	"contract-redline-be/internal/service"
	"contract-redline-be/pkg/embedding"
	"contract-redline-be/pkg/llm/factory"
	"contract-redline-be/pkg/playbook"
	"contract-redline-be/pkg/redline"

	pktNats "contract-redline-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ContractController controller.IContractController
	PersonaController  controller.IPersonaController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// Exposed for seeding and debug tooling.
	ClauseLibrary contract.ClauseLibraryRepository
	Embedding     embedding.EmbeddingProvider
	Playbook      *playbook.Playbook
}

// NewContainer wires the full dependency graph. db may be nil: the
// pipeline then runs purely off the built-in playbook library and the
// vector-search path is skipped.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
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
	redisUp := true
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v (embedding cache disabled)", err)
		redisUp = false
	}

	// 3. AI Providers
	embeddingProvider, err := embedding.NewProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.EmbeddingModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
	}
	log.Printf("[INFO] Using Embedding Provider: %s (%s)", cfg.Ai.EmbeddingProvider, cfg.Ai.EmbeddingModel)
	if redisUp {
		embeddingProvider = embedding.NewCachedProvider(embeddingProvider, rdb, 24*time.Hour)
		log.Printf("[INFO] Embedding cache enabled (Redis)")
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Playbook + Clause Library
	pb := playbook.Default()
	var clauseRepo contract.ClauseLibraryRepository
	var librarySearcher redline.LibrarySearcher
	if db != nil {
		clauseRepo = implementation.NewClauseLibraryRepository(db)
		overlayLibrary(pb, clauseRepo)
		librarySearcher = service.NewClauseLibrarySearcher(clauseRepo)
	}

	// 5. Pipeline
	matcher := redline.NewMatcher(embeddingProvider)
	classifier := redline.NewClassifier(matcher, pb, redline.ClassifierConfig{
		SemanticFloor: cfg.Redline.SemanticFloor,
		Searcher:      librarySearcher,
	})
	generator := redline.NewGenerator(llmProvider, pb, redline.GeneratorConfig{
		MaxConcurrent: cfg.Redline.MaxConcurrent,
		Timeout:       time.Duration(cfg.Redline.LLMTimeoutSeconds) * time.Second,
		Retries:       cfg.Redline.Retries,
		RetryDelay:    2 * time.Second,
	}, nil)

	// 6. Services
	personaRepo := memory.NewPersonaRepositoryWithDefaults(playbook.DefaultPersonas())
	personaService := service.NewPersonaService(personaRepo)

	contractService := service.NewContractService(
		matcher,
		classifier,
		generator,
		personaService,
		pubSub,
		sysLogger,
		cfg.Redline.MatchThreshold,
		cfg.Redline.GroundingRatio,
	)

	consumerService := service.NewConsumerService(pubSub, natsPub, sysLogger)

	// 7. Controllers
	return &Container{
		ContractController: controller.NewContractController(contractService),
		PersonaController:  controller.NewPersonaController(personaService, serverutils.NewJwtMiddleware(cfg.Auth.JwtSecret)),

		ConsumerService: consumerService,

		ClauseLibrary: clauseRepo,
		Embedding:     embeddingProvider,
		Playbook:      pb,
	}
}

// overlayLibrary replaces the built-in standard texts and keywords with
// whatever the database clause library holds. Categories absent from the
// database keep their built-in entries.
func overlayLibrary(pb *playbook.Playbook, repo contract.ClauseLibraryRepository) {
	clauses, err := repo.FindAll(context.Background())
	if err != nil {
		log.Printf("[WARN] Failed to load clause library: %v (using built-in playbook)", err)
		return
	}
	for _, clause := range clauses {
		if _, known := pb.Library[clause.Category]; !known {
			pb.Categories = append(pb.Categories, clause.Category)
		}
		pb.Library[clause.Category] = clause.StandardText
		if len(clause.Keywords) > 0 {
			pb.Keywords[clause.Category] = clause.Keywords
		}
	}
	if len(clauses) > 0 {
		log.Printf("[INFO] Clause library loaded from database (%d categories)", len(clauses))
	}
}
