package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"flex-designer-be/internal/config"
	"flex-designer-be/internal/controller"
	"flex-designer-be/internal/pkg/logger"
	"flex-designer-be/internal/repository/contract"
	"flex-designer-be/internal/repository/implementation"
	"flex-designer-be/internal/repository/memory"
	"flex-designer-be/internal/repository/redisstore"
	"flex-designer-be/internal/service"
	"flex-designer-be/internal/websocket"
	"flex-designer-be/pkg/database"
	"flex-designer-be/pkg/idgen"
	"flex-designer-be/pkg/llm/factory"
	pktNats "flex-designer-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	DesignController     controller.IDesignController
	GenerationController controller.IGenerationController

	// Background Services (Exposed for main.go to run)
	DesignService   service.IDesignService
	PreviewService  service.IPreviewService
	ActivityService service.IActivityService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger  logger.ILogger
	closers []func()
}

func NewContainer(cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	c := &Container{Logger: sysLogger}
	var err error

	// Redis relays preview frames between instances and can hold the designs.
	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		rdb, err = connectRedis(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v (preview stays local)", err)
			rdb = nil
		} else {
			c.closers = append(c.closers, func() { _ = rdb.Close() })
		}
	}

	// 2. Storage
	store, err := c.newKeyValueStore(cfg, rdb)
	if err != nil {
		return nil, err
	}
	designRepo := implementation.NewDesignRepository(store, cfg.Storage.DesignsKey)

	// 3. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	// NATS is optional; without it the activity feed is filled in-process.
	var natsPub *pktNats.Publisher
	var natsSub *pktNats.Subscriber
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
			natsPub = nil
		} else {
			c.closers = append(c.closers, natsPub.Close)
		}
		natsSub, err = pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
			natsSub = nil
		} else {
			c.closers = append(c.closers, natsSub.Close)
		}
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.SocketLogFilePath)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)

	// 4. Services
	llmProvider, err := factory.NewLLMProvider(factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		APIKey:   cfg.Keys.GoogleGemini,
		BaseURL:  cfg.Ai.OllamaBaseURL,
		Timeout:  time.Duration(cfg.Ai.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	var bus service.EventPublisher
	if natsPub != nil {
		bus = natsPub
	}
	publisherService := service.NewPublisherService(cfg.App.EventTopic, pubSub, bus, sysLogger)

	c.ActivityService = service.NewActivityService(natsSub, cfg.App.ActivityDurable, service.DefaultActivityCapacity, sysLogger)
	var localActivity service.IActivityService
	if natsSub == nil {
		localActivity = c.ActivityService
	}
	c.PreviewService = service.NewPreviewService(pubSub, cfg.App.EventTopic, c.WebSocketHub, localActivity, wsLogger)

	c.DesignService = service.NewDesignService(designRepo, publisherService, idgen.NewID, cfg.App.DefaultAltText, sysLogger)
	generatorService := service.NewGeneratorService(
		llmProvider,
		c.DesignService,
		cfg.Ai.LLMProvider == "gemini" || cfg.Ai.LLMProvider == "",
		cfg.Keys.GoogleGemini,
		sysLogger,
	)

	// 5. Controllers
	c.DocumentController = controller.NewDocumentController(c.DesignService, service.NewCatalogService(), c.WebSocketHub, wsLogger)
	c.DesignController = controller.NewDesignController(c.DesignService, c.ActivityService)
	c.GenerationController = controller.NewGenerationController(generatorService)

	return c, nil
}

// Start runs the background workers and loads the saved designs.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.PreviewService.Consume(ctx); err != nil {
		return fmt.Errorf("start preview consumer: %w", err)
	}
	if err := c.ActivityService.Start(); err != nil {
		c.Logger.Warn("Container", "Activity feed not subscribed", map[string]interface{}{"error": err.Error()})
	}
	return c.DesignService.Start(ctx)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func (c *Container) newKeyValueStore(cfg *config.Config, rdb *redis.Client) (contract.KeyValueStore, error) {
	switch cfg.Storage.Driver {
	case "memory", "":
		log.Printf("[INFO] Using storage driver: MEMORY (designs are lost on restart)")
		return memory.NewKeyValueStore(), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("storage driver redis needs a reachable REDIS_URL")
		}
		log.Printf("[INFO] Using storage driver: REDIS")
		return redisstore.NewKeyValueStore(rdb, cfg.Storage.KeyPrefix), nil
	case "postgres":
		db, err := database.NewGormDBFromDSN(cfg.Storage.Connection)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Printf("[INFO] Using storage driver: POSTGRES")
		return implementation.NewKeyValueStore(db), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}

func connectRedis(url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
