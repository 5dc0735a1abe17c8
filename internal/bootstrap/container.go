package bootstrap

import (
	"context"
	"fmt"
	"log"

	"ship-framework-be/internal/config"
	"ship-framework-be/internal/controller"
	"ship-framework-be/internal/handler"
	"ship-framework-be/internal/pkg/logger"
	"ship-framework-be/internal/pkg/mailer"
	"ship-framework-be/internal/pkg/serverutils"
	"ship-framework-be/internal/repository"
	"ship-framework-be/internal/repository/backup"
	"ship-framework-be/internal/repository/contract"
	"ship-framework-be/internal/repository/implementation"
	"ship-framework-be/internal/repository/memory"
	"ship-framework-be/internal/repository/redisstore"
	"ship-framework-be/internal/service"
	"ship-framework-be/internal/websocket"
	"ship-framework-be/pkg/coach"
	"ship-framework-be/pkg/database"
	"ship-framework-be/pkg/ideation"
	"ship-framework-be/pkg/ideation/templates"
	"ship-framework-be/pkg/llm/factory"

	pktNats "ship-framework-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	WorkspaceController controller.IWorkspaceController
	HealthController    controller.IHealthController
	SessionController   controller.ISessionController
	ArchiveController   controller.IArchiveController
	TemplateController  controller.ITemplateController
	SettingsController  controller.ISettingsController
	VoiceController     controller.IVoiceController
	StreamHandler       *handler.StreamHandler

	// Background services, started by Start
	WebSocketHub    *websocket.Hub
	StreamRelay     service.IStreamRelayService
	ActivityService *service.ActivityService
	AutoSave        service.IAutoSaveService

	Logger logger.ILogger

	natsConn   *nats.Conn
	natsSub    *pktNats.Subscriber
	pubSub     *gochannel.GoChannel
	redis      *redis.Client
	autosaveCh chan struct{}
}

// NewContainer wires every dependency from cfg. db is only required when
// STORE_DRIVER is "postgres"; pass nil to let the container open it.
func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.New(logger.Options{
		FilePath:   cfg.App.LogFilePath,
		Console:    true,
		Production: cfg.IsProduction(),
		Level:      cfg.App.LogLevel,
	})
	defs := ideation.Canonical()

	// 1. Storage
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opt)
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	var blobs contract.BlobRepository
	switch cfg.Storage.Driver {
	case "memory", "":
		blobs = memory.NewBlobRepository()
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("STORE_DRIVER=redis requires REDIS_URL")
		}
		blobs = redisstore.NewBlobRepository(rdb)
	case "postgres":
		if db == nil {
			opts := database.DefaultOptions()
			opts.LogSQL = !cfg.IsProduction()
			var err error
			if db, err = database.Open(cfg.Database.Connection, opts); err != nil {
				return nil, fmt.Errorf("open database: %w", err)
			}
		}
		blobs = implementation.NewBlobRepository(db)
	default:
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Storage.Driver)
	}
	log.Printf("[INFO] Using workspace store: %s", cfg.Storage.Driver)

	store := repository.NewWorkspaceStore(blobs, defs)
	registry := service.NewStateRegistry(store, defs, func() ([]ideation.ProjectTemplate, error) {
		return templates.Preloaded(defs)
	}, sysLogger)

	var backups contract.BackupRepository
	if cfg.Storage.S3Endpoint != "" {
		s3, err := backup.NewS3Store(backup.S3Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			Region:    cfg.Storage.S3Region,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			Bucket:    cfg.Storage.S3Bucket,
			UseSSL:    cfg.Storage.S3UseSSL,
		})
		if err != nil {
			log.Printf("[WARN] Failed to initialize S3 backups: %v", err)
		} else {
			backups = s3
		}
	}

	// 2. Messaging
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 256},
		watermill.NewStdLogger(false, false),
	)

	var (
		bus     service.EventPublisher
		natsSub *pktNats.Subscriber
		nc      *nats.Conn
	)
	if cfg.App.NatsURL != "" {
		conn, err := pktNats.Connect(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS: %v", err)
		} else {
			nc = conn
			if pub, err := pktNats.NewPublisher(nc); err != nil {
				log.Printf("[WARN] Failed to create NATS publisher: %v", err)
			} else {
				bus = pub
			}
			if sub, err := pktNats.NewSubscriber(nc); err != nil {
				log.Printf("[WARN] Failed to create NATS subscriber: %v", err)
			} else {
				natsSub = sub
			}
		}
	}

	var mail mailer.IEmailService
	if cfg.SMTP.Host != "" {
		mail = mailer.NewEmailService(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.SenderName)
	}

	// 3. AI
	provider, err := factory.NewLLMProvider(context.Background(), factory.Config{
		Provider: cfg.Ai.LLMProvider,
		Model:    cfg.Ai.LLMModel,
		APIKey:   cfg.Keys.GoogleGemini,
		BaseURL:  cfg.Ai.OllamaBaseURL,
	}, sysLogger)
	if err != nil {
		return nil, fmt.Errorf("initialize llm provider: %w", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)
	credentials := service.NewCredentialMonitor(provider, sysLogger)

	// 4. Delivery
	// socket traffic stays out of the console
	wsLogger := logger.New(logger.Options{FilePath: cfg.App.WebsocketLogPath, Level: cfg.App.LogLevel})
	wsHub := websocket.NewHub(rdb, wsLogger)
	tokens := serverutils.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// 5. Services
	events := service.NewDomainEvents(bus, sysLogger)
	streamPublisher := service.NewStreamPublisher(pubSub, sysLogger)
	autosave := service.NewAutoSaveService(registry, cfg.App.AutoSaveInterval, sysLogger)
	sessionService := service.NewSessionService(registry, coach.New(provider), credentials, streamPublisher, events, mail, sysLogger)
	archiveService := service.NewArchiveService(registry, events, backups, sysLogger)
	templateService := service.NewTemplateService(registry, events, sysLogger)
	settingsService := service.NewSettingsService(registry, events, sysLogger)
	voiceService := service.NewVoiceService(registry, sessionService, sysLogger)
	workspaceService := service.NewWorkspaceService(tokens, credentials, autosave, sysLogger)
	speechService, err := service.NewSpeechService(provider, credentials, cfg.Ai.Voice, cfg.Ai.SpeechCache, sysLogger)
	if err != nil {
		return nil, fmt.Errorf("initialize speech service: %w", err)
	}

	return &Container{
		WorkspaceController: controller.NewWorkspaceController(workspaceService, tokens),
		HealthController:    controller.NewHealthController(),
		SessionController:   controller.NewSessionController(sessionService, tokens),
		ArchiveController:   controller.NewArchiveController(archiveService, tokens),
		TemplateController:  controller.NewTemplateController(templateService, tokens),
		SettingsController:  controller.NewSettingsController(settingsService, tokens),
		VoiceController:     controller.NewVoiceController(voiceService, speechService, tokens),
		StreamHandler:       handler.NewStreamHandler(tokens, wsHub, wsLogger),

		WebSocketHub:    wsHub,
		StreamRelay:     service.NewStreamRelayService(pubSub, wsHub, sysLogger),
		ActivityService: service.NewActivityService(wsHub, sysLogger),
		AutoSave:        autosave,

		Logger: sysLogger,

		natsConn: nc,
		natsSub:  natsSub,
		pubSub:   pubSub,
		redis:    rdb,
	}, nil
}

// Start launches the background workers. They stop when ctx is cancelled.
func (c *Container) Start(ctx context.Context) error {
	go c.WebSocketHub.Run(ctx)

	if err := c.StreamRelay.Start(ctx); err != nil {
		return fmt.Errorf("start stream relay: %w", err)
	}
	if c.natsSub != nil {
		if err := c.ActivityService.Start(ctx, c.natsSub); err != nil {
			log.Printf("[WARN] Activity feed disabled: %v", err)
		}
	}

	c.autosaveCh = make(chan struct{})
	go func() {
		defer close(c.autosaveCh)
		c.AutoSave.Start(ctx)
	}()
	return nil
}

// Close waits for the final autosave flush and releases connections.
func (c *Container) Close() {
	if c.autosaveCh != nil {
		<-c.autosaveCh
	}
	if err := c.pubSub.Close(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to close stream pubsub", map[string]interface{}{"error": err.Error()})
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	_ = c.Logger.Sync()
}
