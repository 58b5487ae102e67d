package bootstrap

import (
	"log"

	"marknotes-be/internal/config"
	"marknotes-be/internal/controller"
	"marknotes-be/internal/pkg/logger"
	"marknotes-be/internal/repository/unitofwork"
	"marknotes-be/internal/service"
	"marknotes-be/pkg/render"
	"marknotes-be/pkg/searchindex"

	pktNats "marknotes-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	NoteController controller.INoteController
	AuthController controller.IAuthController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	Logger    logger.ILogger
	NoteIndex searchindex.NoteIndex
	PDFEngine *render.ChromePDFEngine
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	noteIndex, err := searchindex.Open(cfg.Search.IndexPath)
	if err != nil {
		log.Fatalf("[FATAL] Failed to open search index at %s: %v", cfg.Search.IndexPath, err)
	}

	renderer := render.NewRenderer()
	pdfEngine := render.NewChromePDFEngine(cfg.Render.PDFTimeout)

	// NATS is optional; the services treat a nil publisher as a no-op.
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		}
	}

	// 4. Services
	publisherService := service.NewPublisherService(pubSub, cfg.Search.IndexTopicName)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Search.IndexTopicName,
		uowFactory,
		noteIndex,
		sysLogger,
	)

	noteService := service.NewNoteService(
		uowFactory,
		publisherService,
		noteIndex,
		renderer,
		pdfEngine,
		natsPub,
		cfg.Notes.PageSize,
		sysLogger,
	)

	authService := service.NewAuthService(
		uowFactory,
		noteService,
		cfg.Auth.JwtSecret,
		cfg.Auth.TokenTTL,
		cfg.Auth.BcryptCost,
		sysLogger,
	)

	// 5. Controllers
	return &Container{
		NoteController: controller.NewNoteController(noteService),
		AuthController: controller.NewAuthController(authService),

		ConsumerService: consumerService,

		Logger:    sysLogger,
		NoteIndex: noteIndex,
		PDFEngine: pdfEngine,
	}
}
