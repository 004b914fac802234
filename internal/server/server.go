package server

import (
	"time"

	"retailorders/internal/config"
	"retailorders/internal/events"
	"retailorders/internal/handlers"
	"retailorders/internal/imageprocessor"
	"retailorders/internal/mailer"
	"retailorders/internal/middleware"
	"retailorders/internal/partner"
	"retailorders/internal/repositories"
	"retailorders/internal/services"
	"retailorders/internal/validation"
	"retailorders/internal/worker"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Server bundles the HTTP app with the pieces that run next to it.
type Server struct {
	App        *fiber.App
	Dispatcher *worker.Dispatcher
	Auth       *services.AuthService
}

// Options tweaks New for tests.
type Options struct {
	// Fetcher replaces the HTTP feed fetcher.
	Fetcher services.FeedFetcher
	// Quiet disables request logging.
	Quiet bool
}

// New wires repositories, services, handlers and the event dispatcher.
// Events published by the services go to publisher; whoever consumes them
// should hand them to Dispatcher.Handle.
func New(cfg *config.Config, db *gorm.DB, publisher events.Publisher, sender mailer.Sender, opts Options) *Server {
	// --- Repositories ---
	userRepo := repositories.NewGORMUserRepository(db)
	tokenRepo := repositories.NewGORMTokenRepository(db)
	contactRepo := repositories.NewGORMContactRepository(db)
	catalogRepo := repositories.NewGORMCatalogRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	// --- Services ---
	validate := validation.New()
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = partner.NewFetcher(cfg.FetchTimeout)
	}

	authService := services.NewAuthService(userRepo, tokenRepo, publisher, validate, services.AuthOptions{
		JWTSecret:     cfg.JWTSecret,
		TokenTTL:      cfg.TokenTTL,
		ResetTokenTTL: cfg.ResetTokenTTL,
	})
	avatarService := services.NewAvatarService(userRepo, publisher, imageprocessor.NewProcessor(0), cfg.MediaDir)
	contactService := services.NewContactService(contactRepo, validate)
	catalogService := services.NewCatalogService(catalogRepo)
	basketService := services.NewBasketService(orderRepo, catalogRepo, validate)
	orderService := services.NewOrderService(orderRepo, publisher)
	partnerService := services.NewPartnerService(catalogRepo, fetcher, publisher, validate, cfg.ExportDir)
	notificationService := services.NewNotificationService(userRepo, tokenRepo, orderRepo, sender)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{
		AppName:      "retailorders",
		ErrorHandler: handlers.ErrorHandler,
	})
	app.Use(recover.New())
	if !opts.Quiet {
		app.Use(fiberlogger.New())
	}

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	auth := middleware.AuthRequired(authService)

	handlers.NewUserHandler(authService, avatarService).RegisterRoutes(apiV1, auth)
	handlers.NewContactHandler(contactService).RegisterRoutes(apiV1, auth)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1)
	handlers.NewBasketHandler(basketService).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, auth)
	handlers.NewPartnerHandler(partnerService, catalogService).RegisterRoutes(apiV1, auth)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		database := "connected"
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			database = "unreachable"
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": database,
		})
	})

	return &Server{
		App:        app,
		Dispatcher: worker.New(notificationService, avatarService, partnerService),
		Auth:       authService,
	}
}
