package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/guudweb/judicial-backend/internal/config"
	"github.com/guudweb/judicial-backend/internal/handler"
	"github.com/guudweb/judicial-backend/internal/middleware"
	"github.com/guudweb/judicial-backend/internal/pkg/i18n"
	"github.com/guudweb/judicial-backend/internal/pkg/rbac"
	"github.com/guudweb/judicial-backend/internal/repository"
	"github.com/guudweb/judicial-backend/internal/service"
	"github.com/guudweb/judicial-backend/internal/service/auth"
)

const (
	shutdownTimeout = 15 * time.Second
	maxBodySize     = 20 * 1024 * 1024
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	if err := i18n.LoadDefault(); err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	// Parse the permission table up front so a broken table fails at boot.
	rbac.Default()

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redis, err := config.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v (statistics will not be cached)", err)
		redis = nil
	} else {
		defer redis.Close()
	}

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to MinIO: %v (uploads will not work)", err)
	}

	repos := repository.NewRepositories(db)
	services, err := service.NewServices(repos, redis, minioClient, cfg)
	if err != nil {
		log.Fatalf("Failed to initialise services: %v", err)
	}
	handlers := handler.NewHandlers(services)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services.Dispatcher.Start()
	services.Auth.StartSessionCleanup(ctx, cfg.SessionCleanupInterval)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
		BodyLimit:    maxBodySize,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))
	app.Use(middleware.RequestInfo())

	setupRoutes(app, handlers, services.Auth)

	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("Failed to shut down server: %v", err)
	}
	services.Dispatcher.Close()
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	public := v1.Group("/public")
	public.Get("/news", h.Public.ListNews)
	public.Get("/news/:slug", h.Public.GetNews)

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/refresh", h.Auth.RefreshToken)
	authRoutes.Post("/logout", middleware.AuthRequired(authService), h.Auth.Logout)

	protected := v1.Group("", middleware.AuthRequired(authService))

	protected.Get("/users/me", h.User.GetProfile)
	protected.Get("/dashboard", h.Dashboard.GetStats)

	caseFiles := protected.Group("/case-files")
	caseFiles.Get("/", h.CaseFile.List)
	caseFiles.Get("/statistics", h.CaseFile.Statistics)
	caseFiles.Post("/", middleware.RequirePermission(rbac.CaseFilesCreate), h.CaseFile.Create)
	caseFiles.Get("/:id", h.CaseFile.Get)
	caseFiles.Put("/:id", h.CaseFile.Update)
	caseFiles.Delete("/:id", h.CaseFile.Delete)
	caseFiles.Get("/:id/history", h.CaseFile.History)
	caseFiles.Post("/:id/submit", h.CaseFile.Submit)
	caseFiles.Post("/:id/approve", h.CaseFile.Approve)
	caseFiles.Post("/:id/reject", h.CaseFile.Reject)
	caseFiles.Post("/:id/return", h.CaseFile.Return)
	caseFiles.Get("/:id/documents", h.CaseFile.ListDocuments)
	caseFiles.Post("/:id/documents", h.CaseFile.UploadDocument)
	caseFiles.Delete("/:id/documents/:documentId", h.CaseFile.DeleteDocument)

	news := protected.Group("/news")
	news.Get("/", h.News.List)
	news.Get("/statistics", h.News.Statistics)
	news.Post("/", middleware.RequirePermission(rbac.NewsCreate), h.News.Create)
	news.Post("/court-submission", middleware.RequirePermission(rbac.NewsCourtSubmission), h.News.CourtSubmission)
	news.Get("/:id", h.News.Get)
	news.Put("/:id", h.News.Update)
	news.Delete("/:id", h.News.Delete)
	news.Get("/:id/history", h.News.History)
	news.Post("/:id/submit", h.News.Submit)
	news.Post("/:id/approve-director", middleware.RequirePermission(rbac.NewsApproveDirector), h.News.ApproveDirector)
	news.Post("/:id/approve-president", middleware.RequirePermission(rbac.NewsApprovePresident), h.News.ApprovePresident)
	news.Post("/:id/reject", h.News.Reject)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.GetUnreadCount)
	notifications.Post("/mark-read", h.Notification.MarkManyAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)
	notifications.Get("/:id", h.Notification.Get)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Delete("/:id", h.Notification.Delete)

	audit := protected.Group("/audit", middleware.RequirePermission(rbac.AuditView))
	audit.Get("/recent", h.Audit.GetRecentActivities)
	audit.Get("/:entityType/:entityId", h.Audit.ListForEntity)
}
