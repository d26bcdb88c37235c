package router

import (
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/isomdurm/phenom-backend-sub000/internal/handlers"
	"github.com/isomdurm/phenom-backend-sub000/internal/middleware"
	"github.com/isomdurm/phenom-backend-sub000/internal/models"
	"github.com/isomdurm/phenom-backend-sub000/internal/notifications"
	"github.com/isomdurm/phenom-backend-sub000/internal/push"
	"github.com/isomdurm/phenom-backend-sub000/internal/repositories"
	"github.com/isomdurm/phenom-backend-sub000/pkg/background"
	"github.com/isomdurm/phenom-backend-sub000/pkg/config"
	"github.com/isomdurm/phenom-backend-sub000/pkg/phrases"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(
	e *echo.Echo,
	cfg *config.Config,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	firebaseAuthClient *auth.Client,
	channel push.Channel,
	tasks *background.Runner,
	log zerolog.Logger,
) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Notification{},
		&models.NotificationTarget{},
	)
	if err != nil {
		return err
	}
	log.Info().Msg("postgres auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	momentRepo := repositories.NewMongoMomentRepository(mgClient.Database("phenom"))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	targetRepo := repositories.NewPostgresTargetRepository(pgdb)

	// --- Notification core ---
	translator := phrases.NewTranslator()
	registry := notifications.NewTargetRegistry(targetRepo, channel, log)
	dispatcher := notifications.NewDispatcher(channel, notificationRepo, cfg.Notification.PublishTimeout, log)
	notificationSvc := notifications.NewService(
		notificationRepo,
		targetRepo,
		registry,
		dispatcher,
		translator,
		notifications.RateLimit{
			Threshold: cfg.Notification.PushThreshold,
			Window:    cfg.Notification.PushWindow,
		},
		cfg.Notification.PageSize,
		tasks,
		log,
	)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterProfileRoutes(api)

	// Moment routes
	momentHandler := handlers.NewMomentHandler(momentRepo, userRepo, notificationSvc)
	momentHandler.RegisterMomentRoutes(api)

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationSvc)
	followHandler.RegisterFollowRoutes(api)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, momentRepo, userRepo, notificationSvc)
	commentHandler.RegisterCommentRoutes(api)

	// Like routes
	likeHandler := handlers.NewLikeHandler(likeRepo, momentRepo, userRepo, notificationSvc)
	likeHandler.RegisterLikeRoutes(api)

	// Notification and device routes
	notificationHandler := handlers.NewNotificationHandler(notificationSvc, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	log.Info().Msg("all routes configured")
	return nil
}
