package main

import (
	"context"
	"os"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/isomdurm/phenom-backend-sub000/internal/push"
	"github.com/isomdurm/phenom-backend-sub000/internal/router"
	"github.com/isomdurm/phenom-backend-sub000/pkg/background"
	"github.com/isomdurm/phenom-backend-sub000/pkg/config"
	"github.com/isomdurm/phenom-backend-sub000/pkg/firebase"
)

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg := config.Load()
	if cfg.Env == "development" {
		log = log.Level(zerolog.DebugLevel)
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize databases")
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseAuth, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize Firebase")
	}
	log.Info().Msg("firebase auth client initialized")

	// Initialize the push channel against SNS
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load AWS configuration")
	}
	channel := push.NewSNSChannel(awsCfg, cfg.SNSApplicationARN)

	// Background task runner for notification fan-out
	tasks := background.NewRunner(log)

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	if err := router.SetupRoutes(e, cfg, db.Postgres, db.Mongo, firebaseAuth, channel, tasks, log); err != nil {
		log.Fatal().Err(err).Msg("failed to set up routes")
	}

	// Start server
	if err := e.Start(":" + cfg.Port); err != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if werr := tasks.Shutdown(shutdownCtx); werr != nil {
			log.Warn().Err(werr).Msg("background tasks did not drain before exit")
		}
		log.Fatal().Err(err).Msg("server stopped")
	}
}
