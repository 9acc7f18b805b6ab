package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edustack/edustack-api/internal/config"
	"github.com/edustack/edustack-api/internal/database"
	"github.com/edustack/edustack-api/internal/handler"
	"github.com/edustack/edustack-api/internal/middleware"
	"github.com/edustack/edustack-api/internal/models"
	"github.com/edustack/edustack-api/internal/repository"
	"github.com/edustack/edustack-api/internal/router"
	"github.com/edustack/edustack-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Assignment{},
		&models.Submission{},
		&models.Report{},
		&models.ModerationAction{},
		&models.ActivityLog{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		log.Fatalf("failed to connect to nats: %v", err)
	}
	if natsConn != nil {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	reportRepo := repository.NewReportRepository(db)
	actionLogRepo := repository.NewActionLogRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)

	activityService := service.NewActivityService(activityLogRepo, validate, logger)
	eventService := service.NewEventService(natsConn, redisClient, cfg.EventChannel, logger)
	courseService := service.NewCourseService(courseRepo, validate, activityService, logger)
	assignmentService := service.NewAssignmentService(
		assignmentRepo,
		courseRepo,
		validate,
		activityService,
		eventService,
		redisClient,
		cfg.DueSoonCacheTTL,
		cfg.DueSoonHorizon,
		logger,
	)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, validate, activityService, eventService, logger)
	gradingService := service.NewGradingService(submissionRepo, validate, activityService, eventService, logger)
	moderationService := service.NewModerationService(reportRepo, actionLogRepo, submissionRepo, validate, activityService, eventService, logger)

	courseHandler := handler.NewCourseHandler(courseService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, gradingService, logger)
	moderationHandler := handler.NewModerationHandler(moderationService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		CourseHandler:     courseHandler,
		AssignmentHandler: assignmentHandler,
		SubmissionHandler: submissionHandler,
		ModerationHandler: moderationHandler,
		ActivityHandler:   activityHandler,
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
