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

	"github.com/noah-isme/aegis-go-api/internal/config"
	"github.com/noah-isme/aegis-go-api/internal/database"
	"github.com/noah-isme/aegis-go-api/internal/handler"
	"github.com/noah-isme/aegis-go-api/internal/middleware"
	"github.com/noah-isme/aegis-go-api/internal/models"
	"github.com/noah-isme/aegis-go-api/internal/repository"
	"github.com/noah-isme/aegis-go-api/internal/router"
	"github.com/noah-isme/aegis-go-api/internal/service"
	"github.com/noah-isme/aegis-go-api/internal/session"
	cloud "github.com/noah-isme/aegis-go-api/pkg/cloudinary"
	"github.com/noah-isme/aegis-go-api/pkg/google"
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
		&models.Department{},
		&models.Grievance{},
		&models.GrievanceStatusHistory{},
		&models.GrievanceComment{},
		&models.GrievanceUpvote{},
		&models.AuditLog{},
		&models.Course{},
		&models.CourseEnrollment{},
		&models.AttendanceLog{},
		&models.AcademicResource{},
		&models.AcademicEvent{},
		&models.Opportunity{},
		&models.Application{},
		&models.PersonalTask{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Sessions live in Redis when one is configured so instances can
	// share traffic; otherwise they stay in process memory.
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, cfg.SessionTTL)
	} else {
		sessions = session.NewMemoryStore(cfg.SessionTTL)
		logger.Warn().Msg("redis url not set; sessions are held in memory")
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
	}, logger)
	if err != nil {
		log.Fatalf("failed to create cloudinary client: %v", err)
	}

	oauth, err := google.New(google.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	if err != nil {
		log.Fatalf("failed to create google oauth client: %v", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	grievanceRepo := repository.NewGrievanceRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	eventRepo := repository.NewEventRepository(db)
	opportunityRepo := repository.NewOpportunityRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	statsRepo := repository.NewAdminStatsRepository(db)

	authService := service.NewAuthService(userRepo, auditRepo, sessions, oauth, cfg.AllowedEmailDomains, logger)
	grievanceService := service.NewGrievanceService(grievanceRepo, userRepo, auditRepo, uploader, logger)
	academicService := service.NewAcademicService(courseRepo, attendanceRepo, resourceRepo, eventRepo, userRepo, logger)
	opportunityService := service.NewOpportunityService(opportunityRepo, userRepo, logger)
	taskService := service.NewTaskService(taskRepo, logger)
	adminService := service.NewAdminService(userRepo, departmentRepo, auditRepo, statsRepo, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    30 << 20,
	})

	middleware.Register(app, middleware.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		Logger:         logger,
	})
	app.Use(middleware.PartitionedCookies(cfg.SessionCookieName))

	router.Register(app, cfg, router.Dependencies{
		Session: middleware.SessionConfig{
			CookieName: cfg.SessionCookieName,
			Sessions:   sessions,
			Users:      userRepo,
		},
		AuthHandler:        handler.NewAuthHandler(authService, cfg, logger),
		GrievanceHandler:   handler.NewGrievanceHandler(grievanceService, validate, logger),
		AcademicHandler:    handler.NewAcademicHandler(academicService, validate, logger),
		OpportunityHandler: handler.NewOpportunityHandler(opportunityService, validate, logger),
		TaskHandler:        handler.NewTaskHandler(taskService, validate, logger),
		AdminHandler:       handler.NewAdminHandler(adminService, validate, logger),
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
