package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic-queue/config"
	deliveryHttp "clinic-queue/internal/delivery/http"
	"clinic-queue/internal/delivery/http/handler"
	"clinic-queue/internal/delivery/http/middleware"
	"clinic-queue/internal/delivery/ws"
	"clinic-queue/internal/domain/entity"
	"clinic-queue/internal/hub"
	"clinic-queue/internal/infrastructure/cache"
	"clinic-queue/internal/infrastructure/database"
	"clinic-queue/internal/repository"
	"clinic-queue/internal/service"
	"clinic-queue/internal/usecase"
	"clinic-queue/pkg/jwt"
	"clinic-queue/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Cron        *cron.Cron
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Run database migrations
	if err := database.RunMigrations(cfg.DB); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logrus.Info("Migrations applied successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	if err := app.initialize(cfg, db, redisClient); err != nil {
		return nil, err
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initialize wires repositories, services, usecases, handlers and the two
// daily reset jobs.
func (app *App) initialize(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) error {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	userRepo := repository.NewUserRepository()
	doctorRepo := repository.NewDoctorProfileRepository()
	apptRepo := repository.NewAppointmentRepository()
	auditRepo := repository.NewAuditLogRepository()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize hub and services
	eventHub := hub.New(log)
	auditService := service.NewAuditService(db, log, auditRepo)
	mailerService := service.NewMailerService(cfg.SMTP, log)
	tokenCounter := service.NewTokenCounterService(db, redisClient, log, apptRepo)
	queueEvents := service.NewQueueEventService(log, doctorRepo, apptRepo, eventHub)

	// Seed today's token counters before accepting traffic, so a flushed
	// Redis cannot hand out numbers the ledger already holds.
	primeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := tokenCounter.PrimeToday(primeCtx, entity.DateKey(time.Now())); err != nil {
		return fmt.Errorf("failed to prime token counters: %w", err)
	}
	logrus.Info("Token counters primed")

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, doctorRepo, jwtService, redisClient, auditService)
	bookingUsecase := usecase.NewBookingUsecase(db, log, apptRepo, doctorRepo, tokenCounter, queueEvents, mailerService, auditService, cfg.Queue.MaxTokenRetries)
	queueUsecase := usecase.NewQueueUsecase(db, log, doctorRepo, apptRepo, userRepo, queueEvents, auditService)
	doctorUsecase := usecase.NewDoctorUsecase(db, log, doctorRepo, apptRepo, auditService)
	auditUsecase := usecase.NewAuditUsecase(db, log, auditRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator)
	bookingHandler := handler.NewBookingHandler(bookingUsecase, customValidator)
	queueHandler := handler.NewQueueHandler(queueUsecase)
	doctorHandler := handler.NewDoctorHandler(doctorUsecase, bookingUsecase, customValidator)
	auditHandler := handler.NewAuditHandler(auditUsecase)
	wsHandler := ws.NewHandler(eventHub, log)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.App.CORSAllowedOrigins)

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, doctorHandler, bookingHandler, queueHandler, auditHandler, wsHandler, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Daily resets. Queue cursors and reward points run as two separate
	// jobs on the same schedule; a failure in one never blocks the other.
	app.Cron = cron.New()
	if _, err := app.Cron.AddFunc(cfg.Queue.ResetSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := queueUsecase.ResetAllQueues(ctx); err != nil {
			log.Errorf("Queue reset job failed: %+v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule queue reset: %w", err)
	}
	if _, err := app.Cron.AddFunc(cfg.Queue.ResetSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := queueUsecase.ResetDailyPoints(ctx); err != nil {
			log.Errorf("Points reset job failed: %+v", err)
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule points reset: %w", err)
	}

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	app.Server = &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}

	return nil
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	app.Cron.Start()

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	// Stop scheduling new jobs; running jobs finish on their own contexts
	app.Cron.Stop()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close closes all connections (database, redis, etc.)
func (app *App) Close() {
	// Close database connection
	if app.DB != nil {
		sqlDB, err := app.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}

	// Close Redis connection
	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
