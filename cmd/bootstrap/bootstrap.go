package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-appointment-saas/config"
	deliveryHttp "go-appointment-saas/internal/delivery/http"
	"go-appointment-saas/internal/delivery/http/handler"
	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/infrastructure/cache"
	"go-appointment-saas/internal/infrastructure/calendar"
	"go-appointment-saas/internal/infrastructure/database"
	"go-appointment-saas/internal/infrastructure/mail"
	"go-appointment-saas/internal/infrastructure/messaging"
	"go-appointment-saas/internal/infrastructure/payment"
	"go-appointment-saas/internal/infrastructure/telemetry"
	"go-appointment-saas/internal/repository"
	"go-appointment-saas/internal/service"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/jwt"
	"go-appointment-saas/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// App holds all dependencies for the application
type App struct {
	Config      *config.Config
	DB          *gorm.DB
	RedisClient *redis.Client
	Server      *http.Server
	Log         *logrus.Logger

	publisher       gateway.EventPublisher
	relay           *service.OutboxRelay
	shutdownTracing func(context.Context) error
}

// Infrastructure is everything the request graph needs from outside the
// process. Tests swap in fakes.
type Infrastructure struct {
	Tokens      gateway.TokenStore
	Locker      gateway.SlotLocker
	Limiter     middleware.Limiter
	Mailer      gateway.Mailer
	Calendar    gateway.CalendarClient
	Payments    gateway.PaymentGateway
	ReadyChecks []handler.ReadyCheck
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	log := setupLogger(cfg.App.LogLevel)
	app.Log = log
	log.Info("Configuration loaded successfully")

	shutdownTracing, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	app.shutdownTracing = shutdownTracing

	// Initialize database
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	app.DB = db
	log.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	log.Info("Redis connected successfully")

	infra := Infrastructure{
		Tokens:   cache.NewRedisTokenStore(redisClient),
		Locker:   cache.NewRedisSlotLocker(redisClient, log),
		Mailer:   newMailer(cfg.Mail, log),
		Calendar: newCalendar(cfg.Calendar, log),
		Payments: newPayments(cfg.Payment, log),
		ReadyChecks: []handler.ReadyCheck{
			{Name: "database", Check: func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			}},
			{Name: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}},
		},
	}
	if cfg.RateLimit.Enabled {
		infra.Limiter = cache.NewRedisRateLimiter(redisClient, cfg.RateLimit.Limit, cfg.RateLimit.Window, "ratelimit")
	}

	// Domain events leave through the outbox
	if len(cfg.Kafka.Brokers) > 0 {
		app.publisher = messaging.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix)
		log.Infof("Publishing domain events to Kafka brokers %v", cfg.Kafka.Brokers)
	} else {
		app.publisher = messaging.NewNoopPublisher(log)
		log.Info("KAFKA_BROKERS not set, domain events stay in the outbox log only")
	}
	app.relay = service.NewOutboxRelay(db, repository.NewOutboxRepository(), app.publisher, log, cfg.Kafka.RelayEvery, cfg.Kafka.BatchSize)

	app.Server = &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.App.Port),
		Handler:           NewHandler(cfg, db, log, infra),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger(level string) *logrus.Logger {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
	return logrus.StandardLogger()
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DB.Driver == "sqlite" {
		db, err := database.NewSQLiteConnection(cfg.DB.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
		return db, nil
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := database.RunMigrations(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}

func newMailer(cfg config.MailConfig, log *logrus.Logger) gateway.Mailer {
	if !cfg.Enabled() {
		log.Info("SMTP_HOST not set, emails are logged instead of sent")
		return mail.NewNoopMailer(log)
	}
	return mail.NewSMTPMailer(cfg)
}

func newCalendar(cfg config.CalendarConfig, log *logrus.Logger) gateway.CalendarClient {
	if cfg.WebhookURL == "" {
		log.Info("CALENDAR_WEBHOOK_URL not set, calendar sync disabled")
		return calendar.NewNoopClient()
	}
	return calendar.NewWebhookClient(cfg)
}

func newPayments(cfg config.PaymentConfig, log *logrus.Logger) gateway.PaymentGateway {
	byMethod := map[string]gateway.PaymentGateway{
		gateway.PaymentMethodCash: payment.NewManualGateway(),
	}
	if cfg.StripeSecretKey != "" {
		byMethod[gateway.PaymentMethodCard] = payment.NewStripeGateway(cfg.StripeSecretKey, cfg.Currency)
	} else {
		log.Info("STRIPE_SECRET_KEY not set, card payments disabled")
	}
	return payment.NewRouter(byMethod)
}

// NewHandler wires repositories, services, usecases and handlers into the
// HTTP handler.
func NewHandler(cfg *config.Config, db *gorm.DB, log *logrus.Logger, infra Infrastructure) http.Handler {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize repositories
	tenantRepo := repository.NewTenantRepository()
	userRepo := repository.NewUserRepository()
	serviceRepo := repository.NewServiceRepository()
	hoursRepo := repository.NewWorkingHoursRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	recurringRepo := repository.NewRecurringAppointmentRepository()
	waitlistRepo := repository.NewWaitlistRepository()
	notificationRepo := repository.NewNotificationRepository()
	auditLogRepo := repository.NewAuditLogRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Initialize services
	events := service.NewEventRecorder(outboxRepo)
	auditService := service.NewAuditService(log, auditLogRepo)
	notifier := service.NewNotifier(db, log, notificationRepo, infra.Mailer)
	matcher := service.NewWaitlistMatcher(db, log, waitlistRepo, events, notifier)
	calendarSync := service.NewCalendarSync(db, log, infra.Calendar, appointmentRepo)
	engine := usecase.NewBookingEngine(db, log, appointmentRepo, userRepo, serviceRepo, hoursRepo,
		infra.Locker, cfg.Booking.LockTTL, auditService, events, notifier, calendarSync)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(db, log, tenantRepo, userRepo, jwtService, infra.Tokens)
	tenantUsecase := usecase.NewTenantUsecase(db, log, tenantRepo, userRepo, serviceRepo, auditService, infra.Tokens, cfg.Booking.WaitlistExpiryDays)
	serviceUsecase := usecase.NewServiceUsecase(db, log, serviceRepo, appointmentRepo, auditService)
	hoursUsecase := usecase.NewWorkingHoursUsecase(db, log, tenantRepo, userRepo, hoursRepo, auditService)
	appointmentUsecase := usecase.NewAppointmentUsecase(db, log, engine, tenantRepo, appointmentRepo, matcher, infra.Payments, cfg.Payment.Currency, cfg.Booking.SlotStep)
	recurringUsecase := usecase.NewRecurringUsecase(db, log, engine, tenantRepo, recurringRepo, appointmentRepo, matcher)
	waitlistUsecase := usecase.NewWaitlistUsecase(db, log, engine, tenantRepo, waitlistRepo, matcher, cfg.Booking.WaitlistExpiryDays)
	notificationUsecase := usecase.NewNotificationUsecase(db, log, notificationRepo)
	contactUsecase := usecase.NewContactUsecase(db, log, tenantRepo, userRepo, notifier)
	auditLogUsecase := usecase.NewAuditLogUsecase(db, log, auditLogRepo)

	// Initialize handlers
	handlers := deliveryHttp.Handlers{
		Auth:         handler.NewAuthHandler(authUsecase, customValidator),
		Tenant:       handler.NewTenantHandler(tenantUsecase, customValidator),
		Service:      handler.NewServiceHandler(serviceUsecase, hoursUsecase, customValidator),
		Appointment:  handler.NewAppointmentHandler(appointmentUsecase, customValidator),
		Recurring:    handler.NewRecurringHandler(recurringUsecase, customValidator),
		Waitlist:     handler.NewWaitlistHandler(waitlistUsecase, customValidator),
		Notification: handler.NewNotificationHandler(notificationUsecase),
		Contact:      handler.NewContactHandler(contactUsecase, customValidator),
		AuditLog:     handler.NewAuditLogHandler(auditLogUsecase),
		Health:       handler.NewHealthHandler(infra.ReadyChecks...),
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, infra.Tokens, log)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS.AllowedOrigins)
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(infra.Limiter, log)

	// Initialize router
	router := deliveryHttp.NewRouter(handlers, authMiddleware, corsMiddleware, rateLimitMiddleware, log, deliveryHttp.Options{
		ServiceName:  cfg.App.Name,
		MaxBodyBytes: cfg.App.MaxBodyBytes,
		Timeout:      cfg.App.RequestTimeout,
	})
	return router.Setup()
}

// Run starts the HTTP server and handles graceful shutdown
func (app *App) Run() {
	app.relay.Start()

	// Start server in goroutine
	go func() {
		app.Log.Infof("Server starting on port %s", app.Config.App.Port)
		app.Log.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Log.Fatalf("Failed to start server: %v", err)
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

	app.Log.Info("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		app.Log.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close(ctx)

	app.Log.Info("Server shutdown complete")
}

// Close stops background work and closes all connections
func (app *App) Close(ctx context.Context) {
	if app.relay != nil {
		app.relay.Stop()
	}
	if app.publisher != nil {
		if err := app.publisher.Close(); err != nil {
			app.Log.Warnf("Failed to close event publisher: %v", err)
		}
	}
	if app.shutdownTracing != nil {
		if err := app.shutdownTracing(ctx); err != nil {
			app.Log.Warnf("Failed to flush traces: %v", err)
		}
	}

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
