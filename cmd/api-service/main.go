package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/handler"
	"github.com/cuongbtq/jobboard-be/internal/api/router"
	"github.com/cuongbtq/jobboard-be/internal/api/service"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/auth"
	"github.com/cuongbtq/jobboard-be/internal/config"
	"github.com/cuongbtq/jobboard-be/internal/realtime"
	"github.com/cuongbtq/jobboard-be/shared/logger"
	"github.com/cuongbtq/jobboard-be/shared/postgresql"
	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
	"github.com/cuongbtq/jobboard-be/shared/sqlite"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	db, closeDB, err := initDatabase(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer closeDB()

	store := storage.NewStorage(db)
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(context.Background()); err != nil {
			return err
		}
		appLogger.Info("Database schema is up to date")
	}

	// RabbitMQ is optional; without it notifications are only pushed live.
	var publisher service.EventPublisher
	var rabbitClient *rabbitmq.Client
	if cfg.RabbitMQ.Host != "" {
		rabbitClient, err = initRabbitMQ(&cfg.RabbitMQ, appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()
		publisher = rabbitClient
	} else {
		appLogger.Warn("RabbitMQ is not configured, notification events will not be published")
	}

	hub := realtime.NewHub()
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)

	services := service.New(service.Dependencies{
		Logger:          appLogger.Logger,
		Storage:         store,
		Publisher:       publisher,
		Live:            hub,
		DispatchTimeout: cfg.Notifications.DispatchTimeout,
	}, tokens)

	authLimiter := newLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst, cfg.RateLimit.CleanupInterval)
	messageLimiter := newLimiter(cfg.RateLimit.MessagesPerMinute, cfg.RateLimit.MessagesBurst, cfg.RateLimit.CleanupInterval)
	defer authLimiter.Stop()
	defer messageLimiter.Stop()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	lifetime, closeSockets := context.WithCancel(context.Background())
	defer closeSockets()

	r := router.SetupRouter(&handler.Dependencies{
		Logger:   appLogger.Logger,
		Services: services,
		Hub:      hub,
		Upgrader: router.NewUpgrader(cfg.CORS.AllowedOrigins),
		Lifetime: lifetime,
	}, router.Options{
		Tokens:         tokens,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AuthLimiter:    authLimiter,
		MessageLimiter: messageLimiter,
		Ready: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				return err
			}
			if rabbitClient != nil && !rabbitClient.IsConnected() {
				return errors.New("rabbitmq channel is closed")
			}
			return nil
		},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	// Shutdown does not track hijacked websocket connections.
	srv.RegisterOnShutdown(closeSockets)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running", slog.String("address", addr))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownTimeout := cfg.Server.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	// Let committed notifications finish their live push and publish.
	services.Notifications.Wait()

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initDatabase opens PostgreSQL or SQLite according to cfg.Driver
func initDatabase(cfg *config.DatabaseConfig, logger *slog.Logger) (*sqlx.DB, func() error, error) {
	if cfg.Driver == config.DriverSQLite {
		db, err := sqlite.Open(cfg.Path, logger)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}

	client, err := postgresql.NewClient(&postgresql.Config{
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return client.DB(), client.Close, nil
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}, logger)
}

// newLimiter returns nil, which disables limiting, for a zero budget
func newLimiter(perMinute, burst int, cleanup time.Duration) *router.LimiterStore {
	if perMinute <= 0 {
		return nil
	}
	return router.NewLimiterStore(perMinute, burst, cleanup)
}
