package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mongoadapter "github.com/BerenSaglam41/BackendMarket-sub001/internal/adapter/mongo"
	natsadapter "github.com/BerenSaglam41/BackendMarket-sub001/internal/adapter/nats"
	pgadapter "github.com/BerenSaglam41/BackendMarket-sub001/internal/adapter/postgres"
	redisadapter "github.com/BerenSaglam41/BackendMarket-sub001/internal/adapter/redis"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/app/config"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/logger"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/metrics"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/platform/tracer"
	httpport "github.com/BerenSaglam41/BackendMarket-sub001/internal/port/http"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/repository"
	"github.com/BerenSaglam41/BackendMarket-sub001/internal/service"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const metricsNamespace = "marketplace"

type App struct {
	cfg            *config.Config
	log            logger.Logger
	server         *httpport.Server
	metricsServer  *http.Server
	metrics        *metrics.Manager
	tracerProvider *sdktrace.TracerProvider
	db             *sqlx.DB
	mongoClient    *mongo.Client
	redisClient    *redis.Client
	natsConn       *nats.Conn
}

func New(cfg *config.Config) (*App, error) {
	ctx := context.Background()

	appLogger := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		TimeFormat: cfg.Logger.TimeFormat,
	})
	appLogger.Info("Logger initialized")
	appLogger.Infof("Configuration loaded: Env=%s, HTTP Port: %s", cfg.Env, cfg.HTTPServer.Port)

	a := &App{cfg: cfg, log: appLogger}

	a.tracerProvider = tracer.InitTracer(ctx, cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, appLogger)
	a.metrics = metrics.NewManager(metricsNamespace)

	appLogger.Info("Initializing Postgres...")
	db, err := pgadapter.NewDB(ctx, cfg.Postgres)
	if err != nil {
		return nil, a.abort(fmt.Errorf("failed to initialize Postgres: %w", err))
	}
	a.db = db
	if cfg.Postgres.MigrateOnStart {
		if err := pgadapter.Migrate(db.DB); err != nil {
			return nil, a.abort(fmt.Errorf("failed to apply migrations: %w", err))
		}
		appLogger.Info("Postgres migrations applied")
	}

	appLogger.Info("Initializing MongoDB client...")
	mongoClient, err := mongoadapter.NewClient(ctx, cfg.MongoDB)
	if err != nil {
		return nil, a.abort(fmt.Errorf("failed to initialize MongoDB client: %w", err))
	}
	a.mongoClient = mongoClient
	catalogDB := mongoClient.Database(cfg.MongoDB.Database)

	appLogger.Info("Initializing Redis client...")
	redisClient, err := redisadapter.NewClient(ctx, cfg.Redis)
	if err != nil {
		return nil, a.abort(fmt.Errorf("failed to initialize Redis client: %w", err))
	}
	a.redisClient = redisClient

	var publisher repository.EventPublisher = natsadapter.NewNoopPublisher()
	if cfg.NATS.Enabled {
		appLogger.Info("Initializing NATS connection...")
		nc, err := natsadapter.NewConnection(cfg.NATS, appLogger)
		if err != nil {
			return nil, a.abort(fmt.Errorf("failed to initialize NATS: %w", err))
		}
		a.natsConn = nc
		if publisher, err = natsadapter.NewNATSPublisher(nc); err != nil {
			return nil, a.abort(err)
		}
	} else {
		appLogger.Info("NATS disabled, cart events will not be published")
	}

	userRepo := pgadapter.NewUserRepository(db)
	cartRepo := pgadapter.NewCartRepository(db)
	listingRepo := mongoadapter.NewListingRepository(catalogDB)
	categoryRepo := mongoadapter.NewCategoryRepository(catalogDB)
	listingCache := redisadapter.NewListingCacheRepository(redisClient)
	revokedTokens := redisadapter.NewRevokedTokenStore(redisClient)

	authSvc := service.NewAuthService(userRepo, revokedTokens, appLogger, service.AuthServiceConfig{
		JWTSecret: cfg.Auth.JWTSecret,
		TokenTTL:  cfg.Auth.TokenTTL,
	})
	catalogSvc := service.NewCatalogService(listingRepo, categoryRepo, listingCache, appLogger, cfg.ListingCache.TTL)
	cartSvc := service.NewCartService(cartRepo, catalogSvc, publisher, a.metrics, appLogger, service.CartServiceConfig{
		MaxLineQuantity: cfg.Cart.MaxLineQuantity,
	})

	router := httpport.NewRouter(httpport.RouterDeps{
		Auth:        authSvc,
		Catalog:     catalogSvc,
		Cart:        cartSvc,
		Log:         appLogger,
		Metrics:     a.metrics,
		RateLimiter: httpport.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst),
	})

	a.server = httpport.NewServer(appLogger, httpport.ServerConfig{
		Port:            cfg.HTTPServer.Port,
		ReadTimeout:     cfg.HTTPServer.ReadTimeout,
		WriteTimeout:    cfg.HTTPServer.WriteTimeout,
		IdleTimeout:     cfg.HTTPServer.IdleTimeout,
		TimeoutGraceful: cfg.HTTPServer.TimeoutGraceful,
	}, router)
	appLogger.Info("HTTP server instance created")

	return a, nil
}

// abort releases whatever New managed to open before failing.
func (a *App) abort(err error) error {
	a.log.Error(err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	a.closeResources(ctx)
	return err
}

func (a *App) Run() {
	a.log.Info("Starting application components...")

	a.metricsServer = metrics.StartMetricsServer(a.cfg.Metrics.Port, a.log, a.metrics.Registry)

	go func() {
		if err := a.server.Start(); err != nil {
			a.log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	receivedSignal := <-quit
	a.log.Infof("Received shutdown signal: %v. Shutting down application...", receivedSignal)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPServer.TimeoutGraceful+5*time.Second)
	defer cancel()

	if err := a.server.Stop(shutdownCtx); err != nil {
		a.log.Errorf("Error during HTTP server graceful shutdown: %v", err)
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			a.log.Errorf("Error stopping metrics server: %v", err)
		}
	}

	a.closeResources(shutdownCtx)
	a.log.Info("Application shut down successfully")
	_ = a.log.Sync()
}

func (a *App) closeResources(ctx context.Context) {
	if a.natsConn != nil {
		if err := a.natsConn.Drain(); err != nil {
			a.log.Errorf("Error draining NATS connection: %v", err)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Errorf("Error closing Redis client: %v", err)
		}
	}
	if a.mongoClient != nil {
		if err := a.mongoClient.Disconnect(ctx); err != nil {
			a.log.Errorf("Error disconnecting from MongoDB: %v", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Errorf("Error closing Postgres: %v", err)
		}
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			a.log.Errorf("Error shutting down tracer provider: %v", err)
		}
	}
}
