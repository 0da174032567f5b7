// Package di wires the service together with Google Wire. Provider sets are
// declared here; wire.go holds the injector and wire_gen.go its generated body.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"datagraph-backend/internal/config"
	"datagraph-backend/internal/handlers"
	"datagraph-backend/internal/infrastructure/graphstore"
	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/internal/middleware"
	"datagraph-backend/internal/repository"
	"datagraph-backend/pkg/auth"
)

const startupPingTimeout = 10 * time.Second

// SuperSet combines all provider sets for the complete application.
var SuperSet = wire.NewSet(
	ConfigProviders,
	InfrastructureProviders,
	AuthProviders,
	RepositoryProviders,
	InterfaceProviders,
	wire.Struct(new(Container), "*"),
)

// ConfigProviders provides configuration and logging.
var ConfigProviders = wire.NewSet(
	provideConfig,
	provideLogLevel,
	provideLogger,
	provideWatcher,
)

// InfrastructureProviders provides the graph store and observability.
var InfrastructureProviders = wire.NewSet(
	provideCollector,
	provideTracerProvider,
	provideNeo4jStore,
	provideStore,
)

// AuthProviders provides token verification.
var AuthProviders = wire.NewSet(
	provideIdentityVerifier,
	provideServiceTokenVerifier,
	provideAuthenticator,
)

// RepositoryProviders provides the Cypher-backed repositories.
var RepositoryProviders = wire.NewSet(
	repository.NewCategoryRepository,
	repository.NewDatasetRepository,
	repository.NewTreeReader,
	wire.Bind(new(repository.CategoryRepository), new(*repository.Neo4jCategoryRepository)),
	wire.Bind(new(repository.DatasetRepository), new(*repository.Neo4jDatasetRepository)),
	wire.Bind(new(repository.TreeReader), new(*repository.Neo4jTreeReader)),
)

// InterfaceProviders provides handlers and the router.
var InterfaceProviders = wire.NewSet(
	handlers.NewCategoryHandler,
	handlers.NewDatasetHandler,
	handlers.NewTreeHandler,
	provideHealthHandler,
	provideRouter,
)

// ============================================================================
// CONFIGURATION PROVIDERS
// ============================================================================

func provideConfig(loader *config.Loader) (*config.Config, error) {
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// provideLogLevel returns the adjustable level shared by the logger and the
// config watcher.
func provideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("invalid log level: %w", err)
	}
	return level, nil
}

// provideLogger creates a structured logger appropriate for the environment.
// Production uses zap's production preset, everything else the development one.
func provideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zapCfg.Level = level
	zapCfg.Encoding = cfg.Logging.Format
	if cfg.Logging.Format == "json" {
		zapCfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	logger, err := zapCfg.Build(zap.Fields(zap.String("environment", string(cfg.Environment))))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	cleanup := func() {
		_ = logger.Sync()
	}
	return logger, cleanup, nil
}

// provideWatcher starts hot reloading and pushes reloaded values into the
// running service verifier and log level.
func provideWatcher(
	loader *config.Loader,
	cfg *config.Config,
	logger *zap.Logger,
	level zap.AtomicLevel,
	service *auth.ServiceTokenVerifier,
) (*config.Watcher, func(), error) {
	watcher, err := config.NewWatcher(loader, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	watcher.OnChange(func(next *config.Config) {
		service.SetSecret(next.Auth.ServiceSecret)
		if err := level.UnmarshalText([]byte(next.Logging.Level)); err != nil {
			logger.Warn("ignoring log level from reloaded config", zap.Error(err))
		}
	})

	return watcher, watcher.Stop, nil
}

// ============================================================================
// INFRASTRUCTURE PROVIDERS
// ============================================================================

func provideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

func provideTracerProvider(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.TracerProvider, func(), error) {
	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: string(cfg.Environment),
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRate:  cfg.Tracing.SampleRate,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	cleanup := func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", zap.Error(err))
		}
	}
	return tp, cleanup, nil
}

// provideNeo4jStore creates the driver and verifies connectivity so a bad URI
// or credentials stop the process at startup.
func provideNeo4jStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*graphstore.Neo4jStore, func(), error) {
	store, err := graphstore.NewNeo4jStore(graphstore.Neo4jConfig{
		URI:            cfg.Neo4j.URI,
		Username:       cfg.Neo4j.Username,
		Password:       cfg.Neo4j.Password,
		Database:       cfg.Neo4j.Database,
		MaxPoolSize:    cfg.Neo4j.MaxPoolSize,
		AcquireTimeout: cfg.Neo4j.AcquireTimeout,
		ConnectTimeout: cfg.Neo4j.ConnectTimeout,
		QueryTimeout:   cfg.Neo4j.QueryTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, startupPingTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		_ = store.Close(context.Background())
		return nil, nil, fmt.Errorf("neo4j unreachable at %s: %w", cfg.Neo4j.URI, err)
	}

	cleanup := func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Warn("neo4j driver close failed", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// provideStore decorates the driver-backed store with metrics, spans and,
// when enabled, the circuit breaker.
func provideStore(
	cfg *config.Config,
	base *graphstore.Neo4jStore,
	collector *observability.Collector,
	logger *zap.Logger,
) graphstore.Store {
	var store graphstore.Store = graphstore.NewInstrumentedStore(base, collector, logger)
	if !cfg.CircuitBreaker.Enabled {
		return store
	}

	breakerCfg := graphstore.DefaultBreakerConfig()
	if cfg.CircuitBreaker.MaxRequests > 0 {
		breakerCfg.MaxRequests = cfg.CircuitBreaker.MaxRequests
	}
	if cfg.CircuitBreaker.Interval > 0 {
		breakerCfg.Interval = cfg.CircuitBreaker.Interval
	}
	if cfg.CircuitBreaker.Timeout > 0 {
		breakerCfg.Timeout = cfg.CircuitBreaker.Timeout
	}
	if cfg.CircuitBreaker.FailureThreshold > 0 {
		breakerCfg.FailureThreshold = cfg.CircuitBreaker.FailureThreshold
	}
	if cfg.CircuitBreaker.MinRequests > 0 {
		breakerCfg.MinRequests = cfg.CircuitBreaker.MinRequests
	}

	return graphstore.NewCircuitBreakerStore(store, breakerCfg, logger, func(name string, state gobreaker.State) {
		collector.BreakerState.WithLabelValues(name).Set(float64(state))
	})
}

// ============================================================================
// AUTH PROVIDERS
// ============================================================================

func provideIdentityVerifier(cfg *config.Config) (auth.Verifier, error) {
	if cfg.Auth.Mode == config.AuthModeJWT {
		v, err := auth.NewJWTVerifier(auth.JWTConfig{
			SigningMethod: cfg.Auth.JWTSigningMethod,
			PublicKey:     cfg.Auth.JWTPublicKey,
			SecretKey:     cfg.Auth.JWTSecret,
			Issuer:        cfg.Auth.JWTIssuer,
			Audience:      cfg.Auth.JWTAudience,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create jwt verifier: %w", err)
		}
		return v, nil
	}
	return auth.NewIdentityProviderVerifier(cfg.Auth.URL, cfg.Auth.Timeout), nil
}

func provideServiceTokenVerifier(cfg *config.Config) *auth.ServiceTokenVerifier {
	return auth.NewServiceTokenVerifier(cfg.Auth.ServiceTokenMarker, cfg.Auth.ServiceSecret)
}

func provideAuthenticator(
	verifier auth.Verifier,
	service *auth.ServiceTokenVerifier,
	collector *observability.Collector,
	logger *zap.Logger,
) *middleware.Authenticator {
	return middleware.NewAuthenticator(verifier, service, collector, logger)
}

// ============================================================================
// INTERFACE PROVIDERS
// ============================================================================

func provideHealthHandler(store graphstore.Store, logger *zap.Logger) *handlers.HealthHandler {
	return handlers.NewHealthHandler(store, logger)
}

func provideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	collector *observability.Collector,
	authn *middleware.Authenticator,
	categoryHandler *handlers.CategoryHandler,
	datasetHandler *handlers.DatasetHandler,
	treeHandler *handlers.TreeHandler,
	healthHandler *handlers.HealthHandler,
) *chi.Mux {
	return NewRouter(cfg, logger, collector, authn, Handlers{
		Category: categoryHandler,
		Dataset:  datasetHandler,
		Tree:     treeHandler,
		Health:   healthHandler,
	})
}
