package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"datagraph-backend/internal/config"
	"datagraph-backend/internal/infrastructure/graphstore"
	"datagraph-backend/internal/infrastructure/observability"
	"datagraph-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	LogLevel  zap.AtomicLevel
	Collector *observability.Collector
	Tracer    *observability.TracerProvider
	Store     graphstore.Store
	Service   *auth.ServiceTokenVerifier
	Watcher   *config.Watcher
	Router    *chi.Mux
}

// Server builds the HTTP server for the container's router.
func (c *Container) Server() *http.Server {
	return &http.Server{
		Addr:         c.Config.Addr(),
		Handler:      c.Router,
		ReadTimeout:  c.Config.Server.ReadTimeout,
		WriteTimeout: c.Config.Server.WriteTimeout,
		IdleTimeout:  c.Config.Server.IdleTimeout,
	}
}

// Bootstrap loads the configuration through loader and builds the container.
// The returned cleanup releases the driver, tracer, watcher and logger.
func Bootstrap(ctx context.Context, loader *config.Loader) (*Container, func(), error) {
	container, cleanup, err := InitializeContainer(ctx, loader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize container: %w", err)
	}

	container.Logger.Info("container initialized",
		zap.String("environment", string(container.Config.Environment)),
		zap.Strings("config_sources", container.Config.LoadedFrom),
		zap.String("auth_mode", container.Config.Auth.Mode),
		zap.String("path_prefix", container.Config.Server.PathPrefix),
	)
	return container, cleanup, nil
}
