//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"datagraph-backend/internal/config"
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, loader *config.Loader) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
