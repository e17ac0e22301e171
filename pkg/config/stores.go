package config

import (
	"context"
	"fmt"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/metrics"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage/fs"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage/s3"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/store/database"
)

// CreateStore opens the item store described by cfg.
func CreateStore(ctx context.Context, cfg database.Config) (*database.Store, error) {
	store, err := database.New(ctx, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open item store: %w", err)
	}

	logger.Debug("item store opened", logger.KeyType, string(cfg.Type))
	return store, nil
}

// CreateBackend opens the storage backend selected by cfg.Type. The backend
// is instrumented with tracing and, when the metrics registry is
// initialized, Prometheus collectors.
func CreateBackend(ctx context.Context, cfg StorageConfig) (storage.Backend, error) {
	var (
		backend storage.Backend
		err     error
	)

	switch cfg.Type {
	case StorageTypeFS:
		backend, err = createFSBackend(cfg.FS)
	case StorageTypeS3:
		backend, err = createS3Backend(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	return storage.Instrument(backend, metrics.NewStorageMetrics()), nil
}

func createFSBackend(cfg fs.Config) (storage.Backend, error) {
	backend, err := fs.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open filesystem backend: %w", err)
	}
	logger.Debug("filesystem backend opened", logger.KeyRoot, backend.Root())
	return backend, nil
}

func createS3Backend(ctx context.Context, cfg s3.Config) (storage.Backend, error) {
	backend, err := s3.NewFromConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open s3 backend: %w", err)
	}
	return backend, nil
}

// CreateCoordinator wires the item store and storage backend described by
// cfg into a coordinator. The caller owns the returned store and backend and
// closes them on shutdown.
func CreateCoordinator(ctx context.Context, cfg *Config) (*tree.Coordinator, *database.Store, storage.Backend, error) {
	store, err := CreateStore(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}

	backend, err := CreateBackend(ctx, cfg.Storage)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	coord := tree.NewCoordinator(store, backend, cfg.Tree.Coordinator(),
		tree.WithMetrics(metrics.NewTreeMetrics()))

	return coord, store, backend, nil
}
