//go:build integration

package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/storetest"
)

// postgresConfig returns a config for FMS_TEST_POSTGRES_HOST when set, and
// otherwise starts a throwaway container.
func postgresConfig(t *testing.T) *Config {
	t.Helper()

	if host := os.Getenv("FMS_TEST_POSTGRES_HOST"); host != "" {
		port, _ := strconv.Atoi(os.Getenv("FMS_TEST_POSTGRES_PORT"))
		return &Config{
			Type: DatabaseTypePostgres,
			Postgres: PostgresConfig{
				Host:        host,
				Port:        port,
				Database:    "fms_test",
				User:        "fms_test",
				Password:    "fms_test",
				AutoMigrate: true,
			},
		}
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("fms_test"),
		postgres.WithUsername("fms_test"),
		postgres.WithPassword("fms_test"),
		testcontainers.WithWaitStrategyAndDeadline(2*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return &Config{
		Type: DatabaseTypePostgres,
		Postgres: PostgresConfig{
			Host:        host,
			Port:        port.Int(),
			Database:    "fms_test",
			User:        "fms_test",
			Password:    "fms_test",
			AutoMigrate: true,
		},
	}
}

func TestPostgresConformance(t *testing.T) {
	cfg := postgresConfig(t)
	ctx := context.Background()

	status, err := RunMigrations(ctx, cfg)
	require.NoError(t, err)
	assert.True(t, status.Applied)
	assert.False(t, status.Dirty)

	again, err := MigrationVersion(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, status.Version, again.Version)

	storetest.RunConformanceSuite(t, func(t *testing.T) tree.Store {
		s, err := New(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, s.DB().Exec("DELETE FROM items").Error)
		return s
	})
}
