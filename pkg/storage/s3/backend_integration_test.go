//go:build integration

package s3

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage/storagetest"
)

// localstackEndpoint returns LOCALSTACK_ENDPOINT or starts a container.
func localstackEndpoint(t *testing.T) string {
	t.Helper()
	if endpoint := os.Getenv("LOCALSTACK_ENDPOINT"); endpoint != "" {
		return endpoint
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "localstack/localstack:3.0",
			ExposedPorts: []string{"4566/tcp"},
			Env: map[string]string{
				"SERVICES":              "s3",
				"DEFAULT_REGION":        "us-east-1",
				"EAGER_SERVICE_LOADING": "1",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("4566/tcp"),
				wait.ForHTTP("/_localstack/health").
					WithPort("4566/tcp").
					WithStartupTimeout(60*time.Second),
			),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "4566")
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

func TestS3BackendConformance(t *testing.T) {
	endpoint := localstackEndpoint(t)
	ctx := context.Background()

	storagetest.Run(t, func(t *testing.T) storage.Backend {
		bucket := "fms-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:20]
		cfg := Config{
			Bucket:          bucket,
			Region:          "us-east-1",
			Endpoint:        endpoint,
			KeyPrefix:       "tree",
			AccessKeyID:     "test",
			SecretAccessKey: "test",
			ForcePathStyle:  true,
		}
		b, err := NewFromConfig(ctx, cfg)
		require.NoError(t, err)

		_, err = b.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
		require.NoError(t, err)
		return b
	})
}
