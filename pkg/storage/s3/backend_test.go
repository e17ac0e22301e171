package s3

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

func TestKeyLayout(t *testing.T) {
	b := New(nil, Config{Bucket: "b", KeyPrefix: "tree"})

	assert.Equal(t, "tree/docs/a.txt", b.fileKey("docs/a.txt"))
	assert.Equal(t, "tree/docs/", b.dirKey("docs"))

	bare := New(nil, Config{Bucket: "b"})
	assert.Equal(t, "docs/", bare.dirKey("docs"))
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, isNotFoundError(&types.NoSuchKey{}))
	assert.True(t, isNotFoundError(fmt.Errorf("head: %w", &types.NotFound{})))
	assert.True(t, isNotFoundError(errors.New("operation error S3: HeadObject, https response error StatusCode: 404")))
	assert.False(t, isNotFoundError(errors.New("AccessDenied")))
	assert.False(t, isNotFoundError(nil))

	assert.True(t, isPreconditionFailed(errors.New("api error PreconditionFailed: At least one of the pre-conditions you specified did not hold")))
	assert.False(t, isPreconditionFailed(errors.New("SlowDown")))
}

func TestMoveFile(t *testing.T) {
	ctx := context.Background()
	fake, b := newFakeS3(t)
	fake.seed("Docs/", "Archive/", "Docs/a.txt")

	require.NoError(t, b.MoveOrRename(ctx, "Docs/a.txt", "Archive/a.txt"))
	assert.False(t, fake.has("Docs/a.txt"))
	assert.True(t, fake.has("Archive/a.txt"))

	err := b.MoveOrRename(ctx, "Archive/a.txt", "Docs")
	assert.True(t, treeerrors.HasCode(err, treeerrors.ErrDestinationExists))
}

func TestMoveFileSourceDeleteFailure(t *testing.T) {
	ctx := context.Background()
	fake, b := newFakeS3(t)
	fake.seed("Docs/", "Archive/", "Docs/a.txt")
	fake.denyDelete = func(key string) bool { return key == "Docs/a.txt" }

	err := b.MoveOrRename(ctx, "Docs/a.txt", "Archive/a.txt")
	require.Error(t, err)
	assert.True(t, treeerrors.IsStorageError(err))
	assert.True(t, fake.has("Docs/a.txt"))
	assert.False(t, fake.has("Archive/a.txt"))

	fake.denyDelete = nil
	require.NoError(t, b.MoveOrRename(ctx, "Docs/a.txt", "Archive/a.txt"))
	assert.Equal(t, []string{"Archive/", "Archive/a.txt", "Docs/"}, fake.keys())
}

func TestMoveDirPartialDeleteFailure(t *testing.T) {
	ctx := context.Background()
	fake, b := newFakeS3(t)
	fake.seed("Docs/", "Docs/a.txt", "Docs/sub/", "Docs/sub/b.txt", "Archive/")
	before := fake.keys()

	// The batch delete removes everything except one key.
	fake.denyDelete = func(key string) bool { return key == "Docs/sub/b.txt" }

	err := b.MoveOrRename(ctx, "Docs", "Archive/Docs")
	require.Error(t, err)
	assert.True(t, treeerrors.IsStorageError(err))
	assert.Equal(t, before, fake.keys())

	fake.denyDelete = nil
	require.NoError(t, b.MoveOrRename(ctx, "Docs", "Archive/Docs"))
	assert.Equal(t, []string{
		"Archive/",
		"Archive/Docs/",
		"Archive/Docs/a.txt",
		"Archive/Docs/sub/",
		"Archive/Docs/sub/b.txt",
	}, fake.keys())
}
