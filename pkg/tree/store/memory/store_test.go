package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/storetest"
)

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) tree.Store {
		return New()
	})
}

func TestClosedStore(t *testing.T) {
	s := New()
	ctx := context.Background()
	assert.NoError(t, s.Close())

	_, err := s.GetItem(ctx, "x")
	assert.Error(t, err)
	assert.Error(t, s.Healthcheck(ctx))
	assert.Error(t, s.CreateItem(ctx, &tree.Item{ID: "x", Name: "x", Type: tree.TypeFolder}))
}
