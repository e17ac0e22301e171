package api

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/api/handlers"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage/fs"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/store/memory"
)

func newServer(t *testing.T) *Server {
	t.Helper()
	backend, err := fs.NewWithRoot(t.TempDir())
	require.NoError(t, err)
	store := memory.New()

	return NewServer(APIConfig{WriteTimeout: time.Second}, Dependencies{
		Items:  tree.NewCoordinator(store, backend, tree.DefaultConfig()),
		Health: []handlers.Component{{Name: "memory", Kind: "store", Checker: store}},
	})
}

func TestServerServeUntilCancelled(t *testing.T) {
	srv := newServer(t)
	assert.Equal(t, 8080, srv.Port())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health/ready")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancellation")
	}

	_, err = http.Get("http://" + ln.Addr().String() + "/health")
	assert.Error(t, err)
}

func TestServerStopIsIdempotent(t *testing.T) {
	srv := newServer(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() { done <- srv.Serve(context.Background(), ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
	assert.NoError(t, <-done)
}
