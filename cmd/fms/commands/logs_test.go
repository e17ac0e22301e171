package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailLines(t *testing.T) {
	input := "one\ntwo\nthree\nfour\nfive\n"

	t.Run("last n", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(input), 2, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"four", "five"}, lines)
	})

	t.Run("n above line count", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(input), 10, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"one", "two", "three", "four", "five"}, lines)
	})

	t.Run("ring wraps in order", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(input), 3, time.Time{})
		require.NoError(t, err)
		assert.Equal(t, []string{"three", "four", "five"}, lines)
	})

	t.Run("zero", func(t *testing.T) {
		lines, err := tailLines(strings.NewReader(input), 0, time.Time{})
		require.NoError(t, err)
		assert.Empty(t, lines)
	})

	t.Run("since filters timestamped lines", func(t *testing.T) {
		log := strings.Join([]string{
			`{"time":"2024-01-15T09:00:00Z","level":"INFO","msg":"old"}`,
			`continuation without a timestamp`,
			`{"time":"2024-01-15T11:00:00Z","level":"INFO","msg":"new"}`,
		}, "\n")
		since := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

		lines, err := tailLines(strings.NewReader(log), 10, since)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "continuation without a timestamp", lines[0])
		assert.Contains(t, lines[1], `"msg":"new"`)
	})
}

func TestLineTime(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		got := lineTime(`{"time":"2024-01-15T10:30:45.123Z","level":"INFO","msg":"item created"}`)
		assert.True(t, got.Equal(time.Date(2024, 1, 15, 10, 30, 45, 123e6, time.UTC)))
	})

	t.Run("text", func(t *testing.T) {
		got := lineTime("[2024-01-15 10:30:45.123] [INFO] folder created item_id=a1")
		want := time.Date(2024, 1, 15, 10, 30, 45, 123e6, time.Local)
		assert.True(t, got.Equal(want), "got %v", got)
	})

	t.Run("none", func(t *testing.T) {
		assert.True(t, lineTime("plain line").IsZero())
		assert.True(t, lineTime("{not json").IsZero())
		assert.True(t, lineTime("[short]").IsZero())
	})
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollower(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fms.log")
	require.NoError(t, os.WriteFile(path, []byte("before\n"), 0o644))

	f, err := newFollower(path)
	require.NoError(t, err)
	defer f.Close()

	logFile, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	defer func() { _ = logFile.Close() }()

	_, err = logFile.WriteString("first\nsec")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx, out) }()

	assert.Eventually(t, func() bool { return out.String() == "first\n" },
		2*time.Second, 10*time.Millisecond)

	_, err = logFile.WriteString("ond\nthird\n")
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return out.String() == "first\nsecond\nthird\n" },
		2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.NotContains(t, out.String(), "before")
}
