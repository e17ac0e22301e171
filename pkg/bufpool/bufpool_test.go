package bufpool

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSizeClasses(t *testing.T) {
	p := NewPool(nil)

	tests := []struct {
		name    string
		size    int
		wantCap int
	}{
		{"zero", 0, DefaultSmallSize},
		{"small", 100, DefaultSmallSize},
		{"small boundary", DefaultSmallSize, DefaultSmallSize},
		{"medium", DefaultSmallSize + 1, DefaultMediumSize},
		{"large", DefaultMediumSize + 1, DefaultLargeSize},
		{"large boundary", DefaultLargeSize, DefaultLargeSize},
		{"oversized", DefaultLargeSize + 1, DefaultLargeSize + 1},
		{"negative", -5, DefaultSmallSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := p.Get(tt.size)
			defer p.Put(buf)

			want := tt.size
			if want < 0 {
				want = 0
			}
			assert.Len(t, buf, want)
			assert.Equal(t, tt.wantCap, cap(buf))
		})
	}
}

func TestPut(t *testing.T) {
	p := NewPool(&Config{SmallSize: 8, MediumSize: 16, LargeSize: 32})

	t.Run("nil", func(t *testing.T) {
		assert.NotPanics(t, func() { p.Put(nil) })
	})

	t.Run("foreign capacity", func(t *testing.T) {
		assert.NotPanics(t, func() { p.Put(make([]byte, 3)) })
	})

	t.Run("restores full length", func(t *testing.T) {
		buf := p.Get(2)
		p.Put(buf)
		again := p.Get(8)
		assert.Len(t, again, 8)
	})
}

func TestNewPoolPartialConfig(t *testing.T) {
	p := NewPool(&Config{MediumSize: 128 << 10})

	assert.Equal(t, DefaultSmallSize, cap(p.Get(1)))
	assert.Equal(t, 128<<10, cap(p.Get(100<<10)))
	assert.Equal(t, DefaultLargeSize, cap(p.Get(DefaultLargeSize)))
}

func TestReadAll(t *testing.T) {
	p := NewPool(&Config{SmallSize: 8, MediumSize: 16, LargeSize: 32})

	t.Run("exact hint", func(t *testing.T) {
		content, err := p.ReadAll(strings.NewReader("hello"), 5)
		require.NoError(t, err)
		defer p.Put(content)
		assert.Equal(t, "hello", string(content))
		assert.Equal(t, 8, cap(content))
	})

	t.Run("unknown length grows", func(t *testing.T) {
		src := bytes.Repeat([]byte("x"), 100)
		content, err := p.ReadAll(iotest.OneByteReader(bytes.NewReader(src)), -1)
		require.NoError(t, err)
		defer p.Put(content)
		assert.Equal(t, src, content)
	})

	t.Run("hint too small", func(t *testing.T) {
		content, err := p.ReadAll(strings.NewReader("longer than hinted"), 2)
		require.NoError(t, err)
		assert.Equal(t, "longer than hinted", string(content))
	})

	t.Run("empty", func(t *testing.T) {
		content, err := p.ReadAll(strings.NewReader(""), 0)
		require.NoError(t, err)
		assert.Empty(t, content)
	})

	t.Run("read error", func(t *testing.T) {
		boom := errors.New("boom")
		content, err := p.ReadAll(io.MultiReader(strings.NewReader("abc"), iotest.ErrReader(boom)), 3)
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, content)
	})
}

func TestConcurrentReadAll(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := strings.Repeat(string(rune('a'+i%26)), 1000+i)
			content, err := ReadAll(strings.NewReader(want), int64(len(want)))
			if assert.NoError(t, err) {
				assert.Equal(t, want, string(content))
			}
			Put(content)
		}(i)
	}
	wg.Wait()
}
