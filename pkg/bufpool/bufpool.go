// Package bufpool pools the buffers that hold uploaded file content.
//
// An upload is read completely before the coordinator validates and writes
// it, so every request needs one buffer as large as the file. Reusing those
// buffers keeps steady upload traffic from churning the heap.
//
// Three size classes cover typical uploads:
//   - Small buffers (default 64KiB): text, configuration, small documents
//   - Medium buffers (default 1MiB): images and office documents
//   - Large buffers (default 8MiB): archives and media
//
// Larger content is allocated directly and never pooled, so a burst of big
// uploads cannot pin memory after it ends.
//
// # Usage
//
//	content, err := bufpool.ReadAll(r, header.Size)
//	if err != nil { ... }
//	defer bufpool.Put(content)
package bufpool

import (
	"io"
	"sync"
)

// Default size classes.
const (
	DefaultSmallSize  = 64 << 10
	DefaultMediumSize = 1 << 20
	DefaultLargeSize  = 8 << 20
)

// Pool manages byte slices by size class.
type Pool struct {
	small      sync.Pool
	medium     sync.Pool
	large      sync.Pool
	smallSize  int
	mediumSize int
	largeSize  int
}

// Config sets the size classes of a Pool. Zero fields take the defaults.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// DefaultConfig returns the default pool configuration.
func DefaultConfig() Config {
	return Config{
		SmallSize:  DefaultSmallSize,
		MediumSize: DefaultMediumSize,
		LargeSize:  DefaultLargeSize,
	}
}

// NewPool creates a pool. A nil cfg uses DefaultConfig.
func NewPool(cfg *Config) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.SmallSize > 0 {
			c.SmallSize = cfg.SmallSize
		}
		if cfg.MediumSize > 0 {
			c.MediumSize = cfg.MediumSize
		}
		if cfg.LargeSize > 0 {
			c.LargeSize = cfg.LargeSize
		}
	}

	p := &Pool{
		smallSize:  c.SmallSize,
		mediumSize: c.MediumSize,
		largeSize:  c.LargeSize,
	}
	p.small.New = func() any {
		buf := make([]byte, p.smallSize)
		return &buf
	}
	p.medium.New = func() any {
		buf := make([]byte, p.mediumSize)
		return &buf
	}
	p.large.New = func() any {
		buf := make([]byte, p.largeSize)
		return &buf
	}
	return p
}

// Get returns a slice of length size. Its capacity is the matching size
// class; sizes above the large class are allocated exactly and not pooled.
func (p *Pool) Get(size int) []byte {
	if size < 0 {
		size = 0
	}

	var bufPtr *[]byte
	switch {
	case size <= p.smallSize:
		bufPtr = p.small.Get().(*[]byte)
	case size <= p.mediumSize:
		bufPtr = p.medium.Get().(*[]byte)
	case size <= p.largeSize:
		bufPtr = p.large.Get().(*[]byte)
	default:
		return make([]byte, size)
	}
	return (*bufPtr)[:size]
}

// Put returns buf to its size class. Slices whose capacity matches no class
// are left to the garbage collector. buf must not be used afterwards.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}

	full := buf[:cap(buf)]
	switch cap(buf) {
	case p.smallSize:
		p.small.Put(&full)
	case p.mediumSize:
		p.medium.Put(&full)
	case p.largeSize:
		p.large.Put(&full)
	}
}

// ReadAll reads r to EOF into a pooled buffer. hint is the expected length,
// or a non-positive value when unknown; content longer than hint grows the
// buffer. On success the caller owns the result and returns it with Put.
func (p *Pool) ReadAll(r io.Reader, hint int64) ([]byte, error) {
	if hint < 0 || hint > int64(p.largeSize) {
		hint = 0
	}
	// One spare byte lets a read of exactly hint bytes reach EOF
	// without growing.
	buf := p.Get(int(hint) + 1)[:0]

	for {
		if len(buf) == cap(buf) {
			grown := make([]byte, len(buf), 2*cap(buf))
			copy(grown, buf)
			p.Put(buf)
			buf = grown
		}

		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if err == io.EOF {
			return buf, nil
		}
		if err != nil {
			p.Put(buf)
			return nil, err
		}
	}
}

var globalPool = NewPool(nil)

// Get returns a buffer from the process-wide pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the process-wide pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}

// ReadAll reads r into a buffer from the process-wide pool.
func ReadAll(r io.Reader, hint int64) ([]byte, error) {
	return globalPool.ReadAll(r, hint)
}
