// Package lock provides advisory subtree locks for tree operations.
//
// A lock covers a lineage: the ordered ids from the root down to the locked
// item. Two lineages conflict when one is a prefix of the other, so a lock on
// a folder excludes work on any of its descendants and ancestors while
// disjoint subtrees proceed in parallel.
package lock

import (
	"context"
	"sync"
	"time"

	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
)

// RootKey is the lineage used for operations on the root level itself.
// Root-level creates hold it, and so do renames of root-level items, which
// take it alongside their own lineage. Moves never target the root level.
var RootKey = []string{"\x00root"}

// Manager grants subtree locks. The zero value is not usable; call NewManager.
type Manager struct {
	mu      sync.Mutex
	held    map[uint64][][]string
	next    uint64
	changed chan struct{}
}

// NewManager returns an empty lock manager.
func NewManager() *Manager {
	return &Manager{
		held:    make(map[uint64][][]string),
		changed: make(chan struct{}),
	}
}

// Handle is a granted lock. Release is idempotent.
type Handle struct {
	m    *Manager
	id   uint64
	once sync.Once
}

// Release frees every lineage held by h and wakes waiters.
func (h *Handle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.m.mu.Lock()
		delete(h.m.held, h.id)
		close(h.m.changed)
		h.m.changed = make(chan struct{})
		h.m.mu.Unlock()
	})
}

// Acquire blocks until all lineages can be held together, then holds them.
// Lineages are granted atomically so waiters never hold a partial set.
//
// timeout <= 0 waits until ctx is done. Expiry or cancellation yields a
// Conflict error.
func (m *Manager) Acquire(ctx context.Context, timeout time.Duration, lineages ...[]string) (*Handle, error) {
	req := normalize(lineages)

	var expired <-chan time.Time
	if timeout > 0 {
		t := time.NewTimer(timeout)
		defer t.Stop()
		expired = t.C
	}

	for {
		m.mu.Lock()
		if !m.conflictsLocked(req) {
			h := m.grantLocked(req)
			m.mu.Unlock()
			return h, nil
		}
		wake := m.changed
		m.mu.Unlock()

		select {
		case <-wake:
		case <-expired:
			return nil, treeerrors.NewConflictError(leaf(req), "timed out waiting for a concurrent operation on the same subtree")
		case <-ctx.Done():
			return nil, &treeerrors.TreeError{
				Code:    treeerrors.ErrConflict,
				Message: "cancelled while waiting for subtree lock",
				ItemID:  leaf(req),
				Err:     ctx.Err(),
			}
		}
	}
}

// TryAcquire is Acquire without waiting.
func (m *Manager) TryAcquire(lineages ...[]string) (*Handle, bool) {
	req := normalize(lineages)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conflictsLocked(req) {
		return nil, false
	}
	return m.grantLocked(req), true
}

// Held returns the number of outstanding handles.
func (m *Manager) Held() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.held)
}

func (m *Manager) grantLocked(req [][]string) *Handle {
	m.next++
	m.held[m.next] = req
	return &Handle{m: m, id: m.next}
}

func normalize(lineages [][]string) [][]string {
	req := make([][]string, 0, len(lineages))
	for _, l := range lineages {
		if len(l) > 0 {
			req = append(req, append([]string(nil), l...))
		}
	}
	return req
}

func (m *Manager) conflictsLocked(req [][]string) bool {
	for _, held := range m.held {
		for _, h := range held {
			for _, r := range req {
				if Overlaps(h, r) {
					return true
				}
			}
		}
	}
	return false
}

// Overlaps reports whether a is a prefix of b or b is a prefix of a.
func Overlaps(a, b []string) bool {
	n := min(len(a), len(b))
	if n == 0 {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func leaf(req [][]string) string {
	if len(req) == 0 {
		return ""
	}
	l := req[0]
	return l[len(l)-1]
}
