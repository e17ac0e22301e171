package tree_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage/fs"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/store/memory"
)

var errInjected = errors.New("injected failure")

// faults maps an operation name to the error it should return. Each entry
// fires once unless sticky, optionally after letting some calls through.
type faults struct {
	mu     sync.Mutex
	once   map[string]error
	skip   map[string]int
	sticky map[string]error
}

func (f *faults) set(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.once == nil {
		f.once = make(map[string]error)
	}
	f.once[op] = err
}

func (f *faults) setAfter(op string, n int, err error) {
	f.set(op, err)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.skip == nil {
		f.skip = make(map[string]int)
	}
	f.skip[op] = n
}

func (f *faults) always(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sticky == nil {
		f.sticky = make(map[string]error)
	}
	f.sticky[op] = err
}

func (f *faults) take(op string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.sticky[op]; ok {
		return err
	}
	if err, ok := f.once[op]; ok {
		if f.skip[op] > 0 {
			f.skip[op]--
			return nil
		}
		delete(f.once, op)
		return err
	}
	return nil
}

// faultyStore injects failures into transactional writes. "commit" fails a
// transaction after its body succeeded, which rolls it back.
type faultyStore struct {
	tree.Store
	faults
}

func (s *faultyStore) WithTransaction(ctx context.Context, fn func(tx tree.Transaction) error) error {
	return s.Store.WithTransaction(ctx, func(tx tree.Transaction) error {
		if err := fn(&faultyTx{Transaction: tx, f: &s.faults}); err != nil {
			return err
		}
		return s.take("commit")
	})
}

type faultyTx struct {
	tree.Transaction
	f *faults
}

func (t *faultyTx) CreateItem(ctx context.Context, item *tree.Item) error {
	if err := t.f.take("CreateItem"); err != nil {
		return err
	}
	return t.Transaction.CreateItem(ctx, item)
}

func (t *faultyTx) UpdateItem(ctx context.Context, item *tree.Item) error {
	if err := t.f.take("UpdateItem"); err != nil {
		return err
	}
	return t.Transaction.UpdateItem(ctx, item)
}

func (t *faultyTx) DeleteItem(ctx context.Context, id string) error {
	if err := t.f.take("DeleteItem"); err != nil {
		return err
	}
	return t.Transaction.DeleteItem(ctx, id)
}

func (t *faultyTx) DeleteSubtree(ctx context.Context, id string) (int, error) {
	if err := t.f.take("DeleteSubtree"); err != nil {
		return 0, err
	}
	return t.Transaction.DeleteSubtree(ctx, id)
}

// faultyBackend injects failures into backend calls. A fault for "block"
// makes every call wait for its context instead.
type faultyBackend struct {
	storage.Backend
	faults
}

func (b *faultyBackend) gate(ctx context.Context, op, p string) error {
	if err := b.take("block"); err != nil {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := b.take(op); err != nil {
		return storage.Wrap(op, p, err)
	}
	return nil
}

func (b *faultyBackend) CreateDir(ctx context.Context, p string) error {
	if err := b.gate(ctx, "CreateDir", p); err != nil {
		return err
	}
	return b.Backend.CreateDir(ctx, p)
}

func (b *faultyBackend) WriteFile(ctx context.Context, p string, content []byte) error {
	if err := b.gate(ctx, "WriteFile", p); err != nil {
		return err
	}
	return b.Backend.WriteFile(ctx, p, content)
}

func (b *faultyBackend) RemoveFile(ctx context.Context, p string) error {
	if err := b.gate(ctx, "RemoveFile", p); err != nil {
		return err
	}
	return b.Backend.RemoveFile(ctx, p)
}

func (b *faultyBackend) RemoveDirTree(ctx context.Context, p string) error {
	if err := b.gate(ctx, "RemoveDirTree", p); err != nil {
		return err
	}
	return b.Backend.RemoveDirTree(ctx, p)
}

func (b *faultyBackend) MoveOrRename(ctx context.Context, oldPath, newPath string) error {
	if err := b.gate(ctx, "MoveOrRename", oldPath); err != nil {
		return err
	}
	return b.Backend.MoveOrRename(ctx, oldPath, newPath)
}

// recordingMetrics implements tree.Metrics.
type recordingMetrics struct {
	mu              sync.Mutex
	operations      map[string]int
	compensations   []string
	inconsistencies int
	purgeFailures   int
	lockWaits       int
}

func (m *recordingMetrics) ObserveOperation(op string, _ time.Duration, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.operations == nil {
		m.operations = make(map[string]int)
	}
	m.operations[op]++
}

func (m *recordingMetrics) RecordCompensation(op, step string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	m.compensations = append(m.compensations, op+"/"+step+"/"+outcome)
}

func (m *recordingMetrics) RecordInconsistency(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inconsistencies++
}

func (m *recordingMetrics) ObserveLockWait(string, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lockWaits++
}

func (m *recordingMetrics) RecordPurgeFailure(tree.ItemType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeFailures++
}

type harness struct {
	t       *testing.T
	root    string
	store   *faultyStore
	backend *faultyBackend
	metrics *recordingMetrics
	coord   *tree.Coordinator
}

func newHarness(t *testing.T, opts ...tree.Option) *harness {
	t.Helper()
	return newHarnessWithConfig(t, tree.DefaultConfig(), opts...)
}

func newHarnessWithConfig(t *testing.T, cfg tree.Config, opts ...tree.Option) *harness {
	t.Helper()
	b, err := fs.NewWithRoot(t.TempDir())
	require.NoError(t, err)

	h := &harness{
		t:       t,
		root:    b.Root(),
		store:   &faultyStore{Store: memory.New()},
		backend: &faultyBackend{Backend: b},
		metrics: &recordingMetrics{},
	}
	opts = append([]tree.Option{tree.WithMetrics(h.metrics)}, opts...)
	h.coord = tree.NewCoordinator(h.store, h.backend, cfg, opts...)
	return h
}

func (h *harness) folder(name string, parent *tree.Item) *tree.Item {
	h.t.Helper()
	var pid *string
	if parent != nil {
		pid = &parent.ID
	}
	it, err := h.coord.CreateItem(context.Background(), name, tree.TypeFolder, pid)
	require.NoError(h.t, err)
	return it
}

func (h *harness) file(parent *tree.Item, name, content string) *tree.Item {
	h.t.Helper()
	it, err := h.coord.CreateFile(context.Background(), parent.ID, name, []byte(content), ".txt")
	require.NoError(h.t, err)
	return it
}

// abs returns the on-disk location of a backend path.
func (h *harness) abs(p string) string {
	return filepath.Join(h.root, filepath.FromSlash(p))
}

// tree lists every backend path below the root, staging area excluded.
func (h *harness) tree() []string {
	h.t.Helper()
	var out []string
	err := filepath.WalkDir(h.root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(h.root, p)
		rel = filepath.ToSlash(rel)
		if rel == "." {
			return nil
		}
		if rel == tree.StagingDirName {
			return filepath.SkipDir
		}
		if d.IsDir() {
			rel += "/"
		}
		out = append(out, rel)
		return nil
	})
	require.NoError(h.t, err)
	sort.Strings(out)
	return out
}

// staged lists the entries left in the staging area.
func (h *harness) staged() []string {
	entries, err := os.ReadDir(h.abs(tree.StagingDirName))
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

// count returns the number of rows in the store.
func (h *harness) count() int64 {
	h.t.Helper()
	_, total, err := h.store.ListItems(context.Background(), tree.Query{})
	require.NoError(h.t, err)
	return total
}

func hasPrefix(list []string, prefix string) bool {
	for _, s := range list {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}

type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{cur: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}
