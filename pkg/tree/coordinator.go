package tree

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/SankareshwaranS/FileManagementSystem/internal/logger"
	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/storage"
	treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"
	"github.com/SankareshwaranS/FileManagementSystem/pkg/tree/lock"
)

// Operation names used in logs, spans and metrics.
const (
	OpCreate = "create"
	OpUpload = "upload"
	OpRename = "rename"
	OpMove   = "move"
	OpDelete = "delete"
	OpList   = "list"
	OpGet    = "get"
	OpVerify = "verify"
)

// Config tunes the coordinator.
type Config struct {
	// StorageTimeout bounds every backend call.
	StorageTimeout time.Duration `mapstructure:"storage_timeout" validate:"gt=0" yaml:"storage_timeout"`

	// LockTimeout bounds the wait for a subtree lock.
	LockTimeout time.Duration `mapstructure:"lock_timeout" validate:"gt=0" yaml:"lock_timeout"`

	DefaultPageSize int `mapstructure:"default_page_size" validate:"gt=0" yaml:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size" validate:"gtefield=DefaultPageSize" yaml:"max_page_size"`

	// MaxUploadSize rejects larger file contents. Zero disables the limit.
	MaxUploadSize int64 `mapstructure:"max_upload_size" validate:"gte=0" yaml:"max_upload_size"`

	// MaxDepth bounds parent-chain walks.
	MaxDepth int `mapstructure:"max_depth" validate:"gt=0" yaml:"max_depth"`
}

// DefaultConfig returns the coordinator defaults.
func DefaultConfig() Config {
	return Config{
		StorageTimeout:  30 * time.Second,
		LockTimeout:     10 * time.Second,
		DefaultPageSize: 10,
		MaxPageSize:     100,
		MaxUploadSize:   100 << 20,
		MaxDepth:        DefaultMaxDepth,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.StorageTimeout <= 0 {
		c.StorageTimeout = d.StorageTimeout
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = d.LockTimeout
	}
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = d.DefaultPageSize
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = d.MaxPageSize
	}
	if c.MaxPageSize < c.DefaultPageSize {
		c.MaxPageSize = c.DefaultPageSize
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = d.MaxDepth
	}
}

// Coordinator keeps the item store and the storage backend in agreement.
//
// The two resources share no transaction. Every mutating operation is a saga
// of ordered steps; when a later step fails the earlier ones are compensated,
// and a compensation that itself fails is reported as an Inconsistency.
// Overlapping subtrees are serialized with advisory locks.
type Coordinator struct {
	store     Store
	backend   storage.Backend
	locks     *lock.Manager
	resolver  *PathResolver
	validator *Validator
	metrics   Metrics
	cfg       Config

	now   func() time.Time
	newID func() string
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithMetrics reports coordinator activity to m.
func WithMetrics(m Metrics) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithLockManager shares a lock manager between coordinators.
func WithLockManager(m *lock.Manager) Option {
	return func(c *Coordinator) { c.locks = m }
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithIDGenerator replaces the UUID generator for item ids and staging nonces.
func WithIDGenerator(gen func() string) Option {
	return func(c *Coordinator) { c.newID = gen }
}

// NewCoordinator wires store and backend together.
func NewCoordinator(store Store, backend storage.Backend, cfg Config, opts ...Option) *Coordinator {
	cfg.applyDefaults()
	resolver := NewPathResolver(cfg.MaxDepth)
	c := &Coordinator{
		store:     store,
		backend:   backend,
		locks:     lock.NewManager(),
		resolver:  resolver,
		validator: NewValidator(resolver),
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the effective configuration.
func (c *Coordinator) Config() Config { return c.cfg }

// Resolve returns the derived backend path of the item with the given id.
func (c *Coordinator) Resolve(ctx context.Context, id string) (string, error) {
	_, l, err := c.resolver.ResolveID(ctx, c.store, id)
	if err != nil {
		return "", err
	}
	return l.Path(), nil
}

// Healthcheck verifies that both the store and the backend respond.
func (c *Coordinator) Healthcheck(ctx context.Context) error {
	if err := c.store.Healthcheck(ctx); err != nil {
		return err
	}
	return c.backend.Healthcheck(ctx)
}

// begin opens the span and log scope of one public operation. The returned
// function closes it and must receive the operation's final error.
func (c *Coordinator) begin(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := telemetry.StartTreeSpan(ctx, op, attrs...)

	lc := logger.FromContext(ctx)
	if lc == nil {
		lc = &logger.LogContext{StartTime: start}
	}
	lc = lc.WithOperation(op).WithTrace(telemetry.TraceID(ctx), telemetry.SpanID(ctx))
	ctx = logger.WithContext(ctx, lc)

	return ctx, func(err error) {
		elapsed := time.Since(start)
		if err != nil {
			telemetry.RecordError(ctx, err)
		}
		span.End()
		if c.metrics != nil {
			c.metrics.ObserveOperation(op, elapsed, err)
		}
		switch {
		case err == nil:
			logger.DebugCtx(ctx, "operation completed", logger.DurationMs(float64(elapsed.Microseconds())/1000))
		case treeerrors.IsInconsistencyError(err):
			logger.ErrorCtx(ctx, "operation left store and backend inconsistent", logger.Err(err))
		default:
			logger.DebugCtx(ctx, "operation failed", logger.Err(err))
		}
	}
}

// acquire takes subtree locks on lineages, recording the wait.
func (c *Coordinator) acquire(ctx context.Context, op string, lineages ...[]string) (*lock.Handle, error) {
	start := time.Now()
	h, err := c.locks.Acquire(ctx, c.cfg.LockTimeout, lineages...)
	if c.metrics != nil {
		c.metrics.ObserveLockWait(op, time.Since(start), err == nil)
	}
	if err != nil {
		logger.WarnCtx(ctx, "subtree lock not acquired", logger.Err(err))
	}
	return h, err
}

// relineage re-reads item under its lock and fails with Conflict when its
// lineage changed since it was captured.
func (c *Coordinator) relineage(ctx context.Context, want Lineage) (*Item, Lineage, error) {
	id := want.IDs[len(want.IDs)-1]
	item, got, err := c.resolver.ResolveID(ctx, c.store, id)
	if err != nil {
		if treeerrors.IsNotFoundError(err) {
			return nil, Lineage{}, treeerrors.NewConflictError(id, "item was removed by a concurrent operation")
		}
		return nil, Lineage{}, err
	}
	if !got.Equal(want) {
		return nil, Lineage{}, treeerrors.NewConflictError(id, "item was renamed or moved by a concurrent operation")
	}
	return item, got, nil
}

// storageCall runs fn with the storage timeout. An expired deadline is
// reported as a Timeout whatever the backend returned.
func (c *Coordinator) storageCall(ctx context.Context, op, path string, fn func(ctx context.Context) error) error {
	sctx, cancel := context.WithTimeout(ctx, c.cfg.StorageTimeout)
	defer cancel()

	err := fn(sctx)
	if err != nil && errors.Is(sctx.Err(), context.DeadlineExceeded) && !treeerrors.HasCode(err, treeerrors.ErrTimeout) {
		return treeerrors.NewTimeoutError(op, path, err)
	}
	return err
}

func (c *Coordinator) move(ctx context.Context, from, to string) error {
	return c.storageCall(ctx, "move", from, func(ctx context.Context) error {
		return c.backend.MoveOrRename(ctx, from, to)
	})
}

// compensate runs undo after cause. It returns cause when undo succeeds and
// an Inconsistency carrying both errors when it does not.
func (c *Coordinator) compensate(ctx context.Context, op, step, itemID, path string, cause error, undo func(context.Context) error) error {
	logger.WarnCtx(ctx, "compensating failed step",
		logger.Step(step), logger.ItemID(itemID), logger.Path(path), logger.Err(cause))
	telemetry.AddEvent(ctx, "compensate", telemetry.Step(step))

	undoErr := undo(ctx)
	if c.metrics != nil {
		c.metrics.RecordCompensation(op, step, undoErr)
	}
	if undoErr == nil {
		return cause
	}

	if c.metrics != nil {
		c.metrics.RecordInconsistency(op)
	}
	logger.ErrorCtx(ctx, "compensation failed",
		logger.Step(step), logger.ItemID(itemID), logger.Path(path),
		logger.Err(undoErr))
	return treeerrors.NewInconsistencyError(itemID, path, cause, undoErr)
}

// step logs a saga step at debug level.
func step(ctx context.Context, name string, args ...any) {
	logger.DebugCtx(ctx, "saga step", append([]any{logger.Step(name)}, args...)...)
}

// refreshDescendants rewrites the cached StoredPath of every file below
// folder, whose path is now folderPath.
func refreshDescendants(ctx context.Context, tx Transaction, folder *Item, folderPath string) error {
	type entry struct {
		id   string
		path string
	}
	queue := []entry{{folder.ID, folderPath}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		children, err := tx.ListChildren(ctx, &cur.id)
		if err != nil {
			return err
		}
		for _, child := range children {
			p := ChildPath(cur.path, child.Name)
			if child.IsFolder() {
				queue = append(queue, entry{child.ID, p})
				continue
			}
			if child.StoredPath == p {
				continue
			}
			child.StoredPath = p
			if err := tx.UpdateItem(ctx, child); err != nil {
				return err
			}
		}
	}
	return nil
}
