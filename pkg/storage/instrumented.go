package storage

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/SankareshwaranS/FileManagementSystem/internal/telemetry"
)

// Metrics receives one observation per backend call. Implementations must be
// safe for concurrent use.
type Metrics interface {
	ObserveOperation(backend, op string, duration time.Duration, err error)
	RecordBytes(backend, op string, n int64)
}

type instrumented struct {
	Backend
	m Metrics
}

// Instrument wraps b so that every call runs in a client span and, when m is
// non-nil, is reported to m.
func Instrument(b Backend, m Metrics) Backend {
	if _, ok := b.(*instrumented); ok {
		return b
	}
	return &instrumented{Backend: b, m: m}
}

// Unwrap returns the instrumented backend.
func (i *instrumented) Unwrap() Backend { return i.Backend }

// call runs fn inside a span and records the outcome.
func (i *instrumented) call(ctx context.Context, op string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	ctx, span := telemetry.StartStorageSpan(ctx, i.Backend.Type(), op, attrs...)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if err != nil {
		telemetry.RecordError(ctx, err)
	}
	if i.m != nil {
		i.m.ObserveOperation(i.Backend.Type(), op, time.Since(start), err)
	}
	return err
}

func (i *instrumented) CreateDir(ctx context.Context, p string) error {
	return i.call(ctx, "create_dir", func(ctx context.Context) error {
		return i.Backend.CreateDir(ctx, p)
	}, telemetry.Path(p))
}

func (i *instrumented) WriteFile(ctx context.Context, p string, content []byte) error {
	err := i.call(ctx, "write_file", func(ctx context.Context) error {
		return i.Backend.WriteFile(ctx, p, content)
	}, telemetry.Path(p), telemetry.Size(int64(len(content))))
	if err == nil && i.m != nil {
		i.m.RecordBytes(i.Backend.Type(), "write_file", int64(len(content)))
	}
	return err
}

func (i *instrumented) RemoveFile(ctx context.Context, p string) error {
	return i.call(ctx, "remove_file", func(ctx context.Context) error {
		return i.Backend.RemoveFile(ctx, p)
	}, telemetry.Path(p))
}

func (i *instrumented) RemoveDirTree(ctx context.Context, p string) error {
	return i.call(ctx, "remove_dir_tree", func(ctx context.Context) error {
		return i.Backend.RemoveDirTree(ctx, p)
	}, telemetry.Path(p))
}

func (i *instrumented) MoveOrRename(ctx context.Context, oldPath, newPath string) error {
	return i.call(ctx, "move", func(ctx context.Context) error {
		return i.Backend.MoveOrRename(ctx, oldPath, newPath)
	}, telemetry.OldPath(oldPath), telemetry.NewPath(newPath))
}

func (i *instrumented) Exists(ctx context.Context, p string) (bool, error) {
	var ok bool
	err := i.call(ctx, "exists", func(ctx context.Context) error {
		var err error
		ok, err = i.Backend.Exists(ctx, p)
		return err
	}, telemetry.Path(p))
	return ok, err
}

func (i *instrumented) Stat(ctx context.Context, p string) (*ObjectInfo, error) {
	var info *ObjectInfo
	err := i.call(ctx, "stat", func(ctx context.Context) error {
		var err error
		info, err = i.Backend.Stat(ctx, p)
		return err
	}, telemetry.Path(p))
	return info, err
}

func (i *instrumented) Healthcheck(ctx context.Context) error {
	return i.call(ctx, "healthcheck", i.Backend.Healthcheck)
}
