package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys shared by tree, storage and HTTP spans.
const (
	AttrOperation  = "fms.operation"
	AttrItemID     = "fms.item.id"
	AttrItemType   = "fms.item.type"
	AttrParentID   = "fms.item.parent_id"
	AttrItemName   = "fms.item.name"
	AttrPath       = "fms.path"
	AttrOldPath    = "fms.path.old"
	AttrNewPath    = "fms.path.new"
	AttrSize       = "fms.size"
	AttrStep       = "fms.saga.step"
	AttrBackend    = "storage.backend"
	AttrBucket     = "storage.bucket"
	AttrStorageKey = "storage.key"
	AttrDBSystem   = "db.system"
	AttrClientIP   = "client.ip"
)

func Operation(op string) attribute.KeyValue { return attribute.String(AttrOperation, op) }
func ItemID(id string) attribute.KeyValue { return attribute.String(AttrItemID, id) }
func ItemType(t string) attribute.KeyValue { return attribute.String(AttrItemType, t) }
func ParentID(id string) attribute.KeyValue { return attribute.String(AttrParentID, id) }
func ItemName(name string) attribute.KeyValue { return attribute.String(AttrItemName, name) }
func Path(p string) attribute.KeyValue { return attribute.String(AttrPath, p) }
func OldPath(p string) attribute.KeyValue { return attribute.String(AttrOldPath, p) }
func NewPath(p string) attribute.KeyValue { return attribute.String(AttrNewPath, p) }
func Size(n int64) attribute.KeyValue { return attribute.Int64(AttrSize, n) }
func Step(s string) attribute.KeyValue { return attribute.String(AttrStep, s) }
func Backend(name string) attribute.KeyValue { return attribute.String(AttrBackend, name) }
func Bucket(name string) attribute.KeyValue { return attribute.String(AttrBucket, name) }
func StorageKey(key string) attribute.KeyValue { return attribute.String(AttrStorageKey, key) }
func DBSystem(system string) attribute.KeyValue { return attribute.String(AttrDBSystem, system) }
func ClientIP(ip string) attribute.KeyValue { return attribute.String(AttrClientIP, ip) }

// StartTreeSpan starts a span for a coordinator operation.
func StartTreeSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Operation(op)}, attrs...)
	return StartSpan(ctx, "tree."+op, trace.WithAttributes(all...))
}

// StartStorageSpan starts a client span for a backend call.
func StartStorageSpan(ctx context.Context, backend, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Backend(backend), Operation(op)}, attrs...)
	return StartSpan(ctx, "storage."+op, trace.WithAttributes(all...), trace.WithSpanKind(trace.SpanKindClient))
}
