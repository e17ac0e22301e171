package logger

import "log/slog"

// Standard field keys. Use these for every structured log call so that
// tree operations can be correlated across request, saga and storage logs.
const (
	KeyTraceID   = "trace_id"
	KeySpanID    = "span_id"
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"

	// Tree
	KeyOperation = "op"
	KeyItemID    = "item_id"
	KeyParentID  = "parent_id"
	KeyName      = "name"
	KeyType      = "type"
	KeySize      = "size"
	KeyPath      = "path"
	KeyOldPath   = "old_path"
	KeyNewPath   = "new_path"
	KeyStep      = "step"
	KeyCount     = "count"

	// Storage backends
	KeyBackend = "backend"
	KeyBucket  = "bucket"
	KeyKey     = "key"
	KeyRoot    = "root"

	// HTTP
	KeyMethod     = "method"
	KeyStatus     = "status"
	KeyBytes      = "bytes"
	KeyDurationMs = "duration_ms"

	KeyError = "error"
)

func ItemID(id string) slog.Attr { return slog.String(KeyItemID, id) }
func Path(p string) slog.Attr { return slog.String(KeyPath, p) }
func OldPath(p string) slog.Attr { return slog.String(KeyOldPath, p) }
func NewPath(p string) slog.Attr { return slog.String(KeyNewPath, p) }
func Operation(op string) slog.Attr { return slog.String(KeyOperation, op) }
func Step(s string) slog.Attr { return slog.String(KeyStep, s) }
func DurationMs(ms float64) slog.Attr { return slog.Float64(KeyDurationMs, ms) }
func Backend(name string) slog.Attr { return slog.String(KeyBackend, name) }
func Count(n int) slog.Attr { return slog.Int(KeyCount, n) }
func Size(n int64) slog.Attr { return slog.Int64(KeySize, n) }
func ParentID(id string) slog.Attr { return slog.String(KeyParentID, id) }
func Name(n string) slog.Attr { return slog.String(KeyName, n) }

// Err renders err as a string attribute. A nil error yields an empty Attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
