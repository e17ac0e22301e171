// Package errors defines the error taxonomy shared by the tree coordinator,
// its stores and the storage backends. It is a leaf package so that every
// layer can produce and classify the same errors without import cycles.
//
// Import graph: errors <- storage, lock <- tree <- store implementations, api
package errors

import (
	goerrors "errors"
	"fmt"
)

// ErrorCode identifies a specific failure.
type ErrorCode int

const (
	// ErrInvalidArgument indicates a malformed request (bad name, bad type,
	// bad pagination parameter).
	ErrInvalidArgument ErrorCode = iota + 1

	// ErrInvalidParent indicates the parent is missing where one is
	// required, or is not a folder.
	ErrInvalidParent

	// ErrNameCollision indicates a sibling with the same name and type
	// already exists.
	ErrNameCollision

	// ErrCycle indicates a folder move into itself or a descendant.
	ErrCycle

	// ErrTooLarge indicates uploaded content exceeds the configured limit.
	ErrTooLarge

	// ErrNotFound indicates the referenced item or backend object does not exist.
	ErrNotFound

	// ErrStorage indicates a backend I/O failure.
	ErrStorage

	// ErrDestinationExists indicates a backend write or move target is occupied.
	ErrDestinationExists

	// ErrTimeout indicates a backend call exceeded its deadline.
	ErrTimeout

	// ErrConflict indicates a concurrent operation holds the subtree, or
	// the subtree changed while waiting for it.
	ErrConflict

	// ErrInconsistency indicates compensation failed and the metadata store
	// and the backend may disagree. Requires operator attention.
	ErrInconsistency
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidArgument:
		return "InvalidArgument"
	case ErrInvalidParent:
		return "InvalidParent"
	case ErrNameCollision:
		return "NameCollision"
	case ErrCycle:
		return "Cycle"
	case ErrTooLarge:
		return "TooLarge"
	case ErrNotFound:
		return "NotFound"
	case ErrStorage:
		return "Storage"
	case ErrDestinationExists:
		return "DestinationExists"
	case ErrTimeout:
		return "Timeout"
	case ErrConflict:
		return "Conflict"
	case ErrInconsistency:
		return "Inconsistency"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Category is the coarse class callers react to.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryNotFound
	CategoryStorage
	CategoryConflict
	CategoryInconsistency
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not_found"
	case CategoryStorage:
		return "storage"
	case CategoryConflict:
		return "conflict"
	case CategoryInconsistency:
		return "inconsistency"
	default:
		return "unknown"
	}
}

// Category maps a code to its class.
func (c ErrorCode) Category() Category {
	switch c {
	case ErrInvalidArgument, ErrInvalidParent, ErrNameCollision, ErrCycle, ErrTooLarge:
		return CategoryValidation
	case ErrNotFound:
		return CategoryNotFound
	case ErrStorage, ErrDestinationExists, ErrTimeout:
		return CategoryStorage
	case ErrConflict:
		return CategoryConflict
	case ErrInconsistency:
		return CategoryInconsistency
	default:
		return CategoryUnknown
	}
}

// TreeError is the concrete error type for every classified failure.
type TreeError struct {
	Code    ErrorCode
	Message string
	Path    string // backend path, when one is involved
	ItemID  string // item id, when one is involved
	Err     error  // underlying cause
}

func (e *TreeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.ItemID != "" {
		msg += fmt.Sprintf(" (item: %s)", e.ItemID)
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (path: %s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *TreeError) Unwrap() error { return e.Err }

// Category returns the class of e.
func (e *TreeError) Category() Category { return e.Code.Category() }

// ============================================================================
// Validation
// ============================================================================

// NewInvalidArgumentError reports a malformed request.
func NewInvalidArgumentError(format string, args ...any) *TreeError {
	return &TreeError{Code: ErrInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidParentError reports a missing or non-folder parent.
func NewInvalidParentError(parentID, reason string) *TreeError {
	return &TreeError{Code: ErrInvalidParent, Message: reason, ItemID: parentID}
}

// NewNameCollisionError reports a sibling with the same name and type.
func NewNameCollisionError(name, itemType string) *TreeError {
	return &TreeError{
		Code:    ErrNameCollision,
		Message: fmt.Sprintf("a %s named %q already exists in the destination", itemType, name),
	}
}

// NewCycleError reports a folder move into its own subtree.
func NewCycleError(itemID, destID string) *TreeError {
	return &TreeError{
		Code:    ErrCycle,
		Message: fmt.Sprintf("cannot move folder into itself or its descendant %s", destID),
		ItemID:  itemID,
	}
}

// NewTooLargeError reports content over the upload limit.
func NewTooLargeError(size, limit int64) *TreeError {
	return &TreeError{
		Code:    ErrTooLarge,
		Message: fmt.Sprintf("content size %d exceeds limit %d", size, limit),
	}
}

// ============================================================================
// NotFound
// ============================================================================

// NewNotFoundError reports a missing item.
func NewNotFoundError(resource, id string) *TreeError {
	return &TreeError{Code: ErrNotFound, Message: resource + " not found", ItemID: id}
}

// NewPathNotFoundError reports a missing backend object.
func NewPathNotFoundError(path string, cause error) *TreeError {
	return &TreeError{Code: ErrNotFound, Message: "backend object not found", Path: path, Err: cause}
}

// ============================================================================
// Storage
// ============================================================================

// NewStorageError wraps a backend failure during op on path.
func NewStorageError(op, path string, cause error) *TreeError {
	return &TreeError{Code: ErrStorage, Message: op + " failed", Path: path, Err: cause}
}

// NewDestinationExistsError reports an occupied write or move target.
func NewDestinationExistsError(path string) *TreeError {
	return &TreeError{Code: ErrDestinationExists, Message: "destination already exists", Path: path}
}

// NewTimeoutError reports a backend call that exceeded its deadline.
func NewTimeoutError(op, path string, cause error) *TreeError {
	return &TreeError{Code: ErrTimeout, Message: op + " timed out", Path: path, Err: cause}
}

// ============================================================================
// Conflict and Inconsistency
// ============================================================================

// NewConflictError reports lock contention or a lineage change while waiting.
func NewConflictError(itemID, reason string) *TreeError {
	return &TreeError{Code: ErrConflict, Message: reason, ItemID: itemID}
}

// NewInconsistencyError reports a failed compensation. Both the original
// failure and the compensation failure are retained and reachable through
// errors.Is / errors.As.
func NewInconsistencyError(itemID, path string, cause, compensation error) *TreeError {
	return &TreeError{
		Code:    ErrInconsistency,
		Message: "compensation failed; metadata and storage may disagree",
		ItemID:  itemID,
		Path:    path,
		Err:     goerrors.Join(cause, compensation),
	}
}

// NewInternalInconsistencyError reports a broken invariant discovered while
// reading the tree, such as a dangling parent reference.
func NewInternalInconsistencyError(itemID, reason string) *TreeError {
	return &TreeError{Code: ErrInconsistency, Message: reason, ItemID: itemID}
}

// ============================================================================
// Classification
// ============================================================================

// CodeOf returns the code of the outermost TreeError in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var te *TreeError
	if goerrors.As(err, &te) {
		return te.Code, true
	}
	return 0, false
}

// CategoryOf returns the class of err, or CategoryUnknown.
func CategoryOf(err error) Category {
	code, ok := CodeOf(err)
	if !ok {
		return CategoryUnknown
	}
	return code.Category()
}

// HasCode reports whether err carries code.
func HasCode(err error, code ErrorCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

func IsValidationError(err error) bool { return CategoryOf(err) == CategoryValidation }
func IsNotFoundError(err error) bool { return CategoryOf(err) == CategoryNotFound }
func IsStorageError(err error) bool { return CategoryOf(err) == CategoryStorage }
func IsConflictError(err error) bool { return CategoryOf(err) == CategoryConflict }
func IsInconsistencyError(err error) bool { return CategoryOf(err) == CategoryInconsistency }
