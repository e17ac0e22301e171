package tree

import treeerrors "github.com/SankareshwaranS/FileManagementSystem/pkg/tree/errors"

// Re-exported so that callers of the coordinator need a single import.
type (
	TreeError = treeerrors.TreeError
	ErrorCode = treeerrors.ErrorCode
)

var (
	IsValidationError    = treeerrors.IsValidationError
	IsNotFoundError      = treeerrors.IsNotFoundError
	IsStorageError       = treeerrors.IsStorageError
	IsConflictError      = treeerrors.IsConflictError
	IsInconsistencyError = treeerrors.IsInconsistencyError
)
