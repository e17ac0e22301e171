package tree

import "time"

// Metrics observes coordinator behaviour. Implementations must be safe for
// concurrent use. A nil Metrics disables collection.
type Metrics interface {
	// ObserveOperation records one public operation and its outcome.
	ObserveOperation(op string, duration time.Duration, err error)

	// RecordCompensation records a rollback step and whether it succeeded.
	RecordCompensation(op, step string, err error)

	// RecordInconsistency records a failed compensation.
	RecordInconsistency(op string)

	// ObserveLockWait records time spent waiting for a subtree lock.
	ObserveLockWait(op string, wait time.Duration, acquired bool)

	// RecordPurgeFailure records a staged object that could not be removed
	// after its metadata was deleted.
	RecordPurgeFailure(itemType ItemType)
}
