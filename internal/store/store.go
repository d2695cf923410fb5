// Package store persists solver runs and their iteration traces on disk.
package store

// Store defines the persistence operations for run records.
// Implementations must be safe for concurrent use.
//
// Load and Delete return an error matching ErrNotFound for an unknown id.
type Store interface {
	// SaveRun atomically writes the record, replacing any previous one with the same ID
	SaveRun(rec *RunRecord) error

	// LoadRun reads the record for id
	LoadRun(id string) (*RunRecord, error)

	// ListRuns returns metadata for every readable record
	ListRuns() ([]RunInfo, error)

	// DeleteRun removes the record and its trace
	DeleteRun(id string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	if e.ID != "" {
		return "run not found: " + e.ID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
