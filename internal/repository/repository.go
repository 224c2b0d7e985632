package repository

import (
	"errors"

	"github.com/mtiwari1/filecert/internal/certify"
)

// ErrNotFound is returned when no record exists for a digest key.
var ErrNotFound = errors.New("repository: certification not found")

// Repository is a small, focused interface for certification records keyed
// by their SHA-256 digest.
// Implementations must be safe for concurrent use and must never hand out a
// record that aliases stored state.
type Repository interface {
	// Put inserts the record, silently replacing any record with the same key.
	Put(record certify.Record)

	// Get retrieves a record by exact SHA-256 key.
	Get(sha256 string) (certify.Record, error)

	// List returns all records, most recently issued first.
	List() []certify.Record

	// Len reports how many records are held.
	Len() int
}
