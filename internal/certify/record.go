// Package certify builds certification records and re-verifies file integrity
// against a previously issued digest.
package certify

import (
	"maps"
	"time"

	"github.com/mtiwari1/filecert/internal/hasher"
)

// Status is the lifecycle state of a certification record.
type Status string

// StatusCertified is the only state a built record can have.
const StatusCertified Status = "CERTIFIED"

// DefaultOwner replaces an owner that is absent or blank after trimming.
const DefaultOwner = "Usuario"

// Record is an issued certification. Treat it as immutable; use Clone before
// handing it to code that may modify the digest map.
type Record struct {
	Filename  string            `json:"filename"`
	Owner     string            `json:"owner"`
	IssuedAt  time.Time         `json:"issued_at"`
	SizeBytes int64             `json:"size_bytes"`
	Digests   map[string]string `json:"digests"`
	Status    Status            `json:"status"`
}

// Key returns the primary (SHA-256) digest that identifies the record.
func (r Record) Key() string {
	return r.Digests[string(hasher.SHA256)]
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Digests = maps.Clone(r.Digests)
	return r
}

// Clock returns the current time. Tests inject a fixed clock.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
