package certify

import (
	"io"
	"strings"
	"time"

	"github.com/mtiwari1/filecert/internal/hasher"
)

// Verification is the outcome of comparing a file against a reference digest.
type Verification struct {
	Matches         bool      `json:"matches"`
	ReferenceDigest string    `json:"reference_digest"`
	ComputedDigest  string    `json:"computed_digest"`
	VerifiedAt      time.Time `json:"verified_at"`
}

// Verifier recomputes the SHA-256 digest of a file and compares it with a
// reference. It holds no state besides its clock.
type Verifier struct {
	now Clock
}

// NewVerifier returns a Verifier. A nil clock means time.Now in UTC.
func NewVerifier(now Clock) *Verifier {
	if now == nil {
		now = utcNow
	}
	return &Verifier{now: now}
}

// Verify hashes content and reports whether it matches referenceDigest.
// The reference is trimmed and lowercased before the exact comparison.
func (v *Verifier) Verify(content io.Reader, referenceDigest string) (Verification, error) {
	ref := strings.ToLower(strings.TrimSpace(referenceDigest))
	if ref == "" {
		return Verification{}, ErrMissingReference
	}

	res, err := hasher.Compute(content, hasher.SHA256)
	if err != nil {
		return Verification{}, err
	}
	computed := res.Digests[hasher.SHA256]

	return Verification{
		Matches:         computed == ref,
		ReferenceDigest: ref,
		ComputedDigest:  computed,
		VerifiedAt:      v.now(),
	}, nil
}
