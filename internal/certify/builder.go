package certify

import (
	"errors"
	"io"
	"strings"

	"github.com/mtiwari1/filecert/internal/hasher"
)

var (
	// ErrMissingFilename is returned when a certification has no file name.
	ErrMissingFilename = errors.New("certify: missing filename")

	// ErrMissingReference is returned when a verification has no reference digest.
	ErrMissingReference = errors.New("certify: missing reference digest")
)

// Builder turns file content plus uploader metadata into a Record.
// It never writes to a store.
type Builder struct {
	now Clock
}

// NewBuilder returns a Builder. A nil clock means time.Now in UTC.
func NewBuilder(now Clock) *Builder {
	if now == nil {
		now = utcNow
	}
	return &Builder{now: now}
}

// Build hashes content with every supported algorithm and returns the
// resulting record. Digest engine failures are returned unchanged.
func (b *Builder) Build(content io.Reader, filename, ownerRaw string) (Record, error) {
	if strings.TrimSpace(filename) == "" {
		return Record{}, ErrMissingFilename
	}

	owner := strings.TrimSpace(ownerRaw)
	if owner == "" {
		owner = DefaultOwner
	}

	res, err := hasher.Compute(content, hasher.All()...)
	if err != nil {
		return Record{}, err
	}

	digests := make(map[string]string, len(res.Digests))
	for alg, d := range res.Digests {
		digests[string(alg)] = d
	}

	return Record{
		Filename:  filename,
		Owner:     owner,
		IssuedAt:  b.now(),
		SizeBytes: res.Size,
		Digests:   digests,
		Status:    StatusCertified,
	}, nil
}
