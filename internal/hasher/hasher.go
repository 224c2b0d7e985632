// Package hasher provides streaming multi-algorithm file hashing.
package hasher

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
)

// Algorithm identifies a supported digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA256 Algorithm = "sha256"
)

// ChunkSize is the number of bytes read from the source per iteration.
const ChunkSize = 4096

var (
	// ErrUnsupportedAlgorithm is returned when an algorithm outside
	// md5, sha1 and sha256 is requested.
	ErrUnsupportedAlgorithm = errors.New("hasher: unsupported algorithm")

	// ErrRead wraps any error raised by the byte source mid-stream.
	ErrRead = errors.New("hasher: read failed")
)

// All lists every supported algorithm, strongest first.
func All() []Algorithm {
	return []Algorithm{SHA256, SHA1, MD5}
}

func newHash(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, string(alg))
	}
}

// Result holds the digests computed over one byte source.
type Result struct {
	Digests map[Algorithm]string // lowercase hex, one per requested algorithm
	Size    int64                // bytes consumed from the source
}

// Compute streams r once, in ChunkSize pieces, through every requested
// algorithm. No partial result is returned on failure.
func Compute(r io.Reader, algs ...Algorithm) (*Result, error) {
	if len(algs) == 0 {
		return nil, fmt.Errorf("%w: no algorithm requested", ErrUnsupportedAlgorithm)
	}

	hashes := make(map[Algorithm]hash.Hash, len(algs))
	writers := make([]io.Writer, 0, len(algs))
	for _, alg := range algs {
		if _, dup := hashes[alg]; dup {
			continue
		}
		h, err := newHash(alg)
		if err != nil {
			return nil, err
		}
		hashes[alg] = h
		writers = append(writers, h)
	}
	w := io.MultiWriter(writers...)

	var size int64
	buf := make([]byte, ChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			// hash.Hash.Write never returns an error.
			_, _ = w.Write(buf[:n])
			size += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRead, err)
		}
	}

	digests := make(map[Algorithm]string, len(hashes))
	for alg, h := range hashes {
		digests[alg] = hex.EncodeToString(h.Sum(nil))
	}
	return &Result{Digests: digests, Size: size}, nil
}

// WithContext returns a reader that fails with ctx.Err() once ctx is done.
// Compute surfaces that failure as ErrRead.
func WithContext(ctx context.Context, r io.Reader) io.Reader {
	if ctx == nil {
		return r
	}
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
