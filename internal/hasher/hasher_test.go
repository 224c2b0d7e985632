package hasher

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexOnly = regexp.MustCompile(`^[0-9a-f]+$`)

func TestCompute_KnownVectors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		md5     string
		sha1    string
		sha256  string
		wantLen int64
	}{
		{
			name:    "empty",
			input:   "",
			md5:     "d41d8cd98f00b204e9800998ecf8427e",
			sha1:    "da39a3ee5e6b4b0d3255bfef95601890afd80709",
			sha256:  "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
			wantLen: 0,
		},
		{
			name:    "hello",
			input:   "hello",
			md5:     "5d41402abc4b2a76b9719d911017c592",
			sha1:    "aaf4c61ddcc5e8a2dabede0f3b482cd9aea9434d",
			sha256:  "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
			wantLen: 5,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Compute(strings.NewReader(tc.input), All()...)
			require.NoError(t, err)
			assert.Equal(t, tc.md5, res.Digests[MD5])
			assert.Equal(t, tc.sha1, res.Digests[SHA1])
			assert.Equal(t, tc.sha256, res.Digests[SHA256])
			assert.Equal(t, tc.wantLen, res.Size)
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	data := bytes.Repeat([]byte("certify me "), 1000)

	first, err := Compute(bytes.NewReader(data), All()...)
	require.NoError(t, err)
	second, err := Compute(bytes.NewReader(data), All()...)
	require.NoError(t, err)

	assert.Equal(t, first.Digests, second.Digests)
}

func TestCompute_DigestShape(t *testing.T) {
	res, err := Compute(strings.NewReader("some file body"), All()...)
	require.NoError(t, err)

	assert.Len(t, res.Digests[SHA256], 64)
	assert.Len(t, res.Digests[SHA1], 40)
	assert.Len(t, res.Digests[MD5], 32)
	assert.NotEqual(t, res.Digests[SHA256], res.Digests[SHA1])
	for alg, d := range res.Digests {
		assert.Regexp(t, hexOnly, d, "algorithm %s", alg)
	}
}

func TestCompute_MatchesStdlibAcrossChunkBoundaries(t *testing.T) {
	for _, size := range []int{ChunkSize - 1, ChunkSize, ChunkSize + 1, 3*ChunkSize + 17} {
		data := bytes.Repeat([]byte{0xAB, 0x01, 0x7F}, size/3+1)[:size]

		// OneByteReader forces many short reads.
		res, err := Compute(iotest.OneByteReader(bytes.NewReader(data)), All()...)
		require.NoError(t, err)

		s256 := sha256.Sum256(data)
		s1 := sha1.Sum(data)
		m5 := md5.Sum(data)
		assert.Equal(t, hex.EncodeToString(s256[:]), res.Digests[SHA256])
		assert.Equal(t, hex.EncodeToString(s1[:]), res.Digests[SHA1])
		assert.Equal(t, hex.EncodeToString(m5[:]), res.Digests[MD5])
		assert.Equal(t, int64(size), res.Size)
	}
}

func TestCompute_SubsetAndDuplicates(t *testing.T) {
	res, err := Compute(strings.NewReader("hello"), SHA256, SHA256)
	require.NoError(t, err)
	assert.Len(t, res.Digests, 1)
	assert.Equal(t, "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824", res.Digests[SHA256])
}

func TestCompute_UnsupportedAlgorithm(t *testing.T) {
	_, err := Compute(strings.NewReader("x"), SHA256, Algorithm("sha512"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)

	_, err = Compute(strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupportedAlgorithm)
}

func TestCompute_ReadErrorMidStream(t *testing.T) {
	boom := errors.New("disk on fire")
	src := io.MultiReader(strings.NewReader("partial"), iotest.ErrReader(boom))

	res, err := Compute(src, All()...)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, boom)
}

func TestCompute_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Compute(WithContext(ctx, strings.NewReader("hello")), SHA256)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, context.Canceled)
}
