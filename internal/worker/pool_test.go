package worker

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/logging"
	"github.com/mtiwari1/filecert/internal/repository"
	"github.com/mtiwari1/filecert/internal/service"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func newPool(t *testing.T, workers int) (*Pool, *repository.MemoryStore) {
	t.Helper()
	store := repository.NewMemoryStore()
	svc := service.New(certify.NewBuilder(nil), certify.NewVerifier(nil), store, true, logging.Discard())
	p := NewPool(workers, svc, logging.Discard())
	p.Start()
	t.Cleanup(p.Shutdown)
	return p, store
}

func TestPool_Certify(t *testing.T) {
	p, store := newPool(t, 2)

	res, err := p.Do(context.Background(), Job{
		ID:       "job-1",
		Kind:     KindCertify,
		Source:   strings.NewReader("hello"),
		Filename: "hello.txt",
		Owner:    "Alice",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, helloSHA256, res.Record.Key())
	assert.Equal(t, 1, store.Len())
}

func TestPool_Verify(t *testing.T) {
	p, _ := newPool(t, 1)

	res, err := p.Do(context.Background(), Job{
		Kind:      KindVerify,
		Source:    strings.NewReader("hello"),
		Reference: helloSHA256,
	})
	require.NoError(t, err)
	assert.True(t, res.Verification.Matches)
}

func TestPool_ErrorsAreReturned(t *testing.T) {
	p, _ := newPool(t, 1)

	_, err := p.Do(context.Background(), Job{Kind: KindVerify, Source: strings.NewReader("hello")})
	assert.ErrorIs(t, err, certify.ErrMissingReference)

	_, err = p.Do(context.Background(), Job{Kind: Kind("delete"), Source: strings.NewReader("")})
	assert.Error(t, err)
}

func TestPool_ManyConcurrentCallers(t *testing.T) {
	p, store := newPool(t, 3)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := p.Do(context.Background(), Job{
				Kind:     KindCertify,
				Source:   strings.NewReader(strings.Repeat("x", i+1)),
				Filename: "x.txt",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, store.Len())
}

func TestPool_DoAfterShutdown(t *testing.T) {
	p, _ := newPool(t, 1)
	p.Shutdown()

	_, err := p.Do(context.Background(), Job{Kind: KindCertify, Source: strings.NewReader("x"), Filename: "x"})
	assert.ErrorIs(t, err, ErrPoolClosed)
}

type blockingProcessor struct {
	release chan struct{}
}

func (b *blockingProcessor) Certify(ctx context.Context, _ io.Reader, _, _ string) (certify.Record, error) {
	<-b.release
	return certify.Record{}, nil
}

func (b *blockingProcessor) Verify(context.Context, io.Reader, string) (certify.Verification, error) {
	return certify.Verification{}, errors.New("unused")
}

func TestPool_CallerContextDeadline(t *testing.T) {
	proc := &blockingProcessor{release: make(chan struct{})}
	p := NewPool(1, proc, logging.Discard())
	p.Start()
	defer func() {
		close(proc.release)
		p.Shutdown()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Do(ctx, Job{Kind: KindCertify, Source: strings.NewReader("x"), Filename: "x"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
