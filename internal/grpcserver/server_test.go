package grpcserver

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/logging"
	"github.com/mtiwari1/filecert/internal/repository"
	"github.com/mtiwari1/filecert/internal/service"
	"github.com/mtiwari1/filecert/internal/worker"
	pb "github.com/mtiwari1/filecert/proto"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func newClient(t *testing.T) pb.CertificationClient {
	t.Helper()
	return newClientWithLimit(t, 1<<20)
}

// newClientWithLimit wires the server the way cmd/server does, with maxContent
// as the upload limit.
func newClientWithLimit(t *testing.T, maxContent int64) pb.CertificationClient {
	t.Helper()

	logger := logging.Discard()
	store := repository.NewMemoryStore()
	svc := service.New(certify.NewBuilder(nil), certify.NewVerifier(nil), store, true, logger)
	pool := worker.NewPool(2, svc, logger)
	pool.Start()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(
		grpc.UnaryInterceptor(LoggingInterceptor(logger)),
		grpc.MaxRecvMsgSize(MaxRecvMsgSize(maxContent)),
	)
	pb.RegisterCertificationServer(srv, NewServer(pool, svc, maxContent, logger))
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(64<<20)),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		srv.GracefulStop()
		pool.Shutdown()
	})
	return pb.NewCertificationClient(conn)
}

func TestCertifyThenGet(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	resp, err := client.Certify(ctx, &pb.CertifyRequest{Content: []byte("hello"), Filename: "hello.txt", Owner: " "})
	require.NoError(t, err)

	c := resp.Certification
	require.NotNil(t, c)
	assert.Equal(t, "hello.txt", c.Filename)
	assert.Equal(t, certify.DefaultOwner, c.Owner)
	assert.Equal(t, int64(5), c.SizeBytes)
	assert.Equal(t, "CERTIFIED", c.Status)
	assert.Equal(t, helloSHA256, c.Digests["sha256"])
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", c.Digests["md5"])
	assert.True(t, strings.HasSuffix(c.IssuedAt, "Z"), c.IssuedAt)

	got, err := client.GetCertification(ctx, &pb.GetCertificationRequest{Sha256: helloSHA256})
	require.NoError(t, err)
	assert.Equal(t, c, got.Certification)
}

func TestVerify(t *testing.T) {
	client := newClient(t)

	resp, err := client.Verify(context.Background(), &pb.VerifyRequest{Content: []byte("hello"), ReferenceDigest: helloSHA256})
	require.NoError(t, err)
	assert.True(t, resp.Matches)
	assert.Equal(t, helloSHA256, resp.ComputedDigest)

	resp, err = client.Verify(context.Background(), &pb.VerifyRequest{Content: []byte("hello"), ReferenceDigest: helloSHA256 + "x"})
	require.NoError(t, err)
	assert.False(t, resp.Matches)
}

func TestErrorCodes(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	_, err := client.Certify(ctx, &pb.CertifyRequest{Content: []byte("x")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.Verify(ctx, &pb.VerifyRequest{Content: []byte("x"), ReferenceDigest: "  "})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = client.GetCertification(ctx, &pb.GetCertificationRequest{Sha256: helloSHA256})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = client.GetCertification(ctx, &pb.GetCertificationRequest{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUploadLimit(t *testing.T) {
	const limit = 1 << 20
	client := newClientWithLimit(t, limit)
	ctx := context.Background()

	justUnder := bytes.Repeat([]byte("a"), limit-1024)
	_, err := client.Certify(ctx, &pb.CertifyRequest{Content: justUnder, Filename: "under.bin"})
	require.NoError(t, err)

	atLimit := bytes.Repeat([]byte("b"), limit)
	_, err = client.Verify(ctx, &pb.VerifyRequest{Content: atLimit, ReferenceDigest: helloSHA256})
	require.NoError(t, err)

	over := bytes.Repeat([]byte("c"), limit+1)
	_, err = client.Certify(ctx, &pb.CertifyRequest{Content: over, Filename: "over.bin"})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = client.Verify(ctx, &pb.VerifyRequest{Content: over, ReferenceDigest: helloSHA256})
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
