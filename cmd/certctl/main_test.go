package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	pb "github.com/mtiwari1/filecert/proto"
)

type fakeClient struct {
	certify *pb.CertifyRequest
	verify  *pb.VerifyRequest
	get     *pb.GetCertificationRequest
}

func (f *fakeClient) Certify(_ context.Context, in *pb.CertifyRequest, _ ...grpc.CallOption) (*pb.CertifyResponse, error) {
	f.certify = in
	return &pb.CertifyResponse{Certification: &pb.Certification{Filename: in.Filename, Status: "CERTIFIED"}}, nil
}

func (f *fakeClient) Verify(_ context.Context, in *pb.VerifyRequest, _ ...grpc.CallOption) (*pb.VerifyResponse, error) {
	f.verify = in
	return &pb.VerifyResponse{Matches: true}, nil
}

func (f *fakeClient) GetCertification(_ context.Context, in *pb.GetCertificationRequest, _ ...grpc.CallOption) (*pb.GetCertificationResponse, error) {
	f.get = in
	return &pb.GetCertificationResponse{Certification: &pb.Certification{Filename: "stored.txt"}}, nil
}

func TestDispatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o600))

	client := &fakeClient{}
	var out bytes.Buffer

	require.NoError(t, dispatch(context.Background(), client, []string{"certify", path, "Alice"}, &out))
	assert.Equal(t, "hello.txt", client.certify.Filename)
	assert.Equal(t, "Alice", client.certify.Owner)
	assert.Equal(t, []byte("hello"), client.certify.Content)
	assert.Contains(t, out.String(), `"status": "CERTIFIED"`)

	out.Reset()
	require.NoError(t, dispatch(context.Background(), client, []string{"verify", path, "abc"}, &out))
	assert.Equal(t, "abc", client.verify.ReferenceDigest)
	assert.Contains(t, out.String(), `"matches": true`)

	require.NoError(t, dispatch(context.Background(), client, []string{"get", "abc"}, &out))
	assert.Equal(t, "abc", client.get.Sha256)
}

func TestDispatch_Usage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, dispatch(context.Background(), &fakeClient{}, []string{"delete", "x"}, &out), errUsage)
	assert.ErrorIs(t, dispatch(context.Background(), &fakeClient{}, []string{"verify", "x"}, &out), errUsage)
	assert.ErrorIs(t, run([]string{"certify"}, &out), errUsage)
}
