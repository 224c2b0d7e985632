// Package grpcserver implements the certification gRPC service.
package grpcserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/hasher"
	"github.com/mtiwari1/filecert/internal/repository"
	"github.com/mtiwari1/filecert/internal/worker"
	pb "github.com/mtiwari1/filecert/proto"
)

// Lookup resolves stored certifications. *service.Service satisfies it.
type Lookup interface {
	Lookup(sha256 string) (certify.Record, error)
}

// Server implements the CertificationServer gRPC interface.
// Dependencies are injected via the constructor; there is no global state.
type Server struct {
	pool       *worker.Pool
	lookup     Lookup
	maxContent int64
	logger     *slog.Logger
}

// NewServer creates a gRPC server backed by the worker pool and store lookup (DI).
// Requests carrying more than maxContent bytes of file content are rejected.
func NewServer(pool *worker.Pool, lookup Lookup, maxContent int64, logger *slog.Logger) *Server {
	return &Server{pool: pool, lookup: lookup, maxContent: maxContent, logger: logger}
}

// envelopeOverhead leaves room for the JSON keys, filename and owner around
// the encoded content.
const envelopeOverhead = 64 << 10

// MaxRecvMsgSize is the transport limit that admits a request carrying
// maxContent bytes of content. Content travels base64 encoded.
func MaxRecvMsgSize(maxContent int64) int {
	return base64.StdEncoding.EncodedLen(int(maxContent)) + envelopeOverhead
}

func (s *Server) checkSize(content []byte, method string) error {
	if s.maxContent > 0 && int64(len(content)) > s.maxContent {
		return status.Errorf(codes.ResourceExhausted, "%s: file exceeds %d bytes", method, s.maxContent)
	}
	return nil
}

// Certify hashes the uploaded content and returns the issued certification.
func (s *Server) Certify(ctx context.Context, req *pb.CertifyRequest) (*pb.CertifyResponse, error) {
	if req.Filename == "" {
		return nil, status.Error(codes.InvalidArgument, "Certify: filename is required")
	}
	if err := s.checkSize(req.Content, "Certify"); err != nil {
		return nil, err
	}

	res, err := s.pool.Do(ctx, worker.Job{
		ID:       uuid.NewString(),
		Kind:     worker.KindCertify,
		Source:   bytes.NewReader(req.Content),
		Filename: req.Filename,
		Owner:    req.Owner,
	})
	if err != nil {
		return nil, s.fail(err, "Certify")
	}
	return &pb.CertifyResponse{Certification: ToProto(res.Record)}, nil
}

// Verify recomputes the SHA-256 of the content and compares it with the reference.
func (s *Server) Verify(ctx context.Context, req *pb.VerifyRequest) (*pb.VerifyResponse, error) {
	if err := s.checkSize(req.Content, "Verify"); err != nil {
		return nil, err
	}

	res, err := s.pool.Do(ctx, worker.Job{
		ID:        uuid.NewString(),
		Kind:      worker.KindVerify,
		Source:    bytes.NewReader(req.Content),
		Reference: req.ReferenceDigest,
	})
	if err != nil {
		return nil, s.fail(err, "Verify")
	}

	v := res.Verification
	return &pb.VerifyResponse{
		Matches:         v.Matches,
		ReferenceDigest: v.ReferenceDigest,
		ComputedDigest:  v.ComputedDigest,
		VerifiedAt:      v.VerifiedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// GetCertification returns a stored certification by exact SHA-256 key.
func (s *Server) GetCertification(_ context.Context, req *pb.GetCertificationRequest) (*pb.GetCertificationResponse, error) {
	key := strings.ToLower(strings.TrimSpace(req.Sha256))
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "GetCertification: sha256 is required")
	}

	rec, err := s.lookup.Lookup(key)
	if err != nil {
		return nil, s.fail(err, "GetCertification")
	}
	return &pb.GetCertificationResponse{Certification: ToProto(rec)}, nil
}

// LoggingInterceptor logs every unary call with its latency and status code.
func LoggingInterceptor(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.Info("grpc call",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("latency", time.Since(start)),
		)
		return resp, err
	}
}

// ToProto converts a record to its wire form.
func ToProto(rec certify.Record) *pb.Certification {
	rec = rec.Clone()
	return &pb.Certification{
		Filename:  rec.Filename,
		Owner:     rec.Owner,
		IssuedAt:  rec.IssuedAt.UTC().Format(time.RFC3339Nano),
		SizeBytes: rec.SizeBytes,
		Digests:   rec.Digests,
		Status:    string(rec.Status),
	}
}

// fail logs a failed call and maps err to a gRPC status.
func (s *Server) fail(err error, method string) error {
	st := mapError(err, method)
	if status.Code(st) == codes.Internal {
		s.logger.Error("grpc "+method, slog.String("error", err.Error()))
	}
	return st
}

// mapError converts core errors to proper gRPC status codes.
func mapError(err error, method string) error {
	switch {
	case errors.Is(err, certify.ErrMissingFilename),
		errors.Is(err, certify.ErrMissingReference),
		errors.Is(err, hasher.ErrUnsupportedAlgorithm):
		return status.Errorf(codes.InvalidArgument, "%s: %v", method, err)
	case errors.Is(err, repository.ErrNotFound):
		return status.Errorf(codes.NotFound, "%s: certification not found", method)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s: deadline exceeded", method)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s: cancelled", method)
	case errors.Is(err, worker.ErrPoolClosed):
		return status.Errorf(codes.Unavailable, "%s: shutting down", method)
	default:
		return status.Errorf(codes.Internal, "%s: %v", method, err)
	}
}
