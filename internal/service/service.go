// Package service composes the certification builder, verifier and store
// into the operations exposed by the transports.
package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/hasher"
	"github.com/mtiwari1/filecert/internal/metrics"
	"github.com/mtiwari1/filecert/internal/repository"
)

// Service implements certify, verify and lookup.
// Dependencies are injected via the constructor; there is no global state.
type Service struct {
	builder  *certify.Builder
	verifier *certify.Verifier
	repo     repository.Repository
	persist  bool
	logger   *slog.Logger
}

// New creates a Service. When persist is false, Certify builds records
// without storing them.
func New(
	builder *certify.Builder,
	verifier *certify.Verifier,
	repo repository.Repository,
	persist bool,
	logger *slog.Logger,
) *Service {
	return &Service{
		builder:  builder,
		verifier: verifier,
		repo:     repo,
		persist:  persist,
		logger:   logger.With(slog.String("component", "certification_service")),
	}
}

// Certify hashes content and returns the issued record, storing it when the
// service is configured to persist. A failed call leaves the store unchanged.
func (s *Service) Certify(ctx context.Context, content io.Reader, filename, owner string) (certify.Record, error) {
	rec, err := s.builder.Build(hasher.WithContext(ctx, content), filename, owner)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("certify", "error").Inc()
		s.logger.Warn("certification failed",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
		return certify.Record{}, err
	}

	if s.persist {
		s.repo.Put(rec)
		metrics.StoredRecords.Set(float64(s.repo.Len()))
	}

	metrics.OperationsTotal.WithLabelValues("certify", "ok").Inc()
	metrics.HashedBytes.WithLabelValues("certify").Add(float64(rec.SizeBytes))
	s.logger.Info("file certified",
		slog.String("filename", rec.Filename),
		slog.String("owner", rec.Owner),
		slog.String("sha256", rec.Key()),
		slog.Int64("size", rec.SizeBytes),
		slog.Bool("stored", s.persist),
	)
	return rec, nil
}

// Verify recomputes the SHA-256 of content and compares it with reference.
// It never touches the store.
func (s *Service) Verify(ctx context.Context, content io.Reader, reference string) (certify.Verification, error) {
	res, err := s.verifier.Verify(hasher.WithContext(ctx, content), reference)
	if err != nil {
		metrics.OperationsTotal.WithLabelValues("verify", "error").Inc()
		s.logger.Warn("verification failed", slog.String("error", err.Error()))
		return certify.Verification{}, err
	}

	result := "mismatch"
	if res.Matches {
		result = "match"
	}
	metrics.OperationsTotal.WithLabelValues("verify", result).Inc()
	s.logger.Info("file verified",
		slog.Bool("matches", res.Matches),
		slog.String("computed", res.ComputedDigest),
	)
	return res, nil
}

// Lookup returns the stored record for a SHA-256 digest.
// The key is matched exactly.
func (s *Service) Lookup(sha256 string) (certify.Record, error) {
	return s.repo.Get(sha256)
}

// List returns every stored record, newest first.
func (s *Service) List() []certify.Record {
	return s.repo.List()
}

// Count reports how many records are stored.
func (s *Service) Count() int {
	return s.repo.Len()
}
