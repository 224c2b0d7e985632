// Package restapi implements the REST gateway for certification and
// verification uploads.
package restapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mtiwari1/filecert/internal/certify"
	"github.com/mtiwari1/filecert/internal/hasher"
	"github.com/mtiwari1/filecert/internal/metrics"
	"github.com/mtiwari1/filecert/internal/repository"
	"github.com/mtiwari1/filecert/internal/worker"
)

// Form field names. The second name of each pair is the Spanish one sent by
// the original web client, which calls the routes in legacy.go.
var (
	fileFields      = []string{"file", "archivo"}
	ownerFields     = []string{"owner", "propietario"}
	referenceFields = []string{"reference_digest", "hash_original"}
)

// Store is the read side of the certification store used by the handlers.
type Store interface {
	Lookup(sha256 string) (certify.Record, error)
	List() []certify.Record
	Count() int
}

// Options configures a Handler.
type Options struct {
	UploadDir      string
	MaxUploadBytes int64
	AllowedOrigins []string
}

// Handler holds dependencies for REST endpoints.
type Handler struct {
	pool   *worker.Pool
	store  Store
	opts   Options
	logger *slog.Logger
}

// NewHandler creates a new REST handler. Uploads are spooled into
// opts.UploadDir and removed before the request completes.
func NewHandler(pool *worker.Pool, store Store, opts Options, logger *slog.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	return &Handler{
		pool:   pool,
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// RegisterRoutes attaches all REST routes to the given mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)

	mux.HandleFunc("POST /api/certify", h.certify)
	mux.HandleFunc("POST /api/certificar", h.certifyLegacy)
	mux.HandleFunc("POST /api/verify", h.verify)
	mux.HandleFunc("POST /api/verificar", h.verifyLegacy)

	mux.HandleFunc("GET /api/certifications", h.listCertifications)
	mux.HandleFunc("GET /api/certifications/{digest}", h.getCertification)
	mux.HandleFunc("GET /api/certifications/{digest}/export", h.exportStored)
	mux.HandleFunc("POST /api/export", h.exportPosted)
	mux.HandleFunc("POST /api/guardar-certificado", h.exportLegacy)

	mux.HandleFunc("GET /healthz", h.healthz)
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Routes returns the full HTTP handler: routes wrapped in CORS and metrics.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return metrics.Middleware(CORS(h.opts.AllowedOrigins)(mux))
}

func (h *Handler) requestLogger() *slog.Logger {
	return h.logger.With(slog.String("request_id", uuid.New().String()))
}

// ---------- GET / ----------

func (h *Handler) home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "File certification service",
		"status":  "ok",
	})
}

// ---------- POST /api/certify ----------

type certifyResponse struct {
	Success       bool           `json:"success"`
	Certification certify.Record `json:"certification"`
}

func (h *Handler) certify(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.runCertify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, certifyResponse{Success: true, Certification: rec})
}

// runCertify spools the upload and certifies it. On failure the error
// response is already written.
func (h *Handler) runCertify(w http.ResponseWriter, r *http.Request) (certify.Record, bool) {
	logger := h.requestLogger()
	logger.Info("certify request received")

	up, err := h.receiveUpload(w, r)
	if err != nil {
		h.writeUploadError(w, logger, err)
		return certify.Record{}, false
	}
	defer up.cleanup(logger)

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.pool.Do(ctx, worker.Job{
		ID:       up.id,
		Kind:     worker.KindCertify,
		Source:   up.file,
		Filename: up.filename,
		Owner:    formValue(r, ownerFields...),
	})
	if err != nil {
		logger.Error("certify", slog.String("error", err.Error()))
		writeError(w, statusFor(err), "certification failed: "+messageFor(err))
		return certify.Record{}, false
	}

	logger.Info("certify request complete",
		slog.String("sha256", res.Record.Key()),
		slog.Int64("upload_bytes", up.size),
		slog.Duration("latency", res.Latency),
	)
	return res.Record, true
}

// ---------- POST /api/verify ----------

type verifyResponse struct {
	Success bool `json:"success"`
	certify.Verification
}

func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	v, ok := h.runVerify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, verifyResponse{Success: true, Verification: v})
}

func (h *Handler) runVerify(w http.ResponseWriter, r *http.Request) (certify.Verification, bool) {
	logger := h.requestLogger()
	logger.Info("verify request received")

	up, err := h.receiveUpload(w, r)
	if err != nil {
		h.writeUploadError(w, logger, err)
		return certify.Verification{}, false
	}
	defer up.cleanup(logger)

	reference := formValue(r, referenceFields...)
	if strings.TrimSpace(reference) == "" {
		writeError(w, http.StatusBadRequest, "reference digest not provided")
		return certify.Verification{}, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	res, err := h.pool.Do(ctx, worker.Job{
		ID:        up.id,
		Kind:      worker.KindVerify,
		Source:    up.file,
		Reference: reference,
	})
	if err != nil {
		logger.Error("verify", slog.String("error", err.Error()))
		writeError(w, statusFor(err), "verification failed: "+messageFor(err))
		return certify.Verification{}, false
	}

	logger.Info("verify request complete",
		slog.Bool("matches", res.Verification.Matches),
		slog.Int64("upload_bytes", up.size),
	)
	return res.Verification, true
}

// ---------- GET /api/certifications ----------

func (h *Handler) listCertifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"certifications": h.store.List(),
	})
}

// ---------- GET /api/certifications/{digest} ----------

func (h *Handler) getCertification(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, certifyResponse{Success: true, Certification: rec})
}

// ---------- export ----------

func (h *Handler) exportStored(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeAttachment(w, rec)
}

type exportRequest struct {
	Certification *certify.Record `json:"certification"`
}

// exportPosted turns a record previously returned to the client into a
// downloadable JSON artifact. Nothing is looked up or stored.
func (h *Handler) exportPosted(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, exportBodyLimit)

	var req exportRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Certification == nil || req.Certification.Key() == "" {
		writeError(w, http.StatusBadRequest, "certification with a sha256 digest is required")
		return
	}
	writeAttachment(w, *req.Certification)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (certify.Record, bool) {
	digest := strings.ToLower(strings.TrimSpace(r.PathValue("digest")))
	if digest == "" {
		writeError(w, http.StatusBadRequest, "missing digest")
		return certify.Record{}, false
	}

	rec, err := h.store.Lookup(digest)
	if err != nil {
		writeError(w, statusFor(err), messageFor(err))
		return certify.Record{}, false
	}
	return rec, true
}

// ---------- GET /healthz ----------

// healthz verifies the upload directory is reachable and reports store size.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	result := map[string]interface{}{
		"status":         "ok",
		"certifications": h.store.Count(),
	}
	httpStatus := http.StatusOK

	if fi, err := os.Stat(h.opts.UploadDir); err != nil {
		result["status"] = "degraded"
		result["disk"] = "upload dir inaccessible: " + err.Error()
		httpStatus = http.StatusServiceUnavailable
	} else if !fi.IsDir() {
		result["status"] = "degraded"
		result["disk"] = "upload dir is not a directory"
		httpStatus = http.StatusServiceUnavailable
	} else {
		result["disk"] = "ok"
	}

	writeJSON(w, httpStatus, result)
}

// statusFor maps core and transport errors to HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, certify.ErrMissingFilename),
		errors.Is(err, certify.ErrMissingReference),
		errors.Is(err, hasher.ErrUnsupportedAlgorithm),
		errors.Is(err, errNoFile):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled), errors.Is(err, worker.ErrPoolClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns a client-safe message; internal details stay in the logs.
func messageFor(err error) string {
	switch statusFor(err) {
	case http.StatusRequestEntityTooLarge:
		return "file too large"
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusNotFound:
		return "certification not found"
	case http.StatusGatewayTimeout:
		return "timed out"
	case http.StatusServiceUnavailable:
		return "service unavailable"
	default:
		return "internal error"
	}
}

const (
	// requestTimeout bounds how long a single upload may be processed.
	requestTimeout = 2 * time.Minute

	// exportBodyLimit caps the JSON body of an export request.
	exportBodyLimit = 1 << 20
)
