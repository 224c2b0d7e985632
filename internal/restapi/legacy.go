package restapi

import (
	"net/http"
	"time"

	"github.com/mtiwari1/filecert/internal/certify"
)

// Payloads of the Spanish routes. The original web client reads and posts
// back these key names, so they stay fixed.

type legacyRecord struct {
	Filename  string            `json:"nombre_archivo"`
	Owner     string            `json:"propietario"`
	IssuedAt  time.Time         `json:"fecha_certificacion"`
	SizeBytes int64             `json:"tamanio_bytes"`
	Digests   map[string]string `json:"hashes"`
	Status    certify.Status    `json:"estado"`
}

func toLegacy(rec certify.Record) legacyRecord {
	rec = rec.Clone()
	return legacyRecord{
		Filename:  rec.Filename,
		Owner:     rec.Owner,
		IssuedAt:  rec.IssuedAt,
		SizeBytes: rec.SizeBytes,
		Digests:   rec.Digests,
		Status:    rec.Status,
	}
}

func (l legacyRecord) record() certify.Record {
	return certify.Record{
		Filename:  l.Filename,
		Owner:     l.Owner,
		IssuedAt:  l.IssuedAt,
		SizeBytes: l.SizeBytes,
		Digests:   l.Digests,
		Status:    l.Status,
	}
}

type legacyCertifyResponse struct {
	Success       bool         `json:"success"`
	Certification legacyRecord `json:"certificacion"`
}

type legacyVerifyResponse struct {
	Success         bool      `json:"success"`
	Matches         bool      `json:"integro"`
	ReferenceDigest string    `json:"hash_original"`
	ComputedDigest  string    `json:"hash_actual"`
	VerifiedAt      time.Time `json:"verificacion_fecha"`
}

type legacyExportRequest struct {
	Certification *legacyRecord `json:"certificacion"`
}

func (h *Handler) certifyLegacy(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.runCertify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, legacyCertifyResponse{Success: true, Certification: toLegacy(rec)})
}

func (h *Handler) verifyLegacy(w http.ResponseWriter, r *http.Request) {
	v, ok := h.runVerify(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, legacyVerifyResponse{
		Success:         true,
		Matches:         v.Matches,
		ReferenceDigest: v.ReferenceDigest,
		ComputedDigest:  v.ComputedDigest,
		VerifiedAt:      v.VerifiedAt,
	})
}

// exportLegacy is exportPosted for the {"certificacion": {...}} body. The
// download keeps the client's key names.
func (h *Handler) exportLegacy(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, exportBodyLimit)

	var req legacyExportRequest
	if err := decodeJSON(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Certification == nil || req.Certification.record().Key() == "" {
		writeError(w, http.StatusBadRequest, "certification with a sha256 digest is required")
		return
	}
	writeAttachment(w, *req.Certification)
}
