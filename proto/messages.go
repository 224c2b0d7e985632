package proto

// Certification mirrors an issued certification record on the wire.
// IssuedAt is RFC 3339 in UTC.
type Certification struct {
	Filename  string            `json:"filename"`
	Owner     string            `json:"owner"`
	IssuedAt  string            `json:"issued_at"`
	SizeBytes int64             `json:"size_bytes"`
	Digests   map[string]string `json:"digests"`
	Status    string            `json:"status"`
}

type CertifyRequest struct {
	Content  []byte `json:"content"`
	Filename string `json:"filename"`
	Owner    string `json:"owner,omitempty"`
}

type CertifyResponse struct {
	Certification *Certification `json:"certification"`
}

type VerifyRequest struct {
	Content         []byte `json:"content"`
	ReferenceDigest string `json:"reference_digest"`
}

type VerifyResponse struct {
	Matches         bool   `json:"matches"`
	ReferenceDigest string `json:"reference_digest"`
	ComputedDigest  string `json:"computed_digest"`
	VerifiedAt      string `json:"verified_at"`
}

type GetCertificationRequest struct {
	Sha256 string `json:"sha256"`
}

type GetCertificationResponse struct {
	Certification *Certification `json:"certification"`
}
