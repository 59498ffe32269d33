package models

import (
	"time"

	"github.com/google/uuid"

	dErrors "certo/pkg/domain-errors"
)

// Certificate is the aggregate root for an issued credential.
//
// Invariants:
//   - CredentialID is globally unique (enforced at store creation)
//   - IssuedAt is immutable after construction
//   - PDFHash is the SHA-256 hex digest of the artifact at PDFPath
//   - ReissuedFrom chains never cycle: the predecessor is always moved to a
//     terminal status before the successor record is created, and successor
//     IDs are minted fresh
//
// A revoked certificate's PDF must not be served; that check belongs to the
// artifact-serving boundary, not the store, so the orchestrator can still
// retrieve revoked artifacts for audit.
type Certificate struct {
	ID            uuid.UUID  `json:"id"`
	CredentialID  string     `json:"credentialId"`
	UserID        string     `json:"userId"`
	TrackID       string     `json:"trackId"`
	Title         string     `json:"title"`
	RecipientName string     `json:"recipientName"`
	IssuedAt      time.Time  `json:"issuedAt"`
	Score         int        `json:"score"`
	PDFPath       string     `json:"pdfPath"`
	PDFHash       string     `json:"pdfHash"`
	Status        Status     `json:"status"`
	RevokedAt     *time.Time `json:"revokedAt,omitempty"`
	RevokedReason string     `json:"revokedReason,omitempty"`
	ReissuedFrom  string     `json:"reissuedFrom,omitempty"`
	AnchorTx      string     `json:"anchorTx,omitempty"`
}

// DefaultScore applies when an issue request leaves the score unset.
const DefaultScore = 100

func (c *Certificate) IsActive() bool {
	return c.Status == StatusActive
}

// CanRevoke checks whether the certificate may transition to revoked.
// A certificate that is already revoked is not an error at the service layer
// (revoke is idempotent); callers distinguish via errors.Is on the returned
// error's code.
func (c *Certificate) CanRevoke() error {
	if c.Status.Terminal() {
		return dErrors.New(dErrors.CodeInvariantViolation, "certificate is not active")
	}
	return nil
}

// ApplyRevocation transitions the certificate to revoked.
// Call CanRevoke first; use with the store Execute callback pattern.
func (c *Certificate) ApplyRevocation(now time.Time, reason string) {
	c.Status = StatusRevoked
	c.RevokedAt = &now
	c.RevokedReason = reason
}

// ApplySupersession marks the certificate as the revoked predecessor of a
// reissue. The record keeps StatusReissued so lineage queries can tell an
// administrative revoke from a supersession.
func (c *Certificate) ApplySupersession(now time.Time, reason string) {
	c.Status = StatusReissued
	c.RevokedAt = &now
	c.RevokedReason = reason
}

// NewCertificate validates and constructs an active certificate record.
// PDFPath, PDFHash, and AnchorTx are bound by the orchestrator after
// anchoring and rendering succeed.
func NewCertificate(credentialID, userID, trackID, title, recipientName string, score int, now time.Time) (*Certificate, error) {
	if credentialID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "credential ID cannot be empty")
	}
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user ID cannot be empty")
	}
	if trackID == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "track ID cannot be empty")
	}
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "title cannot be empty")
	}
	if score < 0 || score > 100 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "score must be between 0 and 100")
	}
	return &Certificate{
		ID:            uuid.New(),
		CredentialID:  credentialID,
		UserID:        userID,
		TrackID:       trackID,
		Title:         title,
		RecipientName: recipientName,
		IssuedAt:      now,
		Score:         score,
		Status:        StatusActive,
	}, nil
}
