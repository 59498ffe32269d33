// Package audit captures certificate lifecycle events for compliance.
// Events are transport-agnostic so sinks (in-process store, Kafka, postgres
// log) can fan out without the orchestrator knowing.
package audit

import "time"

// Action identifies what happened to a credential.
type Action string

const (
	EventCertificateIssued   Action = "certificate_issued"
	EventCertificateRevoked  Action = "certificate_revoked"
	EventCertificateReissued Action = "certificate_reissued"
	EventVerificationFailed  Action = "verification_failed"
	EventOrphanedAnchor      Action = "orphaned_anchor"
)

// Event is emitted from the orchestrator on every lifecycle transition.
type Event struct {
	ID           string    `json:"id"`
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       string    `json:"userId,omitempty"`
	CredentialID string    `json:"credentialId,omitempty"`
	TrackID      string    `json:"trackId,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	AnchorTx     string    `json:"anchorTx,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
	ActorID      string    `json:"actorId,omitempty"`
	Device       string    `json:"device,omitempty"`
}
