// Package anchor records credential existence on an external immutable
// ledger for tamper evidence.
//
// The Client interface abstracts the concrete chain so deployments can run
// against a real Ethereum registry contract, while development and tests use
// the in-memory ledger. The orchestrator treats a successful anchor as a
// precondition for persisting a certificate: no active record exists without
// a confirmed Receipt.
package anchor

//go:generate mockgen -source=anchor.go -destination=mocks/mocks.go -package=mocks Client

import (
	"context"
	"time"
)

// Receipt is the confirmation of an anchoring transaction.
type Receipt struct {
	TxHash      string
	BlockNumber uint64
	AnchoredAt  time.Time
}

// Record is the ledger's view of a credential.
type Record struct {
	CredentialID string
	Title        string
	TrackID      string
	Owner        string
	IssuedAt     time.Time
	Revoked      bool
}

// Client is the chain anchor capability.
//
// IssueCredential must not return until the transaction is confirmed, not
// merely submitted. GetCredential returns sentinel.ErrNotFound (wrapped) for
// credentials the ledger has never seen; provider failures surface as
// coded unavailable errors so the orchestrator can tell "absent" from
// "unreachable".
type Client interface {
	IssueCredential(ctx context.Context, credentialID, title, trackID, owner string) (*Receipt, error)
	RevokeCredential(ctx context.Context, credentialID string) (*Receipt, error)
	GetCredential(ctx context.Context, credentialID string) (*Record, error)
}
