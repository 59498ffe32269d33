package anchor

import (
	"context"
	"fmt"
	"sync"

	"certo/internal/certificate/digest"
	"certo/pkg/platform/sentinel"

	dErrors "certo/pkg/domain-errors"
	"certo/pkg/requestcontext"
)

// Ledger is an in-memory append-only anchor backend for development and
// tests. It honors the Client contract, including duplicate rejection, so
// the orchestrator exercises the same failure paths as against a real chain.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]*Record
	height  uint64
}

func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*Record)}
}

func (l *Ledger) IssueCredential(ctx context.Context, credentialID, title, trackID, owner string) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "anchor cancelled")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.entries[credentialID]; exists {
		return nil, dErrors.New(dErrors.CodeConflict, "credential already anchored")
	}

	now := requestcontext.Now(ctx)
	l.height++
	l.entries[credentialID] = &Record{
		CredentialID: credentialID,
		Title:        title,
		TrackID:      trackID,
		Owner:        owner,
		IssuedAt:     now,
	}
	return &Receipt{
		TxHash:      fakeTxHash(credentialID, l.height),
		BlockNumber: l.height,
		AnchoredAt:  now,
	}, nil
}

func (l *Ledger) RevokeCredential(ctx context.Context, credentialID string) (*Receipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[credentialID]
	if !ok {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "credential not anchored")
	}
	entry.Revoked = true
	l.height++
	return &Receipt{
		TxHash:      fakeTxHash(credentialID+":revoke", l.height),
		BlockNumber: l.height,
		AnchoredAt:  requestcontext.Now(ctx),
	}, nil
}

func (l *Ledger) GetCredential(ctx context.Context, credentialID string) (*Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[credentialID]
	if !ok {
		return nil, dErrors.Wrap(sentinel.ErrNotFound, dErrors.CodeNotFound, "credential not anchored")
	}
	cp := *entry
	return &cp, nil
}

func fakeTxHash(seed string, height uint64) string {
	return "0x" + digest.Hash([]byte(fmt.Sprintf("%s@%d", seed, height)))
}
