package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"certo/internal/audit"
	"certo/internal/certificate/artifact"
	"certo/internal/certificate/models"
	dErrors "certo/pkg/domain-errors"
	"certo/pkg/platform/sentinel"
	"certo/pkg/requestcontext"
)

// BlockchainStatus reports the ledger's view during verification.
type BlockchainStatus struct {
	Anchored bool   `json:"anchored"`
	Verified bool   `json:"verified"`
	TxHash   string `json:"txHash,omitempty"`
	Revoked  bool   `json:"revoked,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// VerificationResult is always returned, never an error: a public verify
// endpoint answers "is this credential valid" for any input, including
// garbage IDs, without leaking failures as 500s.
type VerificationResult struct {
	Valid       bool                `json:"valid"`
	Reason      string              `json:"reason,omitempty"`
	Certificate *models.Certificate `json:"certificate,omitempty"`
	Blockchain  *BlockchainStatus   `json:"blockchain,omitempty"`
}

// Verify resolves a credential ID to its current validity. Results for
// records that exist are cached; transient failures are reported as
// unverifiable rather than cached or raised.
func (s *Service) Verify(ctx context.Context, credentialID string) *VerificationResult {
	ctx, span := s.tracer.Start(ctx, "certificate.verify",
		trace.WithAttributes(attribute.String("credential_id", credentialID)))
	defer span.End()

	var cached VerificationResult
	if s.cache.Get(ctx, credentialID, &cached) {
		s.metrics.RecordVerify("cache_hit")
		return &cached
	}

	cert, err := s.store.GetByCredentialID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.metrics.RecordVerify("not_found")
			return &VerificationResult{Valid: false, Reason: "credential not found"}
		}
		s.logger.ErrorContext(ctx, "verification store read failed",
			"credential_id", credentialID,
			"error", err.Error(),
		)
		s.metrics.RecordVerify("error")
		return &VerificationResult{Valid: false, Reason: "verification temporarily unavailable"}
	}

	result := s.evaluate(ctx, cert)

	if cacheable(result) {
		if err := s.cache.Set(ctx, credentialID, result); err != nil {
			s.logger.WarnContext(ctx, "verification cache write failed",
				"credential_id", credentialID,
				"error", err.Error(),
			)
		}
	}
	return result
}

// cacheable reports whether a result may be stored for the full TTL. A
// degraded answer produced while the ledger was unreachable must not outlive
// the outage, so it is never cached.
func cacheable(result *VerificationResult) bool {
	return result.Blockchain == nil || result.Blockchain.Detail == ""
}

func (s *Service) evaluate(ctx context.Context, cert *models.Certificate) *VerificationResult {
	result := &VerificationResult{Certificate: cert}

	// Terminal states are conclusive; no ledger round trip needed.
	switch cert.Status {
	case models.StatusRevoked:
		result.Reason = "certificate has been revoked"
		result.Blockchain = &BlockchainStatus{Anchored: cert.AnchorTx != "", TxHash: cert.AnchorTx}
		s.metrics.RecordVerify("revoked")
		return result
	case models.StatusReissued:
		result.Reason = "certificate has been superseded by a reissue"
		result.Blockchain = &BlockchainStatus{Anchored: cert.AnchorTx != "", TxHash: cert.AnchorTx}
		s.metrics.RecordVerify("superseded")
		return result
	}

	ledger := s.ledgerStatus(ctx, cert)
	result.Blockchain = ledger
	switch {
	case ledger == nil:
		// A store row the ledger has never seen is untrusted, whatever the
		// row claims.
		result.Reason = "credential not anchored"
		s.metrics.RecordVerify("unanchored")
	case ledger.Revoked:
		// The chain is tamper-evident: a revocation recorded there wins over
		// a stale store row.
		result.Reason = "certificate revoked on ledger"
		s.metrics.RecordVerify("revoked")
	default:
		result.Valid = true
		s.metrics.RecordVerify("valid")
	}
	return result
}

// ledgerStatus returns nil when the ledger has no entry for the credential.
func (s *Service) ledgerStatus(ctx context.Context, cert *models.Certificate) *BlockchainStatus {
	record, err := s.anchorer.GetCredential(ctx, cert.CredentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil
		}
		s.logger.WarnContext(ctx, "anchor lookup failed during verification",
			"credential_id", cert.CredentialID,
			"error", err.Error(),
		)
		return &BlockchainStatus{Anchored: true, TxHash: cert.AnchorTx, Detail: "ledger unreachable"}
	}
	return &BlockchainStatus{
		Anchored: true,
		Verified: record.Title == cert.Title && record.TrackID == cert.TrackID && !record.Revoked,
		TxHash:   cert.AnchorTx,
		Revoked:  record.Revoked,
	}
}

// Revoke marks a certificate revoked. Revoking an already-revoked or
// superseded certificate is idempotent and returns the current record.
func (s *Service) Revoke(ctx context.Context, credentialID, reason string) (*models.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.revoke",
		trace.WithAttributes(attribute.String("credential_id", credentialID)))
	defer span.End()

	now := requestcontext.Now(ctx)
	cert, err := s.store.Execute(ctx, credentialID,
		func(c *models.Certificate) error { return c.CanRevoke() },
		func(c *models.Certificate) { c.ApplyRevocation(now, reason) },
	)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return s.Get(ctx, credentialID)
		}
		return nil, storeError(err)
	}

	if s.revokeOnChain {
		if _, err := s.anchorer.RevokeCredential(ctx, credentialID); err != nil {
			// Store revocation already holds; chain revocation is advisory.
			s.logger.WarnContext(ctx, "on-chain revocation failed",
				"credential_id", credentialID,
				"error", err.Error(),
			)
		}
	}

	s.invalidate(ctx, credentialID)
	s.metrics.IncrementRevoked()
	s.emit(ctx, audit.Event{
		Action:       audit.EventCertificateRevoked,
		UserID:       cert.UserID,
		CredentialID: cert.CredentialID,
		TrackID:      cert.TrackID,
		Reason:       reason,
	})
	s.logger.InfoContext(ctx, "certificate revoked",
		"credential_id", credentialID,
		"reason", reason,
	)
	return cert, nil
}

// ReissueUpdates overrides fields on the successor; zero values fall back to
// the predecessor's.
type ReissueUpdates struct {
	Title         string
	RecipientName string
	Score         *int
}

// Reissue supersedes a certificate and issues a fresh one linked to it.
// The predecessor is moved to its terminal status before the successor is
// anchored so the lineage can never cycle.
func (s *Service) Reissue(ctx context.Context, credentialID, reason string, updates *ReissueUpdates) (*models.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.reissue",
		trace.WithAttributes(attribute.String("credential_id", credentialID)))
	defer span.End()

	now := requestcontext.Now(ctx)
	if reason == "" {
		reason = "reissued"
	}

	predecessor, err := s.store.Execute(ctx, credentialID,
		func(c *models.Certificate) error {
			if c.Status == models.StatusReissued {
				return dErrors.New(dErrors.CodeConflict, "certificate has already been reissued")
			}
			return nil
		},
		func(c *models.Certificate) { c.ApplySupersession(now, reason) },
	)
	if err != nil {
		return nil, storeError(err)
	}

	req := IssueRequest{
		UserID:        predecessor.UserID,
		TrackID:       predecessor.TrackID,
		Title:         predecessor.Title,
		RecipientName: predecessor.RecipientName,
		Score:         &predecessor.Score,
		ReissuedFrom:  predecessor.CredentialID,
	}
	if updates != nil {
		if updates.Title != "" {
			req.Title = updates.Title
		}
		if updates.RecipientName != "" {
			req.RecipientName = updates.RecipientName
		}
		if updates.Score != nil {
			req.Score = updates.Score
		}
	}

	successor, err := s.Issue(ctx, req)
	if err != nil {
		// The predecessor stays superseded with no successor; surfaced loudly
		// so an operator can retry the reissue.
		s.logger.ErrorContext(ctx, "reissue failed after superseding predecessor",
			"credential_id", credentialID,
			"error", err.Error(),
		)
		return nil, err
	}

	s.invalidate(ctx, predecessor.CredentialID, successor.CredentialID)
	s.metrics.IncrementReissued()
	s.emit(ctx, audit.Event{
		Action:       audit.EventCertificateReissued,
		UserID:       successor.UserID,
		CredentialID: successor.CredentialID,
		TrackID:      successor.TrackID,
		Reason:       reason,
		AnchorTx:     successor.AnchorTx,
	})
	s.logger.InfoContext(ctx, "certificate reissued",
		"predecessor", predecessor.CredentialID,
		"successor", successor.CredentialID,
	)
	return successor, nil
}

// ListByUser returns all certificates ever issued to a user, terminal records
// included, newest first per the store's ordering.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	return s.store.ListByUser(ctx, userID)
}

// Get resolves a single certificate by its public credential ID.
func (s *Service) Get(ctx context.Context, credentialID string) (*models.Certificate, error) {
	cert, err := s.store.GetByCredentialID(ctx, credentialID)
	if err != nil {
		return nil, storeError(err)
	}
	return cert, nil
}

// Artifact returns the PDF bytes for an artifact file name, enforcing the
// serving-boundary rule that revoked certificates are never downloadable.
func (s *Service) Artifact(ctx context.Context, filename string) ([]byte, error) {
	credentialID, ok := artifact.CredentialIDFor(filename)
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "artifact not found")
	}

	cert, err := s.store.GetByCredentialID(ctx, credentialID)
	if err != nil {
		return nil, storeError(err)
	}
	if cert.Status == models.StatusRevoked {
		return nil, dErrors.New(dErrors.CodeForbidden, "certificate has been revoked")
	}

	data, err := s.vault.Open(filename)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "artifact not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "read artifact")
	}
	return data, nil
}

// storeError translates store sentinels into coded domain errors so the
// transport layer answers 404/409 instead of folding them into a 500.
func storeError(err error) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "certificate not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "certificate already exists")
	default:
		return err
	}
}

func (s *Service) invalidate(ctx context.Context, credentialIDs ...string) {
	if err := s.cache.Invalidate(ctx, credentialIDs...); err != nil {
		s.logger.WarnContext(ctx, "verification cache invalidation failed",
			"error", err.Error(),
		)
	}
}
