// Package service orchestrates the certificate lifecycle: issue, verify,
// revoke, reissue.
//
// Ordering is the heart of Issue: the credential is anchored on chain first,
// then rendered and persisted. An anchor with no persisted record (an
// orphaned anchor) is harmless, merely unreferenced; a record with no anchor
// would be unverifiable, so that ordering is never inverted.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"certo/internal/anchor"
	"certo/internal/audit"
	"certo/internal/certificate/artifact"
	"certo/internal/certificate/cache"
	"certo/internal/certificate/credid"
	"certo/internal/certificate/digest"
	"certo/internal/certificate/metrics"
	"certo/internal/certificate/models"
	"certo/internal/certificate/store"
	"certo/internal/pdf"
	dErrors "certo/pkg/domain-errors"
	"certo/pkg/platform/sentinel"
	"certo/pkg/recipient"
	"certo/pkg/requestcontext"
)

const defaultStoreRetries = 3

// Service coordinates the anchor client, renderer, artifact vault, store,
// cache and audit trail.
type Service struct {
	store    store.Store
	anchorer anchor.Client
	renderer *pdf.Renderer
	vault    *artifact.Vault
	logger   *slog.Logger

	cache         *cache.VerifyCache
	audit         audit.Publisher
	metrics       *metrics.Metrics
	tracer        trace.Tracer
	issuerName    string
	ownerAddress  string
	storeRetries  int
	revokeOnChain bool
}

// Option configures optional service collaborators.
type Option func(*Service)

func WithCache(c *cache.VerifyCache) Option {
	return func(s *Service) { s.cache = c }
}

func WithAudit(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithIssuerName sets the display name printed on certificates.
func WithIssuerName(name string) Option {
	return func(s *Service) { s.issuerName = name }
}

// WithOwnerAddress sets the on-chain owner recorded for anchored credentials,
// normally the service wallet address.
func WithOwnerAddress(addr string) Option {
	return func(s *Service) { s.ownerAddress = addr }
}

// WithStoreRetries overrides the number of persistence attempts after a
// successful anchor.
func WithStoreRetries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.storeRetries = n
		}
	}
}

// WithRevokeOnChain also submits revocations to the anchor ledger. Chain
// revocation is advisory; the store is authoritative either way.
func WithRevokeOnChain(enabled bool) Option {
	return func(s *Service) { s.revokeOnChain = enabled }
}

func New(st store.Store, anchorer anchor.Client, renderer *pdf.Renderer, vault *artifact.Vault, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:        st,
		anchorer:     anchorer,
		renderer:     renderer,
		vault:        vault,
		logger:       logger,
		tracer:       otel.Tracer("certo/certificate"),
		issuerName:   "Certo Academy",
		storeRetries: defaultStoreRetries,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueRequest carries the inputs for a new certificate. A nil Score means
// the default applies. RecipientName falls back to a name derived from the
// email address. ReissuedFrom is set only by Reissue so the lineage link is
// part of the initial persist, never patched in afterwards.
type IssueRequest struct {
	UserID        string
	Email         string
	TrackID       string
	Title         string
	RecipientName string
	Score         *int
	ReissuedFrom  string
}

// Issue anchors, renders and persists a new certificate.
func (s *Service) Issue(ctx context.Context, req IssueRequest) (*models.Certificate, error) {
	ctx, span := s.tracer.Start(ctx, "certificate.issue",
		trace.WithAttributes(attribute.String("track_id", req.TrackID)))
	defer span.End()

	now := requestcontext.Now(ctx)

	name := req.RecipientName
	if name == "" {
		name = recipient.DeriveName(req.Email)
	}
	score := models.DefaultScore
	if req.Score != nil {
		score = *req.Score
	}

	credentialID := credid.Generate(req.TrackID, now)
	cert, err := models.NewCertificate(credentialID, req.UserID, req.TrackID, req.Title, name, score, now)
	if err != nil {
		s.metrics.IncrementIssueFailure("validate")
		return nil, err
	}
	cert.ReissuedFrom = req.ReissuedFrom

	receipt, err := s.anchorCredential(ctx, cert)
	if err != nil {
		s.metrics.IncrementIssueFailure("anchor")
		return nil, err
	}
	cert.AnchorTx = receipt.TxHash
	span.SetAttributes(attribute.String("anchor_tx", receipt.TxHash))

	data, err := s.renderArtifact(ctx, cert)
	if err != nil {
		s.metrics.IncrementIssueFailure("render")
		s.reportOrphanedAnchor(ctx, cert, "render", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "render certificate")
	}
	cert.PDFHash = digest.Hash(data)

	path, err := s.vault.Save(cert.CredentialID, data)
	if err != nil {
		s.metrics.IncrementIssueFailure("artifact")
		s.reportOrphanedAnchor(ctx, cert, "artifact", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "store certificate artifact")
	}
	cert.PDFPath = path

	if err := s.persistWithRetry(ctx, cert); err != nil {
		s.metrics.IncrementIssueFailure("store")
		s.reportOrphanedAnchor(ctx, cert, "store", err)
		return nil, err
	}

	s.metrics.IncrementIssued()
	s.emit(ctx, audit.Event{
		Action:       audit.EventCertificateIssued,
		UserID:       cert.UserID,
		CredentialID: cert.CredentialID,
		TrackID:      cert.TrackID,
		AnchorTx:     cert.AnchorTx,
	})
	s.logger.InfoContext(ctx, "certificate issued",
		"credential_id", cert.CredentialID,
		"track_id", cert.TrackID,
		"anchor_tx", cert.AnchorTx,
	)
	return cert, nil
}

func (s *Service) anchorCredential(ctx context.Context, cert *models.Certificate) (*anchor.Receipt, error) {
	start := time.Now()
	receipt, err := s.anchorer.IssueCredential(ctx, cert.CredentialID, cert.Title, cert.TrackID, s.ownerAddress)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAnchorDuration(time.Since(start).Seconds())
	return receipt, nil
}

func (s *Service) renderArtifact(ctx context.Context, cert *models.Certificate) ([]byte, error) {
	start := time.Now()
	data, err := s.renderer.Render(pdf.Fields{
		RecipientName: cert.RecipientName,
		Title:         cert.Title,
		TrackID:       cert.TrackID,
		CredentialID:  cert.CredentialID,
		Issuer:        s.issuerName,
		Score:         cert.Score,
		IssuedAt:      cert.IssuedAt,
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveRenderDuration(time.Since(start).Seconds())
	return data, nil
}

// persistWithRetry retries transient store failures with the already-rendered
// artifact; the anchor and PDF are never redone for a flaky store write.
// Conflicts are not retried: the credential ID is minted from 6 random base36
// characters plus a timestamp, so a duplicate means something is badly wrong.
func (s *Service) persistWithRetry(ctx context.Context, cert *models.Certificate) error {
	var lastErr error
	for attempt := 1; attempt <= s.storeRetries; attempt++ {
		lastErr = s.store.Create(ctx, cert)
		if lastErr == nil {
			return nil
		}
		if errors.Is(lastErr, sentinel.ErrConflict) {
			return dErrors.Wrap(lastErr, dErrors.CodeConflict, "credential ID already exists")
		}
		s.logger.WarnContext(ctx, "certificate persist attempt failed",
			"credential_id", cert.CredentialID,
			"attempt", attempt,
			"error", lastErr.Error(),
		)
		select {
		case <-ctx.Done():
			return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "persist certificate")
		case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
		}
	}
	return dErrors.Wrap(lastErr, dErrors.CodeUnavailable, "persist certificate")
}

// reportOrphanedAnchor records a confirmed anchor whose certificate was never
// persisted. The anchor is unreferenced, not dangerous; it is logged loudly
// because it is burned gas and a sign of a failing dependency.
func (s *Service) reportOrphanedAnchor(ctx context.Context, cert *models.Certificate, stage string, cause error) {
	s.metrics.IncrementOrphanedAnchor()
	s.logger.ErrorContext(ctx, "orphaned anchor: credential anchored but not persisted",
		"credential_id", cert.CredentialID,
		"anchor_tx", cert.AnchorTx,
		"failed_stage", stage,
		"error", cause.Error(),
	)
	s.emit(ctx, audit.Event{
		Action:       audit.EventOrphanedAnchor,
		UserID:       cert.UserID,
		CredentialID: cert.CredentialID,
		TrackID:      cert.TrackID,
		AnchorTx:     cert.AnchorTx,
		Reason:       stage,
	})
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.RequestID = requestcontext.RequestID(ctx)
	if event.ActorID == "" {
		event.ActorID = requestcontext.UserID(ctx)
	}
	event.Device = requestcontext.Device(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", string(event.Action),
			"error", err.Error(),
		)
	}
}
