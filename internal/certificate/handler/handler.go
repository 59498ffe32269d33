// Package handler exposes the certificate lifecycle over HTTP.
//
// Route groups and their guards:
//   - public: verification and PDF download, no auth
//   - authenticated: issue and list, bearer token required
//   - admin: revoke and reissue, admin token required
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"certo/internal/certificate/metrics"
	"certo/internal/certificate/models"
	"certo/internal/certificate/service"
	"certo/internal/platform/middleware"
	dErrors "certo/pkg/domain-errors"
	"certo/pkg/platform/httputil"
)

// Service defines the lifecycle operations the handler needs.
type Service interface {
	Issue(ctx context.Context, req service.IssueRequest) (*models.Certificate, error)
	Verify(ctx context.Context, credentialID string) *service.VerificationResult
	Revoke(ctx context.Context, credentialID, reason string) (*models.Certificate, error)
	Reissue(ctx context.Context, credentialID, reason string, updates *service.ReissueUpdates) (*models.Certificate, error)
	Get(ctx context.Context, credentialID string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error)
	Artifact(ctx context.Context, filename string) ([]byte, error)
}

// Handler handles certificate endpoints.
type Handler struct {
	logger         *slog.Logger
	certs          Service
	metrics        *metrics.Metrics
	jwtValidator   middleware.JWTValidator
	adminTokenHash string
}

func New(
	certs Service,
	logger *slog.Logger,
	m *metrics.Metrics,
	jwtValidator middleware.JWTValidator,
	adminTokenHash string) *Handler {
	return &Handler{
		logger:         logger,
		certs:          certs,
		metrics:        m,
		jwtValidator:   jwtValidator,
		adminTokenHash: adminTokenHash,
	}
}

// Register mounts the certificate routes on the given router.
func (h *Handler) Register(r chi.Router) {
	base := chi.NewRouter()
	base.Use(middleware.Recovery(h.logger))
	base.Use(middleware.RequestID)
	base.Use(middleware.RequestTime)
	base.Use(middleware.Logger(h.logger))
	base.Use(middleware.Device)
	base.Use(middleware.Timeout(120 * time.Second))
	base.Use(middleware.Latency(h.metrics))

	base.Get("/certificates/verify/{credentialID}", h.handleVerify)
	base.Get("/pdfs/{filename}", h.handleArtifact)

	base.Group(func(authed chi.Router) {
		authed.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		authed.With(middleware.ContentTypeJSON).Post("/certificates/issue", h.handleIssue)
		authed.Get("/certificates/mine", h.handleListMine)
	})

	base.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(h.adminTokenHash, h.logger))
		admin.Use(middleware.ContentTypeJSON)
		admin.Post("/certificates/revoke", h.handleRevoke)
		admin.Post("/certificates/reissue", h.handleReissue)
	})

	r.Mount("/", base)
}

type issueRequest struct {
	TrackID       string `json:"trackId"`
	Title         string `json:"title"`
	RecipientName string `json:"recipientName,omitempty"`
	Score         *int   `json:"score,omitempty"`
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := middleware.GetUserID(ctx)
	if userID == "" {
		h.logger.ErrorContext(ctx, "userID missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.TrackID == "" || req.Title == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "trackId and title are required"))
		return
	}
	if req.Score != nil && (*req.Score < 0 || *req.Score > 100) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "score must be between 0 and 100"))
		return
	}

	cert, err := h.certs.Issue(ctx, service.IssueRequest{
		UserID:        userID,
		Email:         middleware.GetEmail(ctx),
		TrackID:       req.TrackID,
		Title:         req.Title,
		RecipientName: req.RecipientName,
		Score:         req.Score,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate issue failed",
			"request_id", middleware.GetRequestID(ctx),
			"track_id", req.TrackID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	if r.Header.Get("Accept") == "application/pdf" {
		data, err := h.certs.Artifact(ctx, cert.CredentialID+".pdf")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		writePDF(w, http.StatusCreated, cert.CredentialID, data)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, cert)
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	credentialID := chi.URLParam(r, "credentialID")
	result := h.certs.Verify(r.Context(), credentialID)
	// Always 200: "invalid" is a successful answer to the question asked.
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return
	}

	certs, err := h.certs.ListByUser(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "certificate list failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to list certificates"))
		return
	}
	if certs == nil {
		certs = []*models.Certificate{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"certificates": certs})
}

type revocationRequest struct {
	CredentialID string `json:"credentialId"`
	Reason       string `json:"reason,omitempty"`
}

func (h *Handler) handleRevoke(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req revocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CredentialID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "credentialId is required"))
		return
	}

	cert, err := h.certs.Revoke(ctx, req.CredentialID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "certificate revoke failed",
			"request_id", middleware.GetRequestID(ctx),
			"credential_id", req.CredentialID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"certificate": cert,
	})
}

type reissueRequest struct {
	OldCredentialID string          `json:"oldCredentialId"`
	Reason          string          `json:"reason,omitempty"`
	UpdatedDetails  *reissueDetails `json:"updatedDetails,omitempty"`
}

type reissueDetails struct {
	Title         string `json:"title,omitempty"`
	RecipientName string `json:"recipientName,omitempty"`
	Score         *int   `json:"score,omitempty"`
}

func (h *Handler) handleReissue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req reissueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OldCredentialID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "oldCredentialId is required"))
		return
	}

	var updates *service.ReissueUpdates
	if req.UpdatedDetails != nil {
		updates = &service.ReissueUpdates{
			Title:         req.UpdatedDetails.Title,
			RecipientName: req.UpdatedDetails.RecipientName,
			Score:         req.UpdatedDetails.Score,
		}
	}

	successor, err := h.certs.Reissue(ctx, req.OldCredentialID, req.Reason, updates)
	if err != nil {
		h.logger.WarnContext(ctx, "certificate reissue failed",
			"request_id", middleware.GetRequestID(ctx),
			"credential_id", req.OldCredentialID,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}

	predecessor, err := h.certs.Get(ctx, req.OldCredentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"success":        true,
		"oldCertificate": predecessor,
		"newCertificate": successor,
	})
}

func (h *Handler) handleArtifact(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "filename")
	data, err := h.certs.Artifact(r.Context(), filename)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	writePDF(w, http.StatusOK, filename, data)
}

func writePDF(w http.ResponseWriter, status int, name string, data []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="`+name+`"`)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
