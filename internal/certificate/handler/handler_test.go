package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certo/internal/certificate/models"
	"certo/internal/certificate/service"
	"certo/internal/token"
	dErrors "certo/pkg/domain-errors"
)

// fakeService lets each test script the handler's collaborator.
type fakeService struct {
	issue    func(ctx context.Context, req service.IssueRequest) (*models.Certificate, error)
	verify   func(ctx context.Context, credentialID string) *service.VerificationResult
	revoke   func(ctx context.Context, credentialID, reason string) (*models.Certificate, error)
	reissue  func(ctx context.Context, credentialID, reason string, updates *service.ReissueUpdates) (*models.Certificate, error)
	get      func(ctx context.Context, credentialID string) (*models.Certificate, error)
	list     func(ctx context.Context, userID string) ([]*models.Certificate, error)
	artifact func(ctx context.Context, filename string) ([]byte, error)
}

func (f *fakeService) Issue(ctx context.Context, req service.IssueRequest) (*models.Certificate, error) {
	return f.issue(ctx, req)
}

func (f *fakeService) Verify(ctx context.Context, credentialID string) *service.VerificationResult {
	return f.verify(ctx, credentialID)
}

func (f *fakeService) Revoke(ctx context.Context, credentialID, reason string) (*models.Certificate, error) {
	return f.revoke(ctx, credentialID, reason)
}

func (f *fakeService) Reissue(ctx context.Context, credentialID, reason string, updates *service.ReissueUpdates) (*models.Certificate, error) {
	return f.reissue(ctx, credentialID, reason, updates)
}

func (f *fakeService) Get(ctx context.Context, credentialID string) (*models.Certificate, error) {
	return f.get(ctx, credentialID)
}

func (f *fakeService) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	return f.list(ctx, userID)
}

func (f *fakeService) Artifact(ctx context.Context, filename string) ([]byte, error) {
	return f.artifact(ctx, filename)
}

const adminToken = "test-admin-token"

func newRouter(t *testing.T, svc Service) (chi.Router, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := token.NewService("test-signing-key", "certo")
	bearer, err := tokens.Mint("u1", "jane@example.com", time.Hour)
	require.NoError(t, err)

	// Dev fallback: the "hash" equals the raw token.
	h := New(svc, logger, nil, tokens, adminToken)
	r := chi.NewRouter()
	h.Register(r)
	return r, bearer
}

func sampleCertificate() *models.Certificate {
	return &models.Certificate{
		ID:            uuid.New(),
		CredentialID:  "ENG_TRACK-ABC123-XYZ789",
		UserID:        "u1",
		TrackID:       "eng_track",
		Title:         "AI Engineering",
		RecipientName: "Jane Doe",
		IssuedAt:      time.Now().UTC(),
		Score:         100,
		PDFPath:       "/pdfs/ENG_TRACK-ABC123-XYZ789.pdf",
		PDFHash:       "abc123",
		Status:        models.StatusActive,
		AnchorTx:      "0xdeadbeef",
	}
}

func TestIssueEndpoint(t *testing.T) {
	t.Run("issues for the authenticated user", func(t *testing.T) {
		var got service.IssueRequest
		svc := &fakeService{
			issue: func(_ context.Context, req service.IssueRequest) (*models.Certificate, error) {
				got = req
				return sampleCertificate(), nil
			},
		}
		r, bearer := newRouter(t, svc)

		body := bytes.NewBufferString(`{"trackId":"eng_track","title":"AI Engineering"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/issue", body)
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "u1", got.UserID)
		assert.Equal(t, "jane@example.com", got.Email)

		var cert models.Certificate
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cert))
		assert.Equal(t, "ENG_TRACK-ABC123-XYZ789", cert.CredentialID)
	})

	t.Run("rejects unauthenticated requests", func(t *testing.T) {
		r, _ := newRouter(t, &fakeService{})

		body := bytes.NewBufferString(`{"trackId":"t","title":"T"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/issue", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		r, bearer := newRouter(t, &fakeService{})

		body := bytes.NewBufferString(`{"title":"AI Engineering"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/issue", body)
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects out-of-range score", func(t *testing.T) {
		r, bearer := newRouter(t, &fakeService{})

		body := bytes.NewBufferString(`{"trackId":"t","title":"T","score":101}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/issue", body)
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns the PDF when requested via Accept", func(t *testing.T) {
		svc := &fakeService{
			issue: func(context.Context, service.IssueRequest) (*models.Certificate, error) {
				return sampleCertificate(), nil
			},
			artifact: func(_ context.Context, filename string) ([]byte, error) {
				assert.Equal(t, "ENG_TRACK-ABC123-XYZ789.pdf", filename)
				return []byte("%PDF-1.4 fake"), nil
			},
		}
		r, bearer := newRouter(t, svc)

		body := bytes.NewBufferString(`{"trackId":"eng_track","title":"AI Engineering"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/issue", body)
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/pdf")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Body.String(), "%PDF")
	})

	t.Run("maps anchor outage to 503", func(t *testing.T) {
		svc := &fakeService{
			issue: func(context.Context, service.IssueRequest) (*models.Certificate, error) {
				return nil, dErrors.New(dErrors.CodeUnavailable, "anchor confirmation timed out")
			},
		}
		r, bearer := newRouter(t, svc)

		body := bytes.NewBufferString(`{"trackId":"t","title":"T"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/issue", body)
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestVerifyEndpoint(t *testing.T) {
	t.Run("valid credential", func(t *testing.T) {
		svc := &fakeService{
			verify: func(_ context.Context, credentialID string) *service.VerificationResult {
				assert.Equal(t, "ENG_TRACK-ABC123-XYZ789", credentialID)
				return &service.VerificationResult{Valid: true, Certificate: sampleCertificate()}
			},
		}
		r, _ := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/certificates/verify/ENG_TRACK-ABC123-XYZ789", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result service.VerificationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Valid)
	})

	t.Run("unknown credential still answers 200", func(t *testing.T) {
		svc := &fakeService{
			verify: func(context.Context, string) *service.VerificationResult {
				return &service.VerificationResult{Valid: false, Reason: "credential not found"}
			},
		}
		r, _ := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/certificates/verify/garbage", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var result service.VerificationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Valid)
		assert.Equal(t, "credential not found", result.Reason)
	})
}

func TestAdminEndpoints(t *testing.T) {
	t.Run("revoke requires the admin token", func(t *testing.T) {
		r, _ := newRouter(t, &fakeService{})

		body := bytes.NewBufferString(`{"credentialId":"C-1"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/revoke", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("revoke with valid token", func(t *testing.T) {
		revoked := sampleCertificate()
		revoked.Status = models.StatusRevoked
		svc := &fakeService{
			revoke: func(_ context.Context, credentialID, reason string) (*models.Certificate, error) {
				assert.Equal(t, "ENG_TRACK-ABC123-XYZ789", credentialID)
				assert.Equal(t, "policy violation", reason)
				return revoked, nil
			},
		}
		r, _ := newRouter(t, svc)

		body := bytes.NewBufferString(`{"credentialId":"ENG_TRACK-ABC123-XYZ789","reason":"policy violation"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/revoke", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Admin-Token", adminToken)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Success     bool                `json:"success"`
			Certificate *models.Certificate `json:"certificate"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, models.StatusRevoked, resp.Certificate.Status)
	})

	t.Run("reissue returns 201 with the successor", func(t *testing.T) {
		predecessor := sampleCertificate()
		predecessor.Status = models.StatusReissued
		successor := sampleCertificate()
		successor.CredentialID = "ENG_TRACK-DEF456-ABC123"
		successor.ReissuedFrom = "ENG_TRACK-ABC123-XYZ789"
		svc := &fakeService{
			reissue: func(_ context.Context, credentialID, reason string, updates *service.ReissueUpdates) (*models.Certificate, error) {
				assert.Equal(t, "name fix", reason)
				assert.Nil(t, updates)
				return successor, nil
			},
			get: func(_ context.Context, credentialID string) (*models.Certificate, error) {
				assert.Equal(t, "ENG_TRACK-ABC123-XYZ789", credentialID)
				return predecessor, nil
			},
		}
		r, _ := newRouter(t, svc)

		body := bytes.NewBufferString(`{"oldCredentialId":"ENG_TRACK-ABC123-XYZ789","reason":"name fix"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/reissue", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Admin-Token", adminToken)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		var resp struct {
			Success        bool                `json:"success"`
			OldCertificate *models.Certificate `json:"oldCertificate"`
			NewCertificate *models.Certificate `json:"newCertificate"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, models.StatusReissued, resp.OldCertificate.Status)
		assert.Equal(t, "ENG_TRACK-ABC123-XYZ789", resp.NewCertificate.ReissuedFrom)
	})

	t.Run("revoke of unknown credential is 404", func(t *testing.T) {
		svc := &fakeService{
			revoke: func(context.Context, string, string) (*models.Certificate, error) {
				return nil, dErrors.New(dErrors.CodeNotFound, "certificate not found")
			},
		}
		r, _ := newRouter(t, svc)

		body := bytes.NewBufferString(`{"credentialId":"NOPE"}`)
		req := httptest.NewRequest(http.MethodPost, "/certificates/revoke", body)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Admin-Token", adminToken)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListMineEndpoint(t *testing.T) {
	t.Run("returns the caller's certificates", func(t *testing.T) {
		svc := &fakeService{
			list: func(_ context.Context, userID string) ([]*models.Certificate, error) {
				assert.Equal(t, "u1", userID)
				return []*models.Certificate{sampleCertificate()}, nil
			},
		}
		r, bearer := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/certificates/mine", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Certificates []*models.Certificate `json:"certificates"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Certificates, 1)
	})

	t.Run("empty list serializes as an array", func(t *testing.T) {
		svc := &fakeService{
			list: func(context.Context, string) ([]*models.Certificate, error) {
				return nil, nil
			},
		}
		r, bearer := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/certificates/mine", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"certificates":[]}`, rec.Body.String())
	})
}

func TestArtifactEndpoint(t *testing.T) {
	t.Run("serves active PDFs", func(t *testing.T) {
		svc := &fakeService{
			artifact: func(_ context.Context, filename string) ([]byte, error) {
				assert.Equal(t, "ENG_TRACK-ABC123-XYZ789.pdf", filename)
				return []byte("%PDF-1.4 fake"), nil
			},
		}
		r, _ := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/pdfs/ENG_TRACK-ABC123-XYZ789.pdf", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	})

	t.Run("revoked PDFs are forbidden", func(t *testing.T) {
		svc := &fakeService{
			artifact: func(context.Context, string) ([]byte, error) {
				return nil, dErrors.New(dErrors.CodeForbidden, "certificate has been revoked")
			},
		}
		r, _ := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/pdfs/ENG_TRACK-ABC123-XYZ789.pdf", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown PDFs are 404", func(t *testing.T) {
		svc := &fakeService{
			artifact: func(context.Context, string) ([]byte, error) {
				return nil, dErrors.New(dErrors.CodeNotFound, "artifact not found")
			},
		}
		r, _ := newRouter(t, svc)

		req := httptest.NewRequest(http.MethodGet, "/pdfs/missing.pdf", nil)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
