// Package test exercises the fully wired certificate lifecycle end to end:
// issue, verify, revoke, reissue, and PDF serving through the real router
// with the in-memory store and ledger.
package test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certo/internal/anchor"
	"certo/internal/audit"
	"certo/internal/certificate/artifact"
	"certo/internal/certificate/handler"
	"certo/internal/certificate/models"
	"certo/internal/certificate/service"
	"certo/internal/certificate/store"
	"certo/internal/pdf"
	"certo/internal/token"
	"certo/pkg/testutil"
)

const adminToken = "test-admin-token"

type fixture struct {
	router chi.Router
	bearer string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	templatePath := filepath.Join(dir, "certificate.tmpl")
	layout := "h1|Certificate of Completion\nh2|{{.RecipientName}}\ntext|{{.Title}} {{.Score}}/100 {{.Date}}\nsmall|{{.CredentialID}} by {{.Issuer}}\n"
	require.NoError(t, os.WriteFile(templatePath, []byte(layout), 0o644))

	vault, err := artifact.NewVault(filepath.Join(dir, "pdfs"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := token.NewService("test-signing-key", "certo")
	bearer, err := tokens.Mint("u1", "jane.doe@example.com", time.Hour)
	require.NoError(t, err)

	svc := service.New(
		store.NewInMemory(),
		anchor.NewLedger(),
		pdf.NewRenderer(templatePath, ""),
		vault,
		logger,
		service.WithAudit(audit.NewPublisher(audit.NewInMemoryStore())),
		service.WithOwnerAddress("certo-test"),
	)

	router := chi.NewRouter()
	handler.New(svc, logger, nil, tokens, adminToken).Register(router)
	return &fixture{router: router, bearer: bearer}
}

func (f *fixture) issue(t *testing.T, body any) *models.Certificate {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/certificates/issue", body)
	req.Header.Set("Authorization", "Bearer "+f.bearer)
	rr := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var cert models.Certificate
	testutil.DecodeJSON(t, rr, &cert)
	return &cert
}

func (f *fixture) verify(t *testing.T, credentialID string) *service.VerificationResult {
	t.Helper()
	req := testutil.NewRequest(t, http.MethodGet, "/certificates/verify/"+credentialID)
	rr := testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var result service.VerificationResult
	testutil.DecodeJSON(t, rr, &result)
	return &result
}

func (f *fixture) admin(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, path, body)
	req.Header.Set("X-Admin-Token", adminToken)
	return testutil.DoRequest(f.router, req)
}

func TestCertificateLifecycle(t *testing.T) {
	f := newFixture(t)

	cert := f.issue(t, map[string]any{"trackId": "eng_track", "title": "AI Engineering"})
	assert.Regexp(t, `^ENG_TRACK-[0-9A-Z]+-[0-9A-Z]{6}$`, cert.CredentialID)
	assert.Equal(t, "Jane Doe", cert.RecipientName)
	assert.NotEmpty(t, cert.AnchorTx)
	assert.NotEmpty(t, cert.PDFHash)

	testutil.Then(t, "the credential verifies as valid", func(t *testing.T) {
		result := f.verify(t, cert.CredentialID)
		assert.True(t, result.Valid)
		require.NotNil(t, result.Blockchain)
		assert.True(t, result.Blockchain.Anchored)
	})

	testutil.Then(t, "the PDF downloads and matches the bound hash", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/pdfs/"+cert.CredentialID+".pdf")
		rr := testutil.DoRequest(f.router, req)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, strings.HasPrefix(rr.Body.String(), "%PDF"))
	})

	testutil.When(t, "the certificate is revoked", func(t *testing.T) {
		rr := f.admin(t, "/certificates/revoke", map[string]any{
			"credentialId": cert.CredentialID,
			"reason":       "policy violation",
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		testutil.Then(t, "verification reports invalid", func(t *testing.T) {
			result := f.verify(t, cert.CredentialID)
			assert.False(t, result.Valid)
			assert.Contains(t, result.Reason, "revoked")
		})

		testutil.Then(t, "the PDF is no longer served", func(t *testing.T) {
			req := testutil.NewRequest(t, http.MethodGet, "/pdfs/"+cert.CredentialID+".pdf")
			rr := testutil.DoRequest(f.router, req)
			assert.Equal(t, http.StatusForbidden, rr.Code)
		})
	})
}

func TestReissueLifecycle(t *testing.T) {
	f := newFixture(t)

	cert := f.issue(t, map[string]any{
		"trackId":       "eng_track",
		"title":         "AI Engineering",
		"recipientName": "Jane Doe",
		"score":         91,
	})

	rr := f.admin(t, "/certificates/reissue", map[string]any{
		"oldCredentialId": cert.CredentialID,
		"reason":          "name correction",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var reissued struct {
		Success        bool                `json:"success"`
		OldCertificate *models.Certificate `json:"oldCertificate"`
		NewCertificate *models.Certificate `json:"newCertificate"`
	}
	testutil.DecodeJSON(t, rr, &reissued)
	require.True(t, reissued.Success)
	successor := reissued.NewCertificate
	assert.Equal(t, models.StatusReissued, reissued.OldCertificate.Status)
	assert.NotEqual(t, cert.CredentialID, successor.CredentialID)
	assert.Equal(t, cert.CredentialID, successor.ReissuedFrom)
	assert.Equal(t, 91, successor.Score)

	testutil.Then(t, "the successor verifies and the predecessor does not", func(t *testing.T) {
		assert.True(t, f.verify(t, successor.CredentialID).Valid)

		old := f.verify(t, cert.CredentialID)
		assert.False(t, old.Valid)
		assert.Contains(t, old.Reason, "superseded")
	})

	testutil.Then(t, "both certificates appear in the user's list", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/certificates/mine")
		req.Header.Set("Authorization", "Bearer "+f.bearer)
		rr := testutil.DoRequest(f.router, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Certificates []*models.Certificate `json:"certificates"`
		}
		testutil.DecodeJSON(t, rr, &resp)
		assert.Len(t, resp.Certificates, 2)
	})
}

func TestVerifyNeverErrors(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"garbage", "ENG-1-2", "NOPE_123", "totally-made-up"} {
		result := f.verify(t, id)
		assert.False(t, result.Valid)
		assert.NotEmpty(t, result.Reason)
	}
}

func TestAdminGuards(t *testing.T) {
	f := newFixture(t)
	cert := f.issue(t, map[string]any{"trackId": "eng_track", "title": "AI Engineering"})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/certificates/revoke",
		map[string]any{"credentialId": cert.CredentialID})
	req.Header.Set("X-Admin-Token", "wrong-token")
	rr := testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	assert.True(t, f.verify(t, cert.CredentialID).Valid, "a rejected revoke must not change state")
}
