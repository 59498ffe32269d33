package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"certo/internal/certificate/models"
	"certo/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// Postgres persists certificate records in PostgreSQL via pgx.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const certColumns = `id, credential_id, user_id, track_id, title, recipient_name,
	issued_at, score, pdf_path, pdf_hash, status, revoked_at, revoked_reason,
	reissued_from, anchor_tx`

func (s *Postgres) Create(ctx context.Context, cert *models.Certificate) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO certificates (`+certColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		cert.ID, cert.CredentialID, cert.UserID, cert.TrackID, cert.Title,
		cert.RecipientName, cert.IssuedAt, cert.Score, cert.PDFPath, cert.PDFHash,
		string(cert.Status), cert.RevokedAt, cert.RevokedReason, cert.ReissuedFrom,
		cert.AnchorTx,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert certificate: %w", err)
	}
	return nil
}

func (s *Postgres) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+certColumns+` FROM certificates WHERE id = $1`, id)
	return scanCertificate(row)
}

func (s *Postgres) GetByCredentialID(ctx context.Context, credentialID string) (*models.Certificate, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+certColumns+` FROM certificates WHERE credential_id = $1`, credentialID)
	return scanCertificate(row)
}

func (s *Postgres) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+certColumns+` FROM certificates
		WHERE user_id = $1 ORDER BY issued_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}
	defer rows.Close()

	var out []*models.Certificate
	for rows.Next() {
		cert, err := scanCertificate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, cert)
	}
	return out, rows.Err()
}

// Execute locks the row FOR UPDATE, runs validate, applies mutate, and writes
// the mutable columns back in one transaction.
func (s *Postgres) Execute(ctx context.Context, credentialID string,
	validate func(*models.Certificate) error,
	mutate func(*models.Certificate)) (*models.Certificate, error) {

	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		SELECT `+certColumns+` FROM certificates
		WHERE credential_id = $1 FOR UPDATE`, credentialID)
	cert, err := scanCertificate(row)
	if err != nil {
		return nil, err
	}

	if err := validate(cert); err != nil {
		return nil, err
	}
	mutate(cert)

	_, err = tx.Exec(ctx, `
		UPDATE certificates
		SET status = $2, revoked_at = $3, revoked_reason = $4, pdf_path = $5,
			pdf_hash = $6, reissued_from = $7
		WHERE credential_id = $1`,
		cert.CredentialID, string(cert.Status), cert.RevokedAt, cert.RevokedReason,
		cert.PDFPath, cert.PDFHash, cert.ReissuedFrom,
	)
	if err != nil {
		return nil, fmt.Errorf("update certificate: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cert, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCertificate(row rowScanner) (*models.Certificate, error) {
	var (
		cert      models.Certificate
		status    string
		revokedAt *time.Time
	)
	err := row.Scan(
		&cert.ID, &cert.CredentialID, &cert.UserID, &cert.TrackID, &cert.Title,
		&cert.RecipientName, &cert.IssuedAt, &cert.Score, &cert.PDFPath,
		&cert.PDFHash, &status, &revokedAt, &cert.RevokedReason,
		&cert.ReissuedFrom, &cert.AnchorTx,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan certificate: %w", err)
	}
	cert.Status = models.Status(status)
	cert.RevokedAt = revokedAt
	return &cert, nil
}
