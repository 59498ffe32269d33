// Package store persists certificate records. Implementations are
// interface-driven so the orchestrator can run against in-memory storage in
// tests and development and PostgreSQL in production without rewiring.
package store

import (
	"context"

	"github.com/google/uuid"

	"certo/internal/certificate/models"
)

// Store is the persistence contract for certificate records, keyed by the
// public credential ID with a secondary lookup by internal ID.
//
// Create must enforce credential ID uniqueness atomically and return
// sentinel.ErrConflict on a duplicate. Execute holds the record lock (mutex
// or FOR UPDATE) across validate and mutate so concurrent transitions on the
// same record serialize; it returns the post-mutation record.
type Store interface {
	Create(ctx context.Context, cert *models.Certificate) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error)
	GetByCredentialID(ctx context.Context, credentialID string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error)
	Execute(ctx context.Context, credentialID string,
		validate func(*models.Certificate) error,
		mutate func(*models.Certificate)) (*models.Certificate, error)
}
