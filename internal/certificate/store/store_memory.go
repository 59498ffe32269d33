package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"certo/internal/certificate/models"
	"certo/pkg/platform/sentinel"
)

// InMemory is the development and test store. All writes copy records so
// callers never share mutable state with the store.
type InMemory struct {
	mu     sync.RWMutex
	byCred map[string]*models.Certificate
	byID   map[uuid.UUID]string
}

func NewInMemory() *InMemory {
	return &InMemory{
		byCred: make(map[string]*models.Certificate),
		byID:   make(map[uuid.UUID]string),
	}
}

func (s *InMemory) Create(ctx context.Context, cert *models.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCred[cert.CredentialID]; exists {
		return sentinel.ErrConflict
	}
	cp := *cert
	s.byCred[cert.CredentialID] = &cp
	s.byID[cert.ID] = cert.CredentialID
	return nil
}

func (s *InMemory) GetByID(ctx context.Context, id uuid.UUID) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credID, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byCred[credID]
	return &cp, nil
}

func (s *InMemory) GetByCredentialID(ctx context.Context, credentialID string) (*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, ok := s.byCred[credentialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *cert
	return &cp, nil
}

func (s *InMemory) ListByUser(ctx context.Context, userID string) ([]*models.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Certificate
	for _, cert := range s.byCred {
		if cert.UserID == userID {
			cp := *cert
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssuedAt.After(out[j].IssuedAt) })
	return out, nil
}

// Execute runs validate-then-mutate under the store lock so concurrent
// transitions on the same record serialize.
func (s *InMemory) Execute(ctx context.Context, credentialID string,
	validate func(*models.Certificate) error,
	mutate func(*models.Certificate)) (*models.Certificate, error) {

	s.mu.Lock()
	defer s.mu.Unlock()

	cert, ok := s.byCred[credentialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(cert); err != nil {
		return nil, err
	}
	mutate(cert)
	cp := *cert
	return &cp, nil
}
