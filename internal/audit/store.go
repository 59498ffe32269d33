package audit

import "context"

// Store is an append-only audit sink with per-user retrieval for data
// export requests.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID string) ([]Event, error)
}
