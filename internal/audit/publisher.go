package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Publisher is the interface the orchestrator emits through.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// StorePublisher writes events to a Store, synchronously by default or
// through a buffered channel when WithAsyncBuffer is set. Async mode drops
// events when the buffer is full rather than blocking the request path;
// Close drains whatever is buffered.
type StorePublisher struct {
	store  Store
	logger *slog.Logger

	inbox  chan Event
	done   chan struct{}
	closed sync.Once
}

// Option configures a StorePublisher.
type Option func(*StorePublisher)

// WithAsyncBuffer switches the publisher to asynchronous delivery with the
// given buffer size.
func WithAsyncBuffer(size int) Option {
	return func(p *StorePublisher) {
		p.inbox = make(chan Event, size)
	}
}

// WithLogger sets a logger for dropped or failed events.
func WithLogger(logger *slog.Logger) Option {
	return func(p *StorePublisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *StorePublisher {
	p := &StorePublisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.drain()
	}
	return p
}

func (p *StorePublisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
	default:
		if p.logger != nil {
			p.logger.WarnContext(ctx, "audit buffer full, event dropped",
				"action", string(event.Action),
				"credential_id", event.CredentialID,
			)
		}
	}
	return nil
}

// List exposes the backing store's per-user view.
func (p *StorePublisher) List(ctx context.Context, userID string) ([]Event, error) {
	return p.store.ListByUser(ctx, userID)
}

func (p *StorePublisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil && p.logger != nil {
			p.logger.Error("audit append failed",
				"action", string(event.Action),
				"error", err.Error(),
			)
		}
	}
}

// Close stops accepting events and drains the buffer.
func (p *StorePublisher) Close() error {
	p.closed.Do(func() {
		if p.inbox != nil {
			close(p.inbox)
			<-p.done
		}
	})
	return nil
}

var _ Publisher = (*StorePublisher)(nil)
