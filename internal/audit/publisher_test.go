package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherSyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		UserID:       "u1",
		CredentialID: "ENG-ABC-XYZ123",
		Action:       EventCertificateIssued,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCertificateIssued, events[0].Action)
	assert.NotEmpty(t, events[0].ID)
	assert.False(t, events[0].Timestamp.IsZero())
}

func TestPublisherAsyncMode(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{
		UserID: "u1",
		Action: EventCertificateRevoked,
	})
	require.NoError(t, err)

	// Wait for async processing
	time.Sleep(100 * time.Millisecond)

	events, err := pub.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, EventCertificateRevoked, events[0].Action)
}

func TestPublisherAsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		err := pub.Emit(context.Background(), Event{
			UserID: "u1",
			Action: EventCertificateIssued,
		})
		require.NoError(t, err)
	}

	pub.Close()

	events, err := store.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisherBufferFullDropsInsteadOfBlocking(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.Emit(context.Background(), Event{
				UserID: "u1",
				Action: EventCertificateIssued,
			})
		}()
	}
	wg.Wait()
	// No assertion on count: drops are allowed with a full buffer. The test
	// guards against Emit ever blocking the request path.
}

func TestPublisherPreservesExistingTimestamp(t *testing.T) {
	store := NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	pinned := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Emit(context.Background(), Event{
		UserID:    "u1",
		Action:    EventCertificateIssued,
		Timestamp: pinned,
	})
	require.NoError(t, err)

	events, err := pub.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, pinned, events[0].Timestamp)
}
