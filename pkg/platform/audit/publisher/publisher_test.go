package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "vaxreg/pkg/domain-errors"
	"vaxreg/pkg/platform/audit"
	"vaxreg/pkg/platform/audit/store/memory"
)

type failingStore struct {
	err error
}

func (s *failingStore) Append(_ context.Context, _ audit.Event) error {
	return s.err
}

// blockingStore holds every Append until release is closed.
type blockingStore struct {
	release chan struct{}
	mu      sync.Mutex
	n       int
}

func (s *blockingStore) Append(_ context.Context, _ audit.Event) error {
	<-s.release
	s.mu.Lock()
	s.n++
	s.mu.Unlock()
	return nil
}

func TestPublisher_EmitStoresEvent(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "subject-1",
		Action:  string(audit.EventRegistrationCreated),
	})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "subject-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventRegistrationCreated), events[0].Action)
}

func TestPublisher_SetsTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	before := time.Now()
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "s"}))
	after := time.Now()

	events, _ := store.ListAll(context.Background())
	require.Len(t, events, 1)
	assert.False(t, events[0].Timestamp.Before(before))
	assert.False(t, events[0].Timestamp.After(after))
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)

	custom := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "s", Timestamp: custom}))

	events, _ := store.ListAll(context.Background())
	require.Len(t, events, 1)
	assert.Equal(t, custom, events[0].Timestamp)
}

func TestPublisher_EmitReturnsError(t *testing.T) {
	storeErr := errors.New("append failed")
	pub := NewPublisher(&failingStore{err: storeErr})

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventRegistrationCreated)})
	require.ErrorIs(t, err, storeErr)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(16))

	for i := 0; i < 10; i++ {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{Subject: "s"}))
	}
	pub.Close()
	pub.Close()

	events, _ := store.ListAll(context.Background())
	assert.Len(t, events, 10)
}

func TestPublisher_AsyncBufferFullDrops(t *testing.T) {
	store := &blockingStore{release: make(chan struct{})}
	pub := NewPublisher(store, WithAsyncBuffer(1))

	// The worker takes one event and blocks; the buffer then holds one more.
	var dropped error
	for i := 0; i < 5 && dropped == nil; i++ {
		dropped = pub.Emit(context.Background(), audit.Event{Subject: "s"})
	}
	require.Error(t, dropped)
	assert.True(t, dErrors.HasCode(dropped, dErrors.CodeInternal))

	close(store.release)
	pub.Close()
}
