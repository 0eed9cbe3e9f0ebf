package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaxreg/internal/platform/kafka/producer"
	"vaxreg/pkg/platform/audit"
)

type recordingProducer struct {
	messages []*producer.Message
	err      error
}

func (p *recordingProducer) Produce(_ context.Context, msg *producer.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func TestStore_Append(t *testing.T) {
	prod := &recordingProducer{}
	store := New(prod, "")

	event := audit.Event{
		Timestamp: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC),
		Subject:   "a1b2",
		Action:    string(audit.EventRegistrationCreated),
		Decision:  audit.DecisionAccepted,
		RequestID: "req-1",
	}
	require.NoError(t, store.Append(context.Background(), event))

	require.Len(t, prod.messages, 1)
	msg := prod.messages[0]
	assert.Equal(t, DefaultTopic, msg.Topic)
	assert.Equal(t, []byte("a1b2"), msg.Key)
	assert.Equal(t, "registration_created", msg.Headers["event_type"])
	assert.Equal(t, "req-1", msg.Headers["request_id"])

	var decoded audit.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event, decoded)
}

func TestStore_AppendWrapsProducerError(t *testing.T) {
	cause := errors.New("broker down")
	store := New(&recordingProducer{err: cause}, "custom-topic")

	err := store.Append(context.Background(), audit.Event{Subject: "s"})
	require.ErrorIs(t, err, cause)
}
