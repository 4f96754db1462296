package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-leave-ledger/internal/domain/audit"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestAuditPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := NewAuditPublisher(w)

	err := p.Publish(context.Background(), []audit.Entry{{
		ID:         "log-1",
		Action:     audit.ActionApplyLeave,
		EntityType: audit.EntityLeave,
		EntityID:   "leave-9",
		ActorID:    "emp-1",
		Changes:    json.RawMessage(`{"created":{"total_days":2}}`),
		CreatedAt:  time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC),
	}})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "Leave:leave-9", string(msg.Key))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, audit.ActionApplyLeave, string(msg.Headers[0].Value))
	assert.Equal(t, audit.EntityLeave, string(msg.Headers[1].Value))

	var body map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &body))
	assert.Equal(t, "log-1", body["id"])
	assert.Equal(t, "emp-1", body["actor_id"])
	assert.Equal(t, float64(2), body["changes"].(map[string]any)["created"].(map[string]any)["total_days"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}
