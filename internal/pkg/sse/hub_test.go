package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishReachesOnlyTheEmployee(t *testing.T) {
	hub := NewHub()
	mine, cancelMine := hub.Subscribe("emp-1")
	defer cancelMine()
	other, cancelOther := hub.Subscribe("emp-2")
	defer cancelOther()

	hub.Publish("emp-1", Event{Name: EventLeaveApproved, Data: "leave-1"})

	select {
	case ev := <-mine:
		assert.Equal(t, "emp-1", ev.EmployeeID)
		assert.Equal(t, EventLeaveApproved, ev.Name)
	default:
		t.Fatal("expected an event for emp-1")
	}
	assert.Len(t, other, 0)
}

func TestHub_CleanupClosesAndForgets(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("emp-1")
	_, cancel2 := hub.Subscribe("emp-1")
	require.Equal(t, 2, hub.SubscriberCount("emp-1"))
	require.Equal(t, 2, hub.TotalSubscribers())

	cancel()
	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 1, hub.SubscriberCount("emp-1"))

	cancel2()
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestHub_FullBufferDropsEvents(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("emp-1")
	defer cancel()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Publish("emp-1", Event{Name: EventLeaveRejected})
	}
	assert.Len(t, ch, hub.bufferSize)
}
