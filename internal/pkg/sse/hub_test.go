package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishAll(t *testing.T) {
	hub := NewHub()
	own, cancelOwn := hub.Subscribe("emp-1")
	defer cancelOwn()
	other, cancelOther := hub.Subscribe("emp-2")
	defer cancelOther()
	all, cancelAll := hub.Subscribe(TopicAll)
	defer cancelAll()

	hub.PublishAll("emp-1", Event{Name: "changed", Data: 1})

	require.Len(t, own, 1)
	require.Len(t, all, 1)
	assert.Empty(t, other)
	assert.Equal(t, "changed", (<-own).Name)
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("emp-1")
	assert.Equal(t, 1, hub.SubscriberCount("emp-1"))

	cancel()
	cancel()

	_, open := <-ch
	assert.False(t, open)
	assert.Equal(t, 0, hub.SubscriberCount("emp-1"))

	// publishing to a topic nobody listens on is a no-op
	hub.Publish("emp-1", Event{Name: "changed"})
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe("emp-1")
	defer cancel()

	for i := 0; i < hub.bufferSize+5; i++ {
		hub.Publish("emp-1", Event{Name: "changed", Data: i})
	}

	assert.Len(t, ch, hub.bufferSize)
}
