package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-service/internal/models"
)

func drain(t *testing.T, send chan []byte) models.Event {
	t.Helper()
	select {
	case data := <-send:
		var ev models.Event
		require.NoError(t, json.Unmarshal(data, &ev))
		return ev
	default:
		t.Fatal("expected a queued event")
		return models.Event{}
	}
}

func TestHub_PublishReachesSubscribersOnly(t *testing.T) {
	hub := NewHub()

	a := make(chan []byte, 4)
	b := make(chan []byte, 4)
	hub.Register("a", a)
	hub.Register("b", b)
	hub.Subscribe("a", "room:0")

	hub.Publish("room:0", models.Event{Event: "presence", Data: map[string]any{"id": 1}})

	ev := drain(t, a)
	require.Equal(t, "presence", ev.Event)
	require.Empty(t, b)
}

func TestHub_UnregisterDropsSubscriptions(t *testing.T) {
	hub := NewHub()

	a := make(chan []byte, 4)
	hub.Register("a", a)
	hub.Subscribe("a", "room:0")
	hub.Subscribe("a", "user:1")
	require.Equal(t, 1, hub.Subscribers("room:0"))

	hub.Unregister("a")
	require.Equal(t, 0, hub.Subscribers("room:0"))
	require.Equal(t, 0, hub.Subscribers("user:1"))

	// queue is closed so the write pump can finish
	_, open := <-a
	require.False(t, open)

	// publishing after unregister is a no-op
	hub.Publish("room:0", models.Event{Event: "presence"})
}

func TestHub_SendTargetsOneConnection(t *testing.T) {
	hub := NewHub()

	a := make(chan []byte, 4)
	b := make(chan []byte, 4)
	hub.Register("a", a)
	hub.Register("b", b)

	hub.Send("b", models.Event{Event: "status-successfully", Data: true})

	ev := drain(t, b)
	require.Equal(t, "status-successfully", ev.Event)
	require.Empty(t, a)
}

func TestHub_SlowSubscriberDoesNotBlockFanout(t *testing.T) {
	hub := NewHub()

	slow := make(chan []byte) // unbuffered and never read
	fast := make(chan []byte, 4)
	hub.Register("slow", slow)
	hub.Register("fast", fast)
	hub.Subscribe("slow", "room:0")
	hub.Subscribe("fast", "room:0")

	hub.Publish("room:0", models.Event{Event: "room-successfully"})

	ev := drain(t, fast)
	require.Equal(t, "room-successfully", ev.Event)
}

func TestHub_SubscribeUnknownConnIsIgnored(t *testing.T) {
	hub := NewHub()

	hub.Subscribe("ghost", "room:0")
	require.Equal(t, 0, hub.Subscribers("room:0"))
}
