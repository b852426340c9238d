package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"confroom-backend/internal/stats"
	"confroom-backend/internal/testutil"
	"confroom-backend/internal/types"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	sp := &stats.MockStatsUpdater{}
	sp.On("Incr", stats.ActiveEventFeeds).Maybe()
	sp.On("Decr", stats.ActiveEventFeeds).Maybe()
	sp.On("Add", mock.Anything, mock.Anything).Maybe()

	hub := NewHub(testutil.TestLogger(t), sp)
	go hub.Run()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		hub.Shutdown(ctx)
	})

	return hub
}

func newTestClient(hub *Hub, t *testing.T, userId int, roomId string) *Client {
	return &Client{
		hub:    hub,
		log:    testutil.TestLogger(t),
		user:   types.UserSummary{Id: userId, Name: "user"},
		roomId: roomId,
		send:   make(chan *Event, 8),
		stop:   make(chan struct{}),
	}
}

// settle gives the hub's goroutine a beat to drain its channels; register
// and broadcast arrive on separate channels so ordering is not guaranteed.
func settle() {
	time.Sleep(50 * time.Millisecond)
}

func awaitEvent(t *testing.T, c *Client) *Event {
	t.Helper()
	select {
	case evt := <-c.send:
		return evt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return nil
	}
}

func TestHub_BroadcastReachesRoomSubscribers(t *testing.T) {
	hub := newTestHub(t)

	sub := newTestClient(hub, t, 1, "room-a")
	otherRoom := newTestClient(hub, t, 2, "room-b")
	hub.Register(sub)
	hub.Register(otherRoom)
	settle()

	msg := &types.Message{Id: 100, Text: "hello"}
	hub.Broadcast(NewMessageEvent("room-a", msg))

	evt := awaitEvent(t, sub)
	assert.Equal(t, TypeMessage, evt.Type)
	assert.Equal(t, "room-a", evt.RoomId)
	assert.Equal(t, msg.Text, evt.Message.Text)

	select {
	case evt := <-otherRoom.send:
		t.Fatalf("unexpected event for other room: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_CloseRoomNotifiesAndStopsClients(t *testing.T) {
	hub := newTestHub(t)

	sub := newTestClient(hub, t, 1, "room-a")
	hub.Register(sub)
	settle()

	hub.CloseRoom("room-a")

	evt := awaitEvent(t, sub)
	assert.Equal(t, TypeRoomClosed, evt.Type)

	select {
	case <-sub.stop:
	case <-time.After(time.Second):
		t.Fatal("expected client to be stopped")
	}
}

func TestHub_DeregisterRemovesClient(t *testing.T) {
	hub := newTestHub(t)

	sub := newTestClient(hub, t, 1, "room-a")
	hub.Register(sub)
	settle()
	hub.Deregister(sub)
	settle()

	hub.Broadcast(NewMessageEvent("room-a", &types.Message{Id: 1}))

	select {
	case evt := <-sub.send:
		t.Fatalf("unexpected event after deregister: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_SaturatedClientDropsEvents(t *testing.T) {
	hub := newTestHub(t)

	sub := newTestClient(hub, t, 1, "room-a")
	sub.send = make(chan *Event, 1)
	hub.Register(sub)
	settle()

	hub.Broadcast(NewMessageEvent("room-a", &types.Message{Id: 1}))
	hub.Broadcast(NewMessageEvent("room-a", &types.Message{Id: 2}))

	evt := awaitEvent(t, sub)
	assert.Equal(t, 1, evt.Message.Id)
}

func TestEventConstructors(t *testing.T) {
	user := types.UserSummary{Id: 1, Name: "test"}

	edited := MessageEditedEvent("r", &types.Message{Id: 5})
	assert.Equal(t, TypeMessageEdited, edited.Type)

	deleted := MessageDeletedEvent("r", 5)
	assert.Equal(t, TypeMessageDeleted, deleted.Type)
	assert.Equal(t, 5, deleted.MessageId)

	reaction := ReactionEvent("r", &ReactionChange{MessageId: 5, Emoji: "👍", Added: true, User: user})
	assert.Equal(t, TypeReaction, reaction.Type)
	assert.True(t, reaction.Reaction.Added)

	presence := PresenceEvent("r", user, false)
	assert.Equal(t, TypePresence, presence.Type)
	assert.False(t, presence.Presence.Present)
	assert.Equal(t, user, presence.Presence.User)
}
