package events

import (
	"context"
	"log"

	"confroom-backend/internal/stats"
)

// Hub fans room events out to the websocket feeds subscribed to each room.
// All room/client bookkeeping happens on the Run goroutine.
type Hub struct {
	log            *log.Logger
	stats          stats.StatsProvider
	registerChan   chan *Client
	deregisterChan chan *Client
	broadcastChan  chan *Event
	closeRoomChan  chan string
	rooms          map[string]map[*Client]struct{}
	stop           chan struct{}
	done           chan struct{}
}

func NewHub(logger *log.Logger, sp stats.StatsProvider) *Hub {
	return &Hub{
		log:            logger,
		stats:          sp,
		registerChan:   make(chan *Client, 64),
		deregisterChan: make(chan *Client, 64),
		broadcastChan:  make(chan *Event, 256),
		closeRoomChan:  make(chan string, 16),
		rooms:          make(map[string]map[*Client]struct{}),
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.registerChan:
			h.addClient(client)
		case client := <-h.deregisterChan:
			h.removeClient(client)
		case evt := <-h.broadcastChan:
			h.dispatch(evt)
		case roomId := <-h.closeRoomChan:
			h.closeRoom(roomId)
		case <-h.stop:
			h.log.Println("closing event feeds")
			for roomId := range h.rooms {
				h.closeRoom(roomId)
			}
			close(h.done)
			return
		}
	}
}

func (h *Hub) Shutdown(ctx context.Context) error {
	close(h.stop)
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Broadcast queues an event for every feed subscribed to its room. It never
// blocks the caller; when the hub is saturated the event is dropped and
// logged, clients resync from the read API.
func (h *Hub) Broadcast(evt *Event) {
	select {
	case h.broadcastChan <- evt:
	default:
		h.log.Printf("event channel full, dropping %s event for room %q", evt.Type, evt.RoomId)
	}
}

// CloseRoom disconnects every feed for the room, used on room deletion.
func (h *Hub) CloseRoom(roomId string) {
	select {
	case h.closeRoomChan <- roomId:
	default:
		h.log.Printf("close channel full for room %q", roomId)
	}
}

func (h *Hub) Register(c *Client) {
	h.registerChan <- c
}

func (h *Hub) Deregister(c *Client) {
	select {
	case h.deregisterChan <- c:
	case <-h.stop:
	}
}

func (h *Hub) addClient(c *Client) {
	clients, ok := h.rooms[c.roomId]
	if !ok {
		clients = make(map[*Client]struct{})
		h.rooms[c.roomId] = clients
	}

	clients[c] = struct{}{}
	h.stats.Incr(stats.ActiveEventFeeds)
	h.log.Printf("feed opened for user %d on room %q", c.user.Id, c.roomId)
}

func (h *Hub) removeClient(c *Client) {
	clients, ok := h.rooms[c.roomId]
	if !ok {
		return
	}

	if _, ok := clients[c]; !ok {
		return
	}

	delete(clients, c)
	if len(clients) == 0 {
		delete(h.rooms, c.roomId)
	}

	c.stopClient()
	h.stats.Decr(stats.ActiveEventFeeds)
	h.log.Printf("feed closed for user %d on room %q", c.user.Id, c.roomId)
}

func (h *Hub) dispatch(evt *Event) {
	for client := range h.rooms[evt.RoomId] {
		if !client.queueEvent(evt) {
			h.log.Printf("feed for user %d on room %q is backed up, dropping event", client.user.Id, client.roomId)
		}
	}
}

func (h *Hub) closeRoom(roomId string) {
	clients, ok := h.rooms[roomId]
	if !ok {
		return
	}

	evt := RoomClosedEvent(roomId)
	for client := range clients {
		client.queueEvent(evt)
		client.stopClient()
		h.stats.Decr(stats.ActiveEventFeeds)
	}

	delete(h.rooms, roomId)
}
