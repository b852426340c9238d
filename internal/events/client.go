package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"confroom-backend/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client is one websocket subscription to a single room's event feed. The
// feed is push-only: inbound frames beyond pings are discarded.
type Client struct {
	conn   *websocket.Conn
	hub    *Hub
	log    *log.Logger
	user   types.UserSummary
	roomId string
	send   chan *Event
	stop   chan struct{}
}

func NewClient(user types.UserSummary, roomId string, conn *websocket.Conn, hub *Hub, l *log.Logger) *Client {
	return &Client{
		conn:   conn,
		hub:    hub,
		log:    l,
		user:   user,
		roomId: roomId,
		send:   make(chan *Event, 64),
		stop:   make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(evt)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
				continue
			}

			if !c.writeFrame(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			c.writeFrame(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			if !c.writeFrame(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.hub.Deregister(c)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			return
		}
	}
}

func (c *Client) writeFrame(messageType int, payload []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(messageType, payload); err != nil {
		if messageType != websocket.CloseMessage {
			c.log.Printf("ws: write: %v", err)
		}
		return false
	}

	return true
}

func (c *Client) queueEvent(evt *Event) bool {
	select {
	case c.send <- evt:
	default:
		return false
	}

	return true
}

func (c *Client) stopClient() {
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}
