package api

import (
	"net/http"

	"github.com/gorilla/websocket"

	"confroom-backend/internal/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// serveWs upgrades the connection and subscribes the caller to a room's
// event feed.
func (s *ConfRoomApp) serveWs(w http.ResponseWriter, r *http.Request) {
	user, errResp := s.currentUser(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	room, errResp := s.resolveRoom(r)
	if errResp != nil {
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !room.IsActive {
		errResp := NewValidationError("room is not active")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("failed to upgrade connection:", err)
		return
	}

	client := events.NewClient(summaryOf(user), room.ExternalId, conn, s.hub, s.log)
	s.hub.Register(client)

	go client.Write()
	go client.Read()
}
