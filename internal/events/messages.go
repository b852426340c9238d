package events

import (
	"time"

	"confroom-backend/internal/types"
)

const (
	TypeMessage        = "message"
	TypeMessageEdited  = "message_edited"
	TypeMessageDeleted = "message_deleted"
	TypeReaction       = "reaction"
	TypePresence       = "presence"
	TypeRoomClosed     = "room_closed"
)

// Event is a single frame pushed to room feed subscribers.
type Event struct {
	Type      string    `json:"type"`
	RoomId    string    `json:"room_id"`
	Timestamp time.Time `json:"timestamp"`

	Message   *types.Message  `json:"message,omitempty"`
	MessageId int             `json:"message_id,omitempty"`
	Reaction  *ReactionChange `json:"reaction,omitempty"`
	Presence  *PresenceChange `json:"presence,omitempty"`
}

type ReactionChange struct {
	MessageId int               `json:"message_id"`
	Emoji     string            `json:"emoji"`
	Added     bool              `json:"added"`
	User      types.UserSummary `json:"user"`
}

type PresenceChange struct {
	Present bool              `json:"present"`
	User    types.UserSummary `json:"user"`
}

func NewMessageEvent(roomId string, msg *types.Message) *Event {
	return &Event{
		Type:      TypeMessage,
		RoomId:    roomId,
		Timestamp: time.Now().UTC(),
		Message:   msg,
	}
}

func MessageEditedEvent(roomId string, msg *types.Message) *Event {
	return &Event{
		Type:      TypeMessageEdited,
		RoomId:    roomId,
		Timestamp: time.Now().UTC(),
		Message:   msg,
	}
}

func MessageDeletedEvent(roomId string, messageId int) *Event {
	return &Event{
		Type:      TypeMessageDeleted,
		RoomId:    roomId,
		Timestamp: time.Now().UTC(),
		MessageId: messageId,
	}
}

func ReactionEvent(roomId string, change *ReactionChange) *Event {
	return &Event{
		Type:      TypeReaction,
		RoomId:    roomId,
		Timestamp: time.Now().UTC(),
		Reaction:  change,
	}
}

func PresenceEvent(roomId string, user types.UserSummary, present bool) *Event {
	return &Event{
		Type:      TypePresence,
		RoomId:    roomId,
		Timestamp: time.Now().UTC(),
		Presence:  &PresenceChange{Present: present, User: user},
	}
}

func RoomClosedEvent(roomId string) *Event {
	return &Event{
		Type:      TypeRoomClosed,
		RoomId:    roomId,
		Timestamp: time.Now().UTC(),
	}
}
