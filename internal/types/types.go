package types

import (
	"time"
)

type User struct {
	Id               int        `json:"id"`
	EmailAddress     string     `json:"email_address,omitempty"`
	Name             string     `json:"name,omitempty"`
	DisplayName      string     `json:"display_name,omitempty"`
	Role             string     `json:"role,omitempty"`
	IsPremium        bool       `json:"is_premium"`
	PremiumExpiresAt *time.Time `json:"premium_expires_at,omitempty"`
	IsGuest          bool       `json:"is_guest,omitempty"`
	CreatedAt        time.Time  `json:"created_at,omitempty"`
	UpdatedAt        time.Time  `json:"updated_at,omitempty"`
}

// UserSummary is the denormalized author/owner shape embedded in room,
// participant and message views.
type UserSummary struct {
	Id          int    `json:"id"`
	Name        string `json:"name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	IsPremium   bool   `json:"is_premium,omitempty"`
	IsGuest     bool   `json:"is_guest,omitempty"`
	Role        string `json:"role,omitempty"`
}

type Room struct {
	Id               int          `json:"id"`
	ExternalId       string       `json:"external_id"`
	Title            string       `json:"title"`
	Type             string       `json:"type"`
	OwnerId          int          `json:"owner_id"`
	Owner            *UserSummary `json:"owner,omitempty"`
	IsActive         bool         `json:"is_active"`
	MaxParticipants  int          `json:"max_participants"`
	ParticipantCount int          `json:"participant_count"`
	CreatedAt        time.Time    `json:"created_at,omitempty"`
	UpdatedAt        time.Time    `json:"updated_at,omitempty"`
}

type Participant struct {
	Id                int         `json:"id"`
	RoomId            int         `json:"room_id"`
	UserId            int         `json:"user_id"`
	User              UserSummary `json:"user"`
	JoinedAt          time.Time   `json:"joined_at"`
	IsActive          bool        `json:"is_active"`
	LastSeenMessageId int         `json:"last_seen_message_id,omitempty"`
}

// ParentPreview is the single-level reply preview resolved for display.
type ParentPreview struct {
	Id     int         `json:"id"`
	Text   string      `json:"text"`
	Author UserSummary `json:"author"`
}

type Reaction struct {
	Emoji string      `json:"emoji"`
	User  UserSummary `json:"user"`
}

type Message struct {
	Id              int            `json:"id"`
	RoomId          int            `json:"room_id"`
	UserId          int            `json:"user_id"`
	Author          UserSummary    `json:"author"`
	Text            string         `json:"text"`
	ParentMessageId int            `json:"parent_message_id,omitempty"`
	Parent          *ParentPreview `json:"parent,omitempty"`
	IsEdited        bool           `json:"is_edited"`
	Reactions       []Reaction     `json:"reactions"`
	Timestamp       time.Time      `json:"timestamp"`
}
