package database

import (
	"database/sql"
	"time"
)

const (
	RoleAdmin  = "admin"
	RoleUser   = "user"
	RoleMember = "member"

	RoomTypeFree    = "free"
	RoomTypePremium = "premium"
)

type User struct {
	Id                    int
	EmailAddress          string
	Name                  string
	DisplayName           string
	PasswordHash          string
	Role                  string
	IsPremium             bool
	PremiumExpiresAt      sql.NullTime
	IsGuest               bool
	GuestToken            string
	VerificationCodeHash  string
	VerificationExpiresAt sql.NullTime
	EmailVerifiedAt       sql.NullTime
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type Room struct {
	Id              int
	ExternalId      string
	Title           string
	Type            string
	OwnerId         int
	IsActive        bool
	MaxParticipants int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RoomDetails is a room joined with its owner summary and the number of
// active participants.
type RoomDetails struct {
	Room
	OwnerName        string
	OwnerDisplayName string
	ParticipantCount int
}

type Participant struct {
	Id                int
	RoomId            int
	UserId            int
	JoinedAt          time.Time
	IsActive          bool
	LastSeenMessageId sql.NullInt64
}

// ParticipantUser is a participant row joined with a minimal summary of its
// user.
type ParticipantUser struct {
	Participant
	Name        string
	DisplayName string
	IsPremium   bool
	IsGuest     bool
}

type Message struct {
	Id              int
	RoomId          int
	UserId          int
	Text            string
	ParentMessageId sql.NullInt64
	IsEdited        bool
	CreatedAt       time.Time
}

// MessageDetails is a message joined with its author summary and, when the
// parent message still exists, a preview of the parent and its author.
type MessageDetails struct {
	Message
	AuthorName              string
	AuthorDisplayName       string
	AuthorIsPremium         bool
	AuthorRole              string
	ParentText              sql.NullString
	ParentAuthorName        sql.NullString
	ParentAuthorDisplayName sql.NullString
}

type Reaction struct {
	Id        int
	MessageId int
	UserId    int
	Emoji     string
	CreatedAt time.Time
}

// ReactionUser is a reaction row joined with a summary of the reacting user.
type ReactionUser struct {
	Reaction
	Name        string
	DisplayName string
}

type CreateAccountParams struct {
	EmailAddress string
	Name         string
	PasswordHash string
	IsGuest      bool
	GuestToken   string
}

type UpdateProfileParams struct {
	UserId      int
	DisplayName string
	Name        string
}

type CreateRoomParams struct {
	Title           string
	Type            string
	OwnerId         int
	ExternalId      string
	MaxParticipants int
}

type CreateMessageParams struct {
	RoomId          int
	UserId          int
	Text            string
	ParentMessageId sql.NullInt64
}
