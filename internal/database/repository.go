package database

import "time"

type ConfRoomRepository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (User, error)
	GetAccountById(accountId int) (User, error)
	GetAccountByEmail(email string) (User, error)
	UpdateProfile(params UpdateProfileParams) (User, error)
	SetRole(accountId int, role string) error
	SetPremium(accountId int, expiresAt time.Time) (User, error)
	ExpirePremium(now time.Time, limit int) (int, error)
	SaveVerificationCode(accountId int, codeHash string, expiresAt time.Time) error
	ConsumeVerificationCode(accountId int, now time.Time) (User, error)

	CreateRoom(params CreateRoomParams) (Room, error)
	GetRoomByExternalId(externalId string) (Room, error)
	GetRoomDetails(roomId int) (RoomDetails, error)
	ListRooms(activeOnly bool) ([]RoomDetails, error)
	ToggleRoomStatus(roomId int) (bool, error)
	DeleteRoom(roomId int) error

	UpsertParticipant(roomId, accountId int) (Participant, error)
	DeactivateParticipant(roomId, accountId int) error
	ListParticipants(roomId int) ([]ParticipantUser, error)
	SetLastSeenMessage(roomId, accountId, messageId int) error

	CreateMessage(params CreateMessageParams) (Message, error)
	GetMessageById(messageId int) (Message, error)
	UpdateMessageText(messageId int, text string) (Message, error)
	DeleteMessage(messageId int) error
	ListRoomMessages(roomId, limit int) ([]MessageDetails, error)
	ListReactions(messageIds []int) ([]ReactionUser, error)
	ToggleReaction(messageId, accountId int, emoji string) (bool, error)
	DeleteMessagesBefore(cutoff time.Time, limit int) (int, error)
}
